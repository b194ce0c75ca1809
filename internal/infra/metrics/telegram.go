package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	productsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_sent_total",
			Help: "Product messages delivered, by change kind (new/discount/search/none).",
		},
		[]string{"kind"},
	)

	imageFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_image_fallbacks_total",
			Help: "Image sends that degraded to text-only delivery.",
		},
	)

	deliveryFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_failures_total",
			Help: "Deliveries that failed after the text-only fallback.",
		},
	)

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "User commands and callback selections served.",
		},
		[]string{"command"},
	)
)

func init() {
	register(productsSent, imageFallbacks, deliveryFailures, commandsTotal)
}

func ProductSent(kind string) { productsSent.WithLabelValues(kind).Inc() }

func ImageFallback() { imageFallbacks.Inc() }

func DeliveryFailed() { deliveryFailures.Inc() }

func CommandServed(command string) { commandsTotal.WithLabelValues(command).Inc() }
