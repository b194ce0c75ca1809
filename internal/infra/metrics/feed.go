package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	feedFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_total",
			Help: "Feed fetch attempts by outcome (ok/error).",
		},
		[]string{"outcome"},
	)

	feedRowsFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_rows_fetched_total",
			Help: "Sum of product rows returned by successful fetches.",
		},
	)
)

func init() {
	register(feedFetchTotal, feedRowsFetched)
}

func FetchSucceeded(rows int) {
	feedFetchTotal.WithLabelValues("ok").Inc()
	feedRowsFetched.Add(float64(rows))
}

func FetchFailed() {
	feedFetchTotal.WithLabelValues("error").Inc()
}
