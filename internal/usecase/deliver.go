package usecase

import (
	"context"
	"time"

	"telegram-offers-bot/internal/domain/model"
	"telegram-offers-bot/internal/domain/ports/adapter"
	"telegram-offers-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Deliverer streams rendered products to a chat in feed order, pacing
// consecutive sends so broadcasts stay under Telegram's rate limits. Both the
// scheduled refresh and the interactive queries share this loop.
type Deliverer struct {
	bot     adapter.BotAdapter
	limiter *rate.Limiter
	logoURL string
	log     *zerolog.Logger
}

func NewDeliverer(bot adapter.BotAdapter, pace time.Duration, logoURL string, logger *zerolog.Logger) *Deliverer {
	if pace <= 0 {
		pace = time.Second
	}
	compLog := logger.With().Str("component", "Deliverer").Logger()
	return &Deliverer{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Every(pace), 1),
		logoURL: logoURL,
		log:     &compLog,
	}
}

// DeliverAll renders and sends every product. Per-item delivery errors are
// logged and the loop continues; the adapter has already applied its
// image-fallback and admin-escalation discipline by the time an error
// surfaces here. Returns the number of products attempted.
func (d *Deliverer) DeliverAll(ctx context.Context, chatID int64, products []model.Product, kind ChangeKind) int {
	sent := 0
	for _, p := range products {
		if err := d.limiter.Wait(ctx); err != nil {
			d.log.Warn().Err(err).Msg("delivery loop interrupted")
			return sent
		}
		text := RenderProduct(p, kind, d.logoURL)
		image, _ := p.Value(model.FieldImage)
		if err := d.bot.SendProduct(ctx, chatID, text, image); err != nil {
			d.log.Error().Err(err).Str("product", p.ID()).Msg("product delivery failed")
		} else {
			metrics.ProductSent(kind.String())
		}
		sent++
	}
	return sent
}
