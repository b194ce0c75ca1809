package usecase

import (
	"context"
	"errors"

	"telegram-offers-bot/internal/domain/model"
	"telegram-offers-bot/internal/domain/ports/adapter"
	"telegram-offers-bot/internal/domain/ports/repository"
	derror "telegram-offers-bot/internal/error"
	"telegram-offers-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// RefreshUseCase is the scheduled pipeline: fetch the feed, refresh the
// taxonomy cache, partition the snapshot into new and price-changed products
// against the persisted state, broadcast both partitions, and commit the
// updated state.
type RefreshUseCase struct {
	fetcher   adapter.FeedFetcher
	states    repository.StateRepository
	taxonomy  *TaxonomyUseCase
	deliverer *Deliverer
	bot       adapter.BotAdapter
	channelID int64
	log       *zerolog.Logger
}

func NewRefreshUseCase(
	fetcher adapter.FeedFetcher,
	states repository.StateRepository,
	taxonomy *TaxonomyUseCase,
	deliverer *Deliverer,
	bot adapter.BotAdapter,
	channelID int64,
	logger *zerolog.Logger,
) *RefreshUseCase {
	compLog := logger.With().Str("component", "RefreshUseCase").Logger()
	return &RefreshUseCase{
		fetcher:   fetcher,
		states:    states,
		taxonomy:  taxonomy,
		deliverer: deliverer,
		bot:       bot,
		channelID: channelID,
		log:       &compLog,
	}
}

// Run executes one refresh. Fetch failures abort early without touching
// state and escalate to the admin; the run itself never errors out on
// malformed records. With no broadcast channel configured the detection
// still runs and commits, but nothing is delivered.
func (uc *RefreshUseCase) Run(ctx context.Context) error {
	defer logging.TraceDuration(uc.log, "RefreshUseCase.Run")()

	snapshot, err := uc.fetcher.Fetch(ctx)
	if err != nil {
		if errors.Is(err, derror.ErrFeedURLMissing) {
			_ = uc.bot.NotifyAdmin(ctx, "Error: URL de la hoja de cálculo no configurada.")
			return err
		}
		_ = uc.bot.NotifyAdmin(ctx, "No se pudo acceder al Google Sheet. Se reintentará en el próximo intervalo.")
		return err
	}

	if _, err := uc.taxonomy.Refresh(ctx, snapshot); err != nil {
		// Menu staleness is tolerable; the refresh itself goes on.
		uc.log.Error().Err(err).Msg("taxonomy refresh failed")
	}

	st, err := uc.states.Load(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("state load failed")
		return err
	}

	changes := detectChanges(st, snapshot)

	if uc.channelID != 0 {
		// New items go out before discount changes, each partition in feed order.
		uc.deliverer.DeliverAll(ctx, uc.channelID, changes.newItems, KindNew)
		uc.deliverer.DeliverAll(ctx, uc.channelID, changes.changedItems, KindDiscount)
	}

	if err := uc.states.Save(ctx, changes.next); err != nil {
		uc.log.Error().Err(err).Msg("state save failed")
		return err
	}

	uc.log.Info().
		Int("products", len(snapshot)).
		Int("new", len(changes.newItems)).
		Int("discounts", len(changes.changedItems)).
		Msg("refresh complete")
	return nil
}

type changeSet struct {
	newItems     []model.Product
	changedItems []model.Product
	next         *repository.BotState
}

// detectChanges partitions the snapshot against prior state. Rows without an
// identifier are never tracked or classified. A product is Discount-changed
// only when its current discounted-price string is non-empty and differs from
// the stored one; an absent price on a known product mutates nothing.
func detectChanges(prior *repository.BotState, snapshot []model.Product) changeSet {
	seen := make(map[string]struct{}, len(prior.SeenIDs))
	ids := make([]string, len(prior.SeenIDs))
	copy(ids, prior.SeenIDs)
	for _, id := range prior.SeenIDs {
		seen[id] = struct{}{}
	}
	prices := make(map[string]string, len(prior.LastPrices))
	for k, v := range prior.LastPrices {
		prices[k] = v
	}

	cs := changeSet{}
	for _, p := range snapshot {
		id := p.ID()
		if id == "" {
			continue
		}
		price, _ := p.Value(model.FieldDiscountPrice) // "" when absent

		if _, ok := seen[id]; !ok {
			cs.newItems = append(cs.newItems, p)
			seen[id] = struct{}{}
			ids = append(ids, id)
			prices[id] = price
			continue
		}
		if price != "" && prices[id] != price {
			cs.changedItems = append(cs.changedItems, p)
			prices[id] = price
		}
	}

	cs.next = &repository.BotState{SeenIDs: ids, LastPrices: prices}
	return cs
}
