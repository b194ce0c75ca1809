package usecase

import (
	"context"
	"sort"

	"telegram-offers-bot/internal/domain/model"
	"telegram-offers-bot/internal/domain/ports/adapter"
	"telegram-offers-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// TaxonomyUseCase maintains the persisted sets of distinct categories and
// objectives, so selection menus don't require rescanning the feed. The sets
// only ever grow: values that vanish from the live feed stay in the menus.
type TaxonomyUseCase struct {
	repo    repository.TaxonomyRepository
	fetcher adapter.FeedFetcher
	log     *zerolog.Logger
}

func NewTaxonomyUseCase(repo repository.TaxonomyRepository, fetcher adapter.FeedFetcher, logger *zerolog.Logger) *TaxonomyUseCase {
	compLog := logger.With().Str("component", "TaxonomyUseCase").Logger()
	return &TaxonomyUseCase{repo: repo, fetcher: fetcher, log: &compLog}
}

// Refresh unions the snapshot's normalized category/objective values into the
// persisted sets, re-sorts, persists, and returns the merged result.
func (uc *TaxonomyUseCase) Refresh(ctx context.Context, snapshot []model.Product) (*repository.Taxonomy, error) {
	tax, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	merged := &repository.Taxonomy{
		Categories: mergeField(tax.Categories, snapshot, model.FieldCategory),
		Objectives: mergeField(tax.Objectives, snapshot, model.FieldObjective),
	}
	if err := uc.repo.Save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Current returns the cached taxonomy. When both sets are still empty (no
// scheduled poll has run yet) it falls back to a live fetch so the menus work
// immediately after startup.
func (uc *TaxonomyUseCase) Current(ctx context.Context) (*repository.Taxonomy, error) {
	tax, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(tax.Categories) > 0 || len(tax.Objectives) > 0 {
		return tax, nil
	}

	uc.log.Debug().Msg("taxonomy cache empty, refreshing from feed")
	snapshot, err := uc.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return uc.Refresh(ctx, snapshot)
}

func mergeField(existing []string, snapshot []model.Product, f model.Field) []string {
	set := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		set[v] = struct{}{}
	}
	for _, p := range snapshot {
		if v, ok := p.Value(f); ok {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
