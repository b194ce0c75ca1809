package repository

import "context"

// BotState is the persisted change-detection state: every product identifier
// ever observed, and the last discounted-price string seen per identifier.
// Keys of LastPrices are always a subset of SeenIDs.
type BotState struct {
	SeenIDs    []string          `json:"IDs"`
	LastPrices map[string]string `json:"last_prices"`
}

func NewBotState() *BotState {
	return &BotState{LastPrices: make(map[string]string)}
}

// Taxonomy holds the distinct category and objective values observed across
// all fetches to date, sorted. Grow-only: entries are never removed even when
// they disappear from the live feed.
type Taxonomy struct {
	Categories []string `json:"categories"`
	Objectives []string `json:"objectives"`
}

// StateRepository persists BotState. Load returns an empty state (not an
// error) when nothing has been persisted yet. Save replaces the whole
// document and must be crash-atomic.
type StateRepository interface {
	Load(ctx context.Context) (*BotState, error)
	Save(ctx context.Context, state *BotState) error
}

type TaxonomyRepository interface {
	Load(ctx context.Context) (*Taxonomy, error)
	Save(ctx context.Context, tax *Taxonomy) error
}
