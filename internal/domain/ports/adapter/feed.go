package adapter

import (
	"context"

	"telegram-offers-bot/internal/domain/model"
)

// FeedFetcher retrieves the product sheet as rows. A reachable-but-empty
// sheet yields an empty slice and nil error; callers rely on that distinction.
type FeedFetcher interface {
	Fetch(ctx context.Context) ([]model.Product, error)
}
