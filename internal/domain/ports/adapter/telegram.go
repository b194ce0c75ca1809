package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// BotAdapter is the delivery port used by the use cases. Implementations must
// apply the image-fallback discipline in SendProduct: a failed image upload
// degrades to a text-only send before any error is reported.
type BotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendHTML(ctx context.Context, chatID int64, html string) error
	SendProduct(ctx context.Context, chatID int64, html string, imageURL string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	NotifyAdmin(ctx context.Context, text string) error
}
