package derror

import "errors"

var (
	ErrFeedURLMissing  = errors.New("feed url not configured")
	ErrFeedUnavailable = errors.New("feed unavailable")
)
