package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"telegram-offers-bot/internal/domain/model"
	"telegram-offers-bot/internal/domain/ports/adapter"
	derror "telegram-offers-bot/internal/error"
	"telegram-offers-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ adapter.FeedFetcher = (*CSVFetcher)(nil)

// CSVFetcher downloads the product sheet as CSV over HTTP. The sheet is the
// source of truth: every Fetch hits the network, nothing is cached here.
type CSVFetcher struct {
	httpClient *http.Client
	url        string
	log        *zerolog.Logger
}

func NewCSVFetcher(url string, logger *zerolog.Logger) *CSVFetcher {
	compLog := logger.With().Str("component", "CSVFetcher").Logger()
	return &CSVFetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		log:        &compLog,
	}
}

// Fetch returns one row per sheet line below the header. A reachable sheet
// with no data rows yields an empty slice; any transport or parse problem
// yields a nil slice and an error wrapping derror.ErrFeedUnavailable.
func (f *CSVFetcher) Fetch(ctx context.Context) ([]model.Product, error) {
	if f.url == "" {
		return nil, derror.ErrFeedURLMissing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", "telegram-offers-bot/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.FetchFailed()
		f.log.Error().Err(err).Msg("feed request failed")
		return nil, fmt.Errorf("%w: %v", derror.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchFailed()
		f.log.Error().Int("status", resp.StatusCode).Msg("feed returned non-OK status")
		return nil, fmt.Errorf("%w: status %d", derror.ErrFeedUnavailable, resp.StatusCode)
	}

	r := csv.NewReader(resp.Body)
	r.FieldsPerRecord = -1 // tolerate ragged rows; short rows map fewer cells

	records, err := r.ReadAll()
	if err != nil {
		metrics.FetchFailed()
		f.log.Error().Err(err).Msg("feed csv parse failed")
		return nil, fmt.Errorf("%w: %v", derror.ErrFeedUnavailable, err)
	}
	if len(records) == 0 {
		metrics.FetchSucceeded(0)
		return []model.Product{}, nil
	}

	header := records[0]
	products := make([]model.Product, 0, len(records)-1)
	for _, row := range records[1:] {
		p := make(model.Product, len(header))
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			p[header[i]] = cell
		}
		products = append(products, p)
	}

	metrics.FetchSucceeded(len(products))
	f.log.Info().Int("products", len(products)).Msg("feed fetched")
	return products, nil
}
