package usecase

import (
	"context"
	"sync"

	"telegram-offers-bot/internal/domain/model"
	"telegram-offers-bot/internal/domain/ports/adapter"
	"telegram-offers-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// stubFetcher returns a canned snapshot or error.
type stubFetcher struct {
	products []model.Product
	err      error
	calls    int
}

func (s *stubFetcher) Fetch(ctx context.Context) ([]model.Product, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

// memStateRepo is a small in-memory StateRepository used by unit tests.
type memStateRepo struct {
	mu      sync.Mutex
	state   *repository.BotState
	saves   int
	loadErr error
	saveErr error
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{state: repository.NewBotState()}
}

func (m *memStateRepo) Load(ctx context.Context) (*repository.BotState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	cp := &repository.BotState{
		SeenIDs:    append([]string(nil), m.state.SeenIDs...),
		LastPrices: make(map[string]string, len(m.state.LastPrices)),
	}
	for k, v := range m.state.LastPrices {
		cp.LastPrices[k] = v
	}
	return cp, nil
}

func (m *memStateRepo) Save(ctx context.Context, st *repository.BotState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = st
	m.saves++
	return nil
}

// memTaxonomyRepo is an in-memory TaxonomyRepository.
type memTaxonomyRepo struct {
	mu    sync.Mutex
	tax   *repository.Taxonomy
	saves int
}

func newMemTaxonomyRepo() *memTaxonomyRepo {
	return &memTaxonomyRepo{tax: &repository.Taxonomy{}}
}

func (m *memTaxonomyRepo) Load(ctx context.Context) (*repository.Taxonomy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &repository.Taxonomy{
		Categories: append([]string(nil), m.tax.Categories...),
		Objectives: append([]string(nil), m.tax.Objectives...),
	}, nil
}

func (m *memTaxonomyRepo) Save(ctx context.Context, tax *repository.Taxonomy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tax = tax
	m.saves++
	return nil
}

type sentMessage struct {
	ChatID int64
	Text   string
}

type sentProduct struct {
	ChatID int64
	HTML   string
	Image  string
}

// mockBot records everything the use cases try to send.
type mockBot struct {
	mu       sync.Mutex
	Messages []sentMessage
	Products []sentProduct
	Notices  []string
	sendErr  error
}

var _ adapter.BotAdapter = (*mockBot)(nil)

func (b *mockBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.Messages = append(b.Messages, sentMessage{chatID, text})
	return nil
}

func (b *mockBot) SendHTML(ctx context.Context, chatID int64, html string) error {
	return b.SendMessage(ctx, chatID, html)
}

func (b *mockBot) SendProduct(ctx context.Context, chatID int64, html string, imageURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.Products = append(b.Products, sentProduct{chatID, html, imageURL})
	return nil
}

func (b *mockBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	return b.SendMessage(ctx, chatID, text)
}

func (b *mockBot) NotifyAdmin(ctx context.Context, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Notices = append(b.Notices, text)
	return nil
}
