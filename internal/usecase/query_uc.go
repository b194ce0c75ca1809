package usecase

import (
	"context"
	"math"
	"strconv"
	"strings"

	"telegram-offers-bot/internal/domain/model"
	"telegram-offers-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// Predicate selects products from a snapshot.
type Predicate func(model.Product) bool

// ResultText parameterizes the user-facing framing around one query's
// results. Found is sent before the product stream, Done after it.
type ResultText struct {
	Found func(n int) string
	Done  func(n int) string
}

// QueryUseCase is the one generic filter handler behind every interactive
// command: fetch the feed fresh, filter in feed order, then stream matches
// through the shared paced delivery loop.
type QueryUseCase struct {
	fetcher   adapter.FeedFetcher
	deliverer *Deliverer
	bot       adapter.BotAdapter
	log       *zerolog.Logger
}

func NewQueryUseCase(fetcher adapter.FeedFetcher, deliverer *Deliverer, bot adapter.BotAdapter, logger *zerolog.Logger) *QueryUseCase {
	compLog := logger.With().Str("component", "QueryUseCase").Logger()
	return &QueryUseCase{fetcher: fetcher, deliverer: deliverer, bot: bot, log: &compLog}
}

// Run returns the number of matches streamed. Zero matches return (0, nil)
// and send nothing: the caller owns the zero-result message. Fetch errors
// (derror.ErrFeedURLMissing, derror.ErrFeedUnavailable) pass through so the
// caller can tell "unreachable" from "empty".
func (uc *QueryUseCase) Run(ctx context.Context, chatID int64, pred Predicate, kind ChangeKind, text ResultText) (int, error) {
	snapshot, err := uc.fetcher.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	var matches []model.Product
	for _, p := range snapshot {
		if pred(p) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return 0, nil
	}

	if err := uc.bot.SendMessage(ctx, chatID, text.Found(len(matches))); err != nil {
		uc.log.Error().Err(err).Msg("query header send failed")
	}
	n := uc.deliverer.DeliverAll(ctx, chatID, matches, kind)
	if err := uc.bot.SendMessage(ctx, chatID, text.Done(n)); err != nil {
		uc.log.Error().Err(err).Msg("query footer send failed")
	}
	return n, nil
}

// Bracket is one discount range. High is +Inf for the open-ended bracket.
type Bracket struct {
	Label string
	Low   float64
	High  float64
}

// DiscountBrackets are the five fixed ranges offered by /ofertas.
var DiscountBrackets = []Bracket{
	{Label: "0-10", Low: 0, High: 10},
	{Label: "10-20", Low: 10, High: 20},
	{Label: "20-30", Low: 20, High: 30},
	{Label: "30-50", Low: 30, High: 50},
	{Label: "50+", Low: 50, High: math.Inf(1)},
}

func BracketByLabel(label string) (Bracket, bool) {
	for _, b := range DiscountBrackets {
		if b.Label == label {
			return b, true
		}
	}
	return Bracket{}, false
}

// Contains is half-open: low <= v < high. The unbounded-upper bracket admits
// its own boundary, so a flat 50% discount lands in "50+", not "30-50".
func (b Bracket) Contains(v float64) bool {
	if math.IsInf(b.High, 1) {
		return v >= b.Low
	}
	return b.Low <= v && v < b.High
}

// InDiscountBracket parses the discount field as a number (tolerating a
// trailing percent sign). Unparseable or absent discounts match no bracket.
func InDiscountBracket(b Bracket) Predicate {
	return func(p model.Product) bool {
		raw, ok := p.Value(model.FieldDiscount)
		if !ok {
			return false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw, "%")), 64)
		if err != nil {
			return false
		}
		return b.Contains(v)
	}
}

// MatchesText reports products whose searchable text contains the term,
// case-insensitively. The haystack is the normalized name, brand,
// description, category and objective, space-joined.
func MatchesText(term string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(term))
	fields := []model.Field{
		model.FieldName, model.FieldBrand, model.FieldDescription,
		model.FieldCategory, model.FieldObjective,
	}
	return func(p model.Product) bool {
		var sb strings.Builder
		for _, f := range fields {
			if v, ok := p.Value(f); ok {
				sb.WriteString(strings.ToLower(v))
				sb.WriteString(" ")
			}
		}
		return strings.Contains(sb.String(), needle)
	}
}

// InCategory matches on the normalized category, so a sheet cell of 5.0 and
// a menu value of "5" compare equal.
func InCategory(category string) Predicate {
	want, _ := model.NormalizeValue(category)
	return func(p model.Product) bool {
		v, ok := p.Value(model.FieldCategory)
		return ok && v == want
	}
}

// HasObjective is InCategory's twin for the objective field.
func HasObjective(objective string) Predicate {
	want, _ := model.NormalizeValue(objective)
	return func(p model.Product) bool {
		v, ok := p.Value(model.FieldObjective)
		return ok && v == want
	}
}
