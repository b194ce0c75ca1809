package usecase

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"telegram-offers-bot/internal/domain/model"
)

func TestTaxonomyRefreshGrowOnlyAndSorted(t *testing.T) {
	repo := newMemTaxonomyRepo()
	uc := NewTaxonomyUseCase(repo, &stubFetcher{}, newTestLogger())
	ctx := context.Background()

	first := []model.Product{
		{"Categoria": "Proteínas", "Objetivo": "Volumen"},
		{"Categoria": "Aminoácidos", "Objetivo": "Definición"},
	}
	tax, err := uc.Refresh(ctx, first)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !reflect.DeepEqual(tax.Categories, []string{"Aminoácidos", "Proteínas"}) {
		t.Errorf("categories = %v, want sorted", tax.Categories)
	}

	// A later feed that dropped a category must not shrink the stored set.
	second := []model.Product{{"Categoria": "Creatinas", "Objetivo": "Volumen"}}
	tax, err = uc.Refresh(ctx, second)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	want := []string{"Aminoácidos", "Creatinas", "Proteínas"}
	if !reflect.DeepEqual(tax.Categories, want) {
		t.Errorf("categories = %v, want %v", tax.Categories, want)
	}
	if !sort.StringsAreSorted(tax.Objectives) {
		t.Errorf("objectives not sorted: %v", tax.Objectives)
	}
	if repo.saves != 2 {
		t.Errorf("persisted %d times, want 2", repo.saves)
	}
}

func TestTaxonomyRefreshNormalizesValues(t *testing.T) {
	repo := newMemTaxonomyRepo()
	uc := NewTaxonomyUseCase(repo, &stubFetcher{}, newTestLogger())

	tax, err := uc.Refresh(context.Background(), []model.Product{
		{"Categoria": "5.0"},
		{"categoria": "5"},
		{"Categoria": "NaN"},
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !reflect.DeepEqual(tax.Categories, []string{"5"}) {
		t.Errorf("categories = %v, want [5]", tax.Categories)
	}
}

func TestTaxonomyCurrentLazyFetch(t *testing.T) {
	repo := newMemTaxonomyRepo()
	fetcher := &stubFetcher{products: []model.Product{{"Categoria": "Barritas"}}}
	uc := NewTaxonomyUseCase(repo, fetcher, newTestLogger())
	ctx := context.Background()

	tax, err := uc.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("empty cache should trigger one lazy fetch, got %d", fetcher.calls)
	}
	if !reflect.DeepEqual(tax.Categories, []string{"Barritas"}) {
		t.Errorf("categories = %v", tax.Categories)
	}

	// Warm cache: no further fetches.
	if _, err := uc.Current(ctx); err != nil {
		t.Fatalf("Current: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("warm cache must not refetch, got %d calls", fetcher.calls)
	}
}
