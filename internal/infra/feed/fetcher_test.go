package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-offers-bot/internal/domain/model"
	derror "telegram-offers-bot/internal/error"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestFetchParsesHeaderAndRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ID,Nombre,Precio_descuento\n1,Whey,9.99\n2,Creatina,5.00\n"))
	}))
	defer srv.Close()

	f := NewCSVFetcher(srv.URL, testLogger())
	products, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "1", products[0].ID())
	name, ok := products[0].Value(model.FieldName)
	assert.True(t, ok)
	assert.Equal(t, "Whey", name)

	price, ok := products[1].Value(model.FieldDiscountPrice)
	assert.True(t, ok)
	assert.Equal(t, "5", price)
}

func TestFetchRaggedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Second row is short, third has an extra trailing cell.
		w.Write([]byte("ID,Nombre,Marca\n1,Whey\n2,Creatina,ACME,extra\n"))
	}))
	defer srv.Close()

	f := NewCSVFetcher(srv.URL, testLogger())
	products, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	_, ok := products[0].Value(model.FieldBrand)
	assert.False(t, ok, "short row has no brand cell")
	brand, ok := products[1].Value(model.FieldBrand)
	assert.True(t, ok)
	assert.Equal(t, "ACME", brand)
}

func TestFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	f := NewCSVFetcher(srv.URL, testLogger())
	products, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestFetchMissingURL(t *testing.T) {
	f := NewCSVFetcher("", testLogger())
	_, err := f.Fetch(context.Background())
	assert.True(t, errors.Is(err, derror.ErrFeedURLMissing))
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewCSVFetcher(srv.URL, testLogger())
	_, err := f.Fetch(context.Background())
	assert.True(t, errors.Is(err, derror.ErrFeedUnavailable))
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	f := NewCSVFetcher(srv.URL, testLogger())
	_, err := f.Fetch(context.Background())
	assert.True(t, errors.Is(err, derror.ErrFeedUnavailable))
}
