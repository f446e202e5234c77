package httpsearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alejandrodnm/arbscout/internal/adapters/httpsearch"
	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.PlatformAdapter = (*httpsearch.Client)(nil)

func newTestClient(t *testing.T, srv *httptest.Server) *httpsearch.Client {
	t.Helper()
	c, err := httpsearch.NewClient(httpsearch.Config{
		Platform:   domain.PlatformWalmart,
		BaseURL:    srv.URL,
		APIKey:     "secret",
		RatePerSec: 1000,
		Burst:      10,
	})
	require.NoError(t, err)
	return c
}

const searchFixture = `{
	"total": 3,
	"results": [
		{"id": "w-1", "title": " Echo Dot (5th Gen) ", "price": 29.99, "shipping": "0", "currency": "usd",
		 "in_stock": true, "upc": "840080591001", "msrp": "49.99", "rating": 4.7, "review_count": 1200},
		{"id": "w-2", "title": "Kindle Paperwhite", "price": "119.00", "in_stock": false},
		{"id": "w-3", "title": "Broken listing", "price": -1}
	]
}`

// --- Search ---

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "echo dot", r.URL.Query().Get("q"))
		assert.Equal(t, "electronics", r.URL.Query().Get("category"))
		assert.Equal(t, "10.00", r.URL.Query().Get("min_price"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("max_price"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchFixture))
	}))
	defer srv.Close()

	results, err := newTestClient(t, srv).Search(context.Background(), domain.SearchQuery{
		Query: "echo dot", Category: "electronics", MinPrice: 10, MaxResults: 20,
	})

	require.NoError(t, err)
	require.Len(t, results, 2, "el listing con precio negativo se descarta")

	r := results[0]
	assert.Equal(t, "w-1", r.PlatformID)
	assert.Equal(t, domain.PlatformWalmart, r.Platform)
	assert.Equal(t, "Echo Dot (5th Gen)", r.Title)
	assert.InDelta(t, 29.99, r.Price, 0.0001)
	assert.Equal(t, 0.0, r.Shipping)
	assert.Equal(t, "USD", r.Currency)
	assert.True(t, r.InStock)
	assert.Equal(t, "840080591001", r.UPC)
	assert.InDelta(t, 49.99, r.MSRP, 0.0001)
	assert.Equal(t, 1200, r.ReviewCount)

	assert.InDelta(t, 119.0, results[1].Price, 0.0001)
	assert.False(t, results[1].InStock)
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchFixture))
	}))
	defer srv.Close()

	results, err := newTestClient(t, srv).Search(context.Background(), domain.SearchQuery{Query: "x", MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Search(context.Background(), domain.SearchQuery{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSearch_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	results, err := newTestClient(t, srv).Search(context.Background(), domain.SearchQuery{Query: "x"})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>captcha</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Search(context.Background(), domain.SearchQuery{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestSearch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv).Search(ctx, domain.SearchQuery{Query: "x"})
	assert.Error(t, err)
}

// --- GetProduct / CheckStock ---

func TestGetProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/w-1":
			w.Write([]byte(`{"id": "w-1", "title": "Echo Dot", "price": 29.99}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	p, err := c.GetProduct(context.Background(), "w-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Echo Dot", p.Title)
	assert.True(t, p.InStock, "in_stock ausente se asume disponible")

	missing, err := c.GetProduct(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCheckStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/w-1/stock":
			w.Write([]byte(`{"in_stock": true, "quantity": 7}`))
		case "/products/w-2/stock":
			w.Write([]byte(`{"in_stock": true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	st, err := c.CheckStock(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, st.InStock)
	require.NotNil(t, st.Quantity)
	assert.Equal(t, 7, *st.Quantity)

	st, err = c.CheckStock(context.Background(), "w-2")
	require.NoError(t, err)
	assert.True(t, st.InStock)
	assert.Nil(t, st.Quantity)

	st, err = c.CheckStock(context.Background(), "gone")
	require.NoError(t, err)
	assert.False(t, st.InStock)
}

// --- NewClient ---

func TestNewClient_Validation(t *testing.T) {
	_, err := httpsearch.NewClient(httpsearch.Config{Platform: domain.PlatformEBay})
	assert.Error(t, err)

	_, err = httpsearch.NewClient(httpsearch.Config{Platform: "myspace", BaseURL: "http://x"})
	assert.Error(t, err)

	c, err := httpsearch.NewClient(httpsearch.Config{Platform: domain.PlatformEBay, BaseURL: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformEBay, c.Platform())
}
