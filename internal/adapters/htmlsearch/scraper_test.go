package htmlsearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alejandrodnm/arbscout/internal/adapters/htmlsearch"
	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.PlatformAdapter = (*htmlsearch.Scraper)(nil)

const resultsPage = `<html><body>
<ul class="results">
  <li class="card" data-id="111">
    <a class="link" href="/item/111"><h3 class="title">Nintendo   Switch OLED</h3></a>
    <span class="price">$1,299.50</span>
    <span class="ship">Free</span>
    <img src="https://img.example/111.jpg">
  </li>
  <li class="card" data-id="222">
    <a class="link" href="/item/222"><h3 class="title">Steam Deck 512GB</h3></a>
    <span class="price">$449.00</span>
    <span class="ship">+ $12.50 shipping</span>
    <span class="sold-out">Sold out</span>
  </li>
  <li class="card" data-id="333">
    <h3 class="title">Price on request</h3>
  </li>
  <li class="card" data-id="444">
    <a class="link" href="/item/444"><h3 class="title">Game Boy Color</h3></a>
    <span class="price">$89.99</span>
  </li>
</ul>
</body></html>`

const productPage = `<html><body>
<div class="card" data-id="111">
  <h3 class="title">Nintendo Switch OLED</h3>
  <span class="price">$299.00</span>
  <span class="upc">045496883386</span>
</div>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Write([]byte(resultsPage))
		case "/item/111":
			w.Write([]byte(productPage))
		case "/item/blocked":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newScraper(t *testing.T, srv *httptest.Server) *htmlsearch.Scraper {
	t.Helper()
	s, err := htmlsearch.NewScraper(htmlsearch.Config{
		Platform:   domain.PlatformMercari,
		SearchURL:  srv.URL + "/search?q={query}",
		ProductURL: srv.URL + "/item/{id}",
		RatePerSec: 1000,
		Selectors: htmlsearch.Selectors{
			Item:       "li.card, div.card",
			Title:      ".title",
			Price:      ".price",
			Shipping:   ".ship",
			Link:       "a.link",
			Image:      "img",
			UPC:        ".upc",
			OutOfStock: ".sold-out",
		},
	})
	require.NoError(t, err)
	return s
}

func TestSearch_ParsesListings(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	results, err := newScraper(t, srv).Search(context.Background(), domain.SearchQuery{Query: "switch oled"})
	require.NoError(t, err)
	require.Len(t, results, 3, "el listing sin precio se descarta")

	r := results[0]
	assert.Equal(t, "111", r.PlatformID)
	assert.Equal(t, domain.PlatformMercari, r.Platform)
	assert.Equal(t, "Nintendo Switch OLED", r.Title)
	assert.InDelta(t, 1299.50, r.Price, 0.001)
	assert.Equal(t, 0.0, r.Shipping)
	assert.True(t, r.InStock)
	assert.Equal(t, srv.URL+"/item/111", r.URL)
	assert.Equal(t, "https://img.example/111.jpg", r.ImageURL)

	assert.InDelta(t, 12.50, results[1].Shipping, 0.001)
	assert.False(t, results[1].InStock)
}

func TestSearch_PriceBoundsAndLimit(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()
	s := newScraper(t, srv)

	results, err := s.Search(context.Background(), domain.SearchQuery{Query: "x", MinPrice: 100, MaxPrice: 500})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "222", results[0].PlatformID)

	results, err = s.Search(context.Background(), domain.SearchQuery{Query: "x", MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newScraper(t, srv).Search(context.Background(), domain.SearchQuery{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestGetProduct(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()
	s := newScraper(t, srv)

	p, err := s.GetProduct(context.Background(), "111")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.InDelta(t, 299.0, p.Price, 0.001)
	assert.Equal(t, "045496883386", p.UPC)
	assert.Equal(t, srv.URL+"/item/111", p.URL)

	missing, err := s.GetProduct(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.GetProduct(context.Background(), "blocked")
	assert.Error(t, err)
}

func TestCheckStock(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()
	s := newScraper(t, srv)

	st, err := s.CheckStock(context.Background(), "111")
	require.NoError(t, err)
	assert.True(t, st.InStock)

	st, err = s.CheckStock(context.Background(), "999")
	require.NoError(t, err)
	assert.False(t, st.InStock)
}

func TestNewScraper_Validation(t *testing.T) {
	base := htmlsearch.Config{
		Platform:  domain.PlatformEtsy,
		SearchURL: "https://etsy.example/search?q={query}",
		Selectors: htmlsearch.Selectors{Item: ".i", Title: ".t", Price: ".p"},
	}
	_, err := htmlsearch.NewScraper(base)
	require.NoError(t, err)

	noPlaceholder := base
	noPlaceholder.SearchURL = "https://etsy.example/search"
	_, err = htmlsearch.NewScraper(noPlaceholder)
	assert.Error(t, err)

	noPrice := base
	noPrice.Selectors.Price = ""
	_, err = htmlsearch.NewScraper(noPrice)
	assert.Error(t, err)

	badPlatform := base
	badPlatform.Platform = "geocities"
	_, err = htmlsearch.NewScraper(badPlatform)
	assert.Error(t, err)
}
