package httpsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/arbscout/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultRatePerSec = 5
	defaultBurst      = 2
	defaultTimeout    = 10 * time.Second

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// errNotFound se devuelve cuando la API responde 404.
var errNotFound = errors.New("not found")

// Config configura un Client para una plataforma concreta.
type Config struct {
	Platform   domain.Platform
	BaseURL    string
	APIKey     string  // opcional, se envía como Bearer
	RatePerSec float64 // 0 = defaultRatePerSec
	Burst      int
	Timeout    time.Duration
}

// Client habla con una API JSON de búsqueda de productos con rate limiting
// y retries. Implementa ports.PlatformAdapter.
//
// Endpoints:
//
//	GET /search?q=&category=&min_price=&max_price=&limit=
//	GET /products/{id}
//	GET /products/{id}/stock
type Client struct {
	http     *http.Client
	platform domain.Platform
	baseURL  string
	apiKey   string
	limiter  *rate.Limiter
}

// NewClient crea un Client. BaseURL es obligatorio.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("httpsearch.NewClient: base url required for %s", cfg.Platform)
	}
	if !cfg.Platform.Valid() {
		return nil, fmt.Errorf("httpsearch.NewClient: unknown platform %q", cfg.Platform)
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		platform: cfg.Platform,
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
	}, nil
}

// Platform devuelve la plataforma servida por este client.
func (c *Client) Platform() domain.Platform { return c.platform }

// Search consulta GET /search y mapea los listings a domain.
func (c *Client) Search(ctx context.Context, q domain.SearchQuery) ([]domain.ProductSearchResult, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.MinPrice > 0 {
		params.Set("min_price", strconv.FormatFloat(q.MinPrice, 'f', 2, 64))
	}
	if q.MaxPrice > 0 {
		params.Set("max_price", strconv.FormatFloat(q.MaxPrice, 'f', 2, 64))
	}
	if q.MaxResults > 0 {
		params.Set("limit", strconv.Itoa(q.MaxResults))
	}

	var resp searchResponse
	if err := c.get(ctx, c.baseURL+"/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("httpsearch.Search %s: %w", c.platform, err)
	}

	results := mapListings(c.platform, resp.Results)
	if q.MaxResults > 0 && len(results) > q.MaxResults {
		results = results[:q.MaxResults]
	}

	slog.Debug("search complete",
		"platform", c.platform,
		"query", q.Query,
		"raw", len(resp.Results),
		"results", len(results),
	)
	return results, nil
}

// GetProduct devuelve el listing por ID, o nil si la API responde 404.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.ProductSearchResult, error) {
	var raw listing
	err := c.get(ctx, c.baseURL+"/products/"+url.PathEscape(id), &raw)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("httpsearch.GetProduct %s/%s: %w", c.platform, id, err)
	}

	r, ok := mapListing(c.platform, raw)
	if !ok {
		return nil, fmt.Errorf("httpsearch.GetProduct %s/%s: invalid listing", c.platform, id)
	}
	return &r, nil
}

// CheckStock consulta GET /products/{id}/stock. Un 404 equivale a sin stock.
func (c *Client) CheckStock(ctx context.Context, id string) (domain.StockStatus, error) {
	var raw stockResponse
	err := c.get(ctx, c.baseURL+"/products/"+url.PathEscape(id)+"/stock", &raw)
	if errors.Is(err, errNotFound) {
		return domain.StockStatus{InStock: false}, nil
	}
	if err != nil {
		return domain.StockStatus{}, fmt.Errorf("httpsearch.CheckStock %s/%s: %w", c.platform, id, err)
	}
	return domain.StockStatus{InStock: raw.InStock, Quantity: raw.Quantity}, nil
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, url string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial.
// 429 y 5xx se reintentan; 404 devuelve errNotFound; otros 4xx fallan directo.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries || ctx.Err() != nil {
				return fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by platform", "platform", c.platform, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return errNotFound
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
