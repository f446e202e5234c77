package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alejandrodnm/arbscout/internal/domain"
)

// file es el formato de testdata/fixtures/<platform>.json.
type file struct {
	Platform string    `json:"platform"`
	Listings []listing `json:"listings"`
}

type listing struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Shipping float64  `json:"shipping"`
	InStock  *bool    `json:"in_stock"`
	Quantity *int     `json:"quantity"`
	URL      string   `json:"url"`
	UPC      string   `json:"upc"`
	ASIN     string   `json:"asin"`
	Brand    string   `json:"brand"`
	Category string   `json:"category"`
	Rating   float64  `json:"rating"`
	Reviews  int      `json:"review_count"`
	MSRP     float64  `json:"msrp"`
	Tags     []string `json:"tags"`
}

// Adapter sirve listings fijos desde memoria. Se usa en dry-run y tests.
type Adapter struct {
	platform domain.Platform
	listings []listing
}

// New crea un Adapter con los listings dados.
func New(p domain.Platform, results []domain.ProductSearchResult) *Adapter {
	a := &Adapter{platform: p}
	for _, r := range results {
		inStock := r.InStock
		a.listings = append(a.listings, listing{
			ID: r.PlatformID, Title: r.Title, Price: r.Price, Shipping: r.Shipping,
			InStock: &inStock, URL: r.URL, UPC: r.UPC, ASIN: r.ASIN, Brand: r.Brand,
			Category: r.Category, Rating: r.Rating, Reviews: r.ReviewCount, MSRP: r.MSRP,
		})
	}
	return a
}

// Load lee todos los *.json de dir y devuelve un Adapter por plataforma.
func Load(dir string) (map[domain.Platform]*Adapter, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("fixture.Load: %w", err)
	}
	sort.Strings(paths)

	out := make(map[domain.Platform]*Adapter, len(paths))
	for _, path := range paths {
		a, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := out[a.platform]; ok {
			prev.listings = append(prev.listings, a.listings...)
			continue
		}
		out[a.platform] = a
	}

	slog.Debug("fixtures loaded", "dir", dir, "platforms", len(out))
	return out, nil
}

// LoadFile lee un único fichero de fixtures.
func LoadFile(path string) (*Adapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture.LoadFile: %w", err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fixture.LoadFile %s: %w", path, err)
	}
	p, err := domain.ParsePlatform(f.Platform)
	if err != nil {
		return nil, fmt.Errorf("fixture.LoadFile %s: %w", path, err)
	}
	return &Adapter{platform: p, listings: f.Listings}, nil
}

// Platform devuelve la plataforma del fichero de fixtures.
func (a *Adapter) Platform() domain.Platform { return a.platform }

// Search devuelve los listings cuyo título o tags contienen todos los
// tokens de la query y que cumplen categoría y rango de precio.
func (a *Adapter) Search(ctx context.Context, q domain.SearchQuery) ([]domain.ProductSearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryTokens := domain.TitleTokens(q.Query)
	category := domain.NormalizeCategory(q.Category)

	results := []domain.ProductSearchResult{}
	for _, l := range a.listings {
		if !matchesQuery(l, queryTokens) {
			continue
		}
		if category != "" && l.Category != "" && domain.NormalizeCategory(l.Category) != category {
			continue
		}
		if q.MinPrice > 0 && l.Price < q.MinPrice {
			continue
		}
		if q.MaxPrice > 0 && l.Price > q.MaxPrice {
			continue
		}
		results = append(results, a.toDomain(l))
		if q.MaxResults > 0 && len(results) == q.MaxResults {
			break
		}
	}
	return results, nil
}

// GetProduct busca por ID; nil si no existe.
func (a *Adapter) GetProduct(ctx context.Context, id string) (*domain.ProductSearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, l := range a.listings {
		if l.ID == id {
			r := a.toDomain(l)
			return &r, nil
		}
	}
	return nil, nil
}

// CheckStock devuelve el estado del listing; un ID desconocido no tiene stock.
func (a *Adapter) CheckStock(ctx context.Context, id string) (domain.StockStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.StockStatus{}, err
	}
	for _, l := range a.listings {
		if l.ID == id {
			return domain.StockStatus{InStock: inStock(l), Quantity: l.Quantity}, nil
		}
	}
	return domain.StockStatus{InStock: false}, nil
}

func (a *Adapter) toDomain(l listing) domain.ProductSearchResult {
	return domain.ProductSearchResult{
		PlatformID:  l.ID,
		Platform:    a.platform,
		Title:       l.Title,
		Price:       l.Price,
		Shipping:    l.Shipping,
		Currency:    "USD",
		InStock:     inStock(l),
		URL:         l.URL,
		UPC:         l.UPC,
		ASIN:        l.ASIN,
		Brand:       l.Brand,
		Category:    l.Category,
		Rating:      l.Rating,
		ReviewCount: l.Reviews,
		MSRP:        l.MSRP,
	}
}

func inStock(l listing) bool {
	return l.InStock == nil || *l.InStock
}

func matchesQuery(l listing, tokens map[string]struct{}) bool {
	if len(tokens) == 0 {
		return true
	}
	have := domain.TitleTokens(l.Title + " " + strings.Join(l.Tags, " "))
	for t := range tokens {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}
