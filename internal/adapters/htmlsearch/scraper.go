package htmlsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alejandrodnm/arbscout/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultRatePerSec = 1
	defaultTimeout    = 15 * time.Second
	userAgent         = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	queryPlaceholder = "{query}"
	idPlaceholder    = "{id}"
)

var (
	priceRe     = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)
	errNotFound = errors.New("page not found")
)

// Selectors son los selectores CSS que describen un listing en la página.
// Los selectores de campo se evalúan dentro de cada Item.
type Selectors struct {
	Item       string // contenedor de cada listing
	ID         string // elemento con el ID en IDAttr; vacío = el propio Item
	IDAttr     string // default "data-id"
	Title      string
	Price      string
	Shipping   string
	Link       string // <a> con href
	Image      string // <img> con src
	UPC        string
	OutOfStock string // si el selector existe, el listing no tiene stock
}

// Config configura un Scraper para una plataforma.
type Config struct {
	Platform   domain.Platform
	SearchURL  string // debe contener {query}
	ProductURL string // debe contener {id}; vacío deshabilita GetProduct
	Selectors  Selectors
	RatePerSec float64
	Timeout    time.Duration
}

// Scraper implementa ports.PlatformAdapter parseando HTML con goquery.
type Scraper struct {
	http    *http.Client
	cfg     Config
	limiter *rate.Limiter
}

// NewScraper valida la configuración y crea un Scraper.
func NewScraper(cfg Config) (*Scraper, error) {
	if !cfg.Platform.Valid() {
		return nil, fmt.Errorf("htmlsearch.NewScraper: unknown platform %q", cfg.Platform)
	}
	if !strings.Contains(cfg.SearchURL, queryPlaceholder) {
		return nil, fmt.Errorf("htmlsearch.NewScraper: search url for %s must contain %s", cfg.Platform, queryPlaceholder)
	}
	if cfg.ProductURL != "" && !strings.Contains(cfg.ProductURL, idPlaceholder) {
		return nil, fmt.Errorf("htmlsearch.NewScraper: product url for %s must contain %s", cfg.Platform, idPlaceholder)
	}
	if cfg.Selectors.Item == "" || cfg.Selectors.Title == "" || cfg.Selectors.Price == "" {
		return nil, fmt.Errorf("htmlsearch.NewScraper: item, title and price selectors required for %s", cfg.Platform)
	}
	if cfg.Selectors.IDAttr == "" {
		cfg.Selectors.IDAttr = "data-id"
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Scraper{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}, nil
}

// Platform devuelve la plataforma que scrapea este adapter.
func (s *Scraper) Platform() domain.Platform { return s.cfg.Platform }

// Search descarga la página de resultados y extrae los listings.
// Los filtros de precio se aplican sobre lo parseado.
func (s *Scraper) Search(ctx context.Context, q domain.SearchQuery) ([]domain.ProductSearchResult, error) {
	u := strings.ReplaceAll(s.cfg.SearchURL, queryPlaceholder, url.QueryEscape(q.Query))
	doc, err := s.fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("htmlsearch.Search %s: %w", s.cfg.Platform, err)
	}

	var results []domain.ProductSearchResult
	doc.Find(s.cfg.Selectors.Item).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		r, ok := s.parseItem(item, u)
		if !ok {
			return true
		}
		if q.MinPrice > 0 && r.Price < q.MinPrice {
			return true
		}
		if q.MaxPrice > 0 && r.Price > q.MaxPrice {
			return true
		}
		if r.Category == "" {
			r.Category = q.Category
		}
		results = append(results, r)
		return q.MaxResults <= 0 || len(results) < q.MaxResults
	})

	slog.Debug("scrape complete", "platform", s.cfg.Platform, "query", q.Query, "results", len(results))
	if results == nil {
		results = []domain.ProductSearchResult{}
	}
	return results, nil
}

// GetProduct descarga la página del producto. Devuelve nil si no existe
// o si no hay ProductURL configurada.
func (s *Scraper) GetProduct(ctx context.Context, id string) (*domain.ProductSearchResult, error) {
	if s.cfg.ProductURL == "" {
		return nil, nil
	}
	u := strings.ReplaceAll(s.cfg.ProductURL, idPlaceholder, url.PathEscape(id))
	doc, err := s.fetch(ctx, u)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("htmlsearch.GetProduct %s/%s: %w", s.cfg.Platform, id, err)
	}

	root := doc.Find(s.cfg.Selectors.Item).First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	r, ok := s.parseItem(root, u)
	if !ok {
		return nil, nil
	}
	if r.PlatformID == "" {
		r.PlatformID = id
	}
	if r.URL == "" {
		r.URL = u
	}
	return &r, nil
}

// CheckStock usa la página de producto; sin página, sin stock.
func (s *Scraper) CheckStock(ctx context.Context, id string) (domain.StockStatus, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return domain.StockStatus{}, err
	}
	if p == nil {
		return domain.StockStatus{InStock: false}, nil
	}
	return domain.StockStatus{InStock: p.InStock}, nil
}

func (s *Scraper) fetch(ctx context.Context, u string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// parseItem extrae un listing; descarta los que no tienen título o precio.
func (s *Scraper) parseItem(item *goquery.Selection, pageURL string) (domain.ProductSearchResult, bool) {
	sel := s.cfg.Selectors

	title := text(item, sel.Title)
	price, ok := parsePrice(text(item, sel.Price))
	if title == "" || !ok {
		return domain.ProductSearchResult{}, false
	}

	idNode := item
	if sel.ID != "" {
		idNode = item.Find(sel.ID).First()
	}
	id, _ := idNode.Attr(sel.IDAttr)

	shipping := 0.0
	if sel.Shipping != "" {
		if v, ok := parsePrice(text(item, sel.Shipping)); ok {
			shipping = v
		}
	}

	r := domain.ProductSearchResult{
		PlatformID: strings.TrimSpace(id),
		Platform:   s.cfg.Platform,
		Title:      title,
		Price:      price,
		Shipping:   shipping,
		Currency:   "USD",
		InStock:    sel.OutOfStock == "" || item.Find(sel.OutOfStock).Length() == 0,
		URL:        resolve(pageURL, attr(item, sel.Link, "href")),
		ImageURL:   resolve(pageURL, attr(item, sel.Image, "src")),
		UPC:        text(item, sel.UPC),
	}
	if r.PlatformID == "" {
		r.PlatformID = r.URL
	}
	return r, r.PlatformID != ""
}

func text(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(item.Find(selector).First().Text()), " ")
}

func attr(item *goquery.Selection, selector, name string) string {
	if selector == "" {
		return ""
	}
	v, _ := item.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

// parsePrice extrae el primer importe de un texto tipo "$1,299.99" o "Free".
func parsePrice(s string) (float64, bool) {
	if strings.EqualFold(strings.TrimSpace(s), "free") {
		return 0, true
	}
	m := priceRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// resolve convierte href relativos en absolutos respecto a la página.
func resolve(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
