package httpsearch

import (
	"encoding/json"
	"log/slog"
	"math"
	"strings"

	"github.com/alejandrodnm/arbscout/internal/domain"
)

const defaultCurrency = "USD"

// mapListings convierte los DTOs a domain, descartando los que no tienen
// ID o precio válido.
func mapListings(p domain.Platform, raw []listing) []domain.ProductSearchResult {
	results := make([]domain.ProductSearchResult, 0, len(raw))
	for _, l := range raw {
		r, ok := mapListing(p, l)
		if !ok {
			slog.Debug("dropping invalid listing", "platform", p, "id", l.ID, "price", l.Price.String())
			continue
		}
		results = append(results, r)
	}
	return results
}

// mapListing convierte un listing DTO a domain.ProductSearchResult.
func mapListing(p domain.Platform, l listing) (domain.ProductSearchResult, bool) {
	if strings.TrimSpace(l.ID) == "" {
		return domain.ProductSearchResult{}, false
	}
	price, ok := amount(l.Price)
	if !ok {
		return domain.ProductSearchResult{}, false
	}
	shipping, ok := amount(l.Shipping)
	if !ok {
		shipping = 0
	}
	msrp, _ := amount(l.MSRP)

	currency := strings.ToUpper(strings.TrimSpace(l.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	inStock := true
	if l.InStock != nil {
		inStock = *l.InStock
	}

	return domain.ProductSearchResult{
		PlatformID:  l.ID,
		Platform:    p,
		Title:       strings.TrimSpace(l.Title),
		Price:       price,
		Shipping:    shipping,
		Currency:    currency,
		InStock:     inStock,
		Seller:      l.Seller,
		URL:         l.URL,
		ImageURL:    l.ImageURL,
		UPC:         strings.TrimSpace(l.UPC),
		ASIN:        strings.TrimSpace(l.ASIN),
		Brand:       l.Brand,
		Category:    l.Category,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		MSRP:        msrp,
	}, true
}

// amount parsea un importe; vacío, negativo o no finito no es válido.
func amount(n json.Number) (float64, bool) {
	if n == "" {
		return 0, false
	}
	v, err := n.Float64()
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
