package scanner

import (
	"log/slog"

	"github.com/alejandrodnm/arbscout/internal/domain"
)

// pair son dos listings de plataformas distintas, aún sin orientar.
type pair struct {
	a, b      domain.ProductSearchResult
	matchType domain.MatchType
}

// allPairs genera todos los pares no ordenados entre plataformas distintas. O(n²).
func allPairs(results []domain.ProductSearchResult) []pair {
	var out []pair
	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			if results[i].Platform == results[j].Platform {
				continue
			}
			out = append(out, pair{a: results[i], b: results[j]})
		}
	}
	return out
}

// matchedPairs genera pares solo dentro de cada grupo del Matcher.
// Los grupos nunca repiten plataforma, así que todos los pares son válidos.
func matchedPairs(matches []domain.MatchResult) []pair {
	var out []pair
	for _, m := range matches {
		for i := 0; i < len(m.Products); i++ {
			for j := i + 1; j < len(m.Products); j++ {
				out = append(out, pair{a: m.Products[i], b: m.Products[j], matchType: m.MatchType})
			}
		}
	}
	return out
}

// orient decide qué lado se compra: el de menor precio+envío.
// En empate se compra el primero del par.
func orient(p pair) (buy, sell domain.ProductSearchResult) {
	if p.b.TotalCost() < p.a.TotalCost() {
		return p.b, p.a
	}
	return p.a, p.b
}

// evaluate calcula el beneficio de cada par. El envío de venta va sin cotizar,
// de modo que se usa el ShippingEstimate de la plataforma de venta. Con
// category vacía se aplica la tarifa base del vendedor.
func (s *Scanner) evaluate(pairs []pair, category string) []candidate {
	out := make([]candidate, 0, len(pairs))
	for _, p := range pairs {
		buy, sell := orient(p)
		calc, err := s.fees.CalculateProfit(domain.ProfitInput{
			SellPlatform: sell.Platform,
			SellPrice:    sell.Price,
			BuyPlatform:  buy.Platform,
			BuyPrice:     buy.Price,
			BuyShipping:  buy.Shipping,
			SellShipping: domain.UnquotedShipping(),
			Category:     category,
		})
		if err != nil {
			slog.Warn("profit calculation failed",
				"buy", buy.Platform,
				"sell", sell.Platform,
				"err", err,
			)
			continue
		}
		out = append(out, candidate{buy: buy, sell: sell, calc: calc, matchType: p.matchType})
	}
	return out
}
