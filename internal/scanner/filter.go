package scanner

import (
	"math"

	"github.com/alejandrodnm/arbscout/internal/domain"
)

// Valores por defecto de ScanOptions.
const (
	defaultQuery        = "trending"
	defaultMinMarginPct = 15.0
	defaultMaxResults   = 20
)

// ScanOptions son los parámetros de un scan.
type ScanOptions struct {
	// Query es el término de búsqueda enviado a cada plataforma.
	Query string
	// Category se envía a los adapters como filtro de búsqueda.
	Category string
	// CategoryFees aplica la tarifa por categoría de Category en vez de la
	// tarifa base del vendedor. Desactivado por defecto.
	CategoryFees bool
	// MinMarginPct descarta pares con margen menor. Negativo se trata como 0.
	MinMarginPct float64
	// MaxResults limita el número de oportunidades devueltas.
	MaxResults int
	// Platforms restringe el scan; vacío = todas las plataformas con adapter.
	Platforms []domain.Platform
	// MinPrice / MaxPrice se reenvían a los adapters (0 = sin límite).
	MinPrice float64
	MaxPrice float64
	// RequireInStock descarta listings sin stock antes de emparejar.
	RequireInStock bool
	// MatchedOnly empareja solo listings que el Matcher agrupó como mismo producto.
	MatchedOnly bool
}

// DefaultScanOptions devuelve query genérica, margen mínimo 15% y 20 resultados.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Query:        defaultQuery,
		MinMarginPct: defaultMinMarginPct,
		MaxResults:   defaultMaxResults,
	}
}

// normalized rellena query/maxResults vacíos y acota el margen mínimo a 0.
// MinMarginPct = 0 es un valor válido y se respeta.
func (o ScanOptions) normalized() ScanOptions {
	if o.Query == "" {
		o.Query = defaultQuery
	}
	if o.MaxResults <= 0 {
		o.MaxResults = defaultMaxResults
	}
	if o.MinMarginPct < 0 || math.IsNaN(o.MinMarginPct) {
		o.MinMarginPct = 0
	}
	return o
}

// candidate es un par evaluado antes del filtro.
type candidate struct {
	buy, sell domain.ProductSearchResult
	calc      domain.ProfitCalculation
	matchType domain.MatchType
}

// Filter descarta pares sin beneficio neto o con margen insuficiente.
type Filter struct {
	minMarginPct float64
}

// NewFilter crea un Filter con el margen mínimo dado (negativo = 0).
func NewFilter(minMarginPct float64) *Filter {
	if minMarginPct < 0 {
		minMarginPct = 0
	}
	return &Filter{minMarginPct: minMarginPct}
}

// Apply devuelve los candidatos que pasan el filtro, en el mismo orden.
func (f *Filter) Apply(cands []candidate) []candidate {
	result := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if f.passes(c.calc) {
			result = append(result, c)
		}
	}
	return result
}

// passes devuelve true si NetProfit > 0 y MarginPct ≥ mínimo.
func (f *Filter) passes(calc domain.ProfitCalculation) bool {
	return calc.NetProfit > 0 && calc.MarginPct >= f.minMarginPct
}

// usable descarta listings con importes inválidos y, si se pide, sin stock.
func usable(r domain.ProductSearchResult, requireInStock bool) bool {
	if !isFiniteNonNegative(r.Price) || !isFiniteNonNegative(r.Shipping) {
		return false
	}
	if requireInStock && !r.InStock {
		return false
	}
	return true
}

func isFiniteNonNegative(x float64) bool {
	return x >= 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}
