package domain

import (
	"strings"
)

// MatchType indica qué criterio agrupó los productos.
type MatchType string

const (
	MatchUPC   MatchType = "upc"
	MatchASIN  MatchType = "asin"
	MatchTitle MatchType = "title"
)

// Confianza fija por tipo de match.
const (
	confidenceUPC   = 1.0
	confidenceASIN  = 0.95
	confidenceTitle = 0.7

	defaultTitleThreshold = 0.6
)

// Confidence devuelve la confianza asociada al tipo de match.
func (t MatchType) Confidence() float64 {
	switch t {
	case MatchUPC:
		return confidenceUPC
	case MatchASIN:
		return confidenceASIN
	case MatchTitle:
		return confidenceTitle
	default:
		return 0
	}
}

// MatchResult es un grupo de listings que representan el mismo producto
// en plataformas distintas. Siempre tiene 2 o más productos.
type MatchResult struct {
	Confidence float64
	MatchType  MatchType
	Products   []ProductSearchResult
}

// MatcherConfig configura el Matcher.
type MatcherConfig struct {
	// TitleThreshold es la similitud Jaccard mínima para agrupar por título (default 0.6).
	TitleThreshold float64
}

// Matcher agrupa resultados de búsqueda en tres pasadas: UPC, ASIN y título.
type Matcher struct {
	titleThreshold float64
}

// NewMatcher crea un Matcher. Un threshold ≤ 0 o > 1 usa el default.
func NewMatcher(cfg MatcherConfig) *Matcher {
	th := cfg.TitleThreshold
	if th <= 0 || th > 1 {
		th = defaultTitleThreshold
	}
	return &Matcher{titleThreshold: th}
}

// Match agrupa los resultados. Cada índice se consume como mucho una vez, en
// orden de prioridad UPC → ASIN → título. Dos listings de la misma plataforma
// nunca acaban en el mismo grupo: el primero gana y el resto sigue disponible
// para pasadas posteriores.
func (m *Matcher) Match(results []ProductSearchResult) []MatchResult {
	used := make([]bool, len(results))
	var out []MatchResult

	out = append(out, matchByKey(results, used, MatchUPC, func(r ProductSearchResult) string { return r.UPC })...)
	out = append(out, matchByKey(results, used, MatchASIN, func(r ProductSearchResult) string { return r.ASIN })...)
	out = append(out, m.matchByTitle(results, used)...)

	return out
}

// matchByKey agrupa por identificador exacto no vacío, en orden de primera aparición.
func matchByKey(results []ProductSearchResult, used []bool, mt MatchType, key func(ProductSearchResult) string) []MatchResult {
	buckets := make(map[string][]int)
	var order []string
	for i, r := range results {
		if used[i] {
			continue
		}
		k := strings.TrimSpace(key(r))
		if k == "" {
			continue
		}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], i)
	}

	var out []MatchResult
	for _, k := range order {
		members := onePerPlatform(results, buckets[k])
		if len(members) < 2 {
			continue
		}
		out = append(out, newMatchResult(results, used, members, mt))
	}
	return out
}

// matchByTitle agrupa los restantes por similitud Jaccard contra el primer miembro del grupo.
func (m *Matcher) matchByTitle(results []ProductSearchResult, used []bool) []MatchResult {
	tokens := make([]map[string]struct{}, len(results))
	for i, r := range results {
		if !used[i] {
			tokens[i] = TitleTokens(r.Title)
		}
	}

	var out []MatchResult
	for i := range results {
		if used[i] || len(tokens[i]) == 0 {
			continue
		}
		members := []int{i}
		platforms := map[Platform]bool{results[i].Platform: true}
		for j := i + 1; j < len(results); j++ {
			if used[j] || platforms[results[j].Platform] {
				continue
			}
			if jaccard(tokens[i], tokens[j]) >= m.titleThreshold {
				members = append(members, j)
				platforms[results[j].Platform] = true
			}
		}
		if len(members) < 2 {
			continue
		}
		out = append(out, newMatchResult(results, used, members, MatchTitle))
	}
	return out
}

// onePerPlatform conserva el primer índice de cada plataforma.
func onePerPlatform(results []ProductSearchResult, idxs []int) []int {
	seen := make(map[Platform]bool, len(idxs))
	out := make([]int, 0, len(idxs))
	for _, i := range idxs {
		p := results[i].Platform
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, i)
	}
	return out
}

func newMatchResult(results []ProductSearchResult, used []bool, members []int, mt MatchType) MatchResult {
	products := make([]ProductSearchResult, 0, len(members))
	for _, i := range members {
		used[i] = true
		products = append(products, results[i])
	}
	return MatchResult{
		Confidence: mt.Confidence(),
		MatchType:  mt,
		Products:   products,
	}
}

// TitleTokens normaliza un título a un conjunto de tokens:
// minúsculas, fuera todo lo que no sea [a-z0-9] o espacio, split por espacios.
func TitleTokens(title string) map[string]struct{} {
	lower := strings.ToLower(title)
	var sb strings.Builder
	sb.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			sb.WriteRune(r)
		}
	}
	fields := strings.Fields(sb.String())
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Jaccard devuelve |A∩B| / |A∪B| sobre los tokens de dos títulos.
// Si algún conjunto está vacío devuelve 0.
func Jaccard(a, b string) float64 {
	return jaccard(TitleTokens(a), TitleTokens(b))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
