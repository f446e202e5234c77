package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/ports"
)

const (
	defaultAdapterTimeout = 30 * time.Second
	// perPlatformResults es el máximo de listings que se piden a cada plataforma.
	perPlatformResults = 20
)

// Config contiene la configuración del scanner.
type Config struct {
	AdapterTimeout     time.Duration // timeout individual de cada Search
	PerPlatformResults int           // máx. listings por plataforma (default 20)
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		AdapterTimeout:     defaultAdapterTimeout,
		PerPlatformResults: perPlatformResults,
	}
}

// Scanner busca oportunidades de arbitraje entre plataformas.
// No guarda estado entre scans: llamadas concurrentes son independientes.
type Scanner struct {
	cfg     Config
	fees    *domain.FeeModel
	scorer  *domain.Scorer
	matcher *domain.Matcher
	now     func() time.Time
}

// New crea un Scanner con las tablas inyectadas. Un fees, scorer o matcher
// nil usa las tablas por defecto.
func New(cfg Config, fees *domain.FeeModel, scorer *domain.Scorer, matcher *domain.Matcher) *Scanner {
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = defaultAdapterTimeout
	}
	if cfg.PerPlatformResults <= 0 {
		cfg.PerPlatformResults = perPlatformResults
	}
	if fees == nil {
		fees = domain.NewFeeModel(domain.DefaultFeeTable())
	}
	if scorer == nil {
		scorer = domain.NewScorer(domain.ScorerConfig{})
	}
	if matcher == nil {
		matcher = domain.NewMatcher(domain.MatcherConfig{})
	}
	return &Scanner{
		cfg:     cfg,
		fees:    fees,
		scorer:  scorer,
		matcher: matcher,
		now:     time.Now,
	}
}

// Scan consulta las plataformas, empareja listings entre plataformas, calcula
// beneficio neto, filtra y devuelve las oportunidades ordenadas por score.
//
// Los fallos de adapters nunca se propagan: esa plataforma aporta 0 resultados.
// Solo devuelve error si una plataforma activa no tiene tabla de fees.
func (s *Scanner) Scan(ctx context.Context, adapters map[domain.Platform]ports.PlatformAdapter, opts ScanOptions) ([]domain.ArbitrageOpportunity, error) {
	start := s.now()
	opts = opts.normalized()

	platforms := activePlatforms(adapters, opts.Platforms)
	if len(platforms) == 0 {
		return []domain.ArbitrageOpportunity{}, nil
	}
	if err := s.checkFeeSchedules(platforms); err != nil {
		return nil, fmt.Errorf("scanner.Scan: %w", err)
	}

	results := s.fetch(ctx, adapters, platforms, opts)

	var pairs []pair
	if opts.MatchedOnly {
		pairs = matchedPairs(s.matcher.Match(results))
	} else {
		pairs = allPairs(results)
	}

	feeCategory := ""
	if opts.CategoryFees {
		feeCategory = opts.Category
	}
	cands := NewFilter(opts.MinMarginPct).Apply(s.evaluate(pairs, feeCategory))

	opps := make([]domain.ArbitrageOpportunity, 0, len(cands))
	for _, c := range cands {
		opp := domain.NewOpportunity(c.buy, c.sell, c.calc, start)
		opp.MatchType = c.matchType
		opps = append(opps, opp)
	}

	ranked := s.scorer.Rank(opps)
	if len(ranked) > opts.MaxResults {
		ranked = ranked[:opts.MaxResults]
	}

	slog.Info("scan complete",
		"query", opts.Query,
		"platforms", len(platforms),
		"listings", len(results),
		"pairs", len(pairs),
		"profitable", len(cands),
		"returned", len(ranked),
		"duration", s.now().Sub(start).Round(time.Millisecond),
	)
	return ranked, nil
}

// Clusters consulta las plataformas y devuelve los grupos de mismo producto
// encontrados por el Matcher, sin calcular beneficio.
func (s *Scanner) Clusters(ctx context.Context, adapters map[domain.Platform]ports.PlatformAdapter, opts ScanOptions) []domain.MatchResult {
	opts = opts.normalized()
	platforms := activePlatforms(adapters, opts.Platforms)
	if len(platforms) == 0 {
		return nil
	}
	return s.matcher.Match(s.fetch(ctx, adapters, platforms, opts))
}

// fetch hace el fan-out y descarta listings inutilizables.
func (s *Scanner) fetch(
	ctx context.Context,
	adapters map[domain.Platform]ports.PlatformAdapter,
	platforms []domain.Platform,
	opts ScanOptions,
) []domain.ProductSearchResult {
	q := domain.SearchQuery{
		Query:      opts.Query,
		Category:   opts.Category,
		MinPrice:   opts.MinPrice,
		MaxPrice:   opts.MaxPrice,
		MaxResults: s.cfg.PerPlatformResults,
	}

	raw := s.searchAll(ctx, adapters, platforms, q)
	results := make([]domain.ProductSearchResult, 0, len(raw))
	for _, r := range raw {
		if !usable(r, opts.RequireInStock) {
			slog.Debug("skipping listing",
				"platform", r.Platform,
				"id", r.PlatformID,
				"price", r.Price,
				"in_stock", r.InStock,
			)
			continue
		}
		results = append(results, r)
	}
	return results
}

// checkFeeSchedules verifica que todas las plataformas activas tengan fees.
func (s *Scanner) checkFeeSchedules(platforms []domain.Platform) error {
	for _, p := range platforms {
		if _, err := s.fees.GetFeeSchedule(p); err != nil {
			return err
		}
	}
	return nil
}

// activePlatforms devuelve las plataformas a consultar, ordenadas por nombre.
// Las pedidas sin adapter se registran y se ignoran.
func activePlatforms(adapters map[domain.Platform]ports.PlatformAdapter, requested []domain.Platform) []domain.Platform {
	var out []domain.Platform
	seen := make(map[domain.Platform]bool)

	add := func(p domain.Platform) {
		if seen[p] {
			return
		}
		seen[p] = true
		a, ok := adapters[p]
		if !ok || a == nil {
			slog.Warn("no adapter for platform, skipping", "platform", p)
			return
		}
		out = append(out, p)
	}

	if len(requested) == 0 {
		for p := range adapters {
			add(p)
		}
	} else {
		for _, p := range requested {
			add(p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
