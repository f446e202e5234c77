package scanner

// search.go — fan-out de búsquedas a todas las plataformas.
//
// Cada plataforma corre en su goroutine con su propio timeout. Un fallo, un
// timeout o un panic del adapter cuentan como "0 resultados" para esa
// plataforma; nunca abortan el batch.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/ports"
	"golang.org/x/sync/errgroup"
)

type searchOutcome struct {
	results []domain.ProductSearchResult
	err     error
}

// searchAll consulta las plataformas concurrentemente y aplana los resultados
// en el orden de platforms, para que la salida sea determinista.
func (s *Scanner) searchAll(
	ctx context.Context,
	adapters map[domain.Platform]ports.PlatformAdapter,
	platforms []domain.Platform,
	q domain.SearchQuery,
) []domain.ProductSearchResult {
	perPlatform := make([][]domain.ProductSearchResult, len(platforms))

	// Un fallo de plataforma no es error del grupo; solo la cancelación del
	// scan lo es, y entonces las búsquedas pendientes se cortan.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(platforms))
	for i, p := range platforms {
		g.Go(func() error {
			perPlatform[i] = s.searchOne(gctx, p, adapters[p], q)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("scan cancelled during platform search", "err", err)
	}

	total := 0
	for _, rs := range perPlatform {
		total += len(rs)
	}
	flat := make([]domain.ProductSearchResult, 0, total)
	failed := 0
	for _, rs := range perPlatform {
		if rs == nil {
			failed++
		}
		flat = append(flat, rs...)
	}

	slog.Debug("platform search complete",
		"platforms", len(platforms),
		"failed", failed,
		"results", len(flat),
	)
	return flat
}

// searchOne ejecuta un Search acotado por el timeout del scanner.
// Devuelve nil si la plataforma falla.
func (s *Scanner) searchOne(
	ctx context.Context,
	p domain.Platform,
	adapter ports.PlatformAdapter,
	q domain.SearchQuery,
) []domain.ProductSearchResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()

	ch := make(chan searchOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- searchOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		results, err := adapter.Search(ctx, q)
		ch <- searchOutcome{results: results, err: err}
	}()

	var out searchOutcome
	select {
	case out = <-ch:
	case <-ctx.Done():
		out = searchOutcome{err: ctx.Err()}
	}

	if out.err != nil {
		err := &domain.AdapterError{Platform: p, Op: "search", Err: out.err}
		attrs := []any{"platform", p, "err", err, "duration", time.Since(start).Round(time.Millisecond)}
		if errors.Is(out.err, context.DeadlineExceeded) {
			slog.Warn("platform search timed out", attrs...)
		} else {
			slog.Warn("platform search failed", attrs...)
		}
		return nil
	}

	results := out.results
	if q.MaxResults > 0 && len(results) > q.MaxResults {
		results = results[:q.MaxResults]
	}

	stamped := make([]domain.ProductSearchResult, len(results))
	for i, r := range results {
		if r.Platform == "" {
			r.Platform = p
		}
		stamped[i] = r
	}
	return stamped
}
