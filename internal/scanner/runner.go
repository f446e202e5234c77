package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/ports"
)

// RunnerConfig controla el loop periódico.
type RunnerConfig struct {
	Interval time.Duration
	Options  ScanOptions
	DryRun   bool // un solo ciclo y salir
}

// Runner ejecuta Scan en un loop y entrega los resultados a notifier y storage.
// Decide cuándo escanear; el Scanner no sabe nada de esto.
type Runner struct {
	cfg      RunnerConfig
	scanner  *Scanner
	adapters map[domain.Platform]ports.PlatformAdapter
	storage  ports.Storage
	notifier ports.Notifier
}

// NewRunner crea un Runner. storage puede ser nil (dry-run).
func NewRunner(
	cfg RunnerConfig,
	s *Scanner,
	adapters map[domain.Platform]ports.PlatformAdapter,
	storage ports.Storage,
	notifier ports.Notifier,
) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Runner{
		cfg:      cfg,
		scanner:  s,
		adapters: adapters,
		storage:  storage,
		notifier: notifier,
	}
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Si cfg.DryRun está activo, solo ejecuta un ciclo.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("runner starting",
		"interval", r.cfg.Interval,
		"dry_run", r.cfg.DryRun,
		"platforms", len(r.adapters),
	)

	if err := r.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if r.cfg.DryRun {
			return err
		}
	}

	if r.cfg.DryRun {
		return nil
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("runner stopped")
			return nil
		case <-ticker.C:
			if err := r.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un scan y devuelve las oportunidades.
func (r *Runner) RunOnce(ctx context.Context) ([]domain.ArbitrageOpportunity, error) {
	return r.scanner.Scan(ctx, r.adapters, r.cfg.Options)
}

// runCycle ejecuta un ciclo completo y notifica/persiste los resultados.
func (r *Runner) runCycle(ctx context.Context) error {
	start := time.Now()

	opps, err := r.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("runner.runCycle: %w", err)
	}

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, opps); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	if r.storage != nil {
		if err := r.storage.SaveScan(ctx, opps); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	best := 0.0
	if len(opps) > 0 {
		best = opps[0].Score
	}
	slog.Info("scan cycle complete",
		"opportunities", len(opps),
		"best_score", best,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
