package storage

// sqlite.go — histórico de scans.
//
// Estrategia:
//   - `scans`: una fila por ciclo con resumen (total, mejor score, mejor margen).
//   - `opportunities`: las oportunidades devueltas por cada scan, con FK al scan.
//   - Prune automático al arrancar: scans y oportunidades > 30d.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
    id          TEXT PRIMARY KEY,
    scanned_at  DATETIME NOT NULL,
    total       INTEGER  NOT NULL DEFAULT 0,
    best_score  REAL     NOT NULL DEFAULT 0,
    best_margin REAL     NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS opportunities (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    scan_id          TEXT     NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
    product_id       TEXT     NOT NULL,
    product_title    TEXT,
    buy_platform     TEXT     NOT NULL,
    buy_price        REAL     NOT NULL,
    buy_shipping     REAL     NOT NULL DEFAULT 0,
    buy_url          TEXT,
    sell_platform    TEXT     NOT NULL,
    sell_price       REAL     NOT NULL,
    sell_shipping    REAL     NOT NULL DEFAULT 0,
    sell_url         TEXT,
    estimated_fees   REAL     NOT NULL DEFAULT 0,
    estimated_profit REAL     NOT NULL DEFAULT 0,
    margin_pct       REAL     NOT NULL DEFAULT 0,
    roi              REAL     NOT NULL DEFAULT 0,
    score            REAL     NOT NULL DEFAULT 0,
    match_type       TEXT,
    scanned_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_at  ON scans(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_opp_at    ON opportunities(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_opp_route ON opportunities(buy_platform, sell_platform);
`

const retention = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db    *sql.DB
	newID func() string
	now   func() time.Time
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{
		db:    db,
		newID: func() string { return uuid.New().String() },
		now:   func() time.Time { return time.Now().UTC() },
	}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveScan guarda el resumen del scan y sus oportunidades en una transacción.
// Un scan sin oportunidades no se persiste.
func (s *SQLiteStorage) SaveScan(ctx context.Context, opps []domain.ArbitrageOpportunity) error {
	if len(opps) == 0 {
		return nil
	}

	scanID := s.newID()
	scannedAt := opps[0].ScannedAt.UTC()
	if scannedAt.IsZero() {
		scannedAt = s.now()
	}
	bestScore, bestMargin := scanSummary(opps)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scans (id, scanned_at, total, best_score, best_margin) VALUES (?, ?, ?, ?, ?)`,
		scanID, scannedAt, len(opps), bestScore, bestMargin,
	); err != nil {
		return fmt.Errorf("storage.SaveScan: insert scan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO opportunities
			(scan_id, product_id, product_title,
			 buy_platform, buy_price, buy_shipping, buy_url,
			 sell_platform, sell_price, sell_shipping, sell_url,
			 estimated_fees, estimated_profit, margin_pct, roi, score,
			 match_type, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveScan: prepare: %w", err)
	}
	defer stmt.Close()

	for _, o := range opps {
		at := o.ScannedAt.UTC()
		if o.ScannedAt.IsZero() {
			at = scannedAt
		}
		if _, err := stmt.ExecContext(ctx,
			scanID,
			o.ProductID,
			o.ProductTitle,
			o.BuyPlatform.String(),
			o.BuyPrice,
			o.BuyShipping,
			o.BuyURL,
			o.SellPlatform.String(),
			o.SellPrice,
			o.SellShipping,
			o.SellURL,
			o.EstimatedFees,
			o.EstimatedProfit,
			o.MarginPct,
			o.ROI,
			o.Score,
			string(o.MatchType),
			at,
		); err != nil {
			return fmt.Errorf("storage.SaveScan: insert %s %s: %w", o.Route(), o.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveScan: commit: %w", err)
	}
	return nil
}

// GetHistory devuelve las oportunidades guardadas en el rango [from, to],
// ordenadas por score desc.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.ArbitrageOpportunity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_title,
		       buy_platform, buy_price, buy_shipping, buy_url,
		       sell_platform, sell_price, sell_shipping, sell_url,
		       estimated_fees, estimated_profit, margin_pct, roi, score,
		       match_type, scanned_at
		FROM opportunities
		WHERE scanned_at BETWEEN ? AND ?
		ORDER BY score DESC, id ASC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var opps []domain.ArbitrageOpportunity
	for rows.Next() {
		var o domain.ArbitrageOpportunity
		var buy, sell, scannedAt string
		var title, buyURL, sellURL, matchType sql.NullString

		if err := rows.Scan(
			&o.ProductID, &title,
			&buy, &o.BuyPrice, &o.BuyShipping, &buyURL,
			&sell, &o.SellPrice, &o.SellShipping, &sellURL,
			&o.EstimatedFees, &o.EstimatedProfit, &o.MarginPct, &o.ROI, &o.Score,
			&matchType, &scannedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}

		o.ProductTitle = title.String
		o.BuyPlatform = domain.Platform(buy)
		o.BuyURL = buyURL.String
		o.SellPlatform = domain.Platform(sell)
		o.SellURL = sellURL.String
		o.MatchType = domain.MatchType(matchType.String)
		o.ScannedAt = parseTime(scannedAt)
		opps = append(opps, o)
	}

	return opps, rows.Err()
}

// ScanCount devuelve cuántos scans hay guardados.
func (s *SQLiteStorage) ScanCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage.ScanCount: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := s.now().Add(-retention)
	for _, table := range []string{"opportunities", "scans"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE scanned_at < ?`, cutoff)
		if err != nil {
			slog.Warn("prune failed", "table", table, "err", err)
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			slog.Debug("pruned old rows", "table", table, "rows", n)
		}
	}
}

// scanSummary devuelve el mejor score y el mejor margen del scan.
func scanSummary(opps []domain.ArbitrageOpportunity) (bestScore, bestMargin float64) {
	for _, o := range opps {
		if o.Score > bestScore {
			bestScore = o.Score
		}
		if o.MarginPct > bestMargin {
			bestMargin = o.MarginPct
		}
	}
	return
}

// parseTime acepta los formatos en que el driver puede devolver un DATETIME.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
