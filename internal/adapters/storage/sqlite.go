package storage

// sqlite.go: histórico de deals sin ruido.
//
// Estrategia:
//   - `cycles`: resumen ligero por ciclo (uuid, anuncios, deals, hot, mejor score).
//   - `deals`: UNA fila por deal (UPSERT por deal_id) con el pico de score.
//   - Cache en memoria: evita reescribir la fila si el deal no cambió (> 5% en
//     score o cambio de precio pedido); para esos solo se refresca last_seen.
//   - Prune automático al arrancar: cycles > 30d, deals no vistos en 14d.
//
// Los timestamps se guardan como unix millis y el dinero como TEXT decimal.

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
    id         TEXT PRIMARY KEY,
    scanned_at INTEGER NOT NULL,
    listings   INTEGER NOT NULL DEFAULT 0,
    deals      INTEGER NOT NULL DEFAULT 0,
    hot        INTEGER NOT NULL DEFAULT 0,
    best_score REAL    NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS deals (
    deal_id           TEXT PRIMARY KEY,
    listing_id        TEXT,
    platform          TEXT,
    title             TEXT,
    url               TEXT,
    asking_price      TEXT    NOT NULL DEFAULT '0',
    fmv               TEXT    NOT NULL DEFAULT '0',
    net_profit        TEXT    NOT NULL DEFAULT '0',
    recommended_offer TEXT    NOT NULL DEFAULT '0',
    walk_away         TEXT    NOT NULL DEFAULT '0',
    deal_score        REAL    NOT NULL DEFAULT 0,
    confidence        REAL    NOT NULL DEFAULT 0,
    first_seen        INTEGER NOT NULL,
    last_seen         INTEGER NOT NULL,
    last_cycle        TEXT,
    peak_score        REAL    NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cycles_at  ON cycles(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_deals_last ON deals(last_seen DESC);
CREATE INDEX IF NOT EXISTS idx_deals_scr  ON deals(deal_score DESC);
`

const (
	retentionCycles = 30 * 24 * time.Hour
	retentionDeals  = 14 * 24 * time.Hour
	scoreChangePct  = 0.05
)

// cachedState es el snapshot del último estado guardado de un deal.
type cachedState struct {
	score  float64
	asking string
}

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db    *sql.DB
	cache map[string]cachedState // dealID → estado guardado
	mu    sync.Mutex
	now   func() time.Time
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema, limpia datos antiguos y precarga la cache.
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
		cache: make(map[string]cachedState),
		now:   time.Now,
	}
	s.pruneOld(context.Background())
	s.warmCache(context.Background())
	return s, nil
}

// SaveCycle persiste el resumen del ciclo y hace upsert de los deals que
// cambiaron respecto al ciclo anterior (usando la caché en memoria).
func (s *SQLiteStorage) SaveCycle(ctx context.Context, summary domain.CycleSummary, deals []domain.Deal) error {
	now := s.now().UTC()
	if summary.ScannedAt.IsZero() {
		summary.ScannedAt = now
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (id, scanned_at, listings, deals, hot, best_score) VALUES (?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.ScannedAt.UTC().UnixMilli(), summary.Listings, summary.Deals, summary.Hot, summary.BestScore,
	); err != nil {
		return fmt.Errorf("storage.SaveCycle: insert cycle: %w", err)
	}

	toWrite, unchanged := s.splitChanged(deals)
	if len(toWrite) == 0 && len(unchanged) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveCycle: begin tx: %w", err)
	}
	defer tx.Rollback()

	ts := now.UnixMilli()
	if len(unchanged) > 0 {
		if err := touchDeals(ctx, tx, unchanged, ts, summary.ID); err != nil {
			return fmt.Errorf("storage.SaveCycle: %w", err)
		}
	}

	if len(toWrite) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO deals
				(deal_id, listing_id, platform, title, url, asking_price, fmv, net_profit,
				 recommended_offer, walk_away, deal_score, confidence,
				 first_seen, last_seen, last_cycle, peak_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(deal_id) DO UPDATE SET
				title             = excluded.title,
				url               = excluded.url,
				asking_price      = excluded.asking_price,
				fmv               = excluded.fmv,
				net_profit        = excluded.net_profit,
				recommended_offer = excluded.recommended_offer,
				walk_away         = excluded.walk_away,
				deal_score        = excluded.deal_score,
				confidence        = excluded.confidence,
				last_seen         = excluded.last_seen,
				last_cycle        = excluded.last_cycle,
				peak_score        = MAX(peak_score, excluded.deal_score)
		`)
		if err != nil {
			return fmt.Errorf("storage.SaveCycle: prepare: %w", err)
		}
		defer stmt.Close()

		for _, d := range toWrite {
			if _, err := stmt.ExecContext(ctx,
				d.ID,
				d.Listing.ID,
				d.Listing.Platform,
				d.Listing.Title,
				d.Listing.URL,
				d.Listing.AskingPrice().StringFixed(2),
				d.FMV.Total.StringFixed(2),
				d.ROI.NetProfit.StringFixed(2),
				d.ROI.RecommendedOffer.StringFixed(2),
				d.ROI.WalkAwayPrice.StringFixed(2),
				d.ROI.DealScore,
				d.FMV.Confidence,
				ts, // first_seen: ignorado en ON CONFLICT
				ts,
				summary.ID,
				d.ROI.DealScore,
			); err != nil {
				return fmt.Errorf("storage.SaveCycle: upsert %s: %w", d.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveCycle: commit: %w", err)
	}

	// La caché solo refleja lo que ya está en disco.
	s.mu.Lock()
	for _, d := range toWrite {
		s.cache[d.ID] = stateOf(d)
	}
	s.mu.Unlock()
	return nil
}

// GetHistory devuelve los deals cuyo last_seen está en el rango dado,
// ordenados por deal_score desc.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.DealRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT deal_id, listing_id, platform, title, url,
		       asking_price, fmv, net_profit, recommended_offer, walk_away,
		       deal_score, peak_score, confidence, first_seen, last_seen
		FROM deals
		WHERE last_seen BETWEEN ? AND ?
		ORDER BY deal_score DESC
	`, from.UTC().UnixMilli(), to.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var records []domain.DealRecord
	for rows.Next() {
		var (
			r                                    domain.DealRecord
			asking, fmv, profit, offer, walkAway string
			firstSeen, lastSeen                  int64
		)
		if err := rows.Scan(
			&r.DealID, &r.ListingID, &r.Platform, &r.Title, &r.URL,
			&asking, &fmv, &profit, &offer, &walkAway,
			&r.DealScore, &r.PeakScore, &r.Confidence, &firstSeen, &lastSeen,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}
		r.AskingPrice = parseMoney(asking)
		r.FMV = parseMoney(fmv)
		r.NetProfit = parseMoney(profit)
		r.RecommendedOffer = parseMoney(offer)
		r.WalkAwayPrice = parseMoney(walkAway)
		r.FirstSeen = time.UnixMilli(firstSeen).UTC()
		r.LastSeen = time.UnixMilli(lastSeen).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// CycleCount devuelve el número de ciclos registrados.
func (s *SQLiteStorage) CycleCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cycles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage.CycleCount: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// splitChanged separa los deals que cambiaron respecto a la caché de los que
// siguen igual. Los segundos solo necesitan refrescar last_seen.
func (s *SQLiteStorage) splitChanged(deals []domain.Deal) (changed []domain.Deal, unchanged []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range deals {
		cur := stateOf(d)
		if prev, ok := s.cache[d.ID]; ok {
			if prev.asking == cur.asking && relChange(prev.score, cur.score) < scoreChangePct {
				unchanged = append(unchanged, d.ID)
				continue
			}
		}
		changed = append(changed, d)
	}
	return changed, unchanged
}

// touchDeals actualiza last_seen y last_cycle de deals sin cambios, en lotes.
func touchDeals(ctx context.Context, tx *sql.Tx, ids []string, ts int64, cycleID string) error {
	const batch = 500
	for start := 0; start < len(ids); start += batch {
		end := min(start+batch, len(ids))
		chunk := ids[start:end]

		args := make([]any, 0, len(chunk)+2)
		args = append(args, ts, cycleID)
		for _, id := range chunk {
			args = append(args, id)
		}
		q := `UPDATE deals SET last_seen = ?, last_cycle = ? WHERE deal_id IN (?` +
			strings.Repeat(", ?", len(chunk)-1) + `)`
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("touch unchanged deals: %w", err)
		}
	}
	return nil
}

func stateOf(d domain.Deal) cachedState {
	return cachedState{score: d.ROI.DealScore, asking: d.Listing.AskingPrice().StringFixed(2)}
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	now := s.now().UTC()
	s.db.ExecContext(ctx, `DELETE FROM cycles WHERE scanned_at < ?`, now.Add(-retentionCycles).UnixMilli())
	s.db.ExecContext(ctx, `DELETE FROM deals WHERE last_seen < ?`, now.Add(-retentionDeals).UnixMilli())
}

// warmCache precarga la caché desde la DB al arrancar, evitando escrituras
// redundantes en el primer ciclo tras un reinicio.
func (s *SQLiteStorage) warmCache(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `SELECT deal_id, deal_score, asking_price FROM deals`)
	if err != nil {
		return
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var (
			id, asking string
			score      float64
		)
		if rows.Scan(&id, &score, &asking) == nil {
			s.cache[id] = cachedState{score: score, asking: parseMoney(asking).StringFixed(2)}
		}
	}
}

func parseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// relChange devuelve el cambio relativo entre dos valores (0.0 – ∞).
func relChange(old, new float64) float64 {
	if old == 0 {
		return 1.0 // forzar escritura si antes era 0
	}
	return math.Abs(new-old) / math.Abs(old)
}
