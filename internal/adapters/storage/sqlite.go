package storage

// sqlite.go — persistencia durable del trade engine.
//
// Dos tablas: `pending_bids` (un registro por puja en vuelo, update
// atómico por fila) y `auction_outcomes` (log append-only con índice
// UNIQUE para idempotencia at-least-once). Un registro corrupto se pone
// en cuarentena y se excluye — el resto del conjunto sigue operando.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/bidbot/internal/domain"
	"github.com/alejandrodnm/bidbot/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
-- Una fila por puja en vuelo; el plan de reemplazo viaja inline como JSON
CREATE TABLE IF NOT EXISTS pending_bids (
    asset_id       TEXT PRIMARY KEY,
    handle         TEXT    NOT NULL,
    asset_name     TEXT,
    amount         INTEGER NOT NULL,
    status         TEXT    NOT NULL,
    placed_at      DATETIME NOT NULL,
    resolved_at    DATETIME,
    asking_price   INTEGER NOT NULL DEFAULT 0,
    assessed_value INTEGER NOT NULL DEFAULT 0,
    quality_score  REAL    NOT NULL DEFAULT 0,
    plan           TEXT
);

-- Log append-only de resultados de subastas
CREATE TABLE IF NOT EXISTS auction_outcomes (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    asset_id       TEXT    NOT NULL,
    asset_name     TEXT,
    our_bid        INTEGER NOT NULL,
    asking_price   INTEGER NOT NULL,
    overbid_pct    REAL    NOT NULL,
    won            INTEGER NOT NULL,
    winning_bid    INTEGER,
    winner_id      TEXT,
    assessed_value INTEGER NOT NULL DEFAULT 0,
    quality_score  REAL    NOT NULL DEFAULT 0,
    resolved_at    DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_outcome_dedup ON auction_outcomes(asset_id, resolved_at);
CREATE INDEX IF NOT EXISTS idx_outcome_at ON auction_outcomes(resolved_at DESC);
CREATE INDEX IF NOT EXISTS idx_pending_status ON pending_bids(status);
`

// retentionOutcomes: los outcomes más viejos dejan de aportar señal.
const retentionOutcomes = 180 * 24 * time.Hour

// Store implementa ports.OutcomeStore y ports.BidStore usando SQLite
// (pure Go, sin CGo).
type Store struct {
	db *sql.DB
}

// NewStore abre (o crea) la base de datos en la ruta dada, aplica el
// schema y limpia datos antiguos.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewStore: apply schema: %w", err)
	}

	s := &Store{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// AppendOutcome añade un resultado al log. Idempotente: un duplicado
// exacto (mismo asset_id + resolved_at) se ignora en silencio.
func (s *Store) AppendOutcome(ctx context.Context, o domain.AuctionOutcome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO auction_outcomes
			(asset_id, asset_name, our_bid, asking_price, overbid_pct, won,
			 winning_bid, winner_id, assessed_value, quality_score, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.AssetID, o.AssetName, o.OurBid, o.AskingPrice, o.OverbidPct,
		boolToInt(o.Won), o.WinningBid, o.WinnerID, o.AssessedValue, o.QualityScore,
		o.ResolvedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.AppendOutcome: insert %s: %w", o.AssetID, err)
	}
	return nil
}

// RecentOutcomes devuelve los resultados posteriores a since, los más
// recientes primero.
func (s *Store) RecentOutcomes(ctx context.Context, since time.Time, limit int) ([]domain.AuctionOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT asset_id, asset_name, our_bid, asking_price, overbid_pct, won,
		       winning_bid, winner_id, assessed_value, quality_score, resolved_at
		FROM auction_outcomes
		WHERE resolved_at > ?
		ORDER BY resolved_at DESC
		LIMIT ?`, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentOutcomes: query: %w", err)
	}
	defer rows.Close()

	var outcomes []domain.AuctionOutcome
	for rows.Next() {
		var o domain.AuctionOutcome
		var won int
		var winningBid sql.NullInt64
		var winnerID sql.NullString
		var resolvedAt time.Time

		if err := rows.Scan(
			&o.AssetID, &o.AssetName, &o.OurBid, &o.AskingPrice, &o.OverbidPct,
			&won, &winningBid, &winnerID, &o.AssessedValue, &o.QualityScore, &resolvedAt,
		); err != nil {
			// Fila corrupta: se excluye, el resto del histórico sigue vivo.
			slog.Warn("storage: quarantined corrupt outcome row", "err", err)
			continue
		}

		o.Won = won == 1
		if winningBid.Valid {
			v := winningBid.Int64
			o.WinningBid = &v
		}
		if winnerID.Valid {
			v := winnerID.String
			o.WinnerID = &v
		}
		o.ResolvedAt = resolvedAt
		outcomes = append(outcomes, o)
	}

	return outcomes, rows.Err()
}

// SaveBid persiste una puja nueva con su plan. La inserción es atómica:
// o el registro completo queda visible o nada.
func (s *Store) SaveBid(ctx context.Context, record ports.PendingBid) error {
	planJSON, err := marshalPlan(record.Plan)
	if err != nil {
		return fmt.Errorf("storage.SaveBid: encode plan %s: %w", record.Bid.AssetID, err)
	}

	b := record.Bid
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pending_bids
			(asset_id, handle, asset_name, amount, status, placed_at,
			 asking_price, assessed_value, quality_score, plan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.AssetID, b.Handle, b.AssetName, b.Amount, string(b.Status),
		b.PlacedAt.UTC(), b.AskingPrice, b.AssessedValue, b.QualityScore, planJSON,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveBid: insert %s: %w", b.AssetID, err)
	}
	return nil
}

// UpdateBid persiste un cambio de estado. Update atómico por fila.
func (s *Store) UpdateBid(ctx context.Context, bid domain.Bid) error {
	var resolvedAt *time.Time
	if !bid.ResolvedAt.IsZero() {
		t := bid.ResolvedAt.UTC()
		resolvedAt = &t
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_bids SET status = ?, resolved_at = ? WHERE asset_id = ?`,
		string(bid.Status), resolvedAt, bid.AssetID,
	)
	if err != nil {
		return fmt.Errorf("storage.UpdateBid: update %s: %w", bid.AssetID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.UpdateBid: no record for asset %s", bid.AssetID)
	}
	return nil
}

// DeleteBid elimina el registro de una puja.
func (s *Store) DeleteBid(ctx context.Context, assetID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_bids WHERE asset_id = ?`, assetID); err != nil {
		return fmt.Errorf("storage.DeleteBid: delete %s: %w", assetID, err)
	}
	return nil
}

// PendingBids devuelve todas las pujas sin resolver. Una fila ilegible se
// pone en cuarentena y se salta — nunca tumba la carga completa.
func (s *Store) PendingBids(ctx context.Context) ([]ports.PendingBid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT asset_id, handle, asset_name, amount, status, placed_at,
		       asking_price, assessed_value, quality_score, plan
		FROM pending_bids
		WHERE status = ?`, string(domain.BidPending))
	if err != nil {
		return nil, fmt.Errorf("storage.PendingBids: query: %w", err)
	}
	defer rows.Close()

	var records []ports.PendingBid
	for rows.Next() {
		var b domain.Bid
		var status string
		var placedAt time.Time
		var planJSON sql.NullString

		if err := rows.Scan(
			&b.AssetID, &b.Handle, &b.AssetName, &b.Amount, &status, &placedAt,
			&b.AskingPrice, &b.AssessedValue, &b.QualityScore, &planJSON,
		); err != nil {
			slog.Warn("storage: quarantined corrupt bid row", "err", err)
			continue
		}
		b.Status = domain.BidStatus(status)
		b.PlacedAt = placedAt

		plan, err := unmarshalPlan(planJSON)
		if err != nil {
			slog.Warn("storage: quarantined bid with corrupt plan", "asset", b.AssetID, "err", err)
			continue
		}
		if plan != nil {
			b.Replacement = plan.ID
		}

		records = append(records, ports.PendingBid{Bid: b, Plan: plan})
	}

	return records, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina outcomes antiguos para mantener la DB ligera.
func (s *Store) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionOutcomes)
	s.db.ExecContext(ctx, `DELETE FROM auction_outcomes WHERE resolved_at < ?`, cutoff)
}

func marshalPlan(plan *domain.ReplacementPlan) (*string, error) {
	if plan == nil {
		return nil, nil
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}
	str := string(data)
	return &str, nil
}

func unmarshalPlan(raw sql.NullString) (*domain.ReplacementPlan, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var plan domain.ReplacementPlan
	if err := json.Unmarshal([]byte(raw.String), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
