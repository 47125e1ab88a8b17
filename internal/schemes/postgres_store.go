package schemes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/pkg/database"
)

// PostgresStore keeps one row per scheme plus an append-only timeline
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a store on db. Run db.Migrate first.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load reads every scheme with its timeline
func (s *PostgresStore) Load(ctx context.Context) (*contracts.SchemeDatabase, error) {
	out := contracts.NewSchemeDatabase()

	err := s.db.Pool.QueryRow(ctx, `SELECT last_updated FROM scheme_meta WHERE id = 1`).Scan(&out.LastUpdated)
	if err != nil && !database.IsNotFound(err) {
		return nil, fmt.Errorf("query scheme meta: %w", err)
	}

	rows, err := s.db.Pool.Query(ctx, `SELECT scheme_id, record FROM schemes ORDER BY scheme_id`)
	if err != nil {
		return nil, fmt.Errorf("query schemes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan scheme: %w", err)
		}
		rec := &contracts.SchemeRecord{}
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("decode scheme %s: %w", id, err)
		}
		rec.Timeline = []contracts.TimelineEvent{}
		out.Schemes[id] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemes: %w", err)
	}

	if err := s.loadTimelines(ctx, out); err != nil {
		return nil, err
	}

	out.Recount()
	return out, nil
}

func (s *PostgresStore) loadTimelines(ctx context.Context, out *contracts.SchemeDatabase) error {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT scheme_id, event_date, event, category, significance
		FROM scheme_timeline
		ORDER BY scheme_id, seq
	`)
	if err != nil {
		return fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var date time.Time
		var ev contracts.TimelineEvent
		if err := rows.Scan(&id, &date, &ev.Event, &ev.Category, &ev.Significance); err != nil {
			return fmt.Errorf("scan timeline: %w", err)
		}
		ev.Date = contracts.FormatDate(date)
		if rec, ok := out.Schemes[id]; ok {
			rec.Timeline = append(rec.Timeline, ev)
		}
	}
	return rows.Err()
}

// Save upserts every record and appends new timeline events in one transaction
func (s *PostgresStore) Save(ctx context.Context, db *contracts.SchemeDatabase, runID string) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, id := range db.SortedIDs() {
			if err := upsertScheme(ctx, tx, db.Schemes[id]); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO scheme_meta (id, last_updated, last_run_id)
			VALUES (1, $1, $2)
			ON CONFLICT (id) DO UPDATE SET
				last_updated = EXCLUDED.last_updated,
				last_run_id = EXCLUDED.last_run_id
		`, db.LastUpdated, runID)
		if err != nil {
			return fmt.Errorf("upsert scheme meta: %w", err)
		}
		return nil
	})
}

func upsertScheme(ctx context.Context, tx pgx.Tx, rec *contracts.SchemeRecord) error {
	// The timeline lives in its own table
	body := *rec
	body.Timeline = nil
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode scheme %s: %w", rec.SchemeID, err)
	}

	var coolingSince *string
	if rec.CoolingSince != "" {
		coolingSince = &rec.CoolingSince
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO schemes (
			scheme_id, symbol, name, scheme_name, status,
			first_detected, last_seen,
			peak_risk_score, current_risk_score,
			price_at_detection, peak_price, current_price, price_change_from_peak,
			decline_streak, cooling_since, record, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6::date, $7::date, $8, $9, $10, $11, $12, $13, $14, $15::date, $16, NOW())
		ON CONFLICT (scheme_id) DO UPDATE SET
			name = EXCLUDED.name,
			scheme_name = EXCLUDED.scheme_name,
			status = EXCLUDED.status,
			last_seen = EXCLUDED.last_seen,
			peak_risk_score = EXCLUDED.peak_risk_score,
			current_risk_score = EXCLUDED.current_risk_score,
			peak_price = EXCLUDED.peak_price,
			current_price = EXCLUDED.current_price,
			price_change_from_peak = EXCLUDED.price_change_from_peak,
			decline_streak = EXCLUDED.decline_streak,
			cooling_since = EXCLUDED.cooling_since,
			record = EXCLUDED.record,
			updated_at = NOW()
	`,
		rec.SchemeID, rec.Symbol, rec.Name, rec.SchemeName, string(rec.Status),
		rec.FirstDetected, rec.LastSeen,
		rec.PeakRiskScore, rec.CurrentRiskScore,
		rec.PriceAtDetection, rec.PeakPrice, rec.CurrentPrice, rec.PriceChangeFromPeak,
		rec.DeclineStreak, coolingSince, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert scheme %s: %w", rec.SchemeID, err)
	}

	for seq, ev := range rec.Timeline {
		_, err := tx.Exec(ctx, `
			INSERT INTO scheme_timeline (scheme_id, seq, event_date, event, category, significance)
			VALUES ($1, $2, $3::date, $4, $5, $6)
			ON CONFLICT (scheme_id, seq) DO NOTHING
		`, rec.SchemeID, seq, ev.Date, ev.Event, ev.Category, ev.Significance)
		if err != nil {
			return fmt.Errorf("insert timeline %s/%d: %w", rec.SchemeID, seq, err)
		}
	}
	return nil
}
