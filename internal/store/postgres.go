package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/yuutai/internal/contracts"
)

// PostgresStore keeps snapshots as JSONB rows in the yuutai schema
// ⭐ SSOT: 스냅샷 DB 저장소는 여기서만
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres snapshot store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// SaveInventory appends a payload row for month
func (s *PostgresStore) SaveInventory(ctx context.Context, month int, payload contracts.RawPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}

	query := `INSERT INTO yuutai.inventory_snapshots (month, payload) VALUES ($1, $2)`
	if _, err := s.pool.Exec(ctx, query, month, data); err != nil {
		return fmt.Errorf("insert inventory snapshot: %w", err)
	}
	return nil
}

// LatestInventory returns the newest payload row for month
func (s *PostgresStore) LatestInventory(ctx context.Context, month int) (contracts.RawPayload, time.Time, error) {
	query := `
		SELECT payload, fetched_at
		FROM yuutai.inventory_snapshots
		WHERE month = $1
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`

	var data []byte
	var fetchedAt time.Time
	err := s.pool.QueryRow(ctx, query, month).Scan(&data, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("inventory month %d: %w", month, ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query inventory snapshot: %w", err)
	}

	var payload contracts.RawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode inventory snapshot: %w", err)
	}
	return payload, fetchedAt, nil
}

// SaveQuotes appends a quote snapshot row
func (s *PostgresStore) SaveQuotes(ctx context.Context, prices map[string]float64) error {
	data, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("marshal quotes: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `INSERT INTO yuutai.quote_snapshots (prices) VALUES ($1)`, data); err != nil {
		return fmt.Errorf("insert quote snapshot: %w", err)
	}
	return nil
}

// LatestQuotes returns the newest quote snapshot
func (s *PostgresStore) LatestQuotes(ctx context.Context) (map[string]float64, time.Time, error) {
	query := `
		SELECT prices, fetched_at
		FROM yuutai.quote_snapshots
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`

	var data []byte
	var fetchedAt time.Time
	err := s.pool.QueryRow(ctx, query).Scan(&data, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("quotes: %w", ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query quote snapshot: %w", err)
	}

	prices := map[string]float64{}
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode quote snapshot: %w", err)
	}
	return prices, fetchedAt, nil
}

// SaveMaxCosts upserts one row per code in a single batch
func (s *PostgresStore) SaveMaxCosts(ctx context.Context, costs map[string]*int64) error {
	if len(costs) == 0 {
		return nil
	}

	query := `
		INSERT INTO yuutai.max_carrying_costs (code, max_cost, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (code) DO UPDATE
		SET max_cost = EXCLUDED.max_cost, updated_at = EXCLUDED.updated_at
	`

	batch := &pgx.Batch{}
	for code, v := range costs {
		batch.Queue(query, code, v)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range costs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert max cost: %w", err)
		}
	}
	return nil
}

// MaxCosts returns the whole max cost table
func (s *PostgresStore) MaxCosts(ctx context.Context) (map[string]*int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT code, max_cost FROM yuutai.max_carrying_costs`)
	if err != nil {
		return nil, fmt.Errorf("query max costs: %w", err)
	}
	defer rows.Close()

	costs := make(map[string]*int64)
	for rows.Next() {
		var code string
		var v *int64
		if err := rows.Scan(&code, &v); err != nil {
			return nil, err
		}
		costs[code] = v
	}
	return costs, rows.Err()
}
