package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"volSurface/internal/grid"
	"volSurface/internal/model"
	"volSurface/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for surface snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// cellRow is one surface_cells row. Info columns are nil for filled cells.
type cellRow struct {
	ExpIdx       int32
	MonIdx       int32
	IV           float64
	Symbol       *string
	LastPrice    *float64
	Bid          *float64
	Ask          *float64
	Volume       *int64
	OpenInterest *int64
}

func cellRows(snap storage.Snapshot) []cellRow {
	rows := make([]cellRow, 0, len(snap.Expirations)*len(snap.Moneyness))
	for i, vols := range snap.Vol {
		for j, iv := range vols {
			row := cellRow{ExpIdx: int32(i), MonIdx: int32(j), IV: iv}
			if info := snap.Info[i][j]; info != nil {
				c := *info
				row.Symbol = &c.Symbol
				row.LastPrice = &c.LastPrice
				row.Bid = &c.Bid
				row.Ask = &c.Ask
				row.Volume = &c.Volume
				row.OpenInterest = &c.OpenInterest
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func (r cellRow) info() *model.ContractInfo {
	if r.Symbol == nil {
		return nil
	}
	info := &model.ContractInfo{Symbol: *r.Symbol}
	if r.LastPrice != nil {
		info.LastPrice = *r.LastPrice
	}
	if r.Bid != nil {
		info.Bid = *r.Bid
	}
	if r.Ask != nil {
		info.Ask = *r.Ask
	}
	if r.Volume != nil {
		info.Volume = *r.Volume
	}
	if r.OpenInterest != nil {
		info.OpenInterest = *r.OpenInterest
	}
	return info
}

// applyCells places rows into the snapshot grids sized from its axes.
func applyCells(snap *storage.Snapshot, rows []cellRow) error {
	n, m := len(snap.Expirations), len(snap.Moneyness)
	snap.Vol = grid.NewGrid(n, m)
	snap.Info = grid.NewInfoGrid(n, m)
	for _, r := range rows {
		i, j := int(r.ExpIdx), int(r.MonIdx)
		if i < 0 || i >= n || j < 0 || j >= m {
			return fmt.Errorf("cell (%d,%d) outside %dx%d surface", i, j, n, m)
		}
		snap.Vol[i][j] = r.IV
		snap.Info[i][j] = r.info()
	}
	return nil
}

// PutSnapshot inserts a snapshot and its cells in one transaction.
func (s *Store) PutSnapshot(ctx context.Context, snap storage.Snapshot) error {
	summary, err := json.Marshal(snap.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO surfaces (
			ticker, option_type, min_volume, min_open_interest, expirations, moneyness, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		snap.Ticker,
		string(snap.OptionType),
		snap.Filter.MinVolume,
		snap.Filter.MinOpenInterest,
		snap.Expirations,
		snap.Moneyness,
		summary,
		snap.CreatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert surface: %w", err)
	}

	rows := cellRows(snap)
	if len(rows) > 0 {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(`
				INSERT INTO surface_cells (
					surface_id, exp_idx, mon_idx, iv, symbol, last_price, bid, ask, volume, open_interest
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			`,
				id, r.ExpIdx, r.MonIdx, r.IV, r.Symbol, r.LastPrice, r.Bid, r.Ask, r.Volume, r.OpenInterest,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range rows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert cells: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// LatestSnapshot loads the most recent snapshot for a ticker and option type.
func (s *Store) LatestSnapshot(ctx context.Context, ticker string, optionType model.OptionType) (storage.Snapshot, bool, error) {
	var (
		id        int64
		snap      storage.Snapshot
		summary   []byte
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, min_volume, min_open_interest, expirations, moneyness, summary, created_at
		FROM surfaces
		WHERE ticker = $1 AND option_type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, ticker, string(optionType)).Scan(
		&id,
		&snap.Filter.MinVolume,
		&snap.Filter.MinOpenInterest,
		&snap.Expirations,
		&snap.Moneyness,
		&summary,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Snapshot{}, false, nil
		}
		return storage.Snapshot{}, false, err
	}
	snap.Ticker = ticker
	snap.OptionType = optionType
	snap.CreatedAt = createdAt.UTC()
	if err := json.Unmarshal(summary, &snap.Summary); err != nil {
		return storage.Snapshot{}, false, fmt.Errorf("decode summary: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT exp_idx, mon_idx, iv, symbol, last_price, bid, ask, volume, open_interest
		FROM surface_cells
		WHERE surface_id = $1
	`, id)
	if err != nil {
		return storage.Snapshot{}, false, err
	}
	defer rows.Close()

	var cells []cellRow
	for rows.Next() {
		var r cellRow
		if err := rows.Scan(&r.ExpIdx, &r.MonIdx, &r.IV, &r.Symbol, &r.LastPrice, &r.Bid, &r.Ask, &r.Volume, &r.OpenInterest); err != nil {
			return storage.Snapshot{}, false, err
		}
		cells = append(cells, r)
	}
	if err := rows.Err(); err != nil {
		return storage.Snapshot{}, false, err
	}

	if err := applyCells(&snap, cells); err != nil {
		return storage.Snapshot{}, false, err
	}
	return snap, true, nil
}
