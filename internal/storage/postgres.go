package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smarta-financials/internal/config"
	"smarta-financials/internal/report"
)

const defaultListLimit = 20

type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Snapshot is one archived report.
type Snapshot struct {
	ID             uuid.UUID           `db:"id" json:"id"`
	Variant        string              `db:"variant" json:"variant"`
	TotalCost      decimal.Decimal     `db:"total_cost" json:"total_cost"`
	TotalPrice     decimal.Decimal     `db:"total_price" json:"total_price"`
	TotalProfit    decimal.Decimal     `db:"total_profit" json:"total_profit"`
	TotalMarginPct decimal.NullDecimal `db:"total_margin_pct" json:"total_margin_pct"`
	ROIPct         decimal.NullDecimal `db:"roi_pct" json:"roi_pct"`
	Payload        types.JSONText      `db:"payload" json:"-"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
}

// Report decodes the archived payload.
func (s Snapshot) Report() (*report.Report, error) {
	var r report.Report
	if err := json.Unmarshal([]byte(s.Payload), &r); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.ID, err)
	}
	return &r, nil
}

func snapshotFromReport(r *report.Report) (Snapshot, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal report: %w", err)
	}
	agg := r.Projection.Aggregate
	return Snapshot{
		ID:             r.ID,
		Variant:        r.Variant,
		TotalCost:      agg.TotalCost,
		TotalPrice:     agg.TotalPrice,
		TotalProfit:    agg.TotalProfit,
		TotalMarginPct: agg.TotalMarginPct,
		ROIPct:         r.Headline.ROIPct,
		Payload:        payload,
		CreatedAt:      r.GeneratedAt,
	}, nil
}

func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...", zap.String("host", cfg.Host), zap.Int("port", cfg.Port))

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err := conn.PingContext(ctx); err != nil {
				_ = conn.Close()
				return fmt.Errorf("ping: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{db: db, logger: logger}, nil
}

// DB exposes the underlying handle for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Save(ctx context.Context, r *report.Report) error {
	const operation = "storage.Save"

	snap, err := snapshotFromReport(r)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	const query = `
        INSERT INTO projection_reports (
            id, variant, total_cost, total_price, total_profit,
            total_margin_pct, roi_pct, payload, created_at
        ) VALUES (
            :id, :variant, :total_cost, :total_price, :total_profit,
            :total_margin_pct, :roi_pct, :payload, :created_at
        )
        ON CONFLICT (id) DO NOTHING
    `
	if _, err := s.db.NamedExecContext(ctx, query, snap); err != nil {
		return fmt.Errorf("%s: failed to save report: %w", operation, err)
	}

	s.logger.Debug("Report archived",
		zap.String("report_id", snap.ID.String()),
		zap.String("variant", snap.Variant))
	return nil
}

// List returns the newest snapshots of a variant first.
func (s *PostgresStorage) List(ctx context.Context, variant string, limit int) ([]Snapshot, error) {
	const operation = "storage.List"

	if limit <= 0 {
		limit = defaultListLimit
	}

	const query = `
        SELECT id, variant, total_cost, total_price, total_profit,
               total_margin_pct, roi_pct, payload, created_at
        FROM projection_reports
        WHERE variant = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	snaps := []Snapshot{}
	if err := s.db.SelectContext(ctx, &snaps, query, variant, limit); err != nil {
		return nil, fmt.Errorf("%s: failed to list reports: %w", operation, err)
	}
	return snaps, nil
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
