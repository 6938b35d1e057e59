// Package db
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sitepulse/packages/domain"
	"sitepulse/packages/metrics"
)

var ErrNotFound = errors.New("audit not found")

type Storage struct {
	DB  *pgxpool.Pool
	cfg Config
}

type Config struct {
	JobTimeout time.Duration
}

func New(ctx context.Context, databaseURL string, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return &Storage{DB: pool, cfg: cfg}, nil
}

func (s *Storage) Close() {
	s.DB.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS audits (
    id                BIGSERIAL PRIMARY KEY,
    url               TEXT        NOT NULL,
    business_category TEXT        NOT NULL DEFAULT 'retail',
    status            TEXT        NOT NULL DEFAULT 'pending',
    attempts          INT         NOT NULL DEFAULT 0,
    error             TEXT,
    result            JSONB,
    health_score      INT,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    started_at        TIMESTAMPTZ,
    finished_at       TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_audits_status ON audits (status, created_at);
`

func (s *Storage) CreateSchema(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *Storage) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	err = fn(tx)
	return err
}

// EnqueueAudit queues one audit request and returns its id.
func (s *Storage) EnqueueAudit(ctx context.Context, url string, category domain.BusinessCategory) (int64, error) {
	start := time.Now()
	defer observeQuery("enqueue_audit", start)

	var id int64
	err := s.DB.QueryRow(ctx,
		`INSERT INTO audits (url, business_category) VALUES ($1, $2) RETURNING id`,
		url, string(category),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue audit: %w", err)
	}
	return id, nil
}

// ClaimPending moves up to limit pending audits to running and returns
// them. SKIP LOCKED keeps concurrent workers off each other's claims.
func (s *Storage) ClaimPending(ctx context.Context, limit int) ([]domain.AuditJob, error) {
	start := time.Now()
	defer observeQuery("claim_pending", start)

	rows, err := s.DB.Query(ctx, `
		UPDATE audits SET status = 'running', attempts = attempts + 1, started_at = now()
		WHERE id IN (
			SELECT id FROM audits
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, url, business_category, attempts`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending audits: %w", err)
	}
	defer rows.Close()

	var jobs []domain.AuditJob
	for rows.Next() {
		var j domain.AuditJob
		var cat string
		if err := rows.Scan(&j.ID, &j.URL, &cat, &j.Attempts); err != nil {
			return nil, err
		}
		j.Category = domain.BusinessCategory(cat)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// SaveResult completes a running audit with its serialized result.
func (s *Storage) SaveResult(ctx context.Context, id int64, result *domain.AuditResult) error {
	start := time.Now()
	defer observeQuery("save_result", start)

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal audit result: %w", err)
	}
	_, err = s.DB.Exec(ctx, `
		UPDATE audits SET status = 'completed', result = $2, health_score = $3,
			error = NULL, finished_at = now()
		WHERE id = $1`, id, payload, result.HealthScore)
	if err != nil {
		return fmt.Errorf("failed to save audit result: %w", err)
	}
	return nil
}

func (s *Storage) MarkFailed(ctx context.Context, id int64, reason string) error {
	start := time.Now()
	defer observeQuery("mark_failed", start)

	_, err := s.DB.Exec(ctx,
		`UPDATE audits SET status = 'failed', error = $2, finished_at = now() WHERE id = $1`,
		id, reason)
	return err
}

// AuditRecord is one stored row, result included when completed.
type AuditRecord struct {
	ID          int64                   `json:"id"`
	URL         string                  `json:"url"`
	Category    domain.BusinessCategory `json:"business_category"`
	Status      domain.AuditStatus      `json:"status"`
	Error       *string                 `json:"error,omitempty"`
	HealthScore *int                    `json:"health_score,omitempty"`
	Result      *domain.AuditResult     `json:"result,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

func (s *Storage) GetAudit(ctx context.Context, id int64) (*AuditRecord, error) {
	start := time.Now()
	defer observeQuery("get_audit", start)

	var rec AuditRecord
	var cat, status string
	var payload []byte
	err := s.DB.QueryRow(ctx, `
		SELECT id, url, business_category, status, error, health_score, result, created_at
		FROM audits WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.URL, &cat, &status, &rec.Error, &rec.HealthScore, &payload, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit: %w", err)
	}
	rec.Category = domain.BusinessCategory(cat)
	rec.Status = domain.AuditStatus(status)
	if len(payload) > 0 {
		var res domain.AuditResult
		if err := json.Unmarshal(payload, &res); err == nil {
			rec.Result = &res
		}
	}
	return &rec, nil
}

// ResetStalled returns audits stuck in running past the job timeout to the
// pending queue.
func (s *Storage) ResetStalled(ctx context.Context) error {
	start := time.Now()
	defer observeQuery("reset_stalled", start)

	tag, err := s.DB.Exec(ctx, `
		UPDATE audits SET status = 'pending', started_at = NULL
		WHERE status = 'running' AND started_at < now() - make_interval(secs => $1)`,
		s.cfg.JobTimeout.Seconds())
	if err != nil {
		return fmt.Errorf("failed to reset stalled audits: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		slog.Warn("Reset stalled audits", "count", n)
	}
	return nil
}

// RefreshPendingCount updates the queue-depth gauge.
func (s *Storage) RefreshPendingCount(ctx context.Context) error {
	start := time.Now()
	defer observeQuery("refresh_pending_count", start)

	var n int64
	if err := s.DB.QueryRow(ctx, `SELECT count(*) FROM audits WHERE status = 'pending'`).Scan(&n); err != nil {
		return err
	}
	metrics.PendingAudits.Set(float64(n))
	return nil
}

func observeQuery(name string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
