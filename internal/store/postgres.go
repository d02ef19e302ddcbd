package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oluwaseun-ajayi/postsync/constants"
	"github.com/oluwaseun-ajayi/postsync/internal/common"
	"github.com/oluwaseun-ajayi/postsync/internal/entity"
)

// PostgresStore keeps job rows in a jobs table, ordered by position. Used
// when the sheet lives in a shared deployment rather than a local workbook.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres connects a pgx pool and ensures the jobs table exists.
func OpenPostgres(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.ConnConfig.RuntimeParams["application_name"] = "postsync"

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
  pos BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  raw_reference TEXT NOT NULL,
  canonical_id TEXT,
  account TEXT,
  likes BIGINT NOT NULL DEFAULT 0,
  comments BIGINT NOT NULL DEFAULT 0,
  views BIGINT NOT NULL DEFAULT 0,
  content_type TEXT,
  posted_at TEXT,
  caption TEXT,
  tag_count INT NOT NULL DEFAULT 0,
  location TEXT,
  fetched_at TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  attempt_count INT NOT NULL DEFAULT 0,
  last_updated TIMESTAMPTZ
)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("successfully connected to database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Append adds a new pending row for the given reference.
func (s *PostgresStore) Append(ctx context.Context, rawReference string) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO jobs (raw_reference, status, last_updated) VALUES ($1, $2, now())
`, rawReference, string(constants.JobStatusPending))
	if err != nil {
		return fmt.Errorf("append job: %w", err)
	}
	return nil
}

// ReadAll returns every job row ordered by position.
func (s *PostgresStore) ReadAll(ctx context.Context) ([]entity.Job, error) {
	rows, err := s.pool.Query(ctx, `
SELECT raw_reference, COALESCE(canonical_id, ''),
       COALESCE(account, ''), likes, comments, views,
       COALESCE(content_type, ''), COALESCE(posted_at, ''), COALESCE(caption, ''),
       tag_count, COALESCE(location, ''), COALESCE(fetched_at, ''),
       status, attempt_count, COALESCE(last_updated, 'epoch'::timestamptz)
FROM jobs
ORDER BY pos ASC
`)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	defer rows.Close()

	var jobs []entity.Job
	for rows.Next() {
		var (
			job       entity.Job
			canonical string
			attrs     entity.AttributeSet
			status    string
			ctype     string
		)
		if err := rows.Scan(
			&job.RawReference, &canonical,
			&attrs.Account, &attrs.Likes, &attrs.Comments, &attrs.Views,
			&ctype, &attrs.PostedAt, &attrs.Caption,
			&attrs.TagCount, &attrs.Location, &attrs.FetchedAt,
			&status, &job.AttemptCount, &job.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		attrs.ContentType = constants.ContentType(ctype)
		job.Status = constants.CanonicalizeStatus(status)
		if canonical != "" {
			job.CanonicalID = &canonical
		}
		if job.Status == constants.JobStatusSuccess {
			a := attrs
			job.Attributes = &a
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// WriteRow replaces the row at rowIndex, resolving the position from the
// current table contents inside one transaction.
func (s *PostgresStore) WriteRow(ctx context.Context, rowIndex int, job entity.Job) error {
	if rowIndex < 0 {
		return fmt.Errorf("row index %d out of range", rowIndex)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var pos int64
	err = tx.QueryRow(ctx, `
SELECT pos FROM jobs ORDER BY pos ASC LIMIT 1 OFFSET $1
`, rowIndex).Scan(&pos)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("row index %d out of range", rowIndex)
	}
	if err != nil {
		return fmt.Errorf("resolve row %d: %w", rowIndex, err)
	}

	canonical := ""
	if job.CanonicalID != nil {
		canonical = *job.CanonicalID
	}
	attrs := entity.AttributeSet{}
	if job.Status == constants.JobStatusSuccess && job.Attributes != nil {
		attrs = *job.Attributes
	}

	_, err = tx.Exec(ctx, `
UPDATE jobs
SET raw_reference=$1, canonical_id=$2,
    account=$3, likes=$4, comments=$5, views=$6,
    content_type=$7, posted_at=$8, caption=$9, tag_count=$10, location=$11, fetched_at=$12,
    status=$13, attempt_count=$14, last_updated=$15
WHERE pos=$16
`,
		job.RawReference, canonical,
		attrs.Account, attrs.Likes, attrs.Comments, attrs.Views,
		string(attrs.ContentType), attrs.PostedAt, attrs.Caption,
		attrs.TagCount, attrs.Location, attrs.FetchedAt,
		string(job.Status), job.AttemptCount, job.LastUpdated.UTC(),
		pos,
	)
	if err != nil {
		return fmt.Errorf("update row %d: %w", rowIndex, err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
