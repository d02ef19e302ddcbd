package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oluwaseun-ajayi/postsync/constants"
	"github.com/oluwaseun-ajayi/postsync/internal/entity"
)

// SQLiteStore keeps job rows in a local database file. Row order is the
// insertion order of the pos column.
type SQLiteStore struct {
	DB     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{DB: db, logger: logger}, nil
}

func migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS jobs (
  pos INTEGER PRIMARY KEY AUTOINCREMENT,
  raw_reference TEXT NOT NULL,
  canonical_id TEXT,
  account TEXT,
  likes INTEGER NOT NULL DEFAULT 0,
  comments INTEGER NOT NULL DEFAULT 0,
  views INTEGER NOT NULL DEFAULT 0,
  content_type TEXT,
  posted_at TEXT,
  caption TEXT,
  tag_count INTEGER NOT NULL DEFAULT 0,
  location TEXT,
  fetched_at TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_updated TEXT
);
`
	_, err := db.Exec(schema)
	return err
}

// Append adds a new pending row for the given reference.
func (s *SQLiteStore) Append(ctx context.Context, rawReference string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO jobs (raw_reference, status, last_updated)
VALUES (?, ?, ?)
`, rawReference, string(constants.JobStatusPending), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append job: %w", err)
	}
	return nil
}

// ReadAll returns every job row ordered by position.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]entity.Job, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT raw_reference, COALESCE(canonical_id, ''),
       COALESCE(account, ''), likes, comments, views,
       COALESCE(content_type, ''), COALESCE(posted_at, ''), COALESCE(caption, ''),
       tag_count, COALESCE(location, ''), COALESCE(fetched_at, ''),
       status, attempt_count, COALESCE(last_updated, '')
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
			job         entity.Job
			canonical   string
			attrs       entity.AttributeSet
			status      string
			lastUpdated string
		)
		if err := rows.Scan(
			&job.RawReference, &canonical,
			&attrs.Account, &attrs.Likes, &attrs.Comments, &attrs.Views,
			&attrs.ContentType, &attrs.PostedAt, &attrs.Caption,
			&attrs.TagCount, &attrs.Location, &attrs.FetchedAt,
			&status, &job.AttemptCount, &lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.Status = constants.CanonicalizeStatus(status)
		if canonical != "" {
			job.CanonicalID = &canonical
		}
		if job.Status == constants.JobStatusSuccess {
			a := attrs
			job.Attributes = &a
		}
		if t, err := time.Parse(time.RFC3339Nano, lastUpdated); err == nil {
			job.LastUpdated = t
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// WriteRow replaces the row at rowIndex. The position is re-resolved from
// the current table contents inside one transaction, never from a cached
// view.
func (s *SQLiteStore) WriteRow(ctx context.Context, rowIndex int, job entity.Job) error {
	if rowIndex < 0 {
		return fmt.Errorf("row index %d out of range", rowIndex)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var pos int64
	err = tx.QueryRowContext(ctx, `
SELECT pos FROM jobs ORDER BY pos ASC LIMIT 1 OFFSET ?
`, rowIndex).Scan(&pos)
	if err == sql.ErrNoRows {
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

	_, err = tx.ExecContext(ctx, `
UPDATE jobs
SET raw_reference=?, canonical_id=?,
    account=?, likes=?, comments=?, views=?,
    content_type=?, posted_at=?, caption=?, tag_count=?, location=?, fetched_at=?,
    status=?, attempt_count=?, last_updated=?
WHERE pos=?
`,
		job.RawReference, canonical,
		attrs.Account, attrs.Likes, attrs.Comments, attrs.Views,
		string(attrs.ContentType), attrs.PostedAt, attrs.Caption,
		attrs.TagCount, attrs.Location, attrs.FetchedAt,
		string(job.Status), job.AttemptCount,
		job.LastUpdated.UTC().Format(time.RFC3339Nano),
		pos,
	)
	if err != nil {
		return fmt.Errorf("update row %d: %w", rowIndex, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
