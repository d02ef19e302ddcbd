// Package store holds the job sheet contract and its backends. The engine
// only ever reads the whole sheet and replaces single rows; row order is
// significant and stable for the duration of one run.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/oluwaseun-ajayi/postsync/internal/common"
	"github.com/oluwaseun-ajayi/postsync/internal/entity"
)

// JobStore is the source of truth for job rows.
type JobStore interface {
	// ReadAll returns every job row in stable store order.
	ReadAll(ctx context.Context) ([]entity.Job, error)
	// WriteRow replaces the row at rowIndex (0-based, in ReadAll order)
	// with the given job. Whole-row replacement, never a partial patch.
	WriteRow(ctx context.Context, rowIndex int, job entity.Job) error
}

// Closer is implemented by backends that hold external resources.
type Closer interface {
	Close() error
}

// Open builds the configured backend. The returned cleanup func is safe to
// call regardless of backend.
func Open(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (JobStore, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		st  JobStore
		err error
	)
	switch cfg.Backend {
	case "xlsx":
		st, err = OpenXLSX(cfg.XLSXPath, cfg.SheetName, logger)
	case "sqlite":
		st, err = OpenSQLite(cfg.SQLitePath, logger)
	case "postgres":
		st, err = OpenPostgres(ctx, cfg, logger)
	default:
		err = common.NewAppError("STORE_ERROR", fmt.Sprintf("unknown backend %q", cfg.Backend), common.ErrInvalidInput)
	}
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() {
		if c, ok := st.(Closer); ok {
			if cerr := c.Close(); cerr != nil {
				logger.Warn("store.close_error", "error", cerr)
			}
		}
	}
	return st, cleanup, nil
}

// formatCount renders a count with grouping separators for display cells.
func formatCount(v int64) string {
	return humanize.Comma(v)
}

// parseCount reads a display cell back into an integer, tolerating
// grouping separators and blanks.
func parseCount(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
