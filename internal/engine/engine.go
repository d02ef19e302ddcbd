// Package engine drives reconciliation of the job sheet against the remote
// source: status-driven job selection, the fetch-with-retry loop, identity
// rotation and the batch convergence loop.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/oluwaseun-ajayi/postsync/constants"
	"github.com/oluwaseun-ajayi/postsync/internal/common"
	"github.com/oluwaseun-ajayi/postsync/internal/entity"
	"github.com/oluwaseun-ajayi/postsync/internal/fetch"
	"github.com/oluwaseun-ajayi/postsync/internal/normalize"
	"github.com/oluwaseun-ajayi/postsync/internal/parse"
	"github.com/oluwaseun-ajayi/postsync/internal/retry"
	"github.com/oluwaseun-ajayi/postsync/internal/store"
)

// Mode selects how long one invocation keeps working.
type Mode string

const (
	// ModeSinglePass makes one pass over the pending set and returns.
	// Suits frequent, lightweight scheduled invocations.
	ModeSinglePass Mode = "single_pass"
	// ModePersistent repeats passes until the pending set drains or the
	// batch ceiling is hit. Suits on-demand backlog draining.
	ModePersistent Mode = "persistent"
)

// Sleeper waits for d or until ctx is canceled. Injected so tests run
// without real time passing.
type Sleeper func(ctx context.Context, d time.Duration) error

// Engine processes job rows strictly sequentially. The remote source
// penalizes concurrent requests, so there is deliberately no parallelism
// here; all pacing is explicit sleeping.
type Engine struct {
	Store      store.JobStore
	Factory    fetch.Factory
	Policy     *retry.Policy
	Normalizer *normalize.Normalizer
	Config     common.EngineConfig
	Logger     *slog.Logger

	Sleep Sleeper
	Now   func() time.Time
	Rand  *rand.Rand
}

// New wires an engine with real time and a time-seeded rng. Tests override
// Sleep, Now and Rand after construction.
func New(st store.JobStore, factory fetch.Factory, cfg common.EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Engine{
		Store:      st,
		Factory:    factory,
		Policy:     retry.New(cfg.MaxAttempts, cfg.RateLimitCooldown, cfg.RetryBaseDelay, cfg.RetryJitterMin, cfg.RetryJitterMax, rng),
		Normalizer: normalize.New(cfg.CaptionMax),
		Config:     cfg,
		Logger:     logger,
		Sleep:      sleepContext,
		Now:        time.Now,
		Rand:       rng,
	}
}

// Run executes one engine invocation and returns the number of jobs that
// reached SUCCESS across all batches. A store read failure or a failure to
// construct the default fetcher is fatal; per-job failures are recorded on
// their rows and never abort the run.
func (e *Engine) Run(ctx context.Context, mode Mode) (int, error) {
	runID := uuid.NewString()
	logger := e.Logger.With("run_id", runID)

	batches := 1
	if mode == ModePersistent {
		batches = e.Config.MaxBatches
	}
	logger.Info("engine.run.start", "mode", string(mode), "batches", batches, "force_refresh", e.Config.ForceRefresh)

	total := 0
	for batch := 1; batch <= batches; batch++ {
		succeeded, remaining, err := e.runBatch(ctx, logger, batch)
		if err != nil {
			return total, err
		}
		total += succeeded
		if remaining == 0 {
			logger.Info("engine.run.converged", "batch", batch)
			break
		}
		logger.Info("engine.batch.incomplete", "batch", batch, "remaining", remaining)
		if batch < batches {
			if err := e.Sleep(ctx, e.Config.BatchCooldown); err != nil {
				return total, err
			}
		}
	}

	logger.Info("engine.run.done", "succeeded", total)
	return total, nil
}

// RunRow processes exactly one row regardless of its status. Used by the
// manual single-row trigger.
func (e *Engine) RunRow(ctx context.Context, rowIndex int) error {
	jobs, err := e.Store.ReadAll(ctx)
	if err != nil {
		return common.WrapError(err, "read jobs")
	}
	if rowIndex < 0 || rowIndex >= len(jobs) {
		return common.NewAppError("ENGINE_ERROR", fmt.Sprintf("row %d out of range", rowIndex), common.ErrInvalidInput)
	}
	fetcher, err := e.Factory.New(fetch.DefaultIdentity())
	if err != nil {
		return common.WrapError(err, "construct fetcher")
	}
	job, _ := e.processJob(ctx, e.Logger, fetcher, jobs[rowIndex])
	if err := e.Store.WriteRow(ctx, rowIndex, job); err != nil {
		return common.WrapError(err, "write row")
	}
	return ctx.Err()
}

// Summary counts rows per status. Read-only.
func (e *Engine) Summary(ctx context.Context) (map[constants.JobStatus]int, error) {
	jobs, err := e.Store.ReadAll(ctx)
	if err != nil {
		return nil, common.WrapError(err, "read jobs")
	}
	counts := make(map[constants.JobStatus]int)
	for _, job := range jobs {
		if job.RawReference == "" {
			continue
		}
		counts[job.Status]++
	}
	return counts, nil
}

// runBatch makes one full pass over the pending set. It returns the number
// of jobs that reached SUCCESS and the number still needing work.
func (e *Engine) runBatch(ctx context.Context, logger *slog.Logger, batch int) (succeeded, remaining int, err error) {
	// Always a fresh read: row addressing is only trusted as long as the
	// view it came from.
	jobs, err := e.Store.ReadAll(ctx)
	if err != nil {
		return 0, 0, common.WrapError(err, "read jobs")
	}

	pending := e.selectPending(jobs)
	logger.Info("engine.batch.start", "batch", batch, "rows", len(jobs), "pending", len(pending))
	if len(pending) == 0 {
		return 0, 0, nil
	}

	fetcher, err := e.Factory.New(fetch.DefaultIdentity())
	if err != nil {
		return 0, 0, common.WrapError(err, "construct fetcher")
	}

	for i, idx := range pending {
		job, ok := e.processJob(ctx, logger, fetcher, jobs[idx])
		if ctx.Err() != nil {
			return succeeded, len(pending) - succeeded, ctx.Err()
		}

		// Each outcome commits immediately; one partially processed job is
		// the most a crash can cost.
		if werr := e.Store.WriteRow(ctx, idx, job); werr != nil {
			// Leave the row in its prior state; it re-queues next run.
			logger.Error("engine.row.write_failed", "row", idx, "error", werr)
		} else if ok {
			succeeded++
			logger.Info("engine.job.success", "row", idx, "account", job.Attributes.Account, "likes", job.Attributes.Likes)
		} else {
			logger.Warn("engine.job.failed", "row", idx, "status", string(job.Status), "attempts", job.AttemptCount)
		}

		if i < len(pending)-1 {
			if serr := e.Sleep(ctx, e.betweenJobs()); serr != nil {
				return succeeded, len(pending) - succeeded, serr
			}
		}
	}

	logger.Info("engine.batch.done", "batch", batch, "succeeded", succeeded, "remaining", len(pending)-succeeded)
	return succeeded, len(pending) - succeeded, nil
}

// selectPending returns indexes of rows that need work this pass: every row
// short of SUCCESS, or every non-blank row under forced refresh.
func (e *Engine) selectPending(jobs []entity.Job) []int {
	var pending []int
	for i, job := range jobs {
		if job.RawReference == "" {
			continue
		}
		if e.Config.ForceRefresh || job.Status.NeedsProcessing() {
			pending = append(pending, i)
		}
	}
	return pending
}

// processJob runs one job through parse and the fetch-with-retry loop. It
// mutates only the returned copy; the second result reports success.
func (e *Engine) processJob(ctx context.Context, logger *slog.Logger, fetcher fetch.Fetcher, job entity.Job) (entity.Job, bool) {
	job.Status = constants.JobStatusInProgress
	job.ClearResult()

	shortcode, ok := parse.Shortcode(job.RawReference)
	if !ok {
		// Terminal classification; no fetch attempt is consumed.
		logger.Warn("engine.job.invalid_reference", "reference", job.RawReference)
		job.Status = constants.JobStatusInvalid
		job.LastUpdated = e.Now()
		return job, false
	}
	job.CanonicalID = &shortcode

	for attempt := 1; ; attempt++ {
		raw, err := fetcher.Fetch(ctx, shortcode)
		job.AttemptCount++
		if err == nil {
			job.Attributes = e.Normalizer.Normalize(raw)
			job.Status = constants.JobStatusSuccess
			job.LastUpdated = e.Now()
			logger.Info("engine.fetch.ok", "shortcode", shortcode, "attempt", attempt)
			return job, true
		}
		if ctx.Err() != nil {
			job.Status = constants.JobStatusPending
			job.LastUpdated = e.Now()
			return job, false
		}

		kind := fetch.Classify(err)
		decision := e.Policy.Next(attempt, kind)
		logger.Warn("engine.fetch.attempt_failed",
			"shortcode", shortcode,
			"attempt", attempt,
			"kind", string(kind),
			"retry", decision.Retry,
			"error", err,
		)
		if !decision.Retry {
			if kind.Terminal() {
				job.Status = constants.JobStatusUnavailable
			} else {
				job.Status = constants.JobStatusExhausted
			}
			job.LastUpdated = e.Now()
			return job, false
		}

		if serr := e.Sleep(ctx, decision.Delay); serr != nil {
			job.Status = constants.JobStatusPending
			job.LastUpdated = e.Now()
			return job, false
		}
		if decision.RotateIdentity {
			identity := fetch.RandomIdentity(e.Rand)
			fresh, ferr := e.Factory.New(identity)
			if ferr != nil {
				// Keep the current session rather than dropping the job.
				logger.Warn("engine.identity.rotate_failed", "error", ferr)
			} else {
				fetcher = fresh
				logger.Info("engine.identity.rotated", "session", identity.SessionTag, "attempt", attempt+1)
			}
		}
	}
}

// betweenJobs picks the pacing delay between two jobs.
func (e *Engine) betweenJobs() time.Duration {
	min, max := e.Config.JobDelayMin, e.Config.JobDelayMax
	if max <= min {
		return min
	}
	return min + time.Duration(e.Rand.Int63n(int64(max-min)))
}

// sleepContext is the default Sleeper: a timer that respects cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
