// Package sync implements the top-level synchronization controller
// (component C8): the state machine that drives a scan/plan/copy/delete
// run, the retry-with-backoff policy over retryable operation failures,
// and the pause/resume/abort control surface.
//
// Grounded on the teacher's pkg/synchronization/controller.go run loop:
// phase transitions are recorded through a single state holder
// (syncstate.State), and cancellation goes through a context.CancelFunc
// that each Run sets up for itself and Abort invokes.
package sync

import (
	"context"
	"math"
	"time"

	"github.com/dualsync/engine/pkg/config"
	"github.com/dualsync/engine/pkg/copy"
	"github.com/dualsync/engine/pkg/deletion"
	"github.com/dualsync/engine/pkg/errkind"
	"github.com/dualsync/engine/pkg/filter"
	"github.com/dualsync/engine/pkg/logging"
	"github.com/dualsync/engine/pkg/plan"
	"github.com/dualsync/engine/pkg/scan"
	"github.com/dualsync/engine/pkg/syncstate"
	"github.com/dualsync/engine/pkg/worker"
)

// Listener receives run-lifecycle notifications. Any method may be nil.
type Listener struct {
	OnProgress     func(syncstate.Snapshot)
	OnFileComplete func(relPath string)
	OnFileError    func(relPath string, err error)
	OnPhaseChange  func(syncstate.Phase)
}

// Result summarizes a completed run, per spec §4.8's controller summary.
type Result struct {
	Created   int
	Updated   int
	Deleted   int
	Conflicts int
	Errors    []error
}

// Controller orchestrates a single synchronization run end to end.
type Controller struct {
	opts     config.SyncOptions
	logger   *logging.Logger
	listener Listener
	manager  *deletion.Manager

	pool   *worker.Pool
	state  *syncstate.State
	cancel context.CancelFunc
}

// New constructs a Controller for a single run.
func New(opts config.SyncOptions, stateDir string, logger *logging.Logger, listener Listener) *Controller {
	return &Controller{
		opts:     opts,
		logger:   logger,
		listener: listener,
		manager:  deletion.New(stateDir, logger.Sublogger("deletion")),
	}
}

// Run executes one full scan/plan/copy/delete cycle. Abort cancels the
// context Run derives internally from parent.
func (c *Controller) Run(parent context.Context) (*Result, error) {
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	defer cancel()

	c.setPhase(syncstate.PhaseScanning)
	entriesA, entriesB, err := c.scanBoth(ctx)
	if err != nil {
		return nil, err
	}

	c.setPhase(syncstate.PhasePlanning)
	planOpts, err := c.opts.PlanOptions()
	if err != nil {
		return nil, errkind.New(errkind.KindConfig, "", err)
	}
	p := plan.New(planOpts).Plan(entriesA, entriesB)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	total := len(p.Creates) + len(p.Updates)
	c.state = syncstate.New(total, p.TotalBytes)
	c.pool = worker.New(c.opts.PerformanceMode(), c.copyJob)

	c.setPhase(syncstate.PhaseCopying)
	copyErrs := c.runCopyPhase(ctx, p)

	var deleteErrs []error
	if c.opts.DeleteOrphaned {
		c.setPhase(syncstate.PhaseDeleting)
		deleteErrs = c.runDeletePhase(p)
	}

	result := &Result{
		Created:   len(p.Creates),
		Updated:   len(p.Updates),
		Deleted:   len(p.Deletes),
		Conflicts: len(p.Conflicts),
		Errors:    append(copyErrs, deleteErrs...),
	}

	if c.state.ErrorCount() >= c.maxErrors() {
		c.setPhase(syncstate.PhaseAborted)
		return result, errkind.New(errkind.KindAborted, "", errTooManyErrors)
	}

	c.setPhase(syncstate.PhaseCompleted)
	return result, nil
}

var errTooManyErrors = plainError("too many errors encountered; aborting run")

type plainError string

func (e plainError) Error() string { return string(e) }

func (c *Controller) maxErrors() int {
	if c.opts.MaxErrors <= 0 {
		return 50
	}
	return c.opts.MaxErrors
}

func (c *Controller) setPhase(p syncstate.Phase) {
	if c.state != nil {
		c.state.SetPhase(p)
	}
	if c.listener.OnPhaseChange != nil {
		c.listener.OnPhaseChange(p)
	}
}

func (c *Controller) scanBoth(ctx context.Context) ([]scan.FileEntry, []scan.FileEntry, error) {
	optsA := c.opts.ScanOptions(c.opts.RootA)
	optsB := c.opts.ScanOptions(c.opts.RootB)

	matcher, err := c.opts.IgnoreMatcher()
	if err != nil {
		return nil, nil, errkind.New(errkind.KindConfig, "", err)
	}
	// A single Filter/Matcher is safe to share across both concurrent
	// scans: ignore.Matcher and filter.Filter hold no mutable per-scan
	// state.
	f := filter.New(matcher, filter.Options{})
	optsA.Filter = f
	optsB.Filter = f

	type scanOutcome struct {
		result scan.Result
		err    error
	}
	resultsA := make(chan scanOutcome, 1)
	resultsB := make(chan scanOutcome, 1)

	go func() {
		r, err := scan.Scan(ctx, optsA)
		resultsA <- scanOutcome{r, err}
	}()
	go func() {
		r, err := scan.Scan(ctx, optsB)
		resultsB <- scanOutcome{r, err}
	}()

	outcomeA := <-resultsA
	outcomeB := <-resultsB
	if outcomeA.err != nil {
		return nil, nil, outcomeA.err
	}
	if outcomeB.err != nil {
		return nil, nil, outcomeB.err
	}
	return outcomeA.result.Entries, outcomeB.result.Entries, nil
}

// Pause blocks the copy worker pool between batches.
func (c *Controller) Pause() {
	if c.pool != nil {
		c.pool.Pause()
	}
	c.setPhase(syncstate.PhasePaused)
}

// Resume releases a paused worker pool.
func (c *Controller) Resume() {
	if c.pool != nil {
		c.pool.Resume()
	}
	c.setPhase(syncstate.PhaseCopying)
}

// Abort cancels the in-progress run. In-flight batches observe
// cancellation at their next file or streaming-chunk boundary.
func (c *Controller) Abort() {
	if c.cancel != nil {
		c.cancel()
	}
	c.setPhase(syncstate.PhaseAborted)
}

func (c *Controller) runCopyPhase(ctx context.Context, p *plan.Plan) []error {
	ops := append(append([]plan.Operation{}, p.Creates...), p.Updates...)
	batches := worker.BuildBatches(ops, c.opts.Performance.BatchSize)
	return c.pool.Run(ctx, batches)
}

func (c *Controller) copyJob(ctx context.Context, batch worker.Batch) error {
	var firstErr error
	for _, op := range batch.Operations {
		c.state.BeginFile(op.RelPath)
		err := c.copyWithRetry(ctx, op)
		if err != nil {
			if errkind.KindOf(err) == errkind.KindAborted {
				continue
			}
			c.state.RecordError()
			if c.listener.OnFileError != nil {
				c.listener.OnFileError(op.RelPath, err)
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.state.CompleteFile(op.RelPath, op.Size)
		if c.listener.OnFileComplete != nil {
			c.listener.OnFileComplete(op.RelPath)
		}
		if c.listener.OnProgress != nil {
			c.listener.OnProgress(c.state.Snapshot())
		}
	}
	return firstErr
}

// retryBase and retryMaxAttempts implement spec §4.8's retry policy:
// base·2^(attempt-1) backoff, default base 1s, default 3 attempts for
// Transient failures. VerificationFailed gets its own fixed budget (spec
// §7: "retried once; then reported") via errkind.Kind.MaxAttempts,
// independent of this configured Transient attempt count.
func (c *Controller) retryBase() time.Duration {
	if c.opts.Retry.BaseSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.opts.Retry.BaseSeconds * float64(time.Second))
}

func (c *Controller) retryMaxAttempts() int {
	if c.opts.Retry.MaxAttempts <= 0 {
		return 3
	}
	return c.opts.Retry.MaxAttempts
}

func (c *Controller) copyWithRetry(ctx context.Context, op plan.Operation) error {
	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = copy.File(ctx, op.RelPath, op.SourceAbs, op.DestAbs, op.Size, op.SourceMTime, op.Executable, copy.Options{Verify: c.opts.Verify})
		if lastErr == nil {
			return nil
		}
		kind := errkind.KindOf(lastErr)
		maxAttempts := kind.MaxAttempts(c.retryMaxAttempts())
		if !kind.Retryable() || attempt >= maxAttempts {
			return lastErr
		}
		backoff := time.Duration(float64(c.retryBase()) * math.Pow(2, float64(attempt-1)))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return lastErr
		}
	}
}

func (c *Controller) runDeletePhase(p *plan.Plan) []error {
	var errs []error
	deletionOpts := c.opts.DeletionOptions()
	for _, op := range p.Deletes {
		if _, err := c.manager.Execute(op.DestAbs, op.RelPath, deletionOpts); err != nil {
			errs = append(errs, err)
			c.state.RecordError()
			if c.listener.OnFileError != nil {
				c.listener.OnFileError(op.RelPath, err)
			}
		}
	}
	return errs
}
