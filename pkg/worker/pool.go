// Package worker implements the parallel copy executor's dispatch layer
// (component C5): a fixed-size pool sized by performance mode, batching of
// Create/Update operations, and the pause/cancel control plane that the
// copy loop observes between units of work.
//
// The teacher's controller pauses a synchronization session by cancelling
// its run loop's context and only starts a fresh one on resume (see
// pkg/synchronization/controller.go's cancel/resume pair), which discards
// in-flight progress. Pool instead layers a resumable gate (sync.Cond) on
// top of the same context.CancelFunc idiom: cancellation still means "stop
// for good", while pause/resume blocks and releases the dispatcher and
// workers in place. Pause is observed only at batch boundaries: a batch a
// worker has already picked up runs to completion.
package worker

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/dualsync/engine/pkg/plan"
)

// PerformanceMode selects the pool's worker count, per spec §4.5.
type PerformanceMode uint8

const (
	PerformanceSafe PerformanceMode = iota
	PerformanceBalanced
	PerformanceFast
	PerformanceMax
)

// WorkerCount maps a PerformanceMode to a concrete pool size.
func (m PerformanceMode) WorkerCount() int {
	switch m {
	case PerformanceSafe:
		return 1
	case PerformanceBalanced:
		return 4
	case PerformanceFast:
		return 8
	case PerformanceMax:
		return runtime.NumCPU()
	default:
		return 4
	}
}

// SmallFileThreshold is the size, in bytes, below which an operation is
// batched with others rather than dispatched as its own unit (spec §4.5).
const SmallFileThreshold uint64 = 10 * 1024 * 1024

// DefaultBatchSize is the default number of small-file operations grouped
// into one batch.
const DefaultBatchSize = 50

// MaxInFlightBatches bounds how many batches may be queued for dispatch
// concurrently with the worker pool, per spec §4.5.
const MaxInFlightBatches = 4

// Batch is a unit of dispatch: either a group of small-file operations or a
// single large-file operation.
type Batch struct {
	Operations []plan.Operation
	TotalBytes uint64
}

// BuildBatches groups operations per spec §4.5: large files (at or above
// SmallFileThreshold) each become their own single-operation batch and are
// sorted by descending size so the biggest transfers start first; small
// files are grouped into batches of batchSize.
func BuildBatches(ops []plan.Operation, batchSize int) []Batch {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var large, small []plan.Operation
	for _, op := range ops {
		if op.Size >= SmallFileThreshold {
			large = append(large, op)
		} else {
			small = append(small, op)
		}
	}

	sort.SliceStable(large, func(i, j int) bool { return large[i].Size > large[j].Size })

	var batches []Batch
	for _, op := range large {
		batches = append(batches, Batch{Operations: []plan.Operation{op}, TotalBytes: op.Size})
	}
	for i := 0; i < len(small); i += batchSize {
		end := i + batchSize
		if end > len(small) {
			end = len(small)
		}
		group := small[i:end]
		var total uint64
		for _, op := range group {
			total += op.Size
		}
		batches = append(batches, Batch{Operations: group, TotalBytes: total})
	}
	return batches
}

// Job is the function a Pool dispatches to a worker goroutine for a single
// batch. It must observe ctx for cancellation.
type Job func(ctx context.Context, batch Batch) error

// Pool is a fixed-size worker pool with a pause gate layered over
// cancellation.
type Pool struct {
	workers int
	jobs    chan Batch
	job     Job
	wg      sync.WaitGroup

	pauseMu sync.Mutex
	paused  bool
	resumed *sync.Cond

	errMu sync.Mutex
	errs  []error
}

// New constructs a Pool sized for mode, running job for each dispatched
// batch.
func New(mode PerformanceMode, job Job) *Pool {
	p := &Pool{
		workers: mode.WorkerCount(),
		jobs:    make(chan Batch, MaxInFlightBatches),
		job:     job,
	}
	p.resumed = sync.NewCond(&p.pauseMu)
	return p
}

// Run starts the worker goroutines, dispatches batches, and blocks until
// every batch has been processed or ctx is cancelled. It returns the first
// errors encountered, aggregated rather than stopping dispatch early — the
// copy executor converts I/O failures into reported OperationResults rather
// than aborting the whole run.
func (p *Pool) Run(ctx context.Context, batches []Batch) []error {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx)
	}

	go func() {
		defer close(p.jobs)
		for _, b := range batches {
			p.awaitResume()
			if ctx.Err() != nil {
				return
			}
			select {
			case p.jobs <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	p.wg.Wait()

	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.errs
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for batch := range p.jobs {
		p.awaitResume()
		if err := p.job(ctx, batch); err != nil {
			p.errMu.Lock()
			p.errs = append(p.errs, err)
			p.errMu.Unlock()
		}
	}
}

// Pause blocks subsequent batch dispatch and worker pickup until Resume is
// called. Batches already claimed by a worker run to completion; pause
// takes effect at the next batch boundary.
func (p *Pool) Pause() {
	p.pauseMu.Lock()
	p.paused = true
	p.pauseMu.Unlock()
}

// Resume releases any goroutines blocked in awaitResume.
func (p *Pool) Resume() {
	p.pauseMu.Lock()
	p.paused = false
	p.pauseMu.Unlock()
	p.resumed.Broadcast()
}

func (p *Pool) awaitResume() {
	p.pauseMu.Lock()
	defer p.pauseMu.Unlock()
	for p.paused {
		p.resumed.Wait()
	}
}
