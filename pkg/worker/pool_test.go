package worker

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/dualsync/engine/pkg/plan"
)

func opOfSize(relPath string, size uint64) plan.Operation {
	return plan.Operation{Kind: plan.KindCreate, RelPath: relPath, Size: size}
}

func TestBuildBatchesLargeFilesSortedDescending(t *testing.T) {
	ops := []plan.Operation{
		opOfSize("small", 10),
		opOfSize("big1", SmallFileThreshold+100),
		opOfSize("big2", SmallFileThreshold+500),
	}
	batches := BuildBatches(ops, 10)

	if len(batches) != 3 {
		t.Fatalf("expected 3 batches (2 large + 1 small group), got %d", len(batches))
	}
	if batches[0].Operations[0].RelPath != "big2" || batches[1].Operations[0].RelPath != "big1" {
		t.Errorf("expected large files dispatched largest-first, got %+v", batches[:2])
	}
	if len(batches[2].Operations) != 1 || batches[2].Operations[0].RelPath != "small" {
		t.Errorf("expected the small file grouped into its own batch, got %+v", batches[2])
	}
}

func TestBuildBatchesGroupsSmallFiles(t *testing.T) {
	ops := make([]plan.Operation, 0, 25)
	for i := 0; i < 25; i++ {
		ops = append(ops, opOfSize("f", 1))
	}
	batches := BuildBatches(ops, 10)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches of size 10/10/5, got %d", len(batches))
	}
	if len(batches[0].Operations) != 10 || len(batches[2].Operations) != 5 {
		t.Errorf("unexpected batch sizes: %d, %d, %d", len(batches[0].Operations), len(batches[1].Operations), len(batches[2].Operations))
	}
}

func TestPoolRunsAllBatches(t *testing.T) {
	var processed int64
	pool := New(PerformanceBalanced, func(ctx context.Context, b Batch) error {
		atomic.AddInt64(&processed, int64(len(b.Operations)))
		return nil
	})

	batches := BuildBatches([]plan.Operation{opOfSize("a", 1), opOfSize("b", 1), opOfSize("c", 1)}, 2)
	errs := pool.Run(context.Background(), batches)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if atomic.LoadInt64(&processed) != 3 {
		t.Errorf("expected 3 operations processed, got %d", processed)
	}
}

func TestPoolCancellationStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var processed int64
	pool := New(PerformanceSafe, func(ctx context.Context, b Batch) error {
		atomic.AddInt64(&processed, 1)
		return nil
	})

	batches := BuildBatches([]plan.Operation{opOfSize("a", 1)}, 2)
	pool.Run(ctx, batches)
	if got := atomic.LoadInt64(&processed); got != 0 {
		t.Errorf("expected no batches dispatched after cancellation, got %d", got)
	}
}
