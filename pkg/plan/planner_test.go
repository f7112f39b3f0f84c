package plan

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dualsync/engine/pkg/scan"
)

func entry(relPath string, size uint64, mtime time.Time) scan.FileEntry {
	return scan.FileEntry{
		AbsolutePath: "/abs/" + relPath,
		RelativePath: relPath,
		Size:         size,
		ModTime:      mtime,
	}
}

// TestPlanCreateOnly exercises concrete scenario S1 from spec §8: a file
// present only on A under AtoB must yield a single Create.
func TestPlanCreateOnly(t *testing.T) {
	a := []scan.FileEntry{entry("foo.txt", 5, time.Unix(100, 0))}
	var b []scan.FileEntry

	p := New(Options{RootA: "/a", RootB: "/b", Direction: AtoB})
	result := p.Plan(a, b)

	if result.ToCreate != 1 || result.ToUpdate != 0 || result.ToDelete != 0 || result.ConflictCt != 0 {
		t.Fatalf("unexpected plan: %+v", result)
	}
	op := result.Creates[0]
	if op.RelPath != "foo.txt" || op.DestAbs != "/b/foo.txt" || op.SourceAbs != "/a/foo.txt" {
		t.Errorf("unexpected create operation: %+v", op)
	}
}

// TestPlanUpdateOlderSide exercises scenario S2: both sides have the file,
// A is newer, AtoB direction should update B.
func TestPlanUpdateOlderSide(t *testing.T) {
	a := []scan.FileEntry{entry("f", 10, time.Unix(300, 0))}
	b := []scan.FileEntry{entry("f", 3, time.Unix(200, 0))}

	p := New(Options{RootA: "/a", RootB: "/b", Direction: AtoB, ToleranceMillis: 1})
	result := p.Plan(a, b)

	if result.ToUpdate != 1 {
		t.Fatalf("expected one update, got %+v", result)
	}
	if result.Updates[0].SourceAbs != "/a/f" || result.Updates[0].DestAbs != "/b/f" {
		t.Errorf("unexpected update direction: %+v", result.Updates[0])
	}
}

// TestPlanTwoWayConflictToleranceSensitivity exercises scenario S3: A =
// mtime 300, B = mtime 200, TwoWay + manual resolution. At tol=1000ms the
// 100ms difference is within tolerance (no conflict, no writes); at
// tol=50ms it produces a Conflict.
func TestPlanTwoWayConflictToleranceSensitivity(t *testing.T) {
	a := []scan.FileEntry{entry("f", 1, time.UnixMilli(300))}
	b := []scan.FileEntry{entry("f", 1, time.UnixMilli(200))}

	within := New(Options{RootA: "/a", RootB: "/b", Direction: TwoWay, ConflictResolution: ResolutionManual, ToleranceMillis: 1000})
	result := within.Plan(a, b)
	if result.ToCreate+result.ToUpdate+result.ToDelete+result.ConflictCt != 0 {
		t.Fatalf("expected no operations within tolerance, got %+v", result)
	}

	outside := New(Options{RootA: "/a", RootB: "/b", Direction: TwoWay, ConflictResolution: ResolutionManual, ToleranceMillis: 50})
	result = outside.Plan(a, b)
	if result.ConflictCt != 1 {
		t.Fatalf("expected one conflict outside tolerance, got %+v", result)
	}
	if result.Conflicts[0].ConflictKind != KindBothModified {
		t.Errorf("expected both_modified conflict kind, got %v", result.Conflicts[0].ConflictKind)
	}
}

// TestPlanTwoWaySymmetricUpdateUnderManualResolution covers the
// TwoWayUpdateSymmetric knob: under ResolutionManual (the default), a plain
// mtime divergence normally demotes to a Conflict, but with the knob set
// true it instead auto-applies Update towards the newer side, matching
// ResolutionNewer's behavior without requiring the resolution to be changed.
func TestPlanTwoWaySymmetricUpdateUnderManualResolution(t *testing.T) {
	a := []scan.FileEntry{entry("f", 1, time.UnixMilli(300))}
	b := []scan.FileEntry{entry("f", 1, time.UnixMilli(200))}

	withoutKnob := New(Options{RootA: "/a", RootB: "/b", Direction: TwoWay, ConflictResolution: ResolutionManual, ToleranceMillis: 50})
	result := withoutKnob.Plan(a, b)
	if result.ConflictCt != 1 || result.ToUpdate != 0 {
		t.Fatalf("expected manual resolution to conflict without the knob, got %+v", result)
	}

	withKnob := New(Options{RootA: "/a", RootB: "/b", Direction: TwoWay, ConflictResolution: ResolutionManual, ToleranceMillis: 50, TwoWayUpdateSymmetric: true})
	result = withKnob.Plan(a, b)
	if result.ToUpdate != 1 || result.ConflictCt != 0 {
		t.Fatalf("expected the symmetric knob to auto-resolve towards the newer side, got %+v", result)
	}
	if result.Updates[0].SourceAbs != "/a/f" {
		t.Errorf("expected A (the newer side) to win, got %+v", result.Updates[0])
	}
}

func TestPlanTwoWayNewerWinsResolution(t *testing.T) {
	a := []scan.FileEntry{entry("f", 1, time.UnixMilli(300))}
	b := []scan.FileEntry{entry("f", 1, time.UnixMilli(200))}

	p := New(Options{RootA: "/a", RootB: "/b", Direction: TwoWay, ConflictResolution: ResolutionNewer, ToleranceMillis: 50})
	result := p.Plan(a, b)

	if result.ToUpdate != 1 || result.ConflictCt != 0 {
		t.Fatalf("expected newer-wins to resolve without a conflict, got %+v", result)
	}
	if result.Updates[0].SourceAbs != "/a/f" {
		t.Errorf("expected A (the newer side) to win, got %+v", result.Updates[0])
	}
}

func TestPlanTypeMismatchIsConflict(t *testing.T) {
	a := []scan.FileEntry{entry("f", 1, time.Unix(1, 0))}
	b := []scan.FileEntry{{AbsolutePath: "/b/f", RelativePath: "f", IsDirectory: true}}

	p := New(Options{RootA: "/a", RootB: "/b", Direction: TwoWay})
	result := p.Plan(a, b)

	if result.ConflictCt != 1 || result.Conflicts[0].ConflictKind != KindTypeMismatch {
		t.Fatalf("expected a type-mismatch conflict, got %+v", result)
	}
}

func TestPlanOneSidedFileUnderTwoWayIsCreated(t *testing.T) {
	var a []scan.FileEntry
	b := []scan.FileEntry{entry("stale.txt", 4, time.Unix(1, 0))}

	p := New(Options{RootA: "/a", RootB: "/b", Direction: TwoWay})
	result := p.Plan(a, b)

	if result.ToCreate != 1 {
		t.Fatalf("two-way treats a one-sided file as a create back onto the missing side, got %+v", result)
	}
	if result.Creates[0].SourceAbs != "/b/stale.txt" || result.Creates[0].DestAbs != "/a/stale.txt" {
		t.Errorf("unexpected create direction: %+v", result.Creates[0])
	}
}

func TestPlanUnsafeDeleteDemotedToConflict(t *testing.T) {
	a := []scan.FileEntry{entry(".git/HEAD", 4, time.Unix(1, 0))}
	var b []scan.FileEntry

	p := New(Options{RootA: "/a", RootB: "/b", Direction: BtoA})
	result := p.Plan(a, b)

	if result.ToDelete != 0 || result.ConflictCt != 1 {
		t.Fatalf("expected the unsafe delete to be demoted to a conflict, got %+v", result)
	}
	if result.Conflicts[0].ConflictKind != KindUnsafeDelete {
		t.Errorf("expected unsafe-delete conflict kind, got %v", result.Conflicts[0].ConflictKind)
	}
}

// TestPlanIsDeterministicAcrossRuns uses go-cmp for a structural diff
// rather than a field-by-field assertion, since Plan carries several
// parallel operation vectors and a diff pinpoints exactly which one
// changed.
func TestPlanIsDeterministicAcrossRuns(t *testing.T) {
	a := []scan.FileEntry{entry("f", 1, time.Unix(1, 0))}
	var b []scan.FileEntry

	opts := Options{RootA: "/a", RootB: "/b", Direction: AtoB}
	first := New(opts).Plan(a, b)
	second := New(opts).Plan(a, b)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("expected identical plans across runs (-first +second):\n%s", diff)
	}
}

// TestPlanOneSidedSymlinkExcludedFromCreate covers the symlink Open
// Question decision: a recorded symlink entry present on only one side
// must never produce a Create operation, in any direction — placing the
// entry on whichever side that direction would otherwise copy from.
func TestPlanOneSidedSymlinkExcludedFromCreate(t *testing.T) {
	link := scan.FileEntry{AbsolutePath: "/abs/link", RelativePath: "link", IsSymlink: true}

	cases := []struct {
		direction Direction
		onA       bool
	}{
		{AtoB, true},  // AtoB creates from A-only entries
		{BtoA, false}, // BtoA creates from B-only entries
		{TwoWay, true},
	}

	for _, c := range cases {
		var a, b []scan.FileEntry
		if c.onA {
			a = []scan.FileEntry{link}
		} else {
			b = []scan.FileEntry{link}
		}

		p := New(Options{RootA: "/a", RootB: "/b", Direction: c.direction})
		result := p.Plan(a, b)

		if result.ToCreate != 0 {
			t.Errorf("direction %v: expected no Create for a one-sided symlink, got %+v", c.direction, result)
		}
	}
}

func TestPlanDisjointDestinations(t *testing.T) {
	a := []scan.FileEntry{entry("a.txt", 1, time.Unix(1, 0)), entry("b.txt", 1, time.Unix(1, 0))}
	var b []scan.FileEntry

	p := New(Options{RootA: "/a", RootB: "/b", Direction: AtoB})
	result := p.Plan(a, b)
	if err := result.Validate(); err != nil {
		t.Fatalf("expected a valid plan, got %v", err)
	}
}
