package plan

import (
	"sort"
	"time"

	"github.com/dualsync/engine/pkg/safety"
	"github.com/dualsync/engine/pkg/scan"
)

// Options configures a single planning pass, per spec §4.4.
type Options struct {
	// RootA and RootB are the absolute paths the paired entries were scanned
	// from; they are used only to build SourceAbs/DestAbs, never to touch
	// the filesystem.
	RootA, RootB string

	Direction          Direction
	ConflictResolution ConflictResolution

	// ToleranceMillis is the mtime comparison tolerance (spec §3, §4.4);
	// entries whose mtimes differ by no more than this are considered
	// equal. Defaults to 1000 if zero.
	ToleranceMillis int64

	// TwoWayUpdateSymmetric resolves the Open Question over two-way
	// behavior under ResolutionManual: false (the default, safer reading)
	// always demotes a both-sides-differ pair to a Conflict under manual
	// resolution, requiring a human decision; true opts into the looser
	// legacy behavior of auto-applying Update towards whichever side is
	// newer, the same as ResolutionNewer would, without ever surfacing a
	// Conflict for a plain mtime divergence.
	TwoWayUpdateSymmetric bool
}

func (o Options) tolerance() time.Duration {
	if o.ToleranceMillis <= 0 {
		return time.Second
	}
	return time.Duration(o.ToleranceMillis) * time.Millisecond
}

// Planner pairs two FileEntry sets by relative path and emits the Operation
// set needed to reconcile them, per spec §4.4's decision table.
type Planner struct {
	opts Options
}

// New constructs a Planner for a single run.
func New(opts Options) *Planner {
	return &Planner{opts: opts}
}

// Plan reconciles entriesA (scanned from RootA) against entriesB (scanned
// from RootB) and returns the resulting Plan.
func (p *Planner) Plan(entriesA, entriesB []scan.FileEntry) *Plan {
	byPathA := indexByPath(entriesA)
	byPathB := indexByPath(entriesB)

	result := &Plan{}

	seen := make(map[string]bool, len(byPathA)+len(byPathB))
	for relPath := range byPathA {
		seen[relPath] = true
	}
	for relPath := range byPathB {
		seen[relPath] = true
	}

	paths := make([]string, 0, len(seen))
	for relPath := range seen {
		paths = append(paths, relPath)
	}
	sort.Strings(paths)

	for _, relPath := range paths {
		a, inA := byPathA[relPath]
		b, inB := byPathB[relPath]
		p.planPath(result, relPath, a, inA, b, inB)
	}

	return result
}

func (p *Planner) planPath(result *Plan, relPath string, a scan.FileEntry, inA bool, b scan.FileEntry, inB bool) {
	switch {
	case inA && !inB:
		p.planOneSided(result, relPath, a, true)
	case inB && !inA:
		p.planOneSided(result, relPath, b, false)
	case inA && inB:
		p.planBothSides(result, relPath, a, b)
	}
}

// planOneSided handles a path present on exactly one side: aSide is true
// when the surviving entry is on A, false when it is on B.
//
// A symlink entry (SymlinkPolicyRecord) is a sentinel record, not real file
// content, so it never becomes a Create: per the symlink Open Question
// decision, Create/Update never target symlink entries. It can still be
// deleted — removing a stray symlink at the destination is a plain
// os.Remove, not a copy, so deleteOp is unaffected.
func (p *Planner) planOneSided(result *Plan, relPath string, entry scan.FileEntry, aSide bool) {
	switch p.opts.Direction {
	case AtoB:
		if aSide {
			if entry.IsSymlink {
				return
			}
			result.add(p.createOp(relPath, entry, true))
		} else {
			result.add(p.deleteOp(relPath, entry, false))
		}
	case BtoA:
		if aSide {
			result.add(p.deleteOp(relPath, entry, true))
		} else {
			if entry.IsSymlink {
				return
			}
			result.add(p.createOp(relPath, entry, false))
		}
	case TwoWay:
		if entry.IsSymlink {
			return
		}
		result.add(p.createOp(relPath, entry, aSide))
	}
}

func (p *Planner) planBothSides(result *Plan, relPath string, a, b scan.FileEntry) {
	if a.IsDirectory != b.IsDirectory || a.IsSymlink != b.IsSymlink {
		result.add(p.conflictOp(relPath, a, b, KindTypeMismatch))
		return
	}
	if a.IsDirectory {
		return
	}

	if scan.ModTimesEqual(a.ModTime, b.ModTime) || p.withinTolerance(a, b) {
		return
	}

	aNewer := a.ModTime.After(b.ModTime)
	bNewer := b.ModTime.After(a.ModTime)

	switch p.opts.Direction {
	case AtoB:
		if aNewer {
			result.add(p.updateOp(relPath, a, b, true))
		}
		// B newer under an A-authoritative direction is silently kept as
		// the destination's local edit; spec §4.4 treats AtoB/BtoA as
		// one-way mirrors that never report conflicts.
	case BtoA:
		if bNewer {
			result.add(p.updateOp(relPath, b, a, false))
		}
	case TwoWay:
		p.resolveTwoWay(result, relPath, a, b, aNewer, bNewer)
	}
}

func (p *Planner) resolveTwoWay(result *Plan, relPath string, a, b scan.FileEntry, aNewer, bNewer bool) {
	switch p.opts.ConflictResolution {
	case ResolutionNewer:
		if aNewer {
			result.add(p.updateOp(relPath, a, b, true))
			return
		}
		if bNewer {
			result.add(p.updateOp(relPath, b, a, false))
			return
		}
		result.add(p.conflictOp(relPath, a, b, KindBothModified))
	case ResolutionA:
		result.add(p.updateOp(relPath, a, b, true))
	case ResolutionB:
		result.add(p.updateOp(relPath, b, a, false))
	default:
		if p.opts.TwoWayUpdateSymmetric {
			if aNewer {
				result.add(p.updateOp(relPath, a, b, true))
				return
			}
			if bNewer {
				result.add(p.updateOp(relPath, b, a, false))
				return
			}
		}
		result.add(p.conflictOp(relPath, a, b, KindBothModified))
	}
}

func (p *Planner) withinTolerance(a, b scan.FileEntry) bool {
	diff := a.ModTime.Sub(b.ModTime)
	if diff < 0 {
		diff = -diff
	}
	return diff <= p.opts.tolerance()
}

func (p *Planner) createOp(relPath string, source scan.FileEntry, fromA bool) Operation {
	sourceAbs, destAbs := p.pair(relPath, fromA)
	return Operation{
		Kind:        KindCreate,
		SourceAbs:   sourceAbs,
		DestAbs:     destAbs,
		RelPath:     relPath,
		Size:        source.Size,
		SourceMTime: source.ModTime,
		Executable:  source.Executable,
	}
}

func (p *Planner) updateOp(relPath string, source, dest scan.FileEntry, fromA bool) Operation {
	sourceAbs, destAbs := p.pair(relPath, fromA)
	return Operation{
		Kind:        KindUpdate,
		SourceAbs:   sourceAbs,
		DestAbs:     destAbs,
		RelPath:     relPath,
		Size:        source.Size,
		SourceMTime: source.ModTime,
		DestMTime:   dest.ModTime,
		Executable:  source.Executable,
	}
}

// deleteOp builds a Delete operation for the entry that no longer exists on
// the opposite side. survivorOnA is true when the entry being deleted lives
// on A (i.e. it must be removed from A to match B's absence).
func (p *Planner) deleteOp(relPath string, entry scan.FileEntry, survivorOnA bool) Operation {
	_, destAbs := p.pair(relPath, !survivorOnA)
	op := Operation{
		Kind:      KindDelete,
		DestAbs:   destAbs,
		RelPath:   relPath,
		DestSize:  entry.Size,
		DestEntry: entry,
		Safe:      !safety.IsUnsafe(relPath),
	}
	if !op.Safe {
		conflict := Operation{
			Kind:         KindConflict,
			RelPath:      relPath,
			ConflictKind: KindUnsafeDelete,
		}
		if survivorOnA {
			conflict.SideA = entry
		} else {
			conflict.SideB = entry
		}
		return conflict
	}
	return op
}

func (p *Planner) conflictOp(relPath string, a, b scan.FileEntry, kind ConflictKind) Operation {
	return Operation{
		Kind:         KindConflict,
		RelPath:      relPath,
		SideA:        a,
		SideB:        b,
		ConflictKind: kind,
	}
}

// pair resolves the (source, dest) absolute path pair for a relative path,
// given which root the surviving/authoritative entry lives on.
func (p *Planner) pair(relPath string, fromA bool) (sourceAbs, destAbs string) {
	a := joinRel(p.opts.RootA, relPath)
	b := joinRel(p.opts.RootB, relPath)
	if fromA {
		return a, b
	}
	return b, a
}

func indexByPath(entries []scan.FileEntry) map[string]scan.FileEntry {
	m := make(map[string]scan.FileEntry, len(entries))
	for _, e := range entries {
		m[e.RelativePath] = e
	}
	return m
}

func joinRel(root, relPath string) string {
	if root == "" {
		return relPath
	}
	return root + "/" + relPath
}
