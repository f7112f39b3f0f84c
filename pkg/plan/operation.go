// Package plan implements the Planner contract from spec §4.4: pairing file
// entries from both roots by relative path and emitting the Operation and
// Conflict values needed to reconcile them under a chosen Direction.
package plan

import (
	"time"

	"github.com/dualsync/engine/pkg/scan"
)

// Direction selects which root is authoritative, per spec §4.4.
type Direction uint8

const (
	// AtoB mirrors root A onto root B.
	AtoB Direction = iota
	// BtoA mirrors root B onto root A.
	BtoA
	// TwoWay reconciles both roots, raising conflicts when both sides
	// changed.
	TwoWay
)

func (d Direction) String() string {
	switch d {
	case AtoB:
		return "a-to-b"
	case BtoA:
		return "b-to-a"
	case TwoWay:
		return "two-way"
	default:
		return "unknown"
	}
}

// ConflictResolution selects how TwoWay conflicts are handled, per spec
// §4.4.
type ConflictResolution uint8

const (
	// ResolutionManual leaves a both-modified pair unexecuted and reports it
	// as a Conflict. This is the default. Type-mismatch and unsafe-delete
	// conflicts are emitted under every resolution.
	ResolutionManual ConflictResolution = iota
	// ResolutionNewer resolves in favor of whichever side has the newer
	// mtime.
	ResolutionNewer
	// ResolutionA always resolves in favor of side A.
	ResolutionA
	// ResolutionB always resolves in favor of side B.
	ResolutionB
)

// ConflictKind classifies why a pair of entries could not be reconciled
// automatically (spec §3).
type ConflictKind uint8

const (
	// KindBothModified indicates both sides differ from one another by more
	// than the mtime tolerance with no resolution policy to break the tie.
	KindBothModified ConflictKind = iota
	// KindTypeMismatch indicates one side holds a file and the other holds
	// a directory (or symlink) at the same relative path.
	KindTypeMismatch
	// KindUnsafeDelete indicates a deletion candidate matched a safe-mode
	// pattern (spec §4.4, §4.7) and was demoted from Delete to Conflict.
	KindUnsafeDelete
)

// Kind tags the variant of an Operation (spec §3).
type Kind uint8

const (
	KindCreate Kind = iota
	KindUpdate
	KindDelete
	KindConflict
)

// Operation is the tagged variant described in spec §3. Exactly the fields
// relevant to Kind are populated; the rest are zero-valued.
type Operation struct {
	Kind Kind

	// Populated for Create and Update.
	SourceAbs    string
	DestAbs      string
	RelPath      string
	Size         uint64
	SourceMTime  time.Time
	Executable   bool

	// Additionally populated for Update.
	DestMTime time.Time

	// Populated for Delete.
	DestSize  uint64
	DestEntry scan.FileEntry
	Safe      bool

	// Populated for Conflict.
	SideA        scan.FileEntry
	SideB        scan.FileEntry
	ConflictKind ConflictKind
}

// DestinationPath returns the path this operation would write to, or the
// empty string for Conflict operations, which touch nothing.
func (o Operation) DestinationPath() string {
	switch o.Kind {
	case KindCreate, KindUpdate, KindDelete:
		return o.DestAbs
	default:
		return ""
	}
}
