package plan

import "github.com/dualsync/engine/pkg/errkind"

// Plan is the fixed record produced by a Planner run, per spec §3: ordered
// operation vectors plus the aggregate counts callers need to size progress
// reporting before execution begins.
type Plan struct {
	Creates   []Operation
	Updates   []Operation
	Deletes   []Operation
	Conflicts []Operation

	ToCreate   int
	ToUpdate   int
	ToDelete   int
	ConflictCt int
	TotalBytes uint64
}

// Validate checks invariant #2 from spec §3: no two non-conflict operations
// in a single plan may target the same destination path.
func (p *Plan) Validate() error {
	seen := make(map[string]bool, p.ToCreate+p.ToUpdate+p.ToDelete)
	for _, ops := range [][]Operation{p.Creates, p.Updates, p.Deletes} {
		for _, op := range ops {
			dest := op.DestinationPath()
			if seen[dest] {
				return errkind.New(errkind.KindValidation, dest, errDuplicateDestination)
			}
			seen[dest] = true
		}
	}
	return nil
}

var errDuplicateDestination = plainError("plan contains two operations for the same destination path")

type plainError string

func (e plainError) Error() string { return string(e) }

func (p *Plan) add(op Operation) {
	switch op.Kind {
	case KindCreate:
		p.Creates = append(p.Creates, op)
		p.ToCreate++
		p.TotalBytes += op.Size
	case KindUpdate:
		p.Updates = append(p.Updates, op)
		p.ToUpdate++
		p.TotalBytes += op.Size
	case KindDelete:
		p.Deletes = append(p.Deletes, op)
		p.ToDelete++
	case KindConflict:
		p.Conflicts = append(p.Conflicts, op)
		p.ConflictCt++
	}
}
