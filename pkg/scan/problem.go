package scan

import (
	"fmt"
	"sort"
)

// Warning records a non-fatal scan problem: an unreadable directory that was
// skipped, a malformed ignore rule, or an entry dropped for violating the
// relative-path invariant (spec §3, §4.3). Scanning continues after every
// warning; only EnsureValid-style hard invariant violations would abort a
// scan, and none currently exist.
type Warning struct {
	RelativePath string
	Message      string
}

func (w Warning) String() string {
	if w.RelativePath == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.RelativePath, w.Message)
}

// sortableWarnings implements sort.Interface so that warnings can be
// presented in a deterministic order regardless of which goroutine observed
// them first.
type sortableWarnings []Warning

func (s sortableWarnings) Len() int      { return len(s) }
func (s sortableWarnings) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s sortableWarnings) Less(i, j int) bool {
	return s[i].RelativePath < s[j].RelativePath
}

// SortWarnings sorts warnings by relative path for stable, reproducible
// reporting.
func SortWarnings(warnings []Warning) {
	sort.Sort(sortableWarnings(warnings))
}
