package ignore

import "fmt"

// Dialect selects which ignore rule syntax a Matcher's user rules are
// parsed with (SPEC_FULL.md "Docker-dialect ignore rules").
type Dialect uint8

const (
	// DialectMutagen is the doublestar-based syntax described in spec §4.1:
	// `*`/`**` globs, trailing `/` for directory-only, leading `!` for
	// negation, `#` comments.
	DialectMutagen Dialect = iota
	// DialectDocker delegates to .dockerignore-compatible matching so a root
	// can reuse an existing Docker ignore file unmodified.
	DialectDocker
)

func (d Dialect) String() string {
	switch d {
	case DialectMutagen:
		return "mutagen"
	case DialectDocker:
		return "docker"
	default:
		return "unknown"
	}
}

func newDialectMatcher(dialect Dialect, patterns []string) (matcher, error) {
	switch dialect {
	case DialectMutagen:
		return newMutagenMatcher(patterns)
	case DialectDocker:
		return newDockerMatcher(patterns)
	default:
		return nil, fmt.Errorf("unknown ignore dialect: %d", dialect)
	}
}

// ValidPattern reports whether pattern is syntactically valid under the
// given dialect, without constructing a full Matcher.
func ValidPattern(dialect Dialect, pattern string) bool {
	_, err := newDialectMatcher(dialect, []string{pattern})
	return err == nil
}
