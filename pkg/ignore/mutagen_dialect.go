package ignore

import (
	"errors"
	"fmt"
	pathpkg "path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// cleanPreservingTrailingSlash is a variant of path.Clean that preserves a
// trailing slash, which carries the directory-only flag.
func cleanPreservingTrailingSlash(path string) string {
	var needTrailingSlash bool
	if l := len(path); l > 1 {
		needTrailingSlash = path[l-1] == '/'
	}
	if result := pathpkg.Clean(path); needTrailingSlash {
		return result + "/"
	} else {
		return result
	}
}

// mutagenPattern represents a single parsed doublestar-dialect ignore
// pattern, adapted from the teacher's core/ignore/mutagen package.
type mutagenPattern struct {
	negated       bool
	directoryOnly bool
	matchLeaf     bool
	pattern       string
}

func newMutagenPattern(pattern string) (*mutagenPattern, error) {
	if len(pattern) == 0 {
		return nil, errors.New("empty pattern")
	}

	var negated bool
	if pattern[0] == '!' {
		negated = true
		pattern = pattern[1:]
	}
	if pattern == "" {
		return nil, errors.New("negated empty pattern")
	}

	pattern = cleanPreservingTrailingSlash(pattern)

	if pattern == "/" {
		return nil, errors.New("root pattern")
	} else if pattern == "//" {
		return nil, errors.New("root directory pattern")
	}

	var absolute bool
	if pattern[0] == '/' {
		absolute = true
		pattern = pattern[1:]
	}

	var directoryOnly bool
	if pattern[len(pattern)-1] == '/' {
		directoryOnly = true
		pattern = pattern[:len(pattern)-1]
	}

	containsSlash := strings.IndexByte(pattern, '/') >= 0

	if _, err := doublestar.Match(pattern, "a"); err != nil {
		return nil, fmt.Errorf("unable to validate pattern: %w", err)
	}

	return &mutagenPattern{
		negated:       negated,
		directoryOnly: directoryOnly,
		matchLeaf:     !absolute && !containsSlash,
		pattern:       pattern,
	}, nil
}

func (p *mutagenPattern) matches(path string, directory, symlink bool) bool {
	if p.directoryOnly {
		// A symlink entry is recorded as a sentinel (spec §4.5): its target
		// is never followed or stat'd, so this dialect has no way to confirm
		// it resolves to a directory. Treat directory-only rules as
		// non-matching rather than guessing from the name alone.
		if symlink || !directory {
			return false
		}
	}
	if match, _ := doublestar.Match(p.pattern, path); match {
		return true
	}
	if p.matchLeaf && path != "" {
		if match, _ := doublestar.Match(p.pattern, pathpkg.Base(path)); match {
			return true
		}
	}
	return false
}

// mutagenMatcher implements matcher for the doublestar dialect.
type mutagenMatcher struct {
	patterns            []*mutagenPattern
	negatedPatternCount uint
}

func newMutagenMatcher(patterns []string) (matcher, error) {
	parsed := make([]*mutagenPattern, 0, len(patterns))
	var negated uint
	for _, raw := range patterns {
		p, err := newMutagenPattern(raw)
		if err != nil {
			return nil, fmt.Errorf("unable to parse pattern %q: %w", raw, err)
		}
		parsed = append(parsed, p)
		if p.negated {
			negated++
		}
	}
	return &mutagenMatcher{patterns: parsed, negatedPatternCount: negated}, nil
}

func (m *mutagenMatcher) evaluate(path string, directory, symlink bool) (Status, bool) {
	var status Status

	remaining := m.negatedPatternCount
	for _, p := range m.patterns {
		if status == StatusIgnored && remaining == 0 {
			break
		} else if p.negated {
			remaining--
			if status == StatusUnignored {
				continue
			}
		} else if status == StatusIgnored {
			continue
		}

		if !p.matches(path, directory, symlink) {
			continue
		} else if p.negated {
			status = StatusUnignored
		} else {
			status = StatusIgnored
		}
	}

	// For the doublestar dialect traversal always continues into nominal or
	// unignored directories, and halts beneath ignored or non-directory
	// content.
	if directory && (status == StatusNominal || status == StatusUnignored) {
		return status, true
	}
	return status, false
}
