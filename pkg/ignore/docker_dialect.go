package ignore

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/dualsync/engine/pkg/ignore/docker/internal/third_party/patternmatcher"
)

// newValidatedPatternMatcher constructs a patternmatcher.PatternMatcher,
// rejecting escape sequences so that rule sets stay portable across hosts.
func newValidatedPatternMatcher(patterns []string) (*patternmatcher.PatternMatcher, error) {
	for _, pattern := range patterns {
		if strings.IndexByte(pattern, '\\') >= 0 {
			return nil, errors.New("escape sequences disallowed in portable ignore patterns")
		}
	}

	m, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, err
	}
	if err := m.PrecompileForEngine(); err != nil {
		return nil, err
	}

	for _, pattern := range m.Patterns() {
		if pattern.String() == string(filepath.Separator) {
			return nil, errors.New("root pattern")
		}
	}

	return m, nil
}

// dockerMatcher implements matcher for the Docker .dockerignore dialect.
type dockerMatcher struct {
	m *patternmatcher.PatternMatcher
}

func newDockerMatcher(patterns []string) (matcher, error) {
	m, err := newValidatedPatternMatcher(patterns)
	if err != nil {
		return nil, err
	}
	return &dockerMatcher{m: m}, nil
}

func (d *dockerMatcher) evaluate(path string, directory, symlink bool) (Status, bool) {
	// .dockerignore has no notion of a symlink sentinel; a symlink is
	// matched as a plain leaf the same way Docker's build context excludes
	// unresolved symlinks, never as a directory.
	status, continueTraversal := d.m.MatchesForEngine(path, directory && !symlink)
	switch status {
	case patternmatcher.MatchStatusMatched:
		return StatusIgnored, continueTraversal
	case patternmatcher.MatchStatusInverted:
		return StatusUnignored, continueTraversal
	default:
		return StatusNominal, continueTraversal
	}
}
