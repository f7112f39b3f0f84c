// Package ignore implements the IgnoreMatcher contract from spec §4.1: rules
// loaded from a .syncignore file, inline rules, and a built-in default list,
// evaluated with last-match-wins semantics. It supports two rule dialects
// (Mutagen-style doublestar globs and Docker-style .dockerignore globs), one
// of which is selected per synchronization root.
package ignore

// Status encodes the ignoredness of a path as decided by a single dialect
// matcher, mirroring the teacher's core/ignore.IgnoreStatus three-state
// model (nominal/ignored/unignored) used to support negation rules that
// reach into subtrees of an otherwise-ignored directory.
type Status uint8

const (
	// StatusNominal means no rule matched; the caller falls back to the
	// implicit Include result from spec §4.1.
	StatusNominal Status = iota
	// StatusIgnored means the most specific matching rule excluded the path.
	StatusIgnored
	// StatusUnignored means the most specific matching rule was a negation
	// that re-included the path.
	StatusUnignored
)

// Decision is the public two-valued result of the IgnoreMatcher contract.
type Decision uint8

const (
	// Include means the path passes the matcher and should be processed.
	Include Decision = iota
	// Exclude means the path is ignored and its subtree (for directories)
	// may be skipped entirely unless ContinueTraversal is set.
	Exclude
)

// matcher is the dialect-specific matching engine plugged into Matcher.
type matcher interface {
	// evaluate returns the ignore status for path (relative, forward-slash
	// normalized, no leading slash) along with whether traversal should
	// continue beneath it despite an Exclude/Ignored verdict (needed when a
	// negated rule could unignore content further down the tree). symlink
	// marks a path recorded as a SymlinkPolicyRecord sentinel rather than a
	// real file or directory (spec §4.5): its target is never stat'd, so a
	// dialect cannot treat it as satisfying a directory-only rule.
	evaluate(path string, directory, symlink bool) (Status, bool)
}

// Matcher evaluates a root's ignore rules against scanned paths. It combines
// the built-in default list, optional VCS-directory ignoring, and the
// caller-supplied dialect matcher built from .syncignore/.dockerignore
// content, applying them in the order: defaults, then VCS (if enabled), then
// user rules — with the user rules' verdict taking precedence per spec
// §4.1's "last matching rule wins" since they are evaluated last.
type Matcher struct {
	defaults matcher
	vcs      bool
	user     matcher
}

// New constructs a Matcher for a dialect-specific set of user rules. vcsMode
// additionally forces directories named .git, .hg, .svn, .bzr or _darcs to
// be ignored before the user rules are applied. DefaultPatterns lists the
// same directories, so they are ignored by default even when vcsMode is
// false.
func New(dialect Dialect, patterns []string, vcsMode bool) (*Matcher, error) {
	user, err := newDialectMatcher(dialect, patterns)
	if err != nil {
		return nil, err
	}
	defaults, err := newDialectMatcher(dialect, DefaultPatterns)
	if err != nil {
		// The built-in default list is controlled by us; a failure here is a
		// programming error, not a user input problem.
		panic("invalid built-in default ignore pattern: " + err.Error())
	}
	return &Matcher{defaults: defaults, vcs: vcsMode, user: user}, nil
}

// Matches implements the IgnoreMatcher contract from spec §4.1:
// matches(relative_path, is_directory) -> {Include, Exclude}, with the most
// specific applicable rule winning. isSymlink should be set when relativePath
// was recorded as a symlink sentinel (spec §4.5) rather than stat'd as a
// regular file or directory.
func (m *Matcher) Matches(relativePath string, isDirectory, isSymlink bool) Decision {
	status, _ := m.evaluate(relativePath, isDirectory, isSymlink)
	if status == StatusIgnored {
		return Exclude
	}
	return Include
}

// ContinueTraversal reports whether a Scanner should still descend into an
// excluded directory because a more specific negated rule could unignore
// content beneath it (spec §4.3's depth-first walk needs this to avoid
// silently dropping unignored descendants of an ignored parent).
func (m *Matcher) ContinueTraversal(relativePath string, isDirectory bool) bool {
	_, cont := m.evaluate(relativePath, isDirectory, false)
	return cont
}

func (m *Matcher) evaluate(relativePath string, isDirectory, isSymlink bool) (Status, bool) {
	status, cont := m.defaults.evaluate(relativePath, isDirectory, isSymlink)

	if m.vcs && isDirectory && vcsDirectoryNames[baseName(relativePath)] {
		status, cont = StatusIgnored, false
	}

	if s, c := m.user.evaluate(relativePath, isDirectory, isSymlink); s != StatusNominal {
		status, cont = s, c
	} else if status == StatusNominal {
		cont = c
	}

	return status, cont
}

// baseName returns the final slash-separated component of a normalized
// relative path.
func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// vcsDirectoryNames maps directory names to whether they are VCS metadata
// directories, per the teacher's core/ignore_vcs.go list.
var vcsDirectoryNames = map[string]bool{
	".git":   true,
	".svn":   true,
	".hg":    true,
	".bzr":   true,
	"_darcs": true,
}
