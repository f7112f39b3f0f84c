// Package filter implements the Filter contract from spec §4.2: an
// IgnoreMatcher composed with optional attribute predicates (extension,
// size range, mtime range, name patterns). A file passes iff every enabled
// predicate accepts it; directories are only subjected to ignore rules.
package filter

import (
	pathpkg "path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dualsync/engine/pkg/ignore"
)

// Options configures the optional predicates layered on top of ignore
// rules. Zero-valued fields disable the corresponding predicate.
type Options struct {
	// Extensions, if non-empty, restricts files to one of these extensions
	// (without the leading dot, case-sensitive to match host case
	// sensitivity the same way ignore matching does).
	Extensions []string
	// MinSize and MaxSize bound file size in bytes. A zero MaxSize means no
	// upper bound.
	MinSize uint64
	MaxSize uint64
	// After and Before bound mtime. Zero values disable the respective
	// bound.
	After  time.Time
	Before time.Time
	// NamePatterns, if non-empty, is an additive (OR) set of glob patterns
	// matched against the file's base name.
	NamePatterns []string
}

// Filter combines an ignore.Matcher with the attribute predicates in
// Options.
type Filter struct {
	ignorer *ignore.Matcher
	opts    Options
}

// New constructs a Filter.
func New(ignorer *ignore.Matcher, opts Options) *Filter {
	return &Filter{ignorer: ignorer, opts: opts}
}

// IncludeDirectory reports whether a directory should be descended into.
// Directories are only subjected to ignore rules (spec §4.2).
func (f *Filter) IncludeDirectory(relativePath string) bool {
	return f.ignorer.Matches(relativePath, true, false) == ignore.Include
}

// IncludeSymlink reports whether a recorded symlink sentinel (spec §4.5)
// passes ignore rules. Unlike IncludeFile, no attribute predicate applies:
// a symlink's size and mtime are never resolved from its target.
func (f *Filter) IncludeSymlink(relativePath string) bool {
	return f.ignorer.Matches(relativePath, false, true) == ignore.Include
}

// ContinueTraversal reports whether a Scanner should still descend into a
// directory excluded by ignore rules because a negated rule could unignore
// content beneath it.
func (f *Filter) ContinueTraversal(relativePath string) bool {
	return f.ignorer.ContinueTraversal(relativePath, true)
}

// IncludeFile reports whether a file passes both ignore rules and every
// enabled attribute predicate.
func (f *Filter) IncludeFile(relativePath string, size uint64, mtime time.Time) bool {
	if f.ignorer.Matches(relativePath, false, false) != ignore.Include {
		return false
	}

	if len(f.opts.Extensions) > 0 && !f.matchesExtension(relativePath) {
		return false
	}

	if f.opts.MinSize > 0 && size < f.opts.MinSize {
		return false
	}
	if f.opts.MaxSize > 0 && size > f.opts.MaxSize {
		return false
	}

	if !f.opts.After.IsZero() && mtime.Before(f.opts.After) {
		return false
	}
	if !f.opts.Before.IsZero() && !mtime.Before(f.opts.Before) {
		return false
	}

	if len(f.opts.NamePatterns) > 0 && !f.matchesAnyNamePattern(relativePath) {
		return false
	}

	return true
}

func (f *Filter) matchesExtension(relativePath string) bool {
	ext := strings.TrimPrefix(pathpkg.Ext(relativePath), ".")
	for _, allowed := range f.opts.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (f *Filter) matchesAnyNamePattern(relativePath string) bool {
	base := pathpkg.Base(relativePath)
	for _, pattern := range f.opts.NamePatterns {
		if match, _ := doublestar.Match(pattern, base); match {
			return true
		}
	}
	return false
}
