// Package scan implements the Scanner contract from spec §4.3: a recursive,
// filtered, depth-first pre-order walk of a root that emits a finite
// sequence of FileEntry records.
package scan

import "time"

// FileEntry is one regular file (or recorded symlink) discovered by a scan,
// per spec §3.
type FileEntry struct {
	// AbsolutePath is the platform-canonical absolute path.
	AbsolutePath string
	// RelativePath is the path relative to the scan root, forward-slash
	// normalized, with no leading slash. It never contains ".." or absolute
	// components (entries that would violate this are dropped during the
	// walk with a warning).
	RelativePath string
	// Size is the file's byte count. Symlinks recorded under
	// SymlinkPolicyRecord carry a sentinel size of 0.
	Size uint64
	// ModTime is the modification time, truncated to millisecond resolution
	// and normalized to UTC so that comparisons are stable across platforms
	// (spec §3).
	ModTime time.Time
	// IsDirectory indicates this entry is a directory, recorded only when
	// needed for ignore-pattern matching; the Planner consumes files only.
	IsDirectory bool
	// IsSymlink indicates this entry was recorded as a symbolic link rather
	// than followed (spec §9 Open Question 3; SymlinkPolicyRecord only).
	IsSymlink bool
	// Executable reports whether the owner-executable bit was set at scan
	// time (POSIX only; always false on platforms without an executable
	// bit).
	Executable bool
}

// normalizeModTime truncates t to millisecond resolution in UTC, matching
// the cross-platform comparison basis required by spec §3.
func normalizeModTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// ModTimesEqual reports whether two mtimes are equal at millisecond
// resolution, the comparison granularity spec §3 specifies for FileEntry.
func ModTimesEqual(a, b time.Time) bool {
	return normalizeModTime(a).Equal(normalizeModTime(b))
}
