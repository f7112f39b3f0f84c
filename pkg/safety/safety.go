// Package safety implements the "safe-mode pattern" concept from spec §4.4
// and §4.7: a path classifier that flags deletion candidates which should
// never be silently removed (VCS metadata, host system directories,
// executables/libraries living under a system path) and demotes them to
// conflicts instead.
package safety

import (
	"path"
	"runtime"
	"strings"
)

// unsafeLibraryExtensions are extensions that, combined with a system-path
// prefix, mark a deletion candidate as unsafe regardless of platform.
var unsafeLibraryExtensions = map[string]bool{
	"so":    true,
	"dll":   true,
	"dylib": true,
	"exe":   true,
	"sys":   true,
}

// vcsDirectoryNames duplicates the ignore package's list; kept local so
// that safety classification has no dependency on ignore-matching
// semantics (a file can be unsafe to delete even if it was never subject to
// an ignore rule, e.g. because the destination root itself is nested
// inside a VCS working copy that the source root is not).
var vcsDirectoryNames = map[string]bool{
	".git":   true,
	".svn":   true,
	".hg":    true,
	".bzr":   true,
	"_darcs": true,
}

// systemPathPrefixes lists host-platform system directories whose contents
// should never be silently deleted, expressed relative to a conventional
// root mapping. These only matter when a root happens to be mapped onto
// (or beneath) one of these locations; they are irrelevant for the common
// case of a root under a user's home directory or project tree.
func systemPathPrefixes() []string {
	if runtime.GOOS == "windows" {
		return []string{"windows", "program files", "program files (x86)", "system32"}
	}
	return []string{"bin", "sbin", "usr/bin", "usr/sbin", "usr/lib", "usr/local/bin", "etc", "boot"}
}

// IsUnsafe reports whether a relative path identifies a deletion candidate
// that should be demoted from Delete to Conflict per spec §4.4: it
// contains a VCS metadata directory component, falls under one of the
// host's reserved system-path prefixes, or carries an executable/library
// extension while falling under a system-path prefix.
func IsUnsafe(relativePath string) bool {
	segments := strings.Split(relativePath, "/")
	for _, segment := range segments {
		if vcsDirectoryNames[segment] {
			return true
		}
	}

	lowered := strings.ToLower(relativePath)
	for _, prefix := range systemPathPrefixes() {
		if lowered == prefix || strings.HasPrefix(lowered, prefix+"/") {
			return true
		}
	}

	ext := strings.TrimPrefix(path.Ext(relativePath), ".")
	if unsafeLibraryExtensions[strings.ToLower(ext)] {
		for _, prefix := range systemPathPrefixes() {
			if strings.HasPrefix(lowered, prefix+"/") {
				return true
			}
		}
	}

	return false
}
