//go:build windows

package scan

import "os"

// isExecutable always reports false on Windows, which has no
// owner-executable permission bit (spec §1: directory/file permissions
// beyond mode bits are not propagated across dissimilar filesystems).
func isExecutable(info os.FileInfo) bool {
	return false
}
