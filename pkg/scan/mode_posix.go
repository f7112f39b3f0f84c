//go:build !windows

package scan

import "os"

// isExecutable reports whether the owner-executable bit is set. This is
// only meaningful on POSIX platforms.
func isExecutable(info os.FileInfo) bool {
	return info.Mode()&0o100 != 0
}
