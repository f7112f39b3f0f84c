package scan

// SymlinkPolicy governs how the Scanner treats symbolic links (spec §4.3,
// §9 Open Question 3). Symlinks are never followed by default; this policy
// only controls whether they are recorded at all.
type SymlinkPolicy uint8

const (
	// SymlinkPolicySkip silently omits symbolic links from the scan result.
	// This is the default.
	SymlinkPolicySkip SymlinkPolicy = iota
	// SymlinkPolicyRecord materializes a FileEntry for each symbolic link
	// (IsSymlink=true, Size=0) so that its presence is visible to callers
	// that inspect scan results directly, but the Planner never targets
	// such entries with Create/Update (SPEC_FULL.md Open Question 3).
	SymlinkPolicyRecord
)
