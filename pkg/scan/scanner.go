package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dualsync/engine/pkg/errkind"
	"github.com/dualsync/engine/pkg/filter"
)

// defaultMaxDepth is the loop-prevention depth limit used on platforms
// without reliable symlink-loop detection (spec §4.3).
const defaultMaxDepth = 64

// Options configures a single Scan call. Two Scans (e.g. of roots A and B)
// are fully independent and may be run concurrently from separate
// goroutines — a Scanner holds no shared mutable state across calls.
type Options struct {
	// Root is the absolute path to scan.
	Root string
	// Filter applies ignore rules and attribute predicates.
	Filter *filter.Filter
	// SymlinkPolicy governs whether encountered symlinks are recorded.
	SymlinkPolicy SymlinkPolicy
	// MaxDepth bounds recursion depth for loop prevention. Zero selects
	// defaultMaxDepth.
	MaxDepth int
	// MaximumEntryCount aborts the scan with a Validation error once the
	// number of filtered entries would exceed it. Zero means unlimited
	// (SPEC_FULL.md "Oversized-entry-count guard").
	MaximumEntryCount uint64
	// Cache, if non-nil, is consulted to skip re-stat'ing the files of any
	// directory whose own mtime is unchanged since it was last populated;
	// its subdirectories are still walked (SPEC_FULL.md "Scan result
	// caching for unchanged subtrees").
	Cache *Cache
}

// Result is the output of a single Scan call.
type Result struct {
	Entries  []FileEntry
	Warnings []Warning
	// Cache is the cache to retain for the next Scan of the same root, if
	// caching was requested.
	Cache *Cache
}

// scanner carries the mutable state for a single Scan invocation.
type scanner struct {
	ctx       context.Context
	root      string
	filter    *filter.Filter
	symlinks  SymlinkPolicy
	maxDepth  int
	maxCount  uint64
	cacheIn   *Cache
	cacheOut  *Cache
	entries   []FileEntry
	warnings  []Warning
}

// Scan performs a single synchronous filesystem walk per spec §4.3: entries
// within a directory are emitted in lexicographic order, with subdirectories
// descended before the parent listing continues (depth-first, pre-order).
func Scan(ctx context.Context, opts Options) (Result, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	info, err := os.Lstat(opts.Root)
	if err != nil {
		return Result{}, errkind.New(errkind.Classify(err), opts.Root, err)
	}
	if !info.IsDir() {
		return Result{}, errkind.New(errkind.KindNotADirectory, opts.Root, os.ErrInvalid)
	}

	s := &scanner{
		ctx:      ctx,
		root:     opts.Root,
		filter:   opts.Filter,
		symlinks: opts.SymlinkPolicy,
		maxDepth: maxDepth,
		maxCount: opts.MaximumEntryCount,
		cacheIn:  opts.Cache,
		cacheOut: newCache(),
	}

	if err := s.walk("", 0); err != nil {
		return Result{}, err
	}

	return Result{Entries: s.entries, Warnings: s.warnings, Cache: s.cacheOut}, nil
}

// walk recursively processes the directory at relativePath (relative to the
// scan root; "" denotes the root itself).
func (s *scanner) walk(relativePath string, depth int) error {
	if err := s.ctx.Err(); err != nil {
		return errkind.New(errkind.KindAborted, relativePath, err)
	}

	if depth > s.maxDepth {
		s.warn(relativePath, "maximum scan depth exceeded; subtree skipped")
		return nil
	}

	absolute := filepath.Join(s.root, filepath.FromSlash(relativePath))

	dirInfo, statErr := os.Stat(absolute)
	var dirModTime time.Time
	if statErr == nil {
		dirModTime = dirInfo.ModTime()
		if cached, ok := s.cacheIn.lookup(relativePath, dirModTime); ok {
			s.entries = append(s.entries, cached...)
			s.cacheOut.record(relativePath, dirModTime, cached)
			return s.walkSubdirectoriesOnly(relativePath, absolute, depth)
		}
	}

	dirEntries, err := os.ReadDir(absolute)
	if err != nil {
		// Per spec §4.3, an unreadable directory produces a warning and the
		// subtree is skipped; it does not fail the scan (except at the root,
		// handled by the caller's Lstat above).
		s.warn(relativePath, "unable to read directory: "+err.Error())
		return nil
	}

	names := make([]string, len(dirEntries))
	for i, e := range dirEntries {
		names[i] = e.Name()
	}
	sort.Strings(names)

	byName := make(map[string]os.DirEntry, len(dirEntries))
	for _, e := range dirEntries {
		byName[e.Name()] = e
	}

	var directFiles []FileEntry

	for _, name := range names {
		entry := byName[name]
		childRelative := pathJoin(relativePath, name)

		if entry.IsDir() {
			if !s.filter.IncludeDirectory(childRelative) {
				if !s.filter.ContinueTraversal(childRelative) {
					continue
				}
			}
			if err := s.walk(childRelative, depth+1); err != nil {
				return err
			}
			continue
		}

		before := len(s.entries)
		if err := s.processFile(childRelative, entry); err != nil {
			return err
		}
		directFiles = append(directFiles, s.entries[before:]...)
	}

	if statErr == nil {
		s.cacheOut.record(relativePath, dirModTime, directFiles)
	}

	return nil
}

// walkSubdirectoriesOnly replays directory descent for relativePath without
// re-processing its own files, used when the directory's file listing was
// served from the cache.
func (s *scanner) walkSubdirectoriesOnly(relativePath, absolute string, depth int) error {
	dirEntries, err := os.ReadDir(absolute)
	if err != nil {
		s.warn(relativePath, "unable to read directory: "+err.Error())
		return nil
	}

	names := make([]string, 0, len(dirEntries))
	byName := make(map[string]os.DirEntry, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() {
			names = append(names, e.Name())
			byName[e.Name()] = e
		}
	}
	sort.Strings(names)

	for _, name := range names {
		childRelative := pathJoin(relativePath, name)
		if !s.filter.IncludeDirectory(childRelative) {
			if !s.filter.ContinueTraversal(childRelative) {
				continue
			}
		}
		if err := s.walk(childRelative, depth+1); err != nil {
			return err
		}
	}

	return nil
}

func (s *scanner) processFile(relativePath string, dirEntry os.DirEntry) error {
	info, err := dirEntry.Info()
	if err != nil {
		s.warn(relativePath, "unable to stat entry: "+err.Error())
		return nil
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if s.symlinks == SymlinkPolicySkip {
			return nil
		}
		if !s.filter.IncludeSymlink(relativePath) {
			return nil
		}
		return s.emit(relativePath, FileEntry{
			RelativePath: relativePath,
			AbsolutePath: filepath.Join(s.root, filepath.FromSlash(relativePath)),
			IsSymlink:    true,
		})
	}

	if !info.Mode().IsRegular() {
		// Devices, sockets, and similar unsynchronizable content are simply
		// omitted; they are not files under spec's data model.
		return nil
	}

	if !s.filter.IncludeFile(relativePath, uint64(info.Size()), info.ModTime()) {
		return nil
	}

	return s.emit(relativePath, FileEntry{
		RelativePath: relativePath,
		AbsolutePath: filepath.Join(s.root, filepath.FromSlash(relativePath)),
		Size:         uint64(info.Size()),
		ModTime:      normalizeModTime(info.ModTime()),
		Executable:   isExecutable(info),
	})
}

func (s *scanner) emit(relativePath string, entry FileEntry) error {
	if !validRelativePath(relativePath) {
		s.warn(relativePath, "entry outside scan root; dropped")
		return nil
	}

	if s.maxCount > 0 && uint64(len(s.entries))+1 > s.maxCount {
		return errkind.New(errkind.KindValidation, s.root,
			errTooManyEntries)
	}

	s.entries = append(s.entries, entry)
	return nil
}

func (s *scanner) warn(relativePath, message string) {
	s.warnings = append(s.warnings, Warning{RelativePath: relativePath, Message: message})
}

// pathJoin mirrors the teacher's fast root-relative path join: avoid
// path.Join's cleaning overhead for the common case of joining a single
// path segment onto an already-normalized relative path.
func pathJoin(base, leaf string) string {
	if base == "" {
		return leaf
	}
	return base + "/" + leaf
}

// validRelativePath enforces the spec §3 invariant that a relative path
// never contains ".." or absolute components.
func validRelativePath(path string) bool {
	if path == "" || path[0] == '/' {
		return false
	}
	for _, segment := range splitSlash(path) {
		if segment == ".." || segment == "." {
			return false
		}
	}
	return true
}

func splitSlash(path string) []string {
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			segments = append(segments, path[start:i])
			start = i + 1
		}
	}
	segments = append(segments, path[start:])
	return segments
}

var errTooManyEntries = errTooMany{}

type errTooMany struct{}

func (errTooMany) Error() string { return "scan exceeded maximum entry count" }
