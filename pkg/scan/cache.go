package scan

import "time"

// directoryRecord is the cached snapshot for a single directory: the
// directory's own mtime at the time of caching, plus the filtered file
// entries that were found directly within it (not including
// subdirectories, which are cached independently under their own relative
// paths).
type directoryRecord struct {
	modTime time.Time
	entries []FileEntry
}

// Cache lets a Scanner skip re-stat'ing the files of a directory whose own
// mtime has not advanced since the previous scan (SPEC_FULL.md "Scan result
// caching for unchanged subtrees"). It is a metadata-only cache: unlike the
// teacher's content-digest cache, this engine never computes content
// digests during a scan (files are copied whole, not content-addressed), so
// staleness is detected purely from directory mtime.
//
// A Cache produced by one Scan is intended to be passed as the Cache option
// to the next Scan of the same root; it is not safe for concurrent use by
// multiple in-flight scans.
type Cache struct {
	records map[string]directoryRecord
}

func newCache() *Cache {
	return &Cache{records: make(map[string]directoryRecord)}
}

// NewCache returns an empty Cache suitable for a first scan.
func NewCache() *Cache {
	return newCache()
}

func (c *Cache) lookup(relativePath string, modTime time.Time) ([]FileEntry, bool) {
	if c == nil {
		return nil, false
	}
	record, ok := c.records[relativePath]
	if !ok || !record.modTime.Equal(modTime) {
		return nil, false
	}
	return record.entries, true
}

func (c *Cache) record(relativePath string, modTime time.Time, entries []FileEntry) {
	c.records[relativePath] = directoryRecord{modTime: modTime, entries: append([]FileEntry(nil), entries...)}
}
