package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dualsync/engine/pkg/filter"
	"github.com/dualsync/engine/pkg/ignore"
)

func noopFilter(t *testing.T, patterns []string) *filter.Filter {
	t.Helper()
	m, err := ignore.New(ignore.DialectMutagen, patterns, false)
	if err != nil {
		t.Fatalf("ignore.New failed: %v", err)
	}
	return filter.New(m, filter.Options{})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

// TestScanOrderingAndIgnore exercises concrete scenario S1/S4 from spec §8:
// a basic create-only tree and an ignored subtree.
func TestScanOrderingAndIgnore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "lib.js"), "x")
	writeFile(t, filepath.Join(root, "src", "app.js"), "y")
	writeFile(t, filepath.Join(root, "foo.txt"), "hello")

	result, err := Scan(context.Background(), Options{
		Root:   root,
		Filter: noopFilter(t, []string{"node_modules/"}),
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	var paths []string
	for _, e := range result.Entries {
		paths = append(paths, e.RelativePath)
	}

	expected := []string{"foo.txt", "src/app.js"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, paths)
	}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Errorf("index %d: expected %q, got %q", i, expected[i], paths[i])
		}
	}
}

func TestScanSkipsUnreadableDirectoryWithWarning(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.txt"), "hello")
	blocked := filepath.Join(root, "blocked")
	if err := os.MkdirAll(blocked, 0o000); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	defer os.Chmod(blocked, 0o755)

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply when running as root")
	}

	result, err := Scan(context.Background(), Options{Root: root, Filter: noopFilter(t, nil)})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].RelativePath != "ok.txt" {
		t.Fatalf("expected only ok.txt to be scanned, got %v", result.Entries)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning for the unreadable directory, got %d", len(result.Warnings))
	}
}

func TestScanSymlinkPolicy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.txt"), "hello")
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported on this platform: %v", err)
	}

	skipResult, err := Scan(context.Background(), Options{Root: root, Filter: noopFilter(t, nil), SymlinkPolicy: SymlinkPolicySkip})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(skipResult.Entries) != 1 {
		t.Fatalf("expected symlink to be skipped, got %v", skipResult.Entries)
	}

	recordResult, err := Scan(context.Background(), Options{Root: root, Filter: noopFilter(t, nil), SymlinkPolicy: SymlinkPolicyRecord})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(recordResult.Entries) != 2 {
		t.Fatalf("expected symlink to be recorded, got %v", recordResult.Entries)
	}
}

func TestScanMaximumEntryCount(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "1")
	writeFile(t, filepath.Join(root, "b.txt"), "2")

	_, err := Scan(context.Background(), Options{Root: root, Filter: noopFilter(t, nil), MaximumEntryCount: 1})
	if err == nil {
		t.Fatal("expected an error when entry count exceeds the configured maximum")
	}
}

func TestScanCacheReusesUnchangedDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "1")

	cache := NewCache()
	first, err := Scan(context.Background(), Options{Root: root, Filter: noopFilter(t, nil), Cache: cache})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	second, err := Scan(context.Background(), Options{Root: root, Filter: noopFilter(t, nil), Cache: first.Cache})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(second.Entries) != 1 || second.Entries[0].RelativePath != "a.txt" {
		t.Fatalf("expected cached rescan to still report a.txt, got %v", second.Entries)
	}
}

func TestModTimesEqualTruncatesToMillisecond(t *testing.T) {
	a := time.Date(2026, 1, 1, 0, 0, 0, 500_000, time.UTC)
	b := time.Date(2026, 1, 1, 0, 0, 0, 900_000, time.UTC)
	if !ModTimesEqual(a, b) {
		t.Error("expected sub-millisecond differences to be considered equal")
	}
}
