package copy

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCopiesContentAndMTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "out", "dst.txt")

	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	if err := File(context.Background(), "src.txt", src, dst, 5, mtime, false, Options{}); err != nil {
		t.Fatalf("File failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected contents %q, got %q", "hello", data)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("expected mtime %v, got %v", mtime, info.ModTime())
	}
}

func TestFileLeavesNoPartialOutputOnSourceRemoval(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "missing.txt")
	dst := filepath.Join(dir, "dst.txt")

	err := File(context.Background(), "missing.txt", src, dst, 0, time.Now(), false, Options{})
	if err == nil {
		t.Fatal("expected an error for a missing source file")
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Errorf("expected no destination file to be created, stat error: %v", statErr)
	}
}

func TestFileExecutableBitPreserved(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run.sh")
	dst := filepath.Join(dir, "run-copy.sh")

	if err := os.WriteFile(src, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := File(context.Background(), "run.sh", src, dst, 10, time.Now(), true, Options{}); err != nil {
		t.Fatalf("File failed: %v", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode()&0o100 == 0 {
		t.Error("expected the owner-executable bit to be preserved")
	}
}

func TestFileVerifySucceedsOnIntactWrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	if err := os.WriteFile(src, []byte("stable content"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := File(context.Background(), "src.txt", src, dst, 14, time.Now(), false, Options{Verify: true}); err != nil {
		t.Fatalf("expected verification to succeed when the source is untouched: %v", err)
	}
}

// TestFileVerifyDetectsCorruption exercises the failure mode spec §4.6 step
// 4 exists for: the bytes actually written to disk diverge from the hash
// accumulated while streaming from source. verify compares the written file
// (not a second read of source) against that hash, so corrupting the
// on-disk file after it is written and re-running verify against the
// original source hash must report a mismatch.
func TestFileVerifyDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	written := filepath.Join(dir, "written.txt")

	if err := os.WriteFile(src, []byte("stable content"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(written, []byte("corrupted truncated con"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	sourceHash := sha256.Sum256([]byte("stable content"))
	if err := verify(written, sourceHash[:]); err == nil {
		t.Fatal("expected verify to detect that the written file diverges from the source hash")
	}

	// And the matching case must succeed: verifying the unmodified source
	// content against its own hash.
	if err := verify(src, sourceHash[:]); err != nil {
		t.Errorf("expected verify to succeed against the unmodified source: %v", err)
	}
}
