package deletion

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExecuteBackupThenRestore(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data", "file.txt")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(target, []byte("contents"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m := New(filepath.Join(dir, "state"), nil)
	record, err := m.Execute(target, "data/file.txt", ExecuteOptions{Backup: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if record == nil || !record.Recoverable {
		t.Fatalf("expected a recoverable backup record, got %+v", record)
	}
	if record.Method != MethodBackupThenUnlink {
		t.Errorf("expected MethodBackupThenUnlink, got %v", record.Method)
	}
	if record.Size != uint64(len("contents")) {
		t.Errorf("expected the metadata size to match the backed-up file, got %d", record.Size)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("expected original path to be gone, stat error: %v", err)
	}

	sidecar := record.BackupPath + ".meta.json"
	data, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("expected a readable .meta.json sidecar: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected the sidecar to contain metadata")
	}

	if err := m.Restore(record, target); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	restored, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile after restore failed: %v", err)
	}
	if string(restored) != "contents" {
		t.Errorf("expected restored contents %q, got %q", "contents", restored)
	}
	if record.Recoverable {
		t.Error("expected the record to be marked non-recoverable after restore")
	}
}

func TestExecuteUseStagingRecordsStagedMethod(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m := New(filepath.Join(dir, "state"), nil)
	record, err := m.Execute(target, "file.txt", ExecuteOptions{UseStaging: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if record == nil || record.Method != MethodStaged {
		t.Fatalf("expected a MethodStaged record, got %+v", record)
	}
}

func TestExecuteDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m := New(filepath.Join(dir, "state"), nil)
	record, err := m.Execute(target, "file.txt", ExecuteOptions{DryRun: true, Backup: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if record == nil || record.Method != MethodDryRun || record.Recoverable {
		t.Fatalf("expected a non-recoverable MethodDryRun record, got %+v", record)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("expected the dry run to leave the file untouched, got %v", err)
	}
}

func TestExecutePlainUnlinkNoBackup(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m := New(filepath.Join(dir, "state"), nil)
	record, err := m.Execute(target, "file.txt", ExecuteOptions{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if record != nil {
		t.Errorf("expected no backup record for a plain unlink, got %+v", record)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat error: %v", err)
	}
}

func TestCleanupRemovesExpiredHistory(t *testing.T) {
	dir := t.TempDir()
	m := New(dir, nil)
	m.RetentionWindow = 24 * time.Hour

	expired := filepath.Join(dir, "deletion-history", time.Now().Add(-48*time.Hour).Format("2006-01-02"))
	fresh := filepath.Join(dir, "deletion-history", time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(expired, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.MkdirAll(fresh, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	m.Cleanup()

	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Error("expected the expired backup directory to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("expected the fresh backup directory to survive, got %v", err)
	}
}

func TestAnalyzeFlagsUnsafePaths(t *testing.T) {
	m := New(t.TempDir(), nil)
	if m.Analyze(".git/HEAD") {
		t.Error("expected VCS metadata to be classified unsafe")
	}
	if !m.Analyze("docs/readme.txt") {
		t.Error("expected an ordinary file to be classified safe")
	}
}
