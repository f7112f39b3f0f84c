// Package deletion implements the deletion manager (component C7): safe
// orphan classification (shared with pkg/plan via pkg/safety), pre-delete
// backup, restore, and retention-window cleanup.
//
// Cleanup's age-based retention sweep is grounded on the teacher's
// pkg/housekeeping.housekeepCaches/housekeepStaging pair: list a directory
// of dated entries, remove whichever are older than a maximum age,
// skipping failures rather than aborting the whole sweep.
package deletion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dualsync/engine/pkg/errkind"
	"github.com/dualsync/engine/pkg/logging"
	"github.com/dualsync/engine/pkg/safety"
)

// Method records how a deletion was carried out, per spec §4.7's
// {recycle, permanent, dry_run, failed} set.
type Method uint8

const (
	// MethodUnlink is a plain permanent delete with no backup.
	MethodUnlink Method = iota
	// MethodBackupThenUnlink moves the file into deletion-history before it
	// disappears from its original location ("permanent", backed up).
	MethodBackupThenUnlink
	// MethodStaged is the non-native recycle-bin fallback (Open Question
	// decision 2): UseStaging moved the file into deletion-history instead
	// of a genuine OS recycle bin, and is recorded distinctly from
	// MethodBackupThenUnlink so callers can tell "backed up for safety"
	// apart from "recycled".
	MethodStaged
	// MethodDryRun indicates no filesystem mutation occurred.
	MethodDryRun
)

// BackupRecord describes a single pre-delete backup, per spec §3.
type BackupRecord struct {
	ID          string
	RelPath     string
	BackupPath  string
	DeletedAt   time.Time
	Method      Method
	Recoverable bool
	Size        uint64
}

// metaSidecar is the JSON content written alongside every backup file,
// per the `.meta.json` sidecar named in spec's state-layout section.
type metaSidecar struct {
	ID        string    `json:"id"`
	RelPath   string    `json:"relPath"`
	DeletedAt time.Time `json:"deletedAt"`
	Method    Method    `json:"method"`
	Size      uint64    `json:"size"`
}

// ExecuteOptions configures a single Execute call, mirroring spec §4.7's
// execute(plan, {dry_run, backup, use_staging}).
type ExecuteOptions struct {
	// DryRun, when true, performs no filesystem mutation at all; Execute
	// returns a MethodDryRun record and leaves destAbs untouched.
	DryRun bool
	// Backup moves destAbs into deletion-history (with a .meta.json
	// sidecar) before it disappears, rather than a plain unlink.
	Backup bool
	// UseStaging requests the recycle-bin-equivalent fallback; since this
	// engine has no OS-native recycle bin integration, it is recorded as
	// MethodStaged rather than claiming a genuine recycle (Open Question
	// decision 2). Implies Backup's move-not-remove behavior.
	UseStaging bool
}

// Manager executes and restores backed-up deletions. StateDir is the root
// under which dated backup subdirectories are created
// (<StateDir>/deletion-history/<YYYY-MM-DD>/<epoch>-<basename>), mirroring
// the teacher's dated-subdirectory convention for caches and staging
// roots.
type Manager struct {
	StateDir string
	Logger   *logging.Logger

	// RetentionWindow is the maximum age a backup is kept before Cleanup
	// removes it. Defaults to 7 days, the same window the teacher uses for
	// its cache and staging root housekeeping.
	RetentionWindow time.Duration
}

// New constructs a Manager rooted at stateDir.
func New(stateDir string, logger *logging.Logger) *Manager {
	return &Manager{StateDir: stateDir, Logger: logger, RetentionWindow: 7 * 24 * time.Hour}
}

func (m *Manager) historyDir(now time.Time) string {
	return filepath.Join(m.StateDir, "deletion-history", now.Format("2006-01-02"))
}

// Execute deletes destAbs (relPath's absolute path) per opts. A dry run
// touches nothing; backup or staging moves destAbs into the dated history
// directory (writing a .meta.json sidecar, invariant #6) before it
// disappears from its original location; otherwise it is a plain unlink.
// It returns the BackupRecord when a backup/staged move was made, or nil
// for a plain unlink or a dry run.
func (m *Manager) Execute(destAbs, relPath string, opts ExecuteOptions) (*BackupRecord, error) {
	if opts.DryRun {
		m.Logger.Debugf("dry-run: would delete %s", relPath)
		return &BackupRecord{Method: MethodDryRun, RelPath: relPath, Recoverable: false}, nil
	}

	if !opts.Backup && !opts.UseStaging {
		if err := os.Remove(destAbs); err != nil {
			return nil, errkind.New(errkind.Classify(err), relPath, err)
		}
		return nil, nil
	}

	now := time.Now()
	dir := m.historyDir(now)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errkind.New(errkind.Classify(err), relPath, err)
	}

	base := fmt.Sprintf("%d-%s", now.UnixNano(), filepath.Base(relPath))
	backupPath := filepath.Join(dir, base)
	if err := os.Rename(destAbs, backupPath); err != nil {
		return nil, errkind.New(errkind.Classify(err), relPath, err)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		return nil, errkind.New(errkind.Classify(err), relPath, err)
	}
	size := uint64(info.Size())

	method := MethodBackupThenUnlink
	if opts.UseStaging {
		method = MethodStaged
	}

	record := &BackupRecord{
		ID:          uuid.NewString(),
		RelPath:     relPath,
		BackupPath:  backupPath,
		DeletedAt:   now,
		Method:      method,
		Recoverable: true,
		Size:        size,
	}

	if err := m.writeMetaSidecar(backupPath, record); err != nil {
		m.Logger.Warn(fmt.Errorf("failed to write metadata sidecar for %s: %w", backupPath, err))
	}

	m.Logger.Debugf("moved %s to %s before deletion (method=%d)", relPath, backupPath, method)
	return record, nil
}

// writeMetaSidecar writes the `.meta.json` sidecar named in spec's state
// layout alongside backupPath.
func (m *Manager) writeMetaSidecar(backupPath string, record *BackupRecord) error {
	meta := metaSidecar{
		ID:        record.ID,
		RelPath:   record.RelPath,
		DeletedAt: record.DeletedAt,
		Method:    record.Method,
		Size:      record.Size,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(backupPath+".meta.json", data, 0o644)
}

// Restore moves a previously backed-up file back to its original location.
func (m *Manager) Restore(record *BackupRecord, destAbs string) error {
	if !record.Recoverable {
		return errkind.New(errkind.KindValidation, record.RelPath, fmt.Errorf("backup record is not recoverable"))
	}
	if err := os.MkdirAll(filepath.Dir(destAbs), 0o755); err != nil {
		return errkind.New(errkind.Classify(err), record.RelPath, err)
	}
	if err := os.Rename(record.BackupPath, destAbs); err != nil {
		return errkind.New(errkind.Classify(err), record.RelPath, err)
	}
	// Best-effort: the sidecar has no bearing on whether the restore itself
	// succeeded.
	os.Remove(record.BackupPath + ".meta.json")
	record.Recoverable = false
	return nil
}

// Cleanup removes dated backup subdirectories older than RetentionWindow,
// skipping (and logging) any entry it cannot remove rather than aborting
// the whole sweep, matching the teacher's housekeeping style.
func (m *Manager) Cleanup() {
	root := filepath.Join(m.StateDir, "deletion-history")
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-m.RetentionWindow)
	for _, entry := range entries {
		day, err := time.Parse("2006-01-02", entry.Name())
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			full := filepath.Join(root, entry.Name())
			if err := os.RemoveAll(full); err != nil {
				m.Logger.Warn(fmt.Errorf("failed to clean up backup directory %s: %w", full, err))
			}
		}
	}
}

// Analyze classifies a destination-only relative path (one with no
// counterpart in the filtered source set) as a safe delete or an unsafe
// candidate requiring manual resolution, per spec §4.7. This mirrors
// pkg/plan's orphan-deletion pass; both consume pkg/safety directly so
// that a caller using Manager.Analyze standalone (without going through a
// full Planner run) gets the same classification.
func (m *Manager) Analyze(relPath string) (safe bool) {
	return !safety.IsUnsafe(relPath)
}
