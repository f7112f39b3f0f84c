// Command dualsync is a thin CLI demonstrating the synchronization engine:
// a one-shot plan preview, a one-shot sync run, and backup restore.
// Grounded on the teacher's cmd/mutagen command tree: one file per
// subcommand, a package-level Run function wired into a cobra.Command, and
// github.com/pkg/errors.Wrap for command-level error context.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dualsync/engine/pkg/config"
	"github.com/dualsync/engine/pkg/deletion"
	"github.com/dualsync/engine/pkg/filter"
	"github.com/dualsync/engine/pkg/ignore"
	"github.com/dualsync/engine/pkg/logging"
	"github.com/dualsync/engine/pkg/plan"
	"github.com/dualsync/engine/pkg/scan"
	"github.com/dualsync/engine/pkg/sync"
	"github.com/dualsync/engine/pkg/syncstate"
)

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

var rootCommand = &cobra.Command{
	Use:   "dualsync",
	Short: "dualsync mirrors two directory trees under a chosen direction policy",
}

var planCommand = &cobra.Command{
	Use:   "plan <config.yaml>",
	Short: "compute and print the reconciliation plan without executing it",
	Args:  cobra.ExactArgs(1),
	RunE:  planMain,
}

var syncCommand = &cobra.Command{
	Use:   "sync <config.yaml>",
	Short: "run one full synchronization cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  syncMain,
}

var restoreCommand = &cobra.Command{
	Use:   "restore <state-dir> <backup-path> <dest-path>",
	Short: "restore a previously deleted file from its backup",
	Args:  cobra.ExactArgs(3),
	RunE:  restoreMain,
}

var stateDirFlag string

func init() {
	rootCommand.PersistentFlags().StringVar(&stateDirFlag, "state-dir", ".dualsync", "directory used for deletion backups and run state")
	rootCommand.AddCommand(planCommand, syncCommand, restoreCommand)
}

func loadConfig(path string) (config.SyncOptions, error) {
	if len(path) > 5 && path[len(path)-5:] == ".toml" {
		return config.LoadTOML(path)
	}
	return config.LoadYAML(path)
}

func planMain(command *cobra.Command, arguments []string) error {
	opts, err := loadConfig(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	matcher, err := opts.IgnoreMatcher()
	if err != nil {
		return errors.Wrap(err, "unable to build ignore matcher")
	}

	entriesA, err := scanRoot(opts.ScanOptions(opts.RootA), matcher)
	if err != nil {
		return errors.Wrap(err, "unable to scan root A")
	}
	entriesB, err := scanRoot(opts.ScanOptions(opts.RootB), matcher)
	if err != nil {
		return errors.Wrap(err, "unable to scan root B")
	}

	planOpts, err := opts.PlanOptions()
	if err != nil {
		return errors.Wrap(err, "invalid plan configuration")
	}
	p := plan.New(planOpts).Plan(entriesA, entriesB)

	fmt.Printf("create: %d  update: %d  delete: %d  conflicts: %d  total bytes: %d\n",
		len(p.Creates), len(p.Updates), len(p.Deletes), len(p.Conflicts), p.TotalBytes)
	for _, c := range p.Conflicts {
		fmt.Printf("  conflict: %s (kind=%d)\n", c.RelPath, c.ConflictKind)
	}
	return nil
}

func scanRoot(opts scan.Options, matcher *ignore.Matcher) ([]scan.FileEntry, error) {
	opts.Filter = filter.New(matcher, filter.Options{})
	result, err := scan.Scan(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	return result.Entries, nil
}

func syncMain(command *cobra.Command, arguments []string) error {
	opts, err := loadConfig(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	controller := sync.New(opts, stateDirFlag, logging.RootLogger, sync.Listener{
		OnPhaseChange: func(phase syncstate.Phase) {
			fmt.Println("phase:", phase)
		},
	})

	result, err := controller.Run(context.Background())
	if err != nil {
		return errors.Wrap(err, "synchronization run failed")
	}

	fmt.Printf("created: %d  updated: %d  deleted: %d  conflicts: %d  errors: %d\n",
		result.Created, result.Updated, result.Deleted, result.Conflicts, len(result.Errors))
	return nil
}

func restoreMain(command *cobra.Command, arguments []string) error {
	stateDir, backupPath, destPath := arguments[0], arguments[1], arguments[2]
	manager := deletion.New(stateDir, logging.RootLogger)
	record := &deletion.BackupRecord{BackupPath: backupPath, Recoverable: true}
	if err := manager.Restore(record, destPath); err != nil {
		return errors.Wrap(err, "unable to restore backup")
	}
	fmt.Println("restored to", destPath)
	return nil
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		fatal(err)
	}
}
