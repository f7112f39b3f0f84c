// Package config defines the on-disk session/profile document this engine
// consumes (spec §1: configuration is consumed, not produced, by the core)
// and its TOML/YAML loaders, grounded on the teacher's
// pkg/configuration/synchronization.Configuration struct shape and its
// pkg/encoding TOML/YAML loader pair.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dualsync/engine/pkg/deletion"
	"github.com/dualsync/engine/pkg/ignore"
	"github.com/dualsync/engine/pkg/plan"
	"github.com/dualsync/engine/pkg/scan"
	"github.com/dualsync/engine/pkg/worker"
)

// SyncOptions is the full set of session parameters this engine accepts,
// loadable from either a TOML or a YAML document.
type SyncOptions struct {
	RootA string `yaml:"rootA" toml:"rootA" mapstructure:"rootA"`
	RootB string `yaml:"rootB" toml:"rootB" mapstructure:"rootB"`

	Direction          string `yaml:"direction" toml:"direction" mapstructure:"direction"`
	ConflictResolution string `yaml:"conflictResolution" toml:"conflictResolution" mapstructure:"conflictResolution"`
	ToleranceMillis    int64  `yaml:"toleranceMillis" toml:"toleranceMillis" mapstructure:"toleranceMillis"`

	// TwoWayUpdateSymmetric resolves the two-way/manual-resolution Open
	// Question (see pkg/plan.Options.TwoWayUpdateSymmetric): false (default)
	// always conflicts a both-sides-differ pair under manual resolution;
	// true auto-applies Update towards the newer side instead.
	TwoWayUpdateSymmetric bool `yaml:"twoWayUpdateSymmetric" toml:"twoWayUpdateSymmetric" mapstructure:"twoWayUpdateSymmetric"`

	Ignore struct {
		Dialect  string   `yaml:"dialect" toml:"dialect" mapstructure:"dialect"`
		Patterns []string `yaml:"patterns" toml:"patterns" mapstructure:"patterns"`
		VCS      bool     `yaml:"vcs" toml:"vcs" mapstructure:"vcs"`
	} `yaml:"ignore" toml:"ignore" mapstructure:"ignore"`

	Symlink struct {
		Record bool `yaml:"record" toml:"record" mapstructure:"record"`
	} `yaml:"symlink" toml:"symlink" mapstructure:"symlink"`

	MaximumEntryCount uint64   `yaml:"maxEntryCount" toml:"maxEntryCount" mapstructure:"maxEntryCount"`
	MaxStagingFileSize ByteSize `yaml:"maxStagingFileSize" toml:"maxStagingFileSize" mapstructure:"maxStagingFileSize"`

	DeleteOrphaned bool `yaml:"deleteOrphaned" toml:"deleteOrphaned" mapstructure:"deleteOrphaned"`

	// Deletion configures how DeleteOrphaned deletions are actually carried
	// out, per spec §4.7's execute(plan, {dry_run, backup, use_staging}).
	Deletion struct {
		DryRun     bool `yaml:"dryRun" toml:"dryRun" mapstructure:"dryRun"`
		Backup     bool `yaml:"backup" toml:"backup" mapstructure:"backup"`
		UseStaging bool `yaml:"useStaging" toml:"useStaging" mapstructure:"useStaging"`
	} `yaml:"deletion" toml:"deletion" mapstructure:"deletion"`

	Performance struct {
		Mode      string `yaml:"mode" toml:"mode" mapstructure:"mode"`
		BatchSize int    `yaml:"batchSize" toml:"batchSize" mapstructure:"batchSize"`
	} `yaml:"performance" toml:"performance" mapstructure:"performance"`

	Retry struct {
		BaseSeconds float64 `yaml:"baseSeconds" toml:"baseSeconds" mapstructure:"baseSeconds"`
		MaxAttempts int     `yaml:"maxAttempts" toml:"maxAttempts" mapstructure:"maxAttempts"`
	} `yaml:"retry" toml:"retry" mapstructure:"retry"`

	MaxErrors int `yaml:"maxErrors" toml:"maxErrors" mapstructure:"maxErrors"`

	Verify bool `yaml:"verify" toml:"verify" mapstructure:"verify"`
}

// Defaults returns a SyncOptions populated with this specification's stated
// defaults (tolerance 1000ms, manual conflict resolution, balanced
// performance mode, retry base 1s/max 3 attempts, max 50 errors).
func Defaults() SyncOptions {
	var o SyncOptions
	o.Direction = "two-way"
	o.ConflictResolution = "manual"
	o.ToleranceMillis = 1000
	o.Ignore.Dialect = "mutagen"
	o.Ignore.VCS = true
	o.Performance.Mode = "balanced"
	o.Performance.BatchSize = worker.DefaultBatchSize
	o.Retry.BaseSeconds = 1
	o.Retry.MaxAttempts = 3
	o.MaxErrors = 50
	o.Deletion.Backup = true
	return o
}

// LoadYAML reads and decodes a YAML session document from path, starting
// from Defaults so missing fields keep their default value.
func LoadYAML(path string) (SyncOptions, error) {
	opts := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("unable to read configuration: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("unable to parse YAML configuration: %w", err)
	}
	return opts, nil
}

// LoadTOML reads and decodes a TOML session document from path, starting
// from Defaults so missing fields keep their default value.
func LoadTOML(path string) (SyncOptions, error) {
	opts := Defaults()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return opts, fmt.Errorf("unable to parse TOML configuration: %w", err)
	}
	return opts, nil
}

// direction resolves the configured direction string to a plan.Direction.
func (o SyncOptions) direction() (plan.Direction, error) {
	switch o.Direction {
	case "", "two-way", "twoway":
		return plan.TwoWay, nil
	case "a-to-b", "atob":
		return plan.AtoB, nil
	case "b-to-a", "btoa":
		return plan.BtoA, nil
	default:
		return 0, fmt.Errorf("unrecognized direction %q", o.Direction)
	}
}

// conflictResolution resolves the configured resolution string to a
// plan.ConflictResolution.
func (o SyncOptions) conflictResolution() (plan.ConflictResolution, error) {
	switch o.ConflictResolution {
	case "", "manual":
		return plan.ResolutionManual, nil
	case "newer":
		return plan.ResolutionNewer, nil
	case "a", "A":
		return plan.ResolutionA, nil
	case "b", "B":
		return plan.ResolutionB, nil
	default:
		return 0, fmt.Errorf("unrecognized conflict resolution %q", o.ConflictResolution)
	}
}

// performanceMode resolves the configured mode string to a
// worker.PerformanceMode.
func (o SyncOptions) performanceMode() worker.PerformanceMode {
	switch o.Performance.Mode {
	case "safe":
		return worker.PerformanceSafe
	case "fast":
		return worker.PerformanceFast
	case "max":
		return worker.PerformanceMax
	default:
		return worker.PerformanceBalanced
	}
}

// ignoreDialect resolves the configured dialect string to an
// ignore.Dialect.
func (o SyncOptions) ignoreDialect() (ignore.Dialect, error) {
	switch o.Ignore.Dialect {
	case "", "mutagen":
		return ignore.DialectMutagen, nil
	case "docker":
		return ignore.DialectDocker, nil
	default:
		return 0, fmt.Errorf("unrecognized ignore dialect %q", o.Ignore.Dialect)
	}
}

// symlinkPolicy resolves the configured symlink handling to a
// scan.SymlinkPolicy.
func (o SyncOptions) symlinkPolicy() scan.SymlinkPolicy {
	if o.Symlink.Record {
		return scan.SymlinkPolicyRecord
	}
	return scan.SymlinkPolicySkip
}

// PlanOptions builds a plan.Options from this configuration.
func (o SyncOptions) PlanOptions() (plan.Options, error) {
	direction, err := o.direction()
	if err != nil {
		return plan.Options{}, err
	}
	resolution, err := o.conflictResolution()
	if err != nil {
		return plan.Options{}, err
	}
	return plan.Options{
		RootA:                 o.RootA,
		RootB:                 o.RootB,
		Direction:             direction,
		ConflictResolution:    resolution,
		ToleranceMillis:       o.ToleranceMillis,
		TwoWayUpdateSymmetric: o.TwoWayUpdateSymmetric,
	}, nil
}

// IgnoreMatcher builds an ignore.Matcher from this configuration.
func (o SyncOptions) IgnoreMatcher() (*ignore.Matcher, error) {
	dialect, err := o.ignoreDialect()
	if err != nil {
		return nil, err
	}
	return ignore.New(dialect, o.Ignore.Patterns, o.Ignore.VCS)
}

// ScanOptions builds the filesystem-facing portion of a scan.Options for
// root, leaving Filter and Cache for the caller to attach.
func (o SyncOptions) ScanOptions(root string) scan.Options {
	return scan.Options{
		Root:              root,
		SymlinkPolicy:      o.symlinkPolicy(),
		MaximumEntryCount: o.MaximumEntryCount,
	}
}

// PerformanceMode resolves the configured performance mode.
func (o SyncOptions) PerformanceMode() worker.PerformanceMode {
	return o.performanceMode()
}

// DeletionOptions builds a deletion.ExecuteOptions from this configuration.
func (o SyncOptions) DeletionOptions() deletion.ExecuteOptions {
	return deletion.ExecuteOptions{
		DryRun:     o.Deletion.DryRun,
		Backup:     o.Deletion.Backup,
		UseStaging: o.Deletion.UseStaging,
	}
}
