package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dualsync/engine/pkg/plan"
)

func TestLoadYAMLAppliesDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	doc := "rootA: /a\nrootB: /b\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	opts, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if opts.RootA != "/a" || opts.RootB != "/b" {
		t.Fatalf("unexpected roots: %+v", opts)
	}
	if opts.ToleranceMillis != 1000 || opts.MaxErrors != 50 {
		t.Errorf("expected defaults to survive, got %+v", opts)
	}

	planOpts, err := opts.PlanOptions()
	if err != nil {
		t.Fatalf("PlanOptions failed: %v", err)
	}
	if planOpts.Direction != plan.TwoWay {
		t.Errorf("expected default direction two-way, got %v", planOpts.Direction)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	doc := "rootA: /a\nrootB: /b\ndirection: a-to-b\nconflictResolution: newer\nmaxStagingFileSize: 64MiB\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	opts, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	planOpts, err := opts.PlanOptions()
	if err != nil {
		t.Fatalf("PlanOptions failed: %v", err)
	}
	if planOpts.Direction != plan.AtoB {
		t.Errorf("expected a-to-b direction, got %v", planOpts.Direction)
	}
	if planOpts.ConflictResolution != plan.ResolutionNewer {
		t.Errorf("expected newer conflict resolution, got %v", planOpts.ConflictResolution)
	}
	if uint64(opts.MaxStagingFileSize) != 64*1024*1024 {
		t.Errorf("expected 64MiB staging size, got %d", opts.MaxStagingFileSize)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.toml")
	doc := "rootA = \"/a\"\nrootB = \"/b\"\ndeleteOrphaned = true\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	opts, err := LoadTOML(path)
	if err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}
	if !opts.DeleteOrphaned {
		t.Error("expected deleteOrphaned to be true")
	}
}

func TestLoadYAMLTwoWayUpdateSymmetricPassesThrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	doc := "rootA: /a\nrootB: /b\ntwoWayUpdateSymmetric: true\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	opts, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if !opts.TwoWayUpdateSymmetric {
		t.Fatal("expected twoWayUpdateSymmetric to be true")
	}

	planOpts, err := opts.PlanOptions()
	if err != nil {
		t.Fatalf("PlanOptions failed: %v", err)
	}
	if !planOpts.TwoWayUpdateSymmetric {
		t.Error("expected the knob to carry through to plan.Options")
	}
}

func TestUnrecognizedDirectionRejected(t *testing.T) {
	opts := Defaults()
	opts.Direction = "sideways"
	if _, err := opts.PlanOptions(); err == nil {
		t.Fatal("expected an error for an unrecognized direction")
	}
}
