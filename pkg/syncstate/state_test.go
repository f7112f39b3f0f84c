package syncstate

import "testing"

func TestSnapshotPercentageByBytes(t *testing.T) {
	s := New(2, 100)
	s.BeginFile("a")
	s.CompleteFile("a", 50)

	snap := s.Snapshot()
	if snap.ProcessedBytes != 50 || snap.ProcessedFiles != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Percentage != 50 {
		t.Errorf("expected 50%% complete, got %v", snap.Percentage)
	}
}

func TestSnapshotTracksInFlightAndErrors(t *testing.T) {
	s := New(3, 300)
	s.BeginFile("a")
	s.BeginFile("b")
	s.RecordError()

	snap := s.Snapshot()
	if len(snap.InFlight) != 2 {
		t.Fatalf("expected 2 in-flight entries, got %v", snap.InFlight)
	}
	if snap.ErrorCount != 1 {
		t.Errorf("expected 1 recorded error, got %d", snap.ErrorCount)
	}

	s.CompleteFile("a", 100)
	snap = s.Snapshot()
	if len(snap.InFlight) != 1 {
		t.Fatalf("expected 1 in-flight entry after completion, got %v", snap.InFlight)
	}
}

func TestPhaseTransitions(t *testing.T) {
	s := New(0, 0)
	if s.Snapshot().Phase != PhaseIdle {
		t.Fatalf("expected initial phase idle, got %v", s.Snapshot().Phase)
	}
	s.SetPhase(PhaseScanning)
	if s.Snapshot().Phase != PhaseScanning {
		t.Errorf("expected phase scanning, got %v", s.Snapshot().Phase)
	}
}
