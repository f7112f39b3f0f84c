// Package syncstate holds the controller's live progress state: counters
// updated from worker goroutines and a read-only Snapshot published to
// callers without blocking the run loop.
//
// Grounded on the teacher's pkg/state.Tracker, which separates a
// mutex/condition-variable-guarded index from a lock-free notification
// path for pollers. This package needs no polling protocol (callers ask
// for a Snapshot whenever they want one, typically on a timer), so it
// keeps the mutex-guarded counters but drops the condition-variable
// wakeup machinery Tracker uses for long-poll notification.
package syncstate

import (
	"math"
	"sync"
	"time"
)

// Phase enumerates the controller's state machine states (spec §4.8).
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhasePlanning
	PhaseCopying
	PhaseDeleting
	PhaseCompleted
	PhasePaused
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScanning:
		return "scanning"
	case PhasePlanning:
		return "planning"
	case PhaseCopying:
		return "copying"
	case PhaseDeleting:
		return "deleting"
	case PhaseCompleted:
		return "completed"
	case PhasePaused:
		return "paused"
	case PhaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of the run's progress, safe to read and
// format without holding any lock.
type Snapshot struct {
	Phase           Phase
	TotalFiles      int
	TotalBytes      uint64
	ProcessedFiles  int
	ProcessedBytes  uint64
	InFlight        []string
	ErrorCount      int
	Percentage      float64
	BytesPerSecond  float64
	ETASeconds      float64
}

// ewmaHalfLife is the half-life of the bytes-per-second exponential moving
// average: the weight of the previous estimate halves every 2 seconds.
const ewmaHalfLife = 2 * time.Second

// State is the controller's mutable run state. The zero value is not
// usable; construct with New.
type State struct {
	mu sync.Mutex

	phase          Phase
	totalFiles     int
	totalBytes     uint64
	processedFiles int
	processedBytes uint64
	inFlight       map[string]bool
	errorCount     int

	lastSampleAt   time.Time
	lastSampleByte uint64
	bytesPerSecond float64
}

// New constructs a State ready to track a run sized totalFiles/totalBytes.
func New(totalFiles int, totalBytes uint64) *State {
	return &State{
		phase:      PhaseIdle,
		totalFiles: totalFiles,
		totalBytes: totalBytes,
		inFlight:   make(map[string]bool),
	}
}

// SetPhase transitions the tracked phase.
func (s *State) SetPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// BeginFile marks relPath as in flight.
func (s *State) BeginFile(relPath string) {
	s.mu.Lock()
	s.inFlight[relPath] = true
	s.mu.Unlock()
}

// CompleteFile marks relPath as finished, accounting its bytes and updating
// the throughput estimate.
func (s *State) CompleteFile(relPath string, bytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, relPath)
	s.processedFiles++
	s.processedBytes += bytes
	s.sampleThroughputLocked()
}

// RecordError increments the error counter.
func (s *State) RecordError() {
	s.mu.Lock()
	s.errorCount++
	s.mu.Unlock()
}

// ErrorCount returns the current error counter, used by the controller to
// compare against max_errors.
func (s *State) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorCount
}

// sampleThroughputLocked updates the bytes-per-second EWMA. Must be called
// with mu held.
func (s *State) sampleThroughputLocked() {
	now := time.Now()
	if s.lastSampleAt.IsZero() {
		s.lastSampleAt = now
		s.lastSampleByte = s.processedBytes
		return
	}
	elapsed := now.Sub(s.lastSampleAt)
	if elapsed <= 0 {
		return
	}
	instantaneous := float64(s.processedBytes-s.lastSampleByte) / elapsed.Seconds()
	weight := 1 - decayFactor(elapsed)
	s.bytesPerSecond = s.bytesPerSecond*(1-weight) + instantaneous*weight
	s.lastSampleAt = now
	s.lastSampleByte = s.processedBytes
}

// decayFactor returns the EWMA decay for an elapsed duration given
// ewmaHalfLife.
func decayFactor(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 1
	}
	ratio := elapsed.Seconds() / ewmaHalfLife.Seconds()
	return math.Exp2(-ratio)
}

// Snapshot returns a point-in-time copy of the tracked state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	inFlight := make([]string, 0, len(s.inFlight))
	for path := range s.inFlight {
		inFlight = append(inFlight, path)
	}

	var pct float64
	if s.totalBytes > 0 {
		pct = float64(s.processedBytes) / float64(s.totalBytes) * 100
	} else if s.totalFiles > 0 {
		pct = float64(s.processedFiles) / float64(s.totalFiles) * 100
	}

	var eta float64
	if s.bytesPerSecond > 0 && s.totalBytes > s.processedBytes {
		eta = float64(s.totalBytes-s.processedBytes) / s.bytesPerSecond
	}

	return Snapshot{
		Phase:          s.phase,
		TotalFiles:     s.totalFiles,
		TotalBytes:     s.totalBytes,
		ProcessedFiles: s.processedFiles,
		ProcessedBytes: s.processedBytes,
		InFlight:       inFlight,
		ErrorCount:     s.errorCount,
		Percentage:     pct,
		BytesPerSecond: s.bytesPerSecond,
		ETASeconds:     eta,
	}
}
