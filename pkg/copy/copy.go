// Package copy implements the per-file copy procedure used by the worker
// pool (component C6): streaming copy with an atomic rename into place,
// mtime preservation, optional verification, and progress reporting.
//
// Every file is written to a temporary file that is then renamed into place
// (grounded on the teacher's pkg/filesystem/atomic.go WriteFileAtomic).
// Small files are copied in a single io.CopyBuffer pass with no progress
// callbacks or cancellation checks. Large files are streamed through a
// fixed buffer with a cancellation check before every chunk and periodic
// progress callbacks. Pause is not observed inside a copy: a file already
// being copied runs to completion (or cancellation) regardless of
// Pool.Pause.
package copy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dualsync/engine/pkg/errkind"
)

// StreamingThreshold is the size at or above which a file is copied via
// chunked streaming (with progress callbacks and per-chunk cancellation
// checks) rather than a single io.CopyBuffer pass, matching the worker
// package's SmallFileThreshold.
const StreamingThreshold = 10 * 1024 * 1024

// streamBufferSize is the buffer used for streamed copies, per spec §4.6.
const streamBufferSize = 64 * 1024

// progressReportFraction is the minimum fraction of a file's size that
// must have been transferred since the last progress callback before
// another one is issued, per spec §4.6.
const progressReportFraction = 0.05

// Progress is reported periodically during a streamed copy.
type Progress struct {
	RelPath         string
	BytesTransferred uint64
	TotalBytes       uint64
}

// Options configures a single file copy.
type Options struct {
	// Verify enables a post-copy SHA-256 comparison between source and
	// destination (spec §4.6). On mismatch the copy is reported as
	// KindVerificationFailed so the controller can retry once.
	Verify bool

	// OnProgress is invoked from the copying goroutine as a streamed copy
	// makes progress; it may be nil.
	OnProgress func(Progress)
}

// temporaryNamePrefix mirrors the teacher's atomic-write convention of
// distinguishing in-progress temporary files by name prefix.
const temporaryNamePrefix = ".dualsync-tmp-"

// File copies sourceAbs to destAbs, creating destAbs's parent directory if
// needed, preserving sourceMTime and the executable bit, and using an
// intermediate temporary file swapped into place via rename so that a
// partial copy is never visible at destAbs (spec invariant #3).
func File(ctx context.Context, relPath, sourceAbs, destAbs string, size uint64, sourceMTime time.Time, executable bool, opts Options) error {
	if err := ctx.Err(); err != nil {
		return errkind.New(errkind.KindAborted, relPath, err)
	}

	destDir := filepath.Dir(destAbs)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return errkind.New(classify(err), relPath, err)
	}

	source, err := os.Open(sourceAbs)
	if err != nil {
		return errkind.New(classify(err), relPath, err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errkind.New(classify(err), relPath, err)
	}

	temp, err := os.CreateTemp(destDir, temporaryNamePrefix)
	if err != nil {
		return errkind.New(classify(err), relPath, err)
	}
	tempName := temp.Name()
	defer os.Remove(tempName)

	hasher := sha256.New()
	var writer io.Writer = temp
	if opts.Verify {
		writer = io.MultiWriter(temp, hasher)
	}

	if size >= StreamingThreshold {
		err = streamCopy(ctx, relPath, writer, source, uint64(info.Size()), opts.OnProgress)
	} else {
		_, err = io.CopyBuffer(writer, source, make([]byte, streamBufferSize))
	}
	if err != nil {
		temp.Close()
		return err
	}

	if err := temp.Close(); err != nil {
		return errkind.New(classify(err), relPath, err)
	}

	mode := os.FileMode(0o644)
	if executable {
		mode = 0o755
	}
	if err := os.Chmod(tempName, mode); err != nil {
		return errkind.New(classify(err), relPath, err)
	}

	if opts.Verify {
		if err := verify(tempName, hasher.Sum(nil)); err != nil {
			return errkind.New(errkind.KindVerificationFailed, relPath, err)
		}
	}

	if err := os.Rename(tempName, destAbs); err != nil {
		return errkind.New(classify(err), relPath, err)
	}

	if err := os.Chtimes(destAbs, sourceMTime, sourceMTime); err != nil {
		return errkind.New(classify(err), relPath, err)
	}

	return nil
}

// streamCopy copies from src to dst in fixed-size chunks, checking ctx for
// cancellation and reporting progress every time at least
// progressReportFraction of totalBytes has moved since the last report.
func streamCopy(ctx context.Context, relPath string, dst io.Writer, src io.Reader, totalBytes uint64, onProgress func(Progress)) error {
	buf := make([]byte, streamBufferSize)
	var transferred uint64
	var sinceReport uint64
	reportThreshold := uint64(float64(totalBytes) * progressReportFraction)

	for {
		if err := ctx.Err(); err != nil {
			return errkind.New(errkind.KindAborted, relPath, err)
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return errkind.New(classify(writeErr), relPath, writeErr)
			}
			transferred += uint64(n)
			sinceReport += uint64(n)
			if onProgress != nil && (sinceReport >= reportThreshold || transferred == totalBytes) {
				onProgress(Progress{RelPath: relPath, BytesTransferred: transferred, TotalBytes: totalBytes})
				sinceReport = 0
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return errkind.New(classify(readErr), relPath, readErr)
		}
	}
}

// verify reads back the written file at writtenAbs (the temporary file,
// pre-rename) and compares its hash against expected, the hash accumulated
// while streaming from source — this is what actually catches a truncated
// or corrupted write, per spec §4.6 step 4.
func verify(writtenAbs string, expected []byte) error {
	f, err := os.Open(writtenAbs)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	actual := h.Sum(nil)
	if hex.EncodeToString(actual) != hex.EncodeToString(expected) {
		return errPlain("checksum mismatch after copy")
	}
	return nil
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

// classify converts a raw filesystem error into an errkind.Kind using the
// shared classifier.
func classify(err error) errkind.Kind {
	return errkind.Classify(err)
}
