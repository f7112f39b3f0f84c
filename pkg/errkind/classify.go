package errkind

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// Classify maps a raw filesystem error to a Kind, following the same
// os.IsNotExist/os.IsPermission style the teacher's filesystem package uses
// throughout (see pkg/filesystem/directory_posix.go, open_windows.go).
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.Canceled) {
		return KindAborted
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}

	switch {
	case os.IsNotExist(err):
		return KindPathMissing
	case os.IsPermission(err):
		return KindPermission
	case errors.Is(err, syscall.ENOSPC):
		return KindDiskSpace
	case errors.Is(err, syscall.ENOTDIR):
		return KindNotADirectory
	case errors.Is(err, syscall.EISDIR):
		return KindIsADirectory
	case errors.Is(err, syscall.EINTR), errors.Is(err, syscall.EAGAIN), errors.Is(err, syscall.ETIMEDOUT):
		return KindTransient
	default:
		return KindTransient
	}
}

// KindOf returns the Kind already attached to err if it is (or wraps) an
// *Error, otherwise it classifies the raw error. Preferred over calling
// Classify directly on an error that may already be a classified *Error,
// since re-deriving the kind from the underlying cause can disagree with
// the kind the producer deliberately assigned (e.g. KindVerificationFailed,
// which Classify's heuristics would never produce on their own).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Classify(err)
}

// AsSyncError wraps a raw error with its classified Kind and the path it
// concerns, suitable for inclusion in an OperationResult.
func AsSyncError(path string, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(Classify(err), path, err)
}
