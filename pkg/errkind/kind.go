// Package errkind classifies filesystem and synchronization failures into a
// small, stable taxonomy so that the controller can decide whether to retry,
// surface, or silently skip an operation result. It follows the teacher's
// enumeration style (see pkg/synchronization's Digest/IgnoreSyntax types):
// a small integer type with a String method and helper predicates, rather
// than a sprawling set of sentinel error values.
package errkind

import "fmt"

// Kind classifies an operation failure.
type Kind uint8

const (
	// KindUnknown is the zero value and should never be assigned deliberately.
	KindUnknown Kind = iota
	// KindPermission indicates access was denied or the target is read-only.
	KindPermission
	// KindPathMissing indicates a source vanished or a required parent is
	// absent.
	KindPathMissing
	// KindNotADirectory indicates a directory operation targeted a
	// non-directory.
	KindNotADirectory
	// KindIsADirectory indicates a file operation targeted a directory.
	KindIsADirectory
	// KindDiskSpace indicates the destination filesystem is out of space or
	// over quota.
	KindDiskSpace
	// KindTransient indicates a timeout, interrupted syscall, or a resource
	// that was temporarily unavailable. Retryable.
	KindTransient
	// KindVerificationFailed indicates a post-copy hash mismatch. Retried at
	// most once before being reported.
	KindVerificationFailed
	// KindValidation indicates an invalid path or malformed pattern.
	KindValidation
	// KindConfig indicates unreadable or invalid configuration; a default is
	// substituted where safe.
	KindConfig
	// KindAborted indicates cancellation was observed mid-operation. Not
	// treated as a failure: the controller does not count it as an error,
	// and no separate skipped notification is issued for it.
	KindAborted
)

// String renders a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPermission:
		return "permission"
	case KindPathMissing:
		return "path-missing"
	case KindNotADirectory:
		return "not-a-directory"
	case KindIsADirectory:
		return "is-a-directory"
	case KindDiskSpace:
		return "disk-space"
	case KindTransient:
		return "transient"
	case KindVerificationFailed:
		return "verification-failed"
	case KindValidation:
		return "validation"
	case KindConfig:
		return "config"
	case KindAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Retryable reports whether the controller's retry-with-backoff policy
// applies to this kind (spec §4.8, §7).
func (k Kind) Retryable() bool {
	return k == KindTransient || k == KindVerificationFailed
}

// MaxAttempts returns the total attempt budget (initial attempt included)
// for a retryable kind. Spec §7 gives Transient and VerificationFailed
// distinct budgets: Transient is "retried with backoff" up to the
// configured attempt count, while VerificationFailed is "retried once;
// then reported" — always exactly two attempts regardless of the
// configured Transient budget. configuredMax is the caller's configured
// attempt count for Transient failures (e.g. config.SyncOptions.Retry);
// it has no effect on VerificationFailed.
func (k Kind) MaxAttempts(configuredMax int) int {
	switch k {
	case KindVerificationFailed:
		return 2
	case KindTransient:
		return configuredMax
	default:
		return 1
	}
}

// Error pairs a Kind with the path that triggered it and the underlying
// cause. It implements error and supports errors.Unwrap so that
// github.com/pkg/errors-style %+v stack traces attached by Wrap survive.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a classified Error.
func New(kind Kind, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Err: cause}
}

// hint gives a one-line remediation suggestion per category, used when
// formatting user-visible messages (spec §7).
var hint = map[Kind]string{
	KindPermission:          "check file ownership and permissions on the destination",
	KindPathMissing:         "the source may have been moved or deleted during sync; rerun to pick up the new state",
	KindNotADirectory:       "a file exists where a directory was expected; rename or remove it",
	KindIsADirectory:        "a directory exists where a file was expected; rename or remove it",
	KindDiskSpace:           "free up space or quota on the destination volume",
	KindTransient:           "this is usually transient; it will be retried automatically",
	KindVerificationFailed:  "the copy will be retried once; if this persists, check for a flaky disk or filesystem",
	KindValidation:          "check the offending path or pattern for invalid characters or syntax",
	KindConfig:              "check the settings file; a default was substituted where safe",
	KindAborted:             "the operation was cancelled before completion",
}

// Hint returns the remediation hint for a kind, or the empty string if none
// is registered.
func Hint(k Kind) string {
	return hint[k]
}
