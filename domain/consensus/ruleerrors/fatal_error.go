package ruleerrors

import "github.com/pkg/errors"

// These errors mean the local tangle or the milestone can't be trusted. A
// confirmation failing with one of them is aborted and never skipped.
var (
	// ErrInvalidBlocksCount indicates that the referenced blocks of a
	// confirmation are not partitioned by the included, conflicting and
	// no-transaction blocks.
	ErrInvalidBlocksCount = newFatalError("ErrInvalidBlocksCount")

	// ErrPreviousMilestoneNotFound indicates that the previous milestone
	// was not encountered in the past cone of a milestone.
	ErrPreviousMilestoneNotFound = newFatalError("ErrPreviousMilestoneNotFound")

	// ErrInclusionMerkleRootMismatch indicates the computed inclusion
	// Merkle root differs from the one the milestone declares.
	ErrInclusionMerkleRootMismatch = newFatalError("ErrInclusionMerkleRootMismatch")

	// ErrAppliedMerkleRootMismatch indicates the computed applied Merkle
	// root differs from the one the milestone declares.
	ErrAppliedMerkleRootMismatch = newFatalError("ErrAppliedMerkleRootMismatch")

	// ErrMilestoneIndexOutOfOrder indicates an attempt to confirm a
	// milestone other than the one following the confirmed index.
	ErrMilestoneIndexOutOfOrder = newFatalError("ErrMilestoneIndexOutOfOrder")

	// ErrInvalidTreasuryTransition indicates a receipt that doesn't spend
	// the unspent treasury output or doesn't preserve its funds.
	ErrInvalidTreasuryTransition = newFatalError("ErrInvalidTreasuryTransition")

	// ErrMilestoneNotFound indicates a confirmation of an unknown milestone.
	ErrMilestoneNotFound = newFatalError("ErrMilestoneNotFound")
)

// FatalError is a consensus safety violation. It is surfaced to the
// operator at error level.
type FatalError struct {
	message string
	inner   error
}

func (e FatalError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e FatalError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e FatalError) Cause() error {
	return e.inner
}

// Is matches fatal errors by their message so that wrapped sentinels can be
// identified with errors.Is.
func (e FatalError) Is(target error) bool {
	targetFatal, ok := target.(FatalError)
	return ok && targetFatal.message == e.message
}

func newFatalError(message string) FatalError {
	return FatalError{message: message, inner: nil}
}

// IsFatal returns whether err is or wraps a FatalError.
func IsFatal(err error) bool {
	return errors.As(err, &FatalError{})
}

// Fatalf wraps the fatal sentinel with a formatted detail message.
func Fatalf(sentinel FatalError, format string, args ...interface{}) error {
	return errors.WithStack(FatalError{
		message: sentinel.message,
		inner:   errors.Errorf(format, args...),
	})
}
