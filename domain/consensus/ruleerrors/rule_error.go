package ruleerrors

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// These constants are used to identify a specific RuleError. A RuleError
// rejects a block or a milestone. It never affects other in-flight work.
var (
	// ErrNoParents indicates that the block has no parents.
	ErrNoParents = newRuleError("ErrNoParents")

	// ErrTooManyParents indicates that the block has more parents than
	// MaxBlockParents.
	ErrTooManyParents = newRuleError("ErrTooManyParents")

	// ErrParentsNotSorted indicates that the block's parents are not
	// sorted lexicographically or contain duplicates.
	ErrParentsNotSorted = newRuleError("ErrParentsNotSorted")

	// ErrUnknownPayload indicates the block carries a payload of an
	// unsupported type.
	ErrUnknownPayload = newRuleError("ErrUnknownPayload")

	// ErrNoTxInputs indicates a transaction does not have any inputs.
	ErrNoTxInputs = newRuleError("ErrNoTxInputs")

	// ErrTooManyTxInputs indicates a transaction has more than MaxInputs inputs.
	ErrTooManyTxInputs = newRuleError("ErrTooManyTxInputs")

	// ErrNoTxOutputs indicates a transaction does not have any outputs.
	ErrNoTxOutputs = newRuleError("ErrNoTxOutputs")

	// ErrTooManyTxOutputs indicates a transaction has more than MaxOutputs outputs.
	ErrTooManyTxOutputs = newRuleError("ErrTooManyTxOutputs")

	// ErrWrongNetworkID indicates a transaction was issued for another network.
	ErrWrongNetworkID = newRuleError("ErrWrongNetworkID")

	// ErrDuplicateTxInputs indicates a transaction references the same
	// input more than once.
	ErrDuplicateTxInputs = newRuleError("ErrDuplicateTxInputs")

	// ErrBadTxOutValue indicates an output value for a transaction is
	// invalid in some way such as being zero or out of range.
	ErrBadTxOutValue = newRuleError("ErrBadTxOutValue")

	// ErrUnlockCountMismatch indicates that the number of unlocks
	// differs from the number of inputs.
	ErrUnlockCountMismatch = newRuleError("ErrUnlockCountMismatch")

	// ErrInvalidReferenceUnlock indicates a reference unlock doesn't
	// point to an earlier signature unlock.
	ErrInvalidReferenceUnlock = newRuleError("ErrInvalidReferenceUnlock")

	// ErrDuplicateSignatureUnlock indicates two signature unlocks of
	// the same public key. The second one should have been a reference.
	ErrDuplicateSignatureUnlock = newRuleError("ErrDuplicateSignatureUnlock")

	// ErrMilestoneZeroIndex indicates a milestone with index zero.
	ErrMilestoneZeroIndex = newRuleError("ErrMilestoneZeroIndex")

	// ErrMilestoneParentsMismatch indicates that the parents of a milestone
	// block differ from the parents declared in its payload.
	ErrMilestoneParentsMismatch = newRuleError("ErrMilestoneParentsMismatch")

	// ErrMilestoneSignaturesNotSorted indicates that the signatures of a
	// milestone are not sorted by public key.
	ErrMilestoneSignaturesNotSorted = newRuleError("ErrMilestoneSignaturesNotSorted")

	// ErrMilestoneSignatureThresholdZero indicates that the node is
	// configured with a zero signature threshold.
	ErrMilestoneSignatureThresholdZero = newRuleError("ErrMilestoneSignatureThresholdZero")

	// ErrMilestoneTooFewSignatures indicates the milestone carries fewer
	// signatures than required.
	ErrMilestoneTooFewSignatures = newRuleError("ErrMilestoneTooFewSignatures")

	// ErrMilestoneSignatureCountMismatch indicates that the number of
	// signatures differs from the number of distinct signing keys.
	ErrMilestoneSignatureCountMismatch = newRuleError("ErrMilestoneSignatureCountMismatch")

	// ErrMilestoneTooFewPublicKeys indicates that fewer public keys than
	// the threshold are applicable to the milestone's index.
	ErrMilestoneTooFewPublicKeys = newRuleError("ErrMilestoneTooFewPublicKeys")

	// ErrMilestoneUnknownPublicKey indicates a milestone signed by a key
	// that isn't applicable to its index.
	ErrMilestoneUnknownPublicKey = newRuleError("ErrMilestoneUnknownPublicKey")

	// ErrMilestoneInvalidSignature indicates a milestone signature that
	// does not verify against the milestone essence.
	ErrMilestoneInvalidSignature = newRuleError("ErrMilestoneInvalidSignature")

	// ErrNotAMilestone indicates the block doesn't carry a milestone payload.
	ErrNotAMilestone = newRuleError("ErrNotAMilestone")

	// ErrInvalidReceipt indicates a malformed milestone receipt.
	ErrInvalidReceipt = newRuleError("ErrInvalidReceipt")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or milestone failed due to one of the many
// validation rules.
type RuleError struct {
	message string
	inner   error
}

func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

// Is matches rule errors by their message so that wrapped sentinels can be
// identified with errors.Is.
func (e RuleError) Is(target error) bool {
	targetRule, ok := target.(RuleError)
	return ok && targetRule.message == e.message
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// ErrMissingBlocks lists the blocks a confirmation needed but could not
// find in the tangle.
type ErrMissingBlocks struct {
	MissingBlockIDs []externalapi.BlockID
}

func (e ErrMissingBlocks) Error() string {
	return fmt.Sprintf("missing the following blocks: %v", e.MissingBlockIDs)
}

// NewErrMissingBlock returns a fatal error for a confirmation whose past cone
// is not fully resident.
func NewErrMissingBlock(missingBlockIDs ...externalapi.BlockID) error {
	return errors.WithStack(FatalError{
		message: "ErrMissingBlock",
		inner:   ErrMissingBlocks{missingBlockIDs},
	})
}

// IsRuleError returns whether err is or wraps a RuleError.
func IsRuleError(err error) bool {
	return errors.As(err, &RuleError{})
}

// Errorf wraps the rule error sentinel with a formatted detail message.
func Errorf(sentinel RuleError, format string, args ...interface{}) error {
	return errors.WithStack(RuleError{
		message: sentinel.message,
		inner:   errors.Errorf(format, args...),
	})
}

// MissingBlocks returns the ids carried by a missing block error, if err is one.
func MissingBlocks(err error) ([]externalapi.BlockID, bool) {
	missing := ErrMissingBlocks{}
	if !errors.As(err, &missing) {
		return nil, false
	}
	return missing.MissingBlockIDs, true
}
