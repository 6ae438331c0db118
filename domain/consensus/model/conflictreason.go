package model

// ConflictReason is why a transaction-bearing block was excluded from the
// ledger by a milestone.
type ConflictReason uint8

// Conflict reasons
const (
	ConflictNone                                 ConflictReason = 0
	ConflictInputUTXOAlreadySpent                ConflictReason = 1
	ConflictInputUTXOAlreadySpentInThisMilestone ConflictReason = 2
	ConflictInputUTXONotFound                    ConflictReason = 3
	ConflictCreatedConsumedAmountMismatch        ConflictReason = 4
	ConflictInvalidSignature                     ConflictReason = 5
	ConflictTimelockNotExpired                   ConflictReason = 6
	ConflictInvalidUnlock                        ConflictReason = 7
	ConflictSemanticValidationFailed             ConflictReason = 255
)

var conflictReasonStrings = map[ConflictReason]string{
	ConflictNone:                                 "None",
	ConflictInputUTXOAlreadySpent:                "InputUTXOAlreadySpent",
	ConflictInputUTXOAlreadySpentInThisMilestone: "InputUTXOAlreadySpentInThisMilestone",
	ConflictInputUTXONotFound:                    "InputUTXONotFound",
	ConflictCreatedConsumedAmountMismatch:        "CreatedConsumedAmountMismatch",
	ConflictInvalidSignature:                     "InvalidSignature",
	ConflictTimelockNotExpired:                   "TimelockNotExpired",
	ConflictInvalidUnlock:                        "InvalidUnlock",
	ConflictSemanticValidationFailed:             "SemanticValidationFailed",
}

func (reason ConflictReason) String() string {
	if str, ok := conflictReasonStrings[reason]; ok {
		return str
	}
	return "Unknown"
}
