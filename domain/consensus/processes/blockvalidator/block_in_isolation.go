package blockvalidator

import (
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
)

// ValidateBlockInIsolation validates a block without looking at the tangle
// or the ledger.
func (v *blockValidator) ValidateBlockInIsolation(block *externalapi.Block) error {
	err := v.checkParentsLimit(block)
	if err != nil {
		return err
	}

	err = v.checkParentsOrder(block)
	if err != nil {
		return err
	}

	switch payload := block.Payload.(type) {
	case nil:
		return nil
	case *externalapi.TransactionPayload:
		return v.validateTransactionInIsolation(payload)
	case *externalapi.MilestonePayload:
		return v.validateMilestoneInIsolation(payload)
	case *externalapi.TaggedDataPayload, *externalapi.TreasuryTransactionPayload:
		return nil
	default:
		return errors.Wrapf(ruleerrors.ErrUnknownPayload, "block carries a payload of type %T", payload)
	}
}

func (v *blockValidator) checkParentsLimit(block *externalapi.Block) error {
	parentCount := len(block.Parents)
	if parentCount == 0 || parentCount < v.minBlockParents {
		return errors.Wrapf(ruleerrors.ErrNoParents, "block has %d parents, while at least %d are required",
			parentCount, v.minBlockParents)
	}
	if parentCount > v.maxBlockParents {
		return errors.Wrapf(ruleerrors.ErrTooManyParents, "block parents are %d, "+
			"which is more than the max of %d", parentCount, v.maxBlockParents)
	}
	return nil
}

func (v *blockValidator) checkParentsOrder(block *externalapi.Block) error {
	for i := 1; i < len(block.Parents); i++ {
		if !block.Parents[i-1].Less(block.Parents[i]) {
			return errors.Wrapf(ruleerrors.ErrParentsNotSorted, "parent %s at index %d is not "+
				"strictly greater than its predecessor %s", block.Parents[i], i, block.Parents[i-1])
		}
	}
	return nil
}
