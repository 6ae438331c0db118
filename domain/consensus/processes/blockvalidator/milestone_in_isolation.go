package blockvalidator

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
)

func (v *blockValidator) validateMilestoneInIsolation(milestone *externalapi.MilestonePayload) error {
	if milestone.Index == 0 {
		return errors.Wrapf(ruleerrors.ErrMilestoneZeroIndex, "milestone index must be positive")
	}

	parentCount := len(milestone.Parents)
	if parentCount == 0 || parentCount < v.minBlockParents || parentCount > v.maxBlockParents {
		return errors.Wrapf(ruleerrors.ErrMilestoneParentsMismatch, "milestone declares %d parents, "+
			"while between %d and %d are allowed", parentCount, v.minBlockParents, v.maxBlockParents)
	}

	for i := 1; i < len(milestone.Signatures); i++ {
		previous := milestone.Signatures[i-1].PublicKey
		current := milestone.Signatures[i].PublicKey
		if bytes.Compare(previous[:], current[:]) >= 0 {
			return errors.Wrapf(ruleerrors.ErrMilestoneSignaturesNotSorted, "signature %d is not "+
				"strictly ordered after its predecessor", i)
		}
	}

	if milestone.Receipt != nil {
		return v.checkReceipt(milestone.Receipt)
	}
	return nil
}

func (v *blockValidator) checkReceipt(receipt *externalapi.Receipt) error {
	if receipt.Transaction == nil {
		return errors.Wrapf(ruleerrors.ErrInvalidReceipt, "receipt doesn't carry a treasury transaction")
	}
	if len(receipt.Funds) == 0 {
		return errors.Wrapf(ruleerrors.ErrInvalidReceipt, "receipt doesn't migrate any funds")
	}
	if len(receipt.Funds) > v.maxOutputs {
		return errors.Wrapf(ruleerrors.ErrInvalidReceipt, "receipt migrates %d funds, "+
			"which is more than the max of %d", len(receipt.Funds), v.maxOutputs)
	}
	for i, fund := range receipt.Funds {
		if fund.Amount == 0 {
			return errors.Wrapf(ruleerrors.ErrInvalidReceipt, "migrated fund %d has a zero amount", i)
		}
	}
	return nil
}
