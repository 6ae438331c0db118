package blockvalidator

import (
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
)

func (v *blockValidator) validateTransactionInIsolation(transaction *externalapi.TransactionPayload) error {
	err := v.checkTransactionNetworkID(transaction)
	if err != nil {
		return err
	}
	err = v.checkTransactionInputCount(transaction)
	if err != nil {
		return err
	}
	err = v.checkTransactionOutputCount(transaction)
	if err != nil {
		return err
	}
	err = v.checkDuplicateTransactionInputs(transaction)
	if err != nil {
		return err
	}
	err = v.checkTransactionAmountRanges(transaction)
	if err != nil {
		return err
	}
	return v.checkTransactionUnlocks(transaction)
}

func (v *blockValidator) checkTransactionNetworkID(transaction *externalapi.TransactionPayload) error {
	if transaction.NetworkID != v.networkID {
		return errors.Wrapf(ruleerrors.ErrWrongNetworkID, "transaction network id is %x "+
			"while the node runs on %x", transaction.NetworkID, v.networkID)
	}
	return nil
}

func (v *blockValidator) checkTransactionInputCount(transaction *externalapi.TransactionPayload) error {
	if len(transaction.Inputs) == 0 {
		return errors.Wrapf(ruleerrors.ErrNoTxInputs, "transaction has no inputs")
	}
	if len(transaction.Inputs) > v.maxInputs {
		return errors.Wrapf(ruleerrors.ErrTooManyTxInputs, "transaction has %d inputs, "+
			"which is more than the max of %d", len(transaction.Inputs), v.maxInputs)
	}
	return nil
}

func (v *blockValidator) checkTransactionOutputCount(transaction *externalapi.TransactionPayload) error {
	if len(transaction.Outputs) == 0 {
		return errors.Wrapf(ruleerrors.ErrNoTxOutputs, "transaction has no outputs")
	}
	if len(transaction.Outputs) > v.maxOutputs {
		return errors.Wrapf(ruleerrors.ErrTooManyTxOutputs, "transaction has %d outputs, "+
			"which is more than the max of %d", len(transaction.Outputs), v.maxOutputs)
	}
	return nil
}

func (v *blockValidator) checkDuplicateTransactionInputs(transaction *externalapi.TransactionPayload) error {
	existingOutputIDs := make(map[externalapi.OutputID]struct{}, len(transaction.Inputs))
	for _, input := range transaction.Inputs {
		if _, exists := existingOutputIDs[input.OutputID]; exists {
			return errors.Wrapf(ruleerrors.ErrDuplicateTxInputs, "transaction "+
				"contains duplicate input %s", input.OutputID)
		}
		existingOutputIDs[input.OutputID] = struct{}{}
	}
	return nil
}

func (v *blockValidator) checkTransactionAmountRanges(transaction *externalapi.TransactionPayload) error {
	// Ensure the transaction amounts are in range. Each output must be
	// positive and no more than the token supply, and so must be their
	// sum. The sum is checked for overflow on every step.
	var totalAmount uint64
	for _, output := range transaction.Outputs {
		amount := output.Amount
		if amount == 0 {
			return errors.Wrapf(ruleerrors.ErrBadTxOutValue, "zero value output")
		}
		if amount > v.tokenSupply {
			return errors.Wrapf(ruleerrors.ErrBadTxOutValue, "transaction output value of %d is "+
				"higher than the token supply of %d", amount, v.tokenSupply)
		}

		newTotalAmount := totalAmount + amount
		if newTotalAmount < totalAmount || newTotalAmount > v.tokenSupply {
			return errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total value of all "+
				"transaction outputs exceeds the token supply of %d", v.tokenSupply)
		}
		totalAmount = newTotalAmount
	}
	return nil
}

func (v *blockValidator) checkTransactionUnlocks(transaction *externalapi.TransactionPayload) error {
	if len(transaction.Unlocks) != len(transaction.Inputs) {
		return errors.Wrapf(ruleerrors.ErrUnlockCountMismatch, "transaction has %d unlocks "+
			"for %d inputs", len(transaction.Unlocks), len(transaction.Inputs))
	}

	signedPublicKeys := make(map[[externalapi.PublicKeySize]byte]struct{})
	for i, unlock := range transaction.Unlocks {
		switch unlock := unlock.(type) {
		case *externalapi.SignatureUnlock:
			if _, exists := signedPublicKeys[unlock.PublicKey]; exists {
				return errors.Wrapf(ruleerrors.ErrDuplicateSignatureUnlock, "unlock %d repeats "+
					"the signature of an earlier unlock", i)
			}
			signedPublicKeys[unlock.PublicKey] = struct{}{}
		case *externalapi.ReferenceUnlock:
			reference := int(unlock.Reference)
			if reference >= i {
				return errors.Wrapf(ruleerrors.ErrInvalidReferenceUnlock, "unlock %d references "+
					"unlock %d which is not an earlier one", i, reference)
			}
			if _, ok := transaction.Unlocks[reference].(*externalapi.SignatureUnlock); !ok {
				return errors.Wrapf(ruleerrors.ErrInvalidReferenceUnlock, "unlock %d references "+
					"unlock %d which is not a signature unlock", i, reference)
			}
		default:
			return errors.Wrapf(ruleerrors.ErrInvalidReferenceUnlock, "unlock %d is of unknown type %T", i, unlock)
		}
	}
	return nil
}
