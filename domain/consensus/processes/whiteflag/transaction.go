package whiteflag

import (
	"math"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
	"github.com/tanglenet/tangled/domain/consensus/utils/schnorr"
)

// applyTransaction checks transaction against the ledger state as mutated by
// the blocks already applied in this confirmation. If it doesn't conflict,
// its mutations are added to metadata. Errors are returned only for storage
// failures; a conflict is reported through the returned reason.
func (wf *whiteFlag) applyTransaction(metadata *model.WhiteFlagMetadata, blockID externalapi.BlockID,
	transaction *externalapi.TransactionPayload) (model.ConflictReason, error) {

	inputOutputs := make([]*externalapi.LedgerOutput, len(transaction.Inputs))
	seenInputs := make(map[externalapi.OutputID]struct{}, len(transaction.Inputs))
	for i, input := range transaction.Inputs {
		if _, ok := metadata.ConsumedOutputs[input.OutputID]; ok {
			return model.ConflictInputUTXOAlreadySpentInThisMilestone, nil
		}
		if _, ok := seenInputs[input.OutputID]; ok {
			return model.ConflictSemanticValidationFailed, nil
		}
		seenInputs[input.OutputID] = struct{}{}

		output, reason, err := wf.resolveInput(metadata, input.OutputID)
		if err != nil || reason != model.ConflictNone {
			return reason, err
		}
		inputOutputs[i] = output
	}

	for _, output := range inputOutputs {
		if output.Output.TimelockMilestoneIndex > metadata.MilestoneIndex {
			return model.ConflictTimelockNotExpired, nil
		}
	}

	reason, err := checkUnlocks(transaction, inputOutputs)
	if err != nil || reason != model.ConflictNone {
		return reason, err
	}

	reason = checkBalance(transaction, inputOutputs)
	if reason != model.ConflictNone {
		return reason, nil
	}

	transactionID, err := consensushashing.TransactionID(transaction)
	if err != nil {
		return model.ConflictNone, err
	}
	for _, output := range inputOutputs {
		metadata.ConsumedOutputs[output.OutputID] = &externalapi.ConsumedOutput{
			Output:                  output,
			SpentTransactionID:      transactionID,
			MilestoneIndexSpent:     metadata.MilestoneIndex,
			MilestoneTimestampSpent: metadata.MilestoneTimestamp,
		}
	}
	for i, output := range transaction.Outputs {
		outputID := externalapi.OutputID{TransactionID: transactionID, Index: uint16(i)}
		outputClone := *output
		metadata.CreatedOutputs[outputID] = &externalapi.LedgerOutput{
			OutputID:                 outputID,
			BlockID:                  blockID,
			MilestoneIndexBooked:     metadata.MilestoneIndex,
			MilestoneTimestampBooked: metadata.MilestoneTimestamp,
			Output:                   &outputClone,
		}
	}
	return model.ConflictNone, nil
}

// resolveInput finds the output an input spends, first among the outputs
// created earlier in this confirmation and then in the ledger.
func (wf *whiteFlag) resolveInput(metadata *model.WhiteFlagMetadata,
	outputID externalapi.OutputID) (*externalapi.LedgerOutput, model.ConflictReason, error) {

	if output, ok := metadata.CreatedOutputs[outputID]; ok {
		return output, model.ConflictNone, nil
	}
	output, found, err := wf.storage.FetchOutput(outputID)
	if err != nil {
		return nil, model.ConflictNone, err
	}
	if !found {
		return nil, model.ConflictInputUTXONotFound, nil
	}
	isUnspent, err := wf.storage.IsOutputUnspent(outputID)
	if err != nil {
		return nil, model.ConflictNone, err
	}
	if !isUnspent {
		return nil, model.ConflictInputUTXOAlreadySpent, nil
	}
	return output, model.ConflictNone, nil
}

// checkUnlocks verifies that every input is unlocked by a signature of the
// key owning its address.
func checkUnlocks(transaction *externalapi.TransactionPayload,
	inputOutputs []*externalapi.LedgerOutput) (model.ConflictReason, error) {

	if len(transaction.Unlocks) != len(inputOutputs) {
		return model.ConflictInvalidUnlock, nil
	}

	essenceHash, err := consensushashing.TransactionEssenceHash(transaction)
	if err != nil {
		return model.ConflictNone, err
	}

	verified := make(map[int]bool)
	for i, output := range inputOutputs {
		signatureIndex := i
		if reference, ok := transaction.Unlocks[i].(*externalapi.ReferenceUnlock); ok {
			signatureIndex = int(reference.Reference)
		}
		if signatureIndex > i {
			return model.ConflictInvalidUnlock, nil
		}
		signatureUnlock, ok := transaction.Unlocks[signatureIndex].(*externalapi.SignatureUnlock)
		if !ok || signatureUnlock == nil {
			return model.ConflictInvalidUnlock, nil
		}
		if consensushashing.AddressFromPublicKey(signatureUnlock.PublicKey) != output.Output.Address {
			return model.ConflictInvalidUnlock, nil
		}
		if !verified[signatureIndex] {
			if !schnorr.Verify(signatureUnlock.PublicKey, essenceHash, signatureUnlock.Signature) {
				return model.ConflictInvalidSignature, nil
			}
			verified[signatureIndex] = true
		}
	}
	return model.ConflictNone, nil
}

func checkBalance(transaction *externalapi.TransactionPayload,
	inputOutputs []*externalapi.LedgerOutput) model.ConflictReason {

	var inputSum uint64
	for _, output := range inputOutputs {
		if output.Output.Amount > math.MaxUint64-inputSum {
			return model.ConflictSemanticValidationFailed
		}
		inputSum += output.Output.Amount
	}
	var outputSum uint64
	for _, output := range transaction.Outputs {
		if output.Amount == 0 || output.Amount > math.MaxUint64-outputSum {
			return model.ConflictSemanticValidationFailed
		}
		outputSum += output.Amount
	}
	if inputSum != outputSum {
		return model.ConflictCreatedConsumedAmountMismatch
	}
	return model.ConflictNone
}
