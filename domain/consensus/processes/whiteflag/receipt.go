package whiteflag

import (
	"math"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
)

// applyReceipt migrates the funds listed by the milestone's receipt into the
// ledger and moves the remaining treasury to a new treasury output.
func (wf *whiteFlag) applyReceipt(metadata *model.WhiteFlagMetadata, milestone *externalapi.Milestone) error {
	receipt := milestone.Payload.Receipt
	if receipt.Transaction == nil {
		return ruleerrors.Fatalf(ruleerrors.ErrInvalidTreasuryTransition,
			"the receipt of milestone %d has no treasury transaction", milestone.Index)
	}

	unspentTreasury, err := wf.storage.UnspentTreasuryOutput()
	if err != nil {
		return err
	}
	if unspentTreasury == nil {
		return ruleerrors.Fatalf(ruleerrors.ErrInvalidTreasuryTransition,
			"milestone %d carries a receipt but there is no unspent treasury output", milestone.Index)
	}
	if unspentTreasury.MilestoneID != receipt.Transaction.InputMilestoneID {
		return ruleerrors.Fatalf(ruleerrors.ErrInvalidTreasuryTransition, "the receipt of milestone %d "+
			"spends treasury %s but the unspent treasury is %s", milestone.Index,
			receipt.Transaction.InputMilestoneID, unspentTreasury.MilestoneID)
	}

	migrated := receipt.Transaction.OutputAmount
	for _, fund := range receipt.Funds {
		if fund.Amount > math.MaxUint64-migrated {
			return ruleerrors.Fatalf(ruleerrors.ErrInvalidTreasuryTransition,
				"the migrated funds of milestone %d overflow", milestone.Index)
		}
		migrated += fund.Amount
	}
	if migrated != unspentTreasury.Amount {
		return ruleerrors.Fatalf(ruleerrors.ErrInvalidTreasuryTransition, "milestone %d migrates %d "+
			"and leaves %d in the treasury, but the treasury holds %d", milestone.Index,
			migrated-receipt.Transaction.OutputAmount, receipt.Transaction.OutputAmount, unspentTreasury.Amount)
	}

	for i, fund := range receipt.Funds {
		outputID := consensushashing.ReceiptOutputID(milestone.MilestoneID, uint16(i))
		output := &externalapi.LedgerOutput{
			OutputID:                 outputID,
			BlockID:                  milestone.BlockID,
			MilestoneIndexBooked:     milestone.Index,
			MilestoneTimestampBooked: milestone.Timestamp,
			Output:                   &externalapi.Output{Address: fund.Address, Amount: fund.Amount},
		}
		metadata.ReceiptMigratedOutputs = append(metadata.ReceiptMigratedOutputs, output)
		metadata.CreatedOutputs[outputID] = output
	}

	spentTreasury := *unspentTreasury
	spentTreasury.Spent = true
	metadata.SpentTreasuryOutput = &spentTreasury
	metadata.CreatedTreasuryOutput = &externalapi.TreasuryOutput{
		MilestoneID: milestone.MilestoneID,
		Amount:      receipt.Transaction.OutputAmount,
	}
	return nil
}
