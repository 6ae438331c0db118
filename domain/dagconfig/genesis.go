package dagconfig

import (
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// GenesisSolidEntryPoint is the all-zero block id every tangle starts from.
var GenesisSolidEntryPoint = externalapi.BlockID{}

// GenesisSnapshot returns the ledger state a fresh node starts from: an empty
// ledger at index 0 whose treasury holds the whole token supply.
func (p *Params) GenesisSnapshot() *model.LedgerSnapshot {
	return &model.LedgerSnapshot{
		LedgerIndex: 0,
		TreasuryOutput: &externalapi.TreasuryOutput{
			MilestoneID: externalapi.MilestoneID{},
			Amount:      p.TokenSupply,
		},
		SolidEntryPoints: []*model.SolidEntryPoint{
			{BlockID: GenesisSolidEntryPoint, Index: 0},
		},
	}
}
