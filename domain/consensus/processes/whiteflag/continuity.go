package whiteflag

import (
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
)

// isPreviousMilestone returns whether block carries the milestone the one
// being confirmed declares as its predecessor.
func (wf *whiteFlag) isPreviousMilestone(metadata *model.WhiteFlagMetadata,
	blockID externalapi.BlockID, block *externalapi.Block) bool {

	if metadata.PreviousMilestoneID.IsZero() {
		return false
	}
	if wf.isPreviousMilestoneBlockID(metadata, blockID) {
		return true
	}
	payload, ok := block.Milestone()
	if !ok || payload.Index+1 != metadata.MilestoneIndex {
		return false
	}
	milestoneID, err := consensushashing.MilestoneID(payload)
	if err != nil {
		return false
	}
	return milestoneID == metadata.PreviousMilestoneID
}

func (wf *whiteFlag) isPreviousMilestoneBlockID(metadata *model.WhiteFlagMetadata, blockID externalapi.BlockID) bool {
	if metadata.MilestoneIndex == 0 || metadata.PreviousMilestoneID.IsZero() {
		return false
	}
	previous, ok := wf.blockStore.Milestone(metadata.MilestoneIndex - 1)
	return ok && previous.BlockID == blockID && previous.MilestoneID == metadata.PreviousMilestoneID
}
