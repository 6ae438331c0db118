package testutils

import (
	"testing"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/dagconfig"
)

// ForAllNets runs the passed testFunc with all available networks. Every
// network gets the simnet coordinator keys so that CoordinatorKeyPairs can
// sign milestones for it.
func ForAllNets(t *testing.T, testFunc func(*testing.T, *dagconfig.Params)) {
	allParams := []dagconfig.Params{
		dagconfig.MainnetParams,
		dagconfig.TestnetParams,
		dagconfig.SimnetParams,
		dagconfig.DevnetParams,
	}

	for _, params := range allParams {
		params := params.Clone()
		params.MilestoneKeyRanges = make([]*model.MilestoneKeyRange, len(dagconfig.SimnetParams.MilestoneKeyRanges))
		for i, keyRange := range dagconfig.SimnetParams.MilestoneKeyRanges {
			keyRangeClone := *keyRange
			params.MilestoneKeyRanges[i] = &keyRangeClone
		}
		params.MilestonePublicKeyCount = dagconfig.SimnetParams.MilestonePublicKeyCount
		t.Run(params.Name, func(t *testing.T) {
			t.Parallel()
			t.Logf("Running test for %s", params.Name)
			testFunc(t, params)
		})
	}
}
