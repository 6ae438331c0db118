package milestonevalidator_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/datastructures/blockstore"
	"github.com/tanglenet/tangled/domain/consensus/datastructures/keymanager"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/processes/milestonevalidator"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
	"github.com/tanglenet/tangled/domain/consensus/utils/schnorr"
	"github.com/tanglenet/tangled/domain/consensus/utils/testutils"
	"github.com/tanglenet/tangled/domain/dagconfig"
)

func TestValidateMilestone(t *testing.T) {
	coordinatorKeys := testutils.CoordinatorKeyPairs(t)
	outsiderKey := testutils.KeyPairFromSeed(t, 9)
	parents := []externalapi.BlockID{dagconfig.GenesisSolidEntryPoint}

	newPayload := func(signers []*schnorr.KeyPair) *externalapi.MilestonePayload {
		payload := &externalapi.MilestonePayload{
			Index:     1,
			Timestamp: 1000,
			Parents:   externalapi.CloneBlockIDs(parents),
			Metadata:  []byte{},
		}
		testutils.SignMilestone(t, payload, signers)
		return payload
	}

	tests := []struct {
		name               string
		signatureThreshold int
		keyRanges          []*model.MilestoneKeyRange
		blockParents       []externalapi.BlockID
		payload            func() *externalapi.MilestonePayload
		expectedError      error
	}{
		{
			name:    "valid",
			payload: func() *externalapi.MilestonePayload { return newPayload(coordinatorKeys[:2]) },
		},
		{
			name:    "valid with all keys",
			payload: func() *externalapi.MilestonePayload { return newPayload(coordinatorKeys) },
		},
		{
			name:          "parents mismatch",
			blockParents:  []externalapi.BlockID{{0x01}},
			payload:       func() *externalapi.MilestonePayload { return newPayload(coordinatorKeys[:2]) },
			expectedError: ruleerrors.ErrMilestoneParentsMismatch,
		},
		{
			name:               "zero threshold",
			signatureThreshold: -1,
			payload:            func() *externalapi.MilestonePayload { return newPayload(coordinatorKeys[:2]) },
			expectedError:      ruleerrors.ErrMilestoneSignatureThresholdZero,
		},
		{
			name:          "too few signatures",
			payload:       func() *externalapi.MilestonePayload { return newPayload(coordinatorKeys[:1]) },
			expectedError: ruleerrors.ErrMilestoneTooFewSignatures,
		},
		{
			name: "duplicate signer",
			payload: func() *externalapi.MilestonePayload {
				payload := newPayload(coordinatorKeys[:1])
				signature := *payload.Signatures[0]
				payload.Signatures = append(payload.Signatures, &signature)
				return payload
			},
			expectedError: ruleerrors.ErrMilestoneSignatureCountMismatch,
		},
		{
			name: "too few applicable keys",
			keyRanges: []*model.MilestoneKeyRange{
				{PublicKey: coordinatorKeys[0].PublicKey(), StartIndex: 0},
				{PublicKey: coordinatorKeys[1].PublicKey(), StartIndex: 5},
			},
			payload:       func() *externalapi.MilestonePayload { return newPayload(coordinatorKeys[:2]) },
			expectedError: ruleerrors.ErrMilestoneTooFewPublicKeys,
		},
		{
			name: "unknown signer",
			payload: func() *externalapi.MilestonePayload {
				return newPayload([]*schnorr.KeyPair{coordinatorKeys[0], outsiderKey})
			},
			expectedError: ruleerrors.ErrMilestoneUnknownPublicKey,
		},
		{
			name: "tampered essence",
			payload: func() *externalapi.MilestonePayload {
				payload := newPayload(coordinatorKeys[:2])
				payload.Timestamp++
				return payload
			},
			expectedError: ruleerrors.ErrMilestoneInvalidSignature,
		},
	}

	for _, test := range tests {
		store := blockstore.New()
		keyRanges := test.keyRanges
		if keyRanges == nil {
			keyRanges = dagconfig.SimnetParams.MilestoneKeyRanges
		}
		signatureThreshold := test.signatureThreshold
		switch signatureThreshold {
		case 0:
			signatureThreshold = dagconfig.SimnetParams.MilestonePublicKeyCount
		case -1:
			signatureThreshold = 0
		}
		validator := milestonevalidator.New(signatureThreshold, store, keymanager.New(keyRanges))

		payload := test.payload()
		blockParents := test.blockParents
		if blockParents == nil {
			blockParents = parents
		}
		block := &externalapi.Block{Parents: blockParents, Payload: payload}
		blockID, err := consensushashing.BlockID(block)
		if err != nil {
			t.Fatalf("%s: BlockID: %+v", test.name, err)
		}
		store.Insert(blockID, block, model.NewBlockMetadata(time.Now()))

		milestone, err := validator.ValidateMilestone(blockID)
		if test.expectedError != nil {
			if !errors.Is(err, test.expectedError) {
				t.Fatalf("%s: expected error %s, got: %+v", test.name, test.expectedError, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: ValidateMilestone: %+v", test.name, err)
		}
		expectedID, err := consensushashing.MilestoneID(payload)
		if err != nil {
			t.Fatalf("%s: MilestoneID: %+v", test.name, err)
		}
		if milestone.Index != 1 || milestone.BlockID != blockID || milestone.MilestoneID != expectedID {
			t.Fatalf("%s: unexpected milestone %+v", test.name, milestone)
		}
	}
}

func TestValidateMilestoneRejectsOtherPayloads(t *testing.T) {
	store := blockstore.New()
	validator := milestonevalidator.New(2, store, keymanager.New(dagconfig.SimnetParams.MilestoneKeyRanges))
	blockID := testutils.NewTangleBuilder(t, store).AddBlock(
		[]externalapi.BlockID{dagconfig.GenesisSolidEntryPoint},
		&externalapi.TaggedDataPayload{Tag: []byte("tag")})

	_, err := validator.ValidateMilestone(blockID)
	if !errors.Is(err, ruleerrors.ErrNotAMilestone) {
		t.Fatalf("expected ErrNotAMilestone, got: %+v", err)
	}
}
