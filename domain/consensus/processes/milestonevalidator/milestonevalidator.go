package milestonevalidator

import (
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
	"github.com/tanglenet/tangled/domain/consensus/utils/schnorr"
)

type milestoneValidator struct {
	signatureThreshold int

	blockStore model.BlockStore
	keyManager model.KeyManager
}

// New instantiates a new MilestoneValidator. signatureThreshold is the
// number of coordinator signatures a milestone must carry.
func New(signatureThreshold int, blockStore model.BlockStore, keyManager model.KeyManager) model.MilestoneValidator {
	return &milestoneValidator{
		signatureThreshold: signatureThreshold,
		blockStore:         blockStore,
		keyManager:         keyManager,
	}
}

// ValidateMilestone verifies the milestone payload of the given block and
// returns the resulting Milestone. Every failure is a RuleError.
func (mv *milestoneValidator) ValidateMilestone(blockID externalapi.BlockID) (*externalapi.Milestone, error) {
	block, ok := mv.blockStore.Block(blockID)
	if !ok {
		return nil, errors.Errorf("block %s does not exist in the tangle", blockID)
	}
	payload, ok := block.Milestone()
	if !ok {
		return nil, errors.Wrapf(ruleerrors.ErrNotAMilestone, "block %s carries a %T payload",
			blockID, block.Payload)
	}

	err := mv.checkParents(block, payload)
	if err != nil {
		return nil, err
	}
	err = mv.checkSignatureCount(payload)
	if err != nil {
		return nil, err
	}
	err = mv.checkSigners(payload)
	if err != nil {
		return nil, err
	}
	err = mv.checkSignatures(payload)
	if err != nil {
		return nil, err
	}

	milestoneID, err := consensushashing.MilestoneID(payload)
	if err != nil {
		return nil, err
	}
	return &externalapi.Milestone{
		Index:       payload.Index,
		MilestoneID: milestoneID,
		BlockID:     blockID,
		Timestamp:   payload.Timestamp,
		Payload:     payload,
	}, nil
}

func (mv *milestoneValidator) checkParents(block *externalapi.Block, payload *externalapi.MilestonePayload) error {
	if !externalapi.BlockIDsEqual(block.Parents, payload.Parents) {
		return errors.Wrapf(ruleerrors.ErrMilestoneParentsMismatch, "block parents %v differ from "+
			"the milestone parents %v", block.Parents, payload.Parents)
	}
	return nil
}

func (mv *milestoneValidator) checkSignatureCount(payload *externalapi.MilestonePayload) error {
	if mv.signatureThreshold == 0 {
		return errors.Wrapf(ruleerrors.ErrMilestoneSignatureThresholdZero, "the milestone "+
			"signature threshold must be positive")
	}
	if len(payload.Signatures) < mv.signatureThreshold {
		return errors.Wrapf(ruleerrors.ErrMilestoneTooFewSignatures, "milestone %d has %d signatures "+
			"while %d are required", payload.Index, len(payload.Signatures), mv.signatureThreshold)
	}

	signers := make(map[[externalapi.PublicKeySize]byte]struct{}, len(payload.Signatures))
	for _, signature := range payload.Signatures {
		signers[signature.PublicKey] = struct{}{}
	}
	if len(signers) != len(payload.Signatures) {
		return errors.Wrapf(ruleerrors.ErrMilestoneSignatureCountMismatch, "milestone %d has %d "+
			"signatures by %d distinct keys", payload.Index, len(payload.Signatures), len(signers))
	}
	return nil
}

func (mv *milestoneValidator) checkSigners(payload *externalapi.MilestonePayload) error {
	applicableKeys := mv.keyManager.PublicKeySetForIndex(payload.Index)
	if len(applicableKeys) < mv.signatureThreshold {
		return errors.Wrapf(ruleerrors.ErrMilestoneTooFewPublicKeys, "only %d public keys are "+
			"applicable to milestone %d, while the threshold is %d",
			len(applicableKeys), payload.Index, mv.signatureThreshold)
	}
	for _, signature := range payload.Signatures {
		if _, ok := applicableKeys[signature.PublicKey]; !ok {
			return errors.Wrapf(ruleerrors.ErrMilestoneUnknownPublicKey, "public key %x is not "+
				"applicable to milestone %d", signature.PublicKey, payload.Index)
		}
	}
	return nil
}

func (mv *milestoneValidator) checkSignatures(payload *externalapi.MilestonePayload) error {
	essenceHash, err := consensushashing.MilestoneEssenceHash(payload)
	if err != nil {
		return err
	}
	for i, signature := range payload.Signatures {
		if !schnorr.Verify(signature.PublicKey, essenceHash, signature.Signature) {
			return errors.Wrapf(ruleerrors.ErrMilestoneInvalidSignature, "signature %d of "+
				"milestone %d is invalid", i, payload.Index)
		}
	}
	return nil
}
