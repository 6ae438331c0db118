package consensus

import (
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
)

const workerChannelSize = 1000

// startWorkers spawns the worker pipeline. Every worker is the only reader
// of its input channel, and closes the channels it's the last writer of once
// its input is drained:
//
//	SubmitBlock -> milestoneWorker -> propagateWorker -> tipWorker
//	                               \                  \
//	                                `----------------> solidifyWorker -> pruneWorker
func (s *consensus) startWorkers() {
	s.milestoneChan = make(chan externalapi.BlockID, workerChannelSize)
	s.propagateChan = make(chan externalapi.BlockID, workerChannelSize)
	s.tipChan = make(chan *model.SolidifiedBlock, workerChannelSize)
	s.solidifyChan = make(chan externalapi.MilestoneIndex, workerChannelSize)
	s.pruneChan = make(chan struct{}, workerChannelSize)

	s.workersWaitGroup.Add(5)
	spawn("consensus-milestoneWorker", s.milestoneWorker)
	spawn("consensus-propagateWorker", s.propagateWorker)
	spawn("consensus-tipWorker", s.tipWorker)
	spawn("consensus-solidifyWorker", s.solidifyWorker)
	spawn("consensus-pruneWorker", s.pruneWorker)
}

func (s *consensus) milestoneWorker() {
	defer s.workersWaitGroup.Done()
	defer close(s.propagateChan)

	for blockID := range s.milestoneChan {
		s.handleMilestoneBlock(blockID)
		s.taskDone()
	}
}

// handleMilestoneBlock validates the milestone carried by blockID. A valid
// milestone is registered before the block is propagated, so the block
// solidifies with its own index as bounds. Only the first block of an index
// is flagged as a milestone.
func (s *consensus) handleMilestoneBlock(blockID externalapi.BlockID) {
	defer s.enqueuePropagation(blockID)

	milestone, err := s.milestoneValidator.ValidateMilestone(blockID)
	if err != nil {
		if ruleerrors.IsRuleError(err) {
			log.Debugf("Block %s carries an invalid milestone: %s", blockID, err)
			return
		}
		log.Errorf("Failed validating the milestone of block %s: %+v", blockID, err)
		return
	}
	if milestone.Index <= s.blockStore.PruningIndex() {
		log.Debugf("Ignoring milestone %d which is below the pruning index %d",
			milestone.Index, s.blockStore.PruningIndex())
		return
	}

	s.blockRequester.OnMilestoneArrived(milestone.Index)
	if !s.blockStore.AddMilestone(milestone) {
		log.Debugf("Milestone %d is already known, not promoting block %s", milestone.Index, blockID)
		return
	}
	s.blockStore.UpdateMetadata(blockID, func(metadata *model.BlockMetadata) {
		metadata.SetFlags(model.FlagMilestone)
		metadata.MilestoneIndex = milestone.Index
	})
	log.Infof("Received milestone %d in block %s", milestone.Index, blockID)
	if milestone.Index == s.blockStore.LatestMilestoneIndex() {
		s.eventSink.Emit(&externalapi.LatestMilestoneChanged{Index: milestone.Index, Milestone: milestone})
	}

	s.addTask()
	s.solidifyChan <- milestone.Index
}

func (s *consensus) enqueuePropagation(blockID externalapi.BlockID) {
	s.addTask()
	s.propagateChan <- blockID
}

func (s *consensus) propagateWorker() {
	defer s.workersWaitGroup.Done()
	defer close(s.solidifyChan)
	defer close(s.tipChan)

	for blockID := range s.propagateChan {
		for _, solidifiedBlock := range s.propagator.Propagate(blockID) {
			s.addTask()
			s.tipChan <- solidifiedBlock
			if solidifiedBlock.MilestoneIndex != 0 {
				s.addTask()
				s.solidifyChan <- solidifiedBlock.MilestoneIndex
			}
		}
		s.taskDone()
	}
}

func (s *consensus) tipWorker() {
	defer s.workersWaitGroup.Done()

	for solidifiedBlock := range s.tipChan {
		if !s.tipPool.AddTip(solidifiedBlock) {
			log.Tracef("Block %s wasn't added to the tip pool", solidifiedBlock.BlockID)
		}
		s.taskDone()
	}
}

func (s *consensus) solidifyWorker() {
	defer s.workersWaitGroup.Done()
	defer close(s.pruneChan)

	for candidateIndex := range s.solidifyChan {
		s.solidify(candidateIndex)
		s.taskDone()
	}
}

func (s *consensus) solidify(candidateIndex externalapi.MilestoneIndex) {
	solidIndexBefore := s.blockStore.SolidMilestoneIndex()
	err := s.milestoneSolidifier.Solidify(candidateIndex)
	if err != nil {
		if ruleerrors.IsFatal(err) {
			log.Criticalf("Milestone %d can't be confirmed, the tangle can't be trusted "+
				"until it's resynced: %+v", s.blockStore.SolidMilestoneIndex()+1, err)
		} else {
			log.Errorf("Failed solidifying milestone %d: %+v", candidateIndex, err)
		}
	}
	if s.blockStore.SolidMilestoneIndex() == solidIndexBefore {
		return
	}

	s.tipPool.Update()
	if s.config.EnablePruning {
		s.addTask()
		s.pruneChan <- struct{}{}
	}
}

func (s *consensus) pruneWorker() {
	defer s.workersWaitGroup.Done()

	for range s.pruneChan {
		_, err := s.pruningManager.PruneIfNeeded()
		if err != nil {
			log.Errorf("Failed pruning the tangle: %+v", err)
		}
		s.taskDone()
	}
}
