package propagator_test

import (
	"sync"
	"testing"
	"time"

	"github.com/tanglenet/tangled/domain/consensus/datastructures/blockstore"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/processes/propagator"
	"github.com/tanglenet/tangled/domain/consensus/utils/testutils"
	"github.com/tanglenet/tangled/domain/dagconfig"
)

func setup(t *testing.T) (model.BlockStore, *testutils.TangleBuilder, *testutils.EventRecorder, model.Propagator) {
	store := blockstore.New()
	store.AddSolidEntryPoint(dagconfig.GenesisSolidEntryPoint, 0)
	events := &testutils.EventRecorder{}
	return store, testutils.NewTangleBuilder(t, store), events, propagator.New(store, events)
}

var genesis = []externalapi.BlockID{dagconfig.GenesisSolidEntryPoint}

func TestPropagateSolidifiesFutureCone(t *testing.T) {
	store, builder, events, prop := setup(t)
	a := builder.AddBlock(genesis, nil)
	b := builder.AddBlock([]externalapi.BlockID{a}, nil)
	c := builder.AddBlock([]externalapi.BlockID{a, b}, nil)
	notSolid := builder.AddBlock([]externalapi.BlockID{a, {0xff}}, nil)

	solidified := prop.Propagate(a)
	if len(solidified) != 3 {
		t.Fatalf("expected 3 solidified blocks, got %d", len(solidified))
	}
	for _, blockID := range []externalapi.BlockID{a, b, c} {
		metadata, _ := store.Metadata(blockID)
		if !metadata.IsSolid() {
			t.Fatalf("block %s is unexpectedly not solid", blockID)
		}
		genesisBound := model.IndexBound{Index: 0, BlockID: dagconfig.GenesisSolidEntryPoint}
		if *metadata.OMRSI != genesisBound || *metadata.YMRSI != genesisBound {
			t.Fatalf("unexpected bounds of %s: %s", blockID, metadata)
		}
	}
	metadata, _ := store.Metadata(notSolid)
	if metadata.IsSolid() || metadata.OMRSI != nil {
		t.Fatalf("a block with a missing parent was solidified: %s", metadata)
	}
	if len(events.Events()) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events.Events()))
	}

	if again := prop.Propagate(a); len(again) != 0 {
		t.Fatalf("a second propagation solidified %d blocks", len(again))
	}
	if len(events.Events()) != 3 {
		t.Fatalf("a second propagation emitted events")
	}
}

func TestPropagateWaitsForParents(t *testing.T) {
	store, builder, _, prop := setup(t)
	parentID, parent := builder.NewBlock(genesis, nil)
	child := builder.AddBlock([]externalapi.BlockID{parentID}, nil)

	if solidified := prop.Propagate(child); len(solidified) != 0 {
		t.Fatalf("a block without its parent was solidified")
	}

	store.Insert(parentID, parent, model.NewBlockMetadata(time.Now()))
	solidified := prop.Propagate(parentID)
	if len(solidified) != 2 {
		t.Fatalf("expected the parent and the child to solidify, got %d", len(solidified))
	}
	if solidified[1].BlockID != child || !externalapi.BlockIDsEqual(solidified[1].Parents, []externalapi.BlockID{parentID}) {
		t.Fatalf("unexpected solidified child %+v", solidified[1])
	}
}

func TestMilestoneKeepsItsOwnIndex(t *testing.T) {
	store, builder, _, prop := setup(t)
	a := builder.AddBlock(genesis, nil)
	milestone := builder.AddBlock([]externalapi.BlockID{a}, nil)
	store.UpdateMetadata(milestone, func(metadata *model.BlockMetadata) {
		metadata.SetFlags(model.FlagMilestone)
		metadata.MilestoneIndex = 3
	})
	child := builder.AddBlock([]externalapi.BlockID{a, milestone}, nil)

	solidified := prop.Propagate(a)
	var milestoneSignal *model.SolidifiedBlock
	for _, solidifiedBlock := range solidified {
		if solidifiedBlock.BlockID == milestone {
			milestoneSignal = solidifiedBlock
		}
	}
	if milestoneSignal == nil || milestoneSignal.MilestoneIndex != 3 {
		t.Fatalf("the milestone's solidification doesn't carry its index: %+v", milestoneSignal)
	}

	milestoneMetadata, _ := store.Metadata(milestone)
	ownBound := model.IndexBound{Index: 3, BlockID: milestone}
	if *milestoneMetadata.OMRSI != ownBound || *milestoneMetadata.YMRSI != ownBound {
		t.Fatalf("unexpected milestone bounds: %s", milestoneMetadata)
	}

	childMetadata, _ := store.Metadata(child)
	if childMetadata.OMRSI.Index != 0 || *childMetadata.YMRSI != ownBound {
		t.Fatalf("unexpected child bounds: %s", childMetadata)
	}
	if childMetadata.OMRSI.Index > childMetadata.YMRSI.Index {
		t.Fatalf("omrsi is above ymrsi: %s", childMetadata)
	}
}

func TestConcurrentPropagationSolidifiesOnce(t *testing.T) {
	store, builder, events, prop := setup(t)
	const width = 8
	roots := make([]externalapi.BlockID, width)
	for i := range roots {
		roots[i] = builder.AddBlock(genesis, nil)
	}
	tip := builder.AddBlock(roots, nil)

	waitGroup := sync.WaitGroup{}
	for _, root := range roots {
		root := root
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			prop.Propagate(root)
		}()
	}
	waitGroup.Wait()

	metadata, _ := store.Metadata(tip)
	if !metadata.IsSolid() {
		t.Fatalf("the tip was not solidified")
	}
	if len(events.Events()) != width+1 {
		t.Fatalf("expected %d solidification events, got %d", width+1, len(events.Events()))
	}
}
