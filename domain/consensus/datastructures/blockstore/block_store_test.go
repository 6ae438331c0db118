package blockstore

import (
	"sync"
	"testing"
	"time"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

func TestInsertAndChildren(t *testing.T) {
	store := New()

	parent := externalapi.BlockID{1}
	child := externalapi.BlockID{2}
	childBlock := &externalapi.Block{Parents: []externalapi.BlockID{parent}}

	// Children are tracked even before the parent itself arrives
	if !store.Insert(child, childBlock, model.NewBlockMetadata(time.Now())) {
		t.Fatalf("the first insert of a block must report it as new")
	}
	if store.Insert(child, childBlock, model.NewBlockMetadata(time.Now())) {
		t.Fatalf("a duplicate insert must not report the block as new")
	}
	children := store.Children(parent)
	if len(children) != 1 || children[0] != child {
		t.Fatalf("unexpected children of the parent: %v", children)
	}
	if store.Contains(parent) {
		t.Fatalf("the parent was never inserted")
	}

	store.Insert(parent, &externalapi.Block{Parents: []externalapi.BlockID{{}}}, model.NewBlockMetadata(time.Now()))
	if store.Count() != 2 {
		t.Fatalf("expected 2 blocks, got %d", store.Count())
	}

	store.Delete(child)
	if store.Contains(child) {
		t.Fatalf("a deleted block is still present")
	}
	if len(store.Children(parent)) != 0 {
		t.Fatalf("a deleted block is still registered as a child")
	}
}

func TestMetadataIsCopied(t *testing.T) {
	store := New()
	blockID := externalapi.BlockID{1}
	store.Insert(blockID, &externalapi.Block{Parents: []externalapi.BlockID{{}}}, model.NewBlockMetadata(time.Now()))

	metadata, ok := store.Metadata(blockID)
	if !ok {
		t.Fatalf("metadata is missing")
	}
	metadata.SetFlags(model.FlagSolid)

	metadata, _ = store.Metadata(blockID)
	if metadata.IsSolid() {
		t.Fatalf("modifying a metadata copy must not change the stored metadata")
	}

	updated := store.UpdateMetadata(blockID, func(metadata *model.BlockMetadata) {
		metadata.SetFlags(model.FlagSolid)
	})
	if !updated {
		t.Fatalf("UpdateMetadata of a known block must succeed")
	}
	metadata, _ = store.Metadata(blockID)
	if !metadata.IsSolid() {
		t.Fatalf("UpdateMetadata didn't persist the change")
	}

	if store.UpdateMetadata(externalapi.BlockID{9}, func(*model.BlockMetadata) {}) {
		t.Fatalf("UpdateMetadata of an unknown block must fail")
	}
}

func TestConcurrentMetadataUpdates(t *testing.T) {
	store := New()
	blockID := externalapi.BlockID{1}
	store.Insert(blockID, &externalapi.Block{Parents: []externalapi.BlockID{{}}}, model.NewBlockMetadata(time.Now()))

	const updaters = 50
	wg := sync.WaitGroup{}
	wg.Add(updaters)
	for i := 0; i < updaters; i++ {
		go func() {
			defer wg.Done()
			store.UpdateMetadata(blockID, func(metadata *model.BlockMetadata) {
				metadata.MilestoneIndex++
			})
		}()
	}
	wg.Wait()

	metadata, _ := store.Metadata(blockID)
	if metadata.MilestoneIndex != updaters {
		t.Fatalf("lost metadata updates: expected %d, got %d", updaters, metadata.MilestoneIndex)
	}
}

func TestSolidEntryPoints(t *testing.T) {
	store := New()
	store.AddSolidEntryPoint(externalapi.BlockID{}, 0)
	if !store.IsSolidEntryPoint(externalapi.BlockID{}) {
		t.Fatalf("added solid entry point is missing")
	}

	store.ReplaceSolidEntryPoints([]*model.SolidEntryPoint{
		{BlockID: externalapi.BlockID{2}, Index: 7},
		{BlockID: externalapi.BlockID{1}, Index: 5},
	})
	if store.IsSolidEntryPoint(externalapi.BlockID{}) {
		t.Fatalf("replaced solid entry point is still present")
	}
	index, ok := store.SolidEntryPointIndex(externalapi.BlockID{2})
	if !ok || index != 7 {
		t.Fatalf("unexpected solid entry point index %d", index)
	}
	solidEntryPoints := store.SolidEntryPoints()
	if len(solidEntryPoints) != 2 || solidEntryPoints[0].BlockID != (externalapi.BlockID{1}) {
		t.Fatalf("solid entry points must be sorted by block id")
	}
}

func TestMilestoneRegistry(t *testing.T) {
	store := New()
	milestone := &externalapi.Milestone{Index: 3, BlockID: externalapi.BlockID{3}}
	if !store.AddMilestone(milestone) {
		t.Fatalf("the first registration of a milestone must succeed")
	}
	if store.AddMilestone(milestone) {
		t.Fatalf("registering a milestone twice must be a no-op")
	}
	store.AddMilestone(&externalapi.Milestone{Index: 2})
	if store.LatestMilestoneIndex() != 3 {
		t.Fatalf("expected latest milestone index 3, got %d", store.LatestMilestoneIndex())
	}
	found, ok := store.Milestone(3)
	if !ok || found != milestone {
		t.Fatalf("milestone 3 is missing")
	}
	store.RemoveMilestone(3)
	if _, ok := store.Milestone(3); ok {
		t.Fatalf("milestone 3 wasn't removed")
	}
}
