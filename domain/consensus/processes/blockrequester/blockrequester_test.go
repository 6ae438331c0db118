package blockrequester

import (
	"testing"
	"time"

	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/testutils"
)

func TestRequestsAreDeduplicated(t *testing.T) {
	sink := &testutils.RequestRecorder{}
	requester := New(sink, time.Minute)

	blockID := externalapi.BlockID{0x01}
	if !requester.RequestBlock(blockID, 3) {
		t.Fatalf("the first request was unexpectedly deduplicated")
	}
	if requester.RequestBlock(blockID, 3) {
		t.Fatalf("the second request was unexpectedly issued")
	}
	if !requester.RequestMilestone(3) {
		t.Fatalf("the first milestone request was unexpectedly deduplicated")
	}
	if requester.RequestMilestone(3) {
		t.Fatalf("the second milestone request was unexpectedly issued")
	}
	if requester.PendingCount() != 2 {
		t.Fatalf("expected 2 pending requests, got %d", requester.PendingCount())
	}
	if len(sink.RequestedBlocks()) != 1 || len(sink.RequestedMilestones()) != 1 {
		t.Fatalf("the sink received duplicate requests")
	}

	if !requester.OnBlockArrived(blockID) {
		t.Fatalf("the requested block was not reported as requested")
	}
	if requester.OnBlockArrived(blockID) {
		t.Fatalf("an already resolved block was reported as requested")
	}
	requester.OnMilestoneArrived(3)
	if requester.PendingCount() != 0 {
		t.Fatalf("expected no pending requests, got %d", requester.PendingCount())
	}
}

func TestExpiredRequestIsReissued(t *testing.T) {
	sink := &testutils.RequestRecorder{}
	requester := New(sink, time.Minute).(*blockRequester)
	now := time.Now()
	requester.now = func() time.Time { return now }

	blockID := externalapi.BlockID{0x02}
	requester.RequestBlock(blockID, 1)
	now = now.Add(2 * time.Minute)
	if !requester.RequestBlock(blockID, 1) {
		t.Fatalf("an expired request was not issued again")
	}
	if len(sink.RequestedBlocks()) != 2 {
		t.Fatalf("expected 2 requests to reach the sink, got %d", len(sink.RequestedBlocks()))
	}
}
