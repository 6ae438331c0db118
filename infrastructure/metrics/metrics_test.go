package metrics

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

func TestConsume(t *testing.T) {
	m := New(func() int { return 3 })

	m.Consume(&externalapi.BlockSolidified{})
	m.Consume(&externalapi.BlockSolidified{})
	m.Consume(&externalapi.LatestMilestoneChanged{Index: 7})
	m.Consume(&externalapi.SolidMilestoneChanged{Index: 6})
	m.Consume(&externalapi.MilestoneConfirmed{
		Index:               6,
		Referenced:          5,
		ExcludedNoTx:        2,
		ExcludedConflicting: 1,
		Included:            2,
		CreatedOutputs:      4,
		ConsumedOutputs:     3,
	})
	m.Consume(&externalapi.PrunedIndex{Index: 2})

	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"blocks solidified", testutil.ToFloat64(m.blocksSolidified), 2},
		{"latest milestone index", testutil.ToFloat64(m.latestMilestoneIndex), 7},
		{"solid milestone index", testutil.ToFloat64(m.solidMilestoneIndex), 6},
		{"confirmed milestone index", testutil.ToFloat64(m.confirmedMilestoneIndex), 6},
		{"milestones confirmed", testutil.ToFloat64(m.milestonesConfirmed), 1},
		{"included blocks", testutil.ToFloat64(m.confirmedBlocks.WithLabelValues("included")), 2},
		{"no transaction blocks", testutil.ToFloat64(m.confirmedBlocks.WithLabelValues("no_transaction")), 2},
		{"conflicting blocks", testutil.ToFloat64(m.confirmedBlocks.WithLabelValues("conflicting")), 1},
		{"created outputs", testutil.ToFloat64(m.outputs.WithLabelValues("created")), 4},
		{"consumed outputs", testutil.ToFloat64(m.outputs.WithLabelValues("consumed")), 3},
		{"pruning index", testutil.ToFloat64(m.pruningIndex), 2},
	}
	for _, test := range tests {
		if test.value != test.expected {
			t.Errorf("%s: expected %f, got %f", test.name, test.expected, test.value)
		}
	}
}

func TestConsumeEvents(t *testing.T) {
	m := New(nil)
	events := make(chan externalapi.ConsensusEvent, 3)
	done := m.ConsumeEvents(events)
	events <- &externalapi.MilestoneConfirmed{Index: 1}
	events <- &externalapi.MilestoneConfirmed{Index: 2}
	close(events)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("ConsumeEvents didn't return after its channel was closed")
	}
	if testutil.ToFloat64(m.milestonesConfirmed) != 2 {
		t.Fatalf("expected 2 confirmed milestones, got %f", testutil.ToFloat64(m.milestonesConfirmed))
	}
}

func TestServer(t *testing.T) {
	m := New(func() int { return 5 })
	m.Consume(&externalapi.SolidMilestoneChanged{Index: 11})

	server, err := NewServer(m, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewServer: %+v", err)
	}
	server.Start()
	defer func() {
		err := server.Stop()
		if err != nil {
			t.Fatalf("Stop: %+v", err)
		}
	}()

	response, err := http.Get("http://" + server.Address() + "/metrics")
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("ReadAll: %+v", err)
	}

	for _, expected := range []string{"tangled_solid_milestone_index 11", "tangled_tips 5"} {
		if !strings.Contains(string(body), expected) {
			t.Fatalf("the metrics page doesn't contain %q:\n%s", expected, body)
		}
	}
}
