package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

const namespace = "tangled"

// Metrics holds the prometheus collectors of a node. They're fed from
// the consensus events channel.
type Metrics struct {
	registry *prometheus.Registry

	blocksSolidified    prometheus.Counter
	milestonesConfirmed prometheus.Counter
	confirmedBlocks     *prometheus.CounterVec
	outputs             *prometheus.CounterVec

	latestMilestoneIndex    prometheus.Gauge
	solidMilestoneIndex     prometheus.Gauge
	confirmedMilestoneIndex prometheus.Gauge
	pruningIndex            prometheus.Gauge
}

// New creates a Metrics over its own registry. tipCount, if not nil, is
// sampled on every scrape.
func New(tipCount func() int) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		blocksSolidified: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_solidified_total",
			Help:      "Number of blocks whose past cone became complete",
		}),
		milestonesConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestones_confirmed_total",
			Help:      "Number of milestones applied to the ledger",
		}),
		confirmedBlocks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirmed_blocks_total",
			Help:      "Number of blocks referenced by confirmed milestones, by outcome",
		}, []string{"outcome"}),
		outputs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_outputs_total",
			Help:      "Number of ledger outputs created and consumed by confirmed milestones",
		}, []string{"operation"}),
		latestMilestoneIndex: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latest_milestone_index",
			Help:      "Index of the latest valid milestone",
		}),
		solidMilestoneIndex: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "solid_milestone_index",
			Help:      "Index of the solid milestone",
		}),
		confirmedMilestoneIndex: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "confirmed_milestone_index",
			Help:      "Index of the last milestone applied to the ledger",
		}),
		pruningIndex: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pruning_index",
			Help:      "Index up to which the tangle was pruned",
		}),
	}

	if tipCount != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tips",
			Help:      "Number of tips in the tip pool",
		}, func() float64 {
			return float64(tipCount())
		})
	}
	return m
}

// Registry returns the registry holding the collectors of m
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Consume updates the collectors according to event
func (m *Metrics) Consume(event externalapi.ConsensusEvent) {
	switch event := event.(type) {
	case *externalapi.BlockSolidified:
		m.blocksSolidified.Inc()
	case *externalapi.LatestMilestoneChanged:
		m.latestMilestoneIndex.Set(float64(event.Index))
	case *externalapi.SolidMilestoneChanged:
		m.solidMilestoneIndex.Set(float64(event.Index))
	case *externalapi.MilestoneConfirmed:
		m.milestonesConfirmed.Inc()
		m.confirmedMilestoneIndex.Set(float64(event.Index))
		m.confirmedBlocks.WithLabelValues("included").Add(float64(event.Included))
		m.confirmedBlocks.WithLabelValues("no_transaction").Add(float64(event.ExcludedNoTx))
		m.confirmedBlocks.WithLabelValues("conflicting").Add(float64(event.ExcludedConflicting))
		m.outputs.WithLabelValues("created").Add(float64(event.CreatedOutputs))
		m.outputs.WithLabelValues("consumed").Add(float64(event.ConsumedOutputs))
	case *externalapi.PrunedIndex:
		m.pruningIndex.Set(float64(event.Index))
	default:
		log.Warnf("Got an unknown consensus event of type %T", event)
	}
}

// ConsumeEvents spawns a goroutine that feeds m from consensusEventsChan
// until it's closed. The returned channel is closed once it's done.
func (m *Metrics) ConsumeEvents(consensusEventsChan <-chan externalapi.ConsensusEvent) <-chan struct{} {
	done := make(chan struct{})
	spawn("Metrics.ConsumeEvents", func() {
		defer close(done)
		for event := range consensusEventsChan {
			m.Consume(event)
		}
		log.Debugf("The consensus events channel was closed")
	})
	return done
}
