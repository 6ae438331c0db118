package app

import (
	"sync/atomic"

	"github.com/tanglenet/tangled/domain/consensus"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/infrastructure/config"
	infrastructuredatabase "github.com/tanglenet/tangled/infrastructure/db/database"
	"github.com/tanglenet/tangled/infrastructure/metrics"
)

const consensusEventsChannelSize = 1000

// ComponentManager is a wrapper for all the tangled services
type ComponentManager struct {
	cfg                 *config.Config
	consensus           consensus.Consensus
	consensusEventsChan chan externalapi.ConsensusEvent
	metrics             *metrics.Metrics
	metricsServer       *metrics.Server
	metricsDone         <-chan struct{}

	started, shutdown int32
}

// Start launches all the tangled services.
func (a *ComponentManager) Start() {
	// Already started?
	if atomic.AddInt32(&a.started, 1) != 1 {
		return
	}

	log.Trace("Starting tangled")

	a.metricsDone = a.metrics.ConsumeEvents(a.consensusEventsChan)
	if a.metricsServer != nil {
		a.metricsServer.Start()
	}
}

// Stop gracefully shuts down all the tangled services.
func (a *ComponentManager) Stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&a.shutdown, 1) != 1 {
		log.Infof("Tangled is already in the process of shutting down")
		return
	}

	log.Warnf("Tangled shutting down")

	a.consensus.Stop()
	close(a.consensusEventsChan)
	if a.metricsDone != nil {
		<-a.metricsDone
	}

	if a.metricsServer != nil {
		err := a.metricsServer.Stop()
		if err != nil {
			log.Errorf("Error stopping the metrics server: %+v", err)
		}
	}
}

// Consensus returns the Consensus run by this ComponentManager
func (a *ComponentManager) Consensus() consensus.Consensus {
	return a.consensus
}

// NewComponentManager returns a new ComponentManager instance.
// Use Start() to begin all services within this ComponentManager
func NewComponentManager(cfg *config.Config, db infrastructuredatabase.Database) (*ComponentManager, error) {
	consensusEventsChan := make(chan externalapi.ConsensusEvent, consensusEventsChannelSize)
	c, err := consensus.NewFactory().NewConsensus(cfg.ConsensusConfig, db, &requestLogger{}, consensusEventsChan)
	if err != nil {
		return nil, err
	}

	nodeMetrics := metrics.New(c.TipCount)
	var metricsServer *metrics.Server
	if cfg.MetricsListen != "" {
		metricsServer, err = metrics.NewServer(nodeMetrics, cfg.MetricsListen)
		if err != nil {
			c.Stop()
			return nil, err
		}
	}

	return &ComponentManager{
		cfg:                 cfg,
		consensus:           c,
		consensusEventsChan: consensusEventsChan,
		metrics:             nodeMetrics,
		metricsServer:       metricsServer,
	}, nil
}

// requestLogger is the request sink of a node without a gossip layer. It
// only records what the consensus asked for.
type requestLogger struct{}

func (*requestLogger) RequestBlock(blockID externalapi.BlockID, index externalapi.MilestoneIndex) {
	log.Debugf("Block %s is missing (milestone %d)", blockID, index)
}

func (*requestLogger) RequestMilestone(index externalapi.MilestoneIndex) {
	log.Debugf("Milestone %d is missing", index)
}
