package consensus

import (
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/dagconfig"
)

const (
	defaultPruningDelay    = 60480
	defaultPruningInterval = 10
	defaultOutputCacheSize = 100_000
)

// Config is a descriptor for a consensus instance
type Config struct {
	dagconfig.Params

	// EnablePruning makes the node prune after every confirmation, keeping
	// PruningDelay milestones of history.
	EnablePruning   bool
	PruningDelay    externalapi.MilestoneIndex
	PruningInterval externalapi.MilestoneIndex

	// OutputCacheSize is the number of ledger outputs kept in memory.
	OutputCacheSize int
}

// DefaultConfig returns the config of a non-pruning node of the given
// network
func DefaultConfig(params *dagconfig.Params) *Config {
	return &Config{
		Params:          *params.Clone(),
		PruningDelay:    defaultPruningDelay,
		PruningInterval: defaultPruningInterval,
		OutputCacheSize: defaultOutputCacheSize,
	}
}

// Validate returns an error if the config can't drive a consensus
func (config *Config) Validate() error {
	err := config.Params.Validate()
	if err != nil {
		return err
	}
	if config.OutputCacheSize <= 0 {
		return errors.Errorf("the output cache size must be positive, got %d", config.OutputCacheSize)
	}
	if !config.EnablePruning {
		return nil
	}
	if config.PruningDelay <= config.BelowMaxDepth {
		return errors.Errorf("the pruning delay (%d) must be above the below max depth (%d)",
			config.PruningDelay, config.BelowMaxDepth)
	}
	if config.PruningInterval == 0 {
		return errors.Errorf("the pruning interval must be positive")
	}
	return nil
}
