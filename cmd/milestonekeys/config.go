package main

import (
	"github.com/jessevdk/go-flags"
	"github.com/tanglenet/tangled/infrastructure/config"
)

const defaultNumKeys = 3

type configFlags struct {
	NumKeys    uint32 `long:"num-keys" short:"n" description:"Number of coordinator keys to derive"`
	StartIndex uint32 `long:"start-index" description:"First milestone index the keys are valid for"`
	EndIndex   uint32 `long:"end-index" description:"Last milestone index the keys are valid for (0 leaves the range open)"`
	Import     bool   `long:"import" short:"i" description:"Import an existing mnemonic instead of generating one"`
	config.NetworkFlags
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		NumKeys: defaultNumKeys,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
