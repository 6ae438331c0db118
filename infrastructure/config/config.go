// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/version"
)

const (
	defaultConfigFilename = "tangled.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	// DefaultLogFilename is the name of the main log file
	DefaultLogFilename = "tangled.log"
	// DefaultErrLogFilename is the name of the log file holding warnings and errors only
	DefaultErrLogFilename = "tangled_err.log"
)

var (
	// DefaultAppDir is the default home directory for tangled.
	DefaultAppDir = btcutil.AppDataDir("tangled", false)

	defaultConfigFile = filepath.Join(DefaultAppDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultAppDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(DefaultAppDir, defaultLogDirname)
)

// Flags defines the configuration options for tangled.
//
// See LoadConfig for details on the configuration load process.
type Flags struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	AppDir      string `short:"b" long:"appdir" description:"Directory to store data"`
	LogDir      string `long:"logdir" description:"Directory to log output."`
	LogLevel    string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	MilestoneKeyRanges      []string `long:"milestone-key-range" description:"Add a coordinator public key along with the milestones it's valid for, as <hex public key>:<start index>[:<end index>] -- Replaces the keys of the selected network"`
	MilestonePublicKeyCount int      `long:"milestone-public-key-count" description:"Number of signatures a milestone must carry (0 keeps the network default)"`
	SyncWindow              uint32   `long:"sync-window" description:"Number of milestones ahead of the solid milestone to request at once (0 keeps the network default)"`
	BelowMaxDepth           uint32   `long:"below-max-depth" description:"Milestone distance after which a block is too old to be approved (0 keeps the network default)"`
	TipSafetyThreshold      uint32   `long:"tip-safety-threshold" description:"How far the solid milestone may lag behind the latest milestone while tips are still accepted (0 keeps the network default)"`
	MaxTips                 int      `long:"max-tips" description:"Maximum number of tips kept in the tip pool (0 keeps the network default)"`

	EnablePruning   bool   `long:"pruning" description:"Prune the tangle and the ledger history below the pruning delay"`
	PruningDelay    uint32 `long:"pruning-delay" description:"Number of milestones of history to keep when pruning"`
	PruningInterval uint32 `long:"pruning-interval" description:"Number of milestones between two pruning runs"`
	OutputCacheSize int    `long:"output-cache-size" description:"Number of ledger outputs kept in memory"`

	MetricsListen string `long:"metricslisten" description:"Serve prometheus metrics on the given interface/port (eg. 127.0.0.1:9311) -- Disabled if empty"`
	Profile       string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	ResetDatabase bool   `long:"reset-db" description:"Reset database before starting node"`

	NetworkFlags
}

// Config defines the configuration options for tangled.
//
// See LoadConfig for details on the configuration load process.
type Config struct {
	*Flags
	ConsensusConfig *consensus.Config
}

// DataDir returns the network-specific data directory
func (cfg *Config) DataDir() string {
	return filepath.Join(cfg.AppDir, cfg.NetParams().Name)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(DefaultAppDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

func defaultFlags() *Flags {
	return &Flags{
		ConfigFile: defaultConfigFile,
		LogLevel:   defaultLogLevel,
		AppDir:     defaultDataDir,
		LogDir:     defaultLogDir,
	}
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in tangled functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options. Command line options always take
// precedence.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	cfgFlags := defaultFlags()

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified. Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := *cfgFlags
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			return nil, err
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	// Load additional config from file.
	var configFileError error
	parser := flags.NewParser(cfgFlags, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %s\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); !ok || flagsErr.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, err
	}

	cfg := &Config{Flags: cfgFlags}
	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	funcName := "loadConfig"
	cfg.ConsensusConfig, err = cfg.consensusConfig()
	if err != nil {
		err := errors.Errorf("%s: %s", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}

	// Validate profile port number
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			str := "%s: The profile port must be between 1024 and 65535"
			err := errors.Errorf(str, funcName)
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, err
		}
	}

	cfg.AppDir = cleanAndExpandPath(cfg.AppDir)
	// Append the network type to the log directory so it is "namespaced"
	// per network in the same fashion as the data directory.
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, cfg.NetParams().Name)

	// Warn about missing config file only after all other configuration is
	// done. This prevents the warning on help messages and invalid
	// options.
	if configFileError != nil {
		log.Warnf("%s", configFileError)
	}

	return cfg, nil
}

// consensusConfig applies the tunables given on the command line on top of
// the parameters of the selected network.
func (cfg *Config) consensusConfig() (*consensus.Config, error) {
	consensusConfig := consensus.DefaultConfig(cfg.NetParams())

	if len(cfg.MilestoneKeyRanges) > 0 {
		keyRanges := make([]*model.MilestoneKeyRange, 0, len(cfg.MilestoneKeyRanges))
		for _, keyRangeString := range cfg.MilestoneKeyRanges {
			keyRange, err := parseMilestoneKeyRange(keyRangeString)
			if err != nil {
				return nil, err
			}
			keyRanges = append(keyRanges, keyRange)
		}
		consensusConfig.MilestoneKeyRanges = keyRanges
	}
	if cfg.MilestonePublicKeyCount != 0 {
		consensusConfig.MilestonePublicKeyCount = cfg.MilestonePublicKeyCount
	}
	if cfg.SyncWindow != 0 {
		consensusConfig.SyncWindow = externalapi.MilestoneIndex(cfg.SyncWindow)
	}
	if cfg.BelowMaxDepth != 0 {
		consensusConfig.BelowMaxDepth = externalapi.MilestoneIndex(cfg.BelowMaxDepth)
	}
	if cfg.TipSafetyThreshold != 0 {
		consensusConfig.TipSafetyThreshold = externalapi.MilestoneIndex(cfg.TipSafetyThreshold)
	}
	if cfg.MaxTips != 0 {
		consensusConfig.MaxTips = cfg.MaxTips
	}

	consensusConfig.EnablePruning = cfg.EnablePruning
	if cfg.PruningDelay != 0 {
		consensusConfig.PruningDelay = externalapi.MilestoneIndex(cfg.PruningDelay)
	}
	if cfg.PruningInterval != 0 {
		consensusConfig.PruningInterval = externalapi.MilestoneIndex(cfg.PruningInterval)
	}
	if cfg.OutputCacheSize != 0 {
		consensusConfig.OutputCacheSize = cfg.OutputCacheSize
	}

	err := consensusConfig.Validate()
	if err != nil {
		return nil, err
	}
	return consensusConfig, nil
}

// parseMilestoneKeyRange parses <hex public key>:<start index>[:<end index>]
func parseMilestoneKeyRange(keyRangeString string) (*model.MilestoneKeyRange, error) {
	parts := strings.Split(keyRangeString, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, errors.Errorf("milestone key range %s is not of the form "+
			"<public key>:<start index>[:<end index>]", keyRangeString)
	}

	publicKeyBytes, err := hex.DecodeString(parts[0])
	if err != nil {
		return nil, errors.Wrapf(err, "milestone key range %s has a malformed public key", keyRangeString)
	}
	if len(publicKeyBytes) != externalapi.PublicKeySize {
		return nil, errors.Errorf("milestone key range %s has a public key of %d bytes instead of %d",
			keyRangeString, len(publicKeyBytes), externalapi.PublicKeySize)
	}

	keyRange := &model.MilestoneKeyRange{}
	copy(keyRange.PublicKey[:], publicKeyBytes)

	startIndex, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, errors.Wrapf(err, "milestone key range %s has a malformed start index", keyRangeString)
	}
	keyRange.StartIndex = externalapi.MilestoneIndex(startIndex)

	if len(parts) == 3 {
		endIndex, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "milestone key range %s has a malformed end index", keyRangeString)
		}
		keyRange.EndIndex = externalapi.MilestoneIndex(endIndex)
	}
	return keyRange, nil
}
