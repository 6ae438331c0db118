package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

const (
	testPublicKey1 = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	testPublicKey2 = "c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
)

func testArgs(t *testing.T, args ...string) []string {
	configFile := filepath.Join(t.TempDir(), "missing.conf")
	return append([]string{"--configfile=" + configFile, "--appdir=" + t.TempDir()}, args...)
}

func TestParseMilestoneKeyRange(t *testing.T) {
	tests := []struct {
		name               string
		keyRange           string
		expectedStartIndex externalapi.MilestoneIndex
		expectedEndIndex   externalapi.MilestoneIndex
		expectsError       bool
	}{
		{name: "open range", keyRange: testPublicKey1 + ":5", expectedStartIndex: 5},
		{name: "closed range", keyRange: testPublicKey1 + ":5:100", expectedStartIndex: 5, expectedEndIndex: 100},
		{name: "no index", keyRange: testPublicKey1, expectsError: true},
		{name: "too many parts", keyRange: testPublicKey1 + ":1:2:3", expectsError: true},
		{name: "short key", keyRange: "79be:1", expectsError: true},
		{name: "not hex", keyRange: "zz:1", expectsError: true},
		{name: "negative start", keyRange: testPublicKey1 + ":-1", expectsError: true},
	}

	for _, test := range tests {
		keyRange, err := parseMilestoneKeyRange(test.keyRange)
		if test.expectsError {
			if err == nil {
				t.Errorf("%s: expected an error, got %s", test.name, spew.Sdump(keyRange))
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: parseMilestoneKeyRange: %+v", test.name, err)
			continue
		}
		if keyRange.StartIndex != test.expectedStartIndex || keyRange.EndIndex != test.expectedEndIndex {
			t.Errorf("%s: expected range %d..%d, got %d..%d", test.name,
				test.expectedStartIndex, test.expectedEndIndex, keyRange.StartIndex, keyRange.EndIndex)
		}
		if keyRange.PublicKey[0] != 0x79 || keyRange.PublicKey[externalapi.PublicKeySize-1] != 0x98 {
			t.Errorf("%s: unexpected public key %x", test.name, keyRange.PublicKey)
		}
	}
}

func TestLoadConfigNetworks(t *testing.T) {
	cfg, err := loadConfig(testArgs(t, "--simnet", "--sync-window=20", "--pruning", "--pruning-delay=100"))
	if err != nil {
		t.Fatalf("loadConfig: %+v", err)
	}
	if cfg.NetParams().Name != "simnet" {
		t.Fatalf("expected simnet, got %s", cfg.NetParams().Name)
	}
	if cfg.ConsensusConfig.SyncWindow != 20 {
		t.Fatalf("expected a sync window of 20, got %d", cfg.ConsensusConfig.SyncWindow)
	}
	if !cfg.ConsensusConfig.EnablePruning || cfg.ConsensusConfig.PruningDelay != 100 {
		t.Fatalf("unexpected pruning settings: %s", spew.Sdump(cfg.ConsensusConfig))
	}
	if filepath.Base(cfg.LogDir) != "simnet" || filepath.Base(cfg.DataDir()) != "simnet" {
		t.Fatalf("the log and data directories aren't namespaced per network: %s, %s", cfg.LogDir, cfg.DataDir())
	}

	_, err = loadConfig(testArgs(t, "--simnet", "--testnet"))
	if err == nil {
		t.Fatalf("expected an error when selecting two networks")
	}

	_, err = loadConfig(testArgs(t, "--simnet", "--pruning", "--pruning-delay=10"))
	if err == nil {
		t.Fatalf("expected an error on a pruning delay below the below max depth")
	}
}

func TestLoadConfigMainnetRequiresKeys(t *testing.T) {
	_, err := loadConfig(testArgs(t))
	if err == nil {
		t.Fatalf("expected an error when running mainnet without coordinator keys")
	}

	cfg, err := loadConfig(testArgs(t,
		"--milestone-key-range="+testPublicKey1+":0",
		"--milestone-key-range="+testPublicKey2+":0:1000"))
	if err != nil {
		t.Fatalf("loadConfig: %+v", err)
	}
	if len(cfg.ConsensusConfig.MilestoneKeyRanges) != 2 {
		t.Fatalf("expected two key ranges, got %s", spew.Sdump(cfg.ConsensusConfig.MilestoneKeyRanges))
	}
	if cfg.ConsensusConfig.MilestoneKeyRanges[1].EndIndex != 1000 {
		t.Fatalf("unexpected end index %d", cfg.ConsensusConfig.MilestoneKeyRanges[1].EndIndex)
	}
}

func TestLoadConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "tangled.conf")
	content := "[Application Options]\nsimnet=true\nmax-tips=7\noutput-cache-size=500\n"
	err := os.WriteFile(configFile, []byte(content), 0600)
	if err != nil {
		t.Fatalf("WriteFile: %+v", err)
	}

	cfg, err := loadConfig([]string{"--configfile=" + configFile, "--appdir=" + t.TempDir(), "--max-tips=9"})
	if err != nil {
		t.Fatalf("loadConfig: %+v", err)
	}
	if cfg.NetParams().Name != "simnet" {
		t.Fatalf("the network from the config file wasn't applied, got %s", cfg.NetParams().Name)
	}
	if cfg.ConsensusConfig.MaxTips != 9 {
		t.Fatalf("the command line didn't take precedence over the config file, max tips is %d",
			cfg.ConsensusConfig.MaxTips)
	}
	if cfg.ConsensusConfig.OutputCacheSize != 500 {
		t.Fatalf("expected an output cache size of 500, got %d", cfg.ConsensusConfig.OutputCacheSize)
	}
}

func TestLoadConfigProfilePort(t *testing.T) {
	_, err := loadConfig(testArgs(t, "--simnet", "--profile=80"))
	if err == nil {
		t.Fatalf("expected an error on a privileged profile port")
	}
	cfg, err := loadConfig(testArgs(t, "--simnet", "--profile=6060"))
	if err != nil {
		t.Fatalf("loadConfig: %+v", err)
	}
	if cfg.Profile != "6060" {
		t.Fatalf("unexpected profile port %s", cfg.Profile)
	}
}
