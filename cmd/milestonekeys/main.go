package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func main() {
	cfg, err := parseConfig()
	if err != nil {
		os.Exit(1)
	}

	err = run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(cfg *configFlags) error {
	if cfg.NumKeys == 0 {
		return errors.New("--num-keys must be positive")
	}
	if cfg.EndIndex != 0 && cfg.EndIndex < cfg.StartIndex {
		return errors.Errorf("--end-index %d is below --start-index %d", cfg.EndIndex, cfg.StartIndex)
	}

	var mnemonic string
	var err error
	if cfg.Import {
		mnemonic, err = readMnemonic("Enter the coordinator mnemonic: ")
	} else {
		mnemonic, err = createMnemonic()
		if err == nil {
			fmt.Printf("Generated a new coordinator mnemonic, keep it safe:\n%s\n\n", mnemonic)
		}
	}
	if err != nil {
		return err
	}

	keyPairs, err := deriveKeyPairs(mnemonic, cfg.NumKeys)
	if err != nil {
		return err
	}

	fmt.Printf("Coordinator keys for %s:\n", cfg.NetParams().Name)
	for i, keyPair := range keyPairs {
		privateKey := keyPair.PrivateKey()
		fmt.Printf("Key %d private key: %x\n", i, privateKey)
	}
	fmt.Println()
	fmt.Println("Node flags:")
	for _, keyPair := range keyPairs {
		fmt.Println(keyRangeFlag(keyPair.PublicKey(), cfg.StartIndex, cfg.EndIndex))
	}
	if uint32(cfg.NetParams().MilestonePublicKeyCount) > cfg.NumKeys {
		fmt.Printf("--milestone-public-key-count=%d\n", cfg.NumKeys)
	}
	return nil
}

func keyRangeFlag(publicKey [32]byte, startIndex, endIndex uint32) string {
	if endIndex == 0 {
		return fmt.Sprintf("--milestone-key-range=%x:%d", publicKey, startIndex)
	}
	return fmt.Sprintf("--milestone-key-range=%x:%d:%d", publicKey, startIndex, endIndex)
}
