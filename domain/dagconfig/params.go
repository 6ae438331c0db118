// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

const (
	defaultMinBlockParents         = 1
	defaultMaxBlockParents         = 8
	defaultMaxInputs               = 128
	defaultMaxOutputs              = 128
	defaultTokenSupply             = 4_600_000_000_000_000
	defaultBelowMaxDepth           = 15
	defaultSyncWindow              = 15
	defaultTipSafetyThreshold      = 2
	defaultYMRSIDelta              = 8
	defaultOMRSIDelta              = 13
	defaultMaxTips                 = 100
	defaultTipSelectionCount       = 8
	defaultRequestTimeout          = 10 * time.Second
	defaultMilestonePublicKeyCount = 2
)

// Params defines a tangle network by its parameters. The consensus core
// reads every tunable it needs from here.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// NetworkID is carried by every transaction and must match.
	NetworkID uint64

	// MinBlockParents and MaxBlockParents bound the number of parents of
	// every block and every milestone.
	MinBlockParents int
	MaxBlockParents int

	// MaxInputs and MaxOutputs bound transaction sizes.
	MaxInputs  int
	MaxOutputs int

	// TokenSupply is the total amount of tokens. The genesis treasury
	// holds all of it.
	TokenSupply uint64

	// MilestoneKeyRanges are the coordinator keys along with the milestone
	// ranges in which they're valid.
	MilestoneKeyRanges []*model.MilestoneKeyRange

	// MilestonePublicKeyCount is the number of signatures a milestone
	// must carry.
	MilestonePublicKeyCount int

	// BelowMaxDepth is the milestone distance after which a block is
	// too old to be approved or kept.
	BelowMaxDepth externalapi.MilestoneIndex

	// SyncWindow is how many milestones ahead of the solid milestone are
	// requested at once.
	SyncWindow externalapi.MilestoneIndex

	// TipSafetyThreshold is how far behind the latest milestone the solid
	// milestone may be, on top of BelowMaxDepth, while tips are still
	// accepted.
	TipSafetyThreshold externalapi.MilestoneIndex

	// YMRSIDelta and OMRSIDelta classify tips as lazy or semi-lazy.
	YMRSIDelta externalapi.MilestoneIndex
	OMRSIDelta externalapi.MilestoneIndex

	// MaxTips bounds the tip pool.
	MaxTips int

	// TipSelectionCount is the number of tips handed out for a new block.
	TipSelectionCount int

	// RequestTimeout is the time after which an in-flight block request
	// may be repeated.
	RequestTimeout time.Duration
}

// MainnetParams defines the network parameters for the main network. The
// coordinator keys of mainnet are supplied through configuration.
var MainnetParams = Params{
	Name:                    "mainnet",
	NetworkID:               0x14d2a3b1c5e7f901,
	MinBlockParents:         defaultMinBlockParents,
	MaxBlockParents:         defaultMaxBlockParents,
	MaxInputs:               defaultMaxInputs,
	MaxOutputs:              defaultMaxOutputs,
	TokenSupply:             defaultTokenSupply,
	MilestonePublicKeyCount: defaultMilestonePublicKeyCount,
	BelowMaxDepth:           defaultBelowMaxDepth,
	SyncWindow:              defaultSyncWindow,
	TipSafetyThreshold:      defaultTipSafetyThreshold,
	YMRSIDelta:              defaultYMRSIDelta,
	OMRSIDelta:              defaultOMRSIDelta,
	MaxTips:                 defaultMaxTips,
	TipSelectionCount:       defaultTipSelectionCount,
	RequestTimeout:          defaultRequestTimeout,
}

// TestnetParams defines the network parameters for the test network.
var TestnetParams = Params{
	Name:                    "testnet",
	NetworkID:               0x8a2c50f6b1d3e472,
	MinBlockParents:         defaultMinBlockParents,
	MaxBlockParents:         defaultMaxBlockParents,
	MaxInputs:               defaultMaxInputs,
	MaxOutputs:              defaultMaxOutputs,
	TokenSupply:             defaultTokenSupply,
	MilestonePublicKeyCount: defaultMilestonePublicKeyCount,
	BelowMaxDepth:           defaultBelowMaxDepth,
	SyncWindow:              defaultSyncWindow,
	TipSafetyThreshold:      defaultTipSafetyThreshold,
	YMRSIDelta:              defaultYMRSIDelta,
	OMRSIDelta:              defaultOMRSIDelta,
	MaxTips:                 defaultMaxTips,
	TipSelectionCount:       defaultTipSelectionCount,
	RequestTimeout:          defaultRequestTimeout,
}

// DevnetParams defines the network parameters for the development network.
var DevnetParams = Params{
	Name:                    "devnet",
	NetworkID:               0x3fe1c09a7b5d2468,
	MinBlockParents:         defaultMinBlockParents,
	MaxBlockParents:         defaultMaxBlockParents,
	MaxInputs:               defaultMaxInputs,
	MaxOutputs:              defaultMaxOutputs,
	TokenSupply:             defaultTokenSupply,
	MilestonePublicKeyCount: 1,
	BelowMaxDepth:           defaultBelowMaxDepth,
	SyncWindow:              defaultSyncWindow,
	TipSafetyThreshold:      defaultTipSafetyThreshold,
	YMRSIDelta:              defaultYMRSIDelta,
	OMRSIDelta:              defaultOMRSIDelta,
	MaxTips:                 defaultMaxTips,
	TipSelectionCount:       defaultTipSelectionCount,
	RequestTimeout:          defaultRequestTimeout,
}

// SimnetParams defines the network parameters for the simulation test
// network. Its coordinator keys are the ones of the private keys 1, 2 and 3,
// so anyone can run a simnet coordinator.
var SimnetParams = Params{
	Name:            "simnet",
	NetworkID:       0x5151515151515151,
	MinBlockParents: defaultMinBlockParents,
	MaxBlockParents: defaultMaxBlockParents,
	MaxInputs:       defaultMaxInputs,
	MaxOutputs:      defaultMaxOutputs,
	TokenSupply:     defaultTokenSupply,
	MilestoneKeyRanges: []*model.MilestoneKeyRange{
		{PublicKey: mustDecodePublicKey("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"), StartIndex: 0},
		{PublicKey: mustDecodePublicKey("c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"), StartIndex: 0},
		{PublicKey: mustDecodePublicKey("f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9"), StartIndex: 0},
	},
	MilestonePublicKeyCount: defaultMilestonePublicKeyCount,
	BelowMaxDepth:           defaultBelowMaxDepth,
	SyncWindow:              defaultSyncWindow,
	TipSafetyThreshold:      defaultTipSafetyThreshold,
	YMRSIDelta:              defaultYMRSIDelta,
	OMRSIDelta:              defaultOMRSIDelta,
	MaxTips:                 defaultMaxTips,
	TipSelectionCount:       defaultTipSelectionCount,
	RequestTimeout:          defaultRequestTimeout,
}

// Clone returns a copy of p that can be modified without affecting p.
func (p *Params) Clone() *Params {
	clone := *p
	clone.MilestoneKeyRanges = make([]*model.MilestoneKeyRange, len(p.MilestoneKeyRanges))
	for i, keyRange := range p.MilestoneKeyRanges {
		keyRangeClone := *keyRange
		clone.MilestoneKeyRanges[i] = &keyRangeClone
	}
	return &clone
}

// Validate returns an error if the parameters can't drive a consensus.
func (p *Params) Validate() error {
	if p.MinBlockParents < 1 || p.MaxBlockParents < p.MinBlockParents {
		return errors.Errorf("invalid block parent bounds %d..%d", p.MinBlockParents, p.MaxBlockParents)
	}
	if p.MaxInputs < 1 || p.MaxOutputs < 1 {
		return errors.Errorf("transactions must allow at least one input and one output")
	}
	if p.MilestonePublicKeyCount < 1 {
		return errors.Errorf("milestone public key count must be at least 1")
	}
	if len(p.MilestoneKeyRanges) < p.MilestonePublicKeyCount {
		return errors.Errorf("network %s has %d milestone keys configured while %d signatures are required",
			p.Name, len(p.MilestoneKeyRanges), p.MilestonePublicKeyCount)
	}
	for _, keyRange := range p.MilestoneKeyRanges {
		if keyRange.EndIndex != 0 && keyRange.EndIndex < keyRange.StartIndex {
			return errors.Errorf("milestone key range %x ends at %d before it starts at %d",
				keyRange.PublicKey, keyRange.EndIndex, keyRange.StartIndex)
		}
	}
	if p.MaxTips < 1 || p.TipSelectionCount < 1 {
		return errors.Errorf("the tip pool must hold and hand out at least one tip")
	}
	return nil
}

var (
	// ErrDuplicateNet describes an error where the parameters for a
	// network could not be set due to the network already being a standard
	// network or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where no network is registered
	// under the requested name.
	ErrUnknownNet = errors.New("unknown network")
)

var registeredNets = make(map[string]*Params)

// Register registers the network parameters for a network. This may error
// with ErrDuplicateNet if the network is already registered (either due to
// a previous Register call, or the network being one of the default
// networks).
func Register(params *Params) error {
	if _, ok := registeredNets[params.Name]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Name] = params
	return nil
}

// ParamsByName returns the registered network with the given name.
func ParamsByName(name string) (*Params, error) {
	params, ok := registeredNets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNet, "network %s", name)
	}
	return params, nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error. This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

// mustDecodePublicKey panics on malformed input. It's only called with
// hard-coded keys.
func mustDecodePublicKey(publicKeyHex string) [externalapi.PublicKeySize]byte {
	var publicKey [externalapi.PublicKeySize]byte
	publicKeyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(publicKeyBytes) != externalapi.PublicKeySize {
		panic(errors.Errorf("malformed hard-coded public key %s", publicKeyHex))
	}
	copy(publicKey[:], publicKeyBytes)
	return publicKey
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainnetParams)
	mustRegister(&TestnetParams)
	mustRegister(&DevnetParams)
	mustRegister(&SimnetParams)
}
