package protocol

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/tephra-chain/tephra/da"
	"github.com/tephra-chain/tephra/log"
	"github.com/tephra-chain/tephra/metrics"
	"github.com/tephra-chain/tephra/pricing"
	"github.com/tephra-chain/tephra/proofs"
	"github.com/tephra-chain/tephra/registry"
)

// Dependencies are the external collaborators the protocol core calls into.
type Dependencies struct {
	// Resolver locates named collaborators. Required; the core
	// re-resolves the proof verifier on every prove call.
	Resolver registry.Resolver

	// Verifiers selects the proof oracle by block id. Required.
	Verifiers *proofs.Registry

	// DAChecker validates transaction-list sidecars. Optional; when nil,
	// proposals carrying a sidecar are rejected.
	DAChecker *da.Checker

	// Logger defaults to log.Default().
	Logger *log.Logger

	// Metrics defaults to a fresh collector.
	Metrics *metrics.Collector

	// Now supplies timestamps, defaulting to wall-clock seconds.
	// Overridable for tests.
	Now func() uint64
}

// State is the per-deployment singleton the three managers mutate. It is
// created once at init and never reset; all mutation happens through
// ProposeBlock, ProveBlock, and VerifyBlocks under the state lock.
type State struct {
	mu  sync.Mutex
	cfg Config

	genesisHeight    uint64
	genesisTimestamp uint64

	// gasExcess is the cumulative resource-usage counter feeding the
	// pricing curve. It starts at the curve midpoint and only grows.
	gasExcess uint64

	// numBlocks is the highest proposed block id; ids are dense from 1.
	numBlocks uint64

	// lastVerifiedID is the finalization watermark.
	lastVerifiedID uint64

	// lastVerifiedForkChoice is the canonical head commitment. Kept
	// separately from the ring so finalization survives the head
	// block's slot being reused.
	lastVerifiedForkChoice ForkChoice

	// basefee is the cached spot price for external query. It reflects
	// the excess counter after the latest proposal, so it is the price
	// the next block pays.
	basefee *uint256.Int

	// Pricing calibration, fixed at init.
	xScale uint64
	yScale *uint256.Int

	// blocks is the ring buffer; slot id%RingBufferSize holds block id.
	blocks []Block

	resolver  registry.Resolver
	verifiers *proofs.Registry
	daChecker *da.Checker

	lgPropose *log.Logger
	lgProve   *log.Logger
	lgVerify  *log.Logger
	mtr       *metrics.Collector
	now       func() uint64

	listenerMu        sync.Mutex
	proposedListeners []func(BlockProposedEvent)
	provenListeners   []func(BlockProvenEvent)
	verifiedListeners []func(BlockVerifiedEvent)
}

// NewState creates the deployment State: it validates the configuration,
// calibrates the pricing curve (a calibration failure is a deployment bug,
// not a runtime condition), and installs the synthetic genesis block whose
// commitment the deployment supplies via Config.GenesisHash.
func NewState(cfg Config, deps Dependencies) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("%w: resolver is required", ErrInvalidConfig)
	}
	if deps.Verifiers == nil {
		return nil, fmt.Errorf("%w: verifier registry is required", ErrInvalidConfig)
	}

	xScale, yScale, err := pricing.CalculateScales(
		cfg.GasExcessMax, cfg.InitialBasefee, cfg.GasTarget, cfg.Ratio2x1x)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	lg := deps.Logger
	if lg == nil {
		lg = log.Default()
	}
	mtr := deps.Metrics
	if mtr == nil {
		mtr = metrics.NewCollector()
	}
	now := deps.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}

	s := &State{
		cfg:              cfg,
		genesisHeight:    cfg.GenesisHeight,
		genesisTimestamp: now(),
		gasExcess:        cfg.GasExcessMax / 2,
		xScale:           xScale,
		yScale:           yScale,
		blocks:           make([]Block, cfg.RingBufferSize),
		resolver:         deps.Resolver,
		verifiers:        deps.Verifiers,
		daChecker:        deps.DAChecker,
		lgPropose:        lg.Module("proposer"),
		lgProve:          lg.Module("prover"),
		lgVerify:         lg.Module("verifier"),
		mtr:              mtr,
		now:              now,
	}

	basefee, err := pricing.CalculatePrice(xScale, yScale, s.gasExcess, cfg.GasTarget)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s.basefee = basefee

	genesisChoice := ForkChoice{
		BlockHash: cfg.GenesisHash,
		ProvenAt:  s.genesisTimestamp,
	}
	genesis := Block{
		ID:                   0,
		MetaHash:             cfg.GenesisHash,
		ProposedAt:           s.genesisTimestamp,
		forkChoices:          make([]ForkChoice, 2, cfg.MaxForkChoicesPerBlock+1),
		forkChoiceIndex:      map[forkChoiceKey]uint16{{}: 1},
		nextForkChoiceID:     2,
		verifiedForkChoiceID: 1,
	}
	genesis.forkChoices[1] = genesisChoice
	s.blocks[0] = genesis
	s.lastVerifiedForkChoice = genesisChoice

	s.mtr.SetGauge("protocol.basefee", float64(basefee.Uint64()))
	s.mtr.SetGauge("protocol.gas_excess", float64(s.gasExcess))
	return s, nil
}

// BlockProposedEvent is delivered after a successful proposal.
type BlockProposedEvent struct {
	Meta    BlockMetadata
	Basefee *uint256.Int
}

// BlockProvenEvent is delivered after a successful proof submission.
type BlockProvenEvent struct {
	BlockID    uint64
	ForkChoice ForkChoice
}

// BlockVerifiedEvent is delivered for every block a finalization pass
// advances over.
type BlockVerifiedEvent struct {
	BlockID    uint64
	BlockHash  common.Hash
	SignalRoot common.Hash
}

// SubscribeBlockProposed registers a listener for proposal events.
// Listeners run synchronously after the operation releases the state lock,
// in subscription order.
func (s *State) SubscribeBlockProposed(fn func(BlockProposedEvent)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.proposedListeners = append(s.proposedListeners, fn)
}

// SubscribeBlockProven registers a listener for proof events.
func (s *State) SubscribeBlockProven(fn func(BlockProvenEvent)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.provenListeners = append(s.provenListeners, fn)
}

// SubscribeBlockVerified registers a listener for finalization events.
func (s *State) SubscribeBlockVerified(fn func(BlockVerifiedEvent)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.verifiedListeners = append(s.verifiedListeners, fn)
}

func (s *State) emitProposed(ev BlockProposedEvent) {
	s.listenerMu.Lock()
	listeners := append([]func(BlockProposedEvent){}, s.proposedListeners...)
	s.listenerMu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (s *State) emitProven(ev BlockProvenEvent) {
	s.listenerMu.Lock()
	listeners := append([]func(BlockProvenEvent){}, s.provenListeners...)
	s.listenerMu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (s *State) emitVerified(evs []BlockVerifiedEvent) {
	if len(evs) == 0 {
		return
	}
	s.listenerMu.Lock()
	listeners := append([]func(BlockVerifiedEvent){}, s.verifiedListeners...)
	s.listenerMu.Unlock()
	for _, ev := range evs {
		for _, fn := range listeners {
			fn(ev)
		}
	}
}

// blockAt returns the ring slot for id without checking occupancy.
func (s *State) blockAt(id uint64) *Block {
	return &s.blocks[id%s.cfg.RingBufferSize]
}
