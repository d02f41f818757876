package protocol

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/tephra-chain/tephra/crypto"
	"github.com/tephra-chain/tephra/da"
	"github.com/tephra-chain/tephra/pricing"
)

// ProposeBlock accepts a new block proposal, assigns it the next dense id,
// and records its metadata commitment. The proposal moves the cumulative
// gas-excess counter and recomputes the cached basefee, which applies to
// the NEXT block; the proposed block itself is never billed at the price
// its own proposal produced.
//
// The call fails with ErrTooManyBlocks while the ring slot for the next id
// is still held by an unverified block; the caller should retry after
// verification progresses.
func (s *State) ProposeBlock(input ProposalInput, txList []byte) (*BlockMetadata, error) {
	if input.Beneficiary == (common.Address{}) {
		return nil, ErrBeneficiaryZero
	}
	if input.GasLimit == 0 {
		return nil, ErrGasLimitZero
	}
	if input.GasLimit > s.cfg.BlockMaxGasLimit {
		return nil, ErrGasLimitTooHigh
	}
	if len(txList) > da.MaxTxListBytes {
		return nil, ErrTxListTooLarge
	}
	if err := s.checkSidecar(input.Sidecar, txList); err != nil {
		return nil, err
	}

	meta, basefee, err := s.propose(input, txList)
	if err != nil {
		return nil, err
	}

	s.emitProposed(BlockProposedEvent{Meta: *meta, Basefee: basefee})
	return meta, nil
}

func (s *State) propose(input ProposalInput, txList []byte) (*BlockMetadata, *uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextID := s.numBlocks + 1

	// The slot nextID%capacity still holds block nextID-capacity; that
	// occupant must be verified before its data may be discarded.
	if nextID > s.lastVerifiedID+s.cfg.RingBufferSize {
		return nil, nil, ErrTooManyBlocks
	}

	// Compute everything that can fail before touching state.
	newExcess := s.gasExcess + input.GasLimit
	basefee, err := pricing.CalculatePrice(s.xScale, s.yScale, newExcess, s.cfg.GasTarget)
	if err != nil {
		return nil, nil, fmt.Errorf("protocol: computing basefee: %w", err)
	}

	meta := BlockMetadata{
		ID:             nextID,
		ParentMetaHash: s.blockAt(s.numBlocks).MetaHash,
		TxListHash:     crypto.Keccak256Hash(txList),
		Timestamp:      s.now(),
		Proposer:       input.Beneficiary,
		GasLimit:       input.GasLimit,
		GasExcess:      s.gasExcess,
	}
	encoded, err := rlp.EncodeToBytes(&meta)
	if err != nil {
		return nil, nil, fmt.Errorf("protocol: encoding metadata: %w", err)
	}
	metaHash := crypto.Keccak256Hash(encoded)

	// Commit.
	s.numBlocks = nextID
	s.gasExcess = newExcess
	s.basefee = basefee
	*s.blockAt(nextID) = Block{
		ID:               nextID,
		MetaHash:         metaHash,
		ProposedAt:       meta.Timestamp,
		Proposer:         input.Beneficiary,
		GasLimit:         input.GasLimit,
		forkChoices:      make([]ForkChoice, 1, s.cfg.MaxForkChoicesPerBlock+1),
		forkChoiceIndex:  make(map[forkChoiceKey]uint16),
		nextForkChoiceID: 1,
	}

	s.mtr.Inc("protocol.blocks.proposed", 1)
	s.mtr.SetGauge("protocol.gas_excess", float64(newExcess))
	s.mtr.SetGauge("protocol.basefee", float64(basefee.Uint64()))
	s.lgPropose.Info("block proposed",
		"id", nextID, "proposer", input.Beneficiary, "gasLimit", input.GasLimit,
		"gasExcess", newExcess, "basefee", basefee.Uint64())

	return &meta, basefee.Clone(), nil
}

// checkSidecar validates the optional transaction-list blob against its
// commitment and against the submitted transaction list.
func (s *State) checkSidecar(sc *TxListSidecar, txList []byte) error {
	if sc == nil {
		return nil
	}
	if s.daChecker == nil || sc.Blob == nil {
		return ErrSidecarInvalid
	}
	if err := s.daChecker.VerifyTxListBlob(sc.Blob, sc.Commitment, sc.Proof); err != nil {
		return fmt.Errorf("%w: %v", ErrSidecarInvalid, err)
	}
	unpacked, err := da.UnpackTxList(sc.Blob)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSidecarInvalid, err)
	}
	if !bytes.Equal(unpacked, txList) {
		return fmt.Errorf("%w: blob does not carry the submitted transaction list", ErrSidecarInvalid)
	}
	return nil
}
