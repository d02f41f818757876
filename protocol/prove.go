package protocol

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tephra-chain/tephra/proofs"
	"github.com/tephra-chain/tephra/registry"
)

// ProveBlock records a fork choice for a proposed, not-yet-verified block
// after the proof oracle accepts the evidence.
//
// Fork choices are keyed by the claimed (parentHash, parentGasUsed) pair.
// A resubmission for an existing key overwrites the slot: multiple provers
// may race on the same parent and the most recent valid proof replaces the
// previous claim. A new key appends a slot, failing with
// ErrTooManyForkChoices once the per-block fan-out ceiling is reached.
func (s *State) ProveBlock(blockID uint64, ev Evidence) error {
	if ev.ParentHash == (common.Hash{}) || ev.BlockHash == (common.Hash{}) {
		return ErrInvalidEvidence
	}
	if ev.Prover == (common.Address{}) {
		return ErrInvalidEvidence
	}
	if len(ev.Proof) == 0 {
		return ErrInvalidEvidence
	}

	// The verifier contract is re-resolved on every call; the core never
	// caches collaborator addresses.
	verifierAddr, err := s.resolver.Resolve(registry.NameProofVerifier)
	if err != nil {
		return fmt.Errorf("protocol: resolving proof verifier: %w", err)
	}
	fc, err := s.prove(blockID, ev, verifierAddr)
	if err != nil {
		return err
	}

	s.emitProven(BlockProvenEvent{BlockID: blockID, ForkChoice: *fc})
	return nil
}

func (s *State) prove(blockID uint64, ev Evidence, verifierAddr common.Address) (*ForkChoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Finalized blocks are immutable; unproposed blocks don't exist yet.
	if blockID <= s.lastVerifiedID || blockID > s.numBlocks {
		return nil, ErrInvalidBlockID
	}
	blk := s.blockAt(blockID)

	// Proof formats version by block range; the right verifier is
	// selected once per call.
	verifier, err := s.verifiers.Resolve(blockID)
	if err != nil {
		return nil, fmt.Errorf("protocol: selecting verifier for block %d: %w", blockID, err)
	}

	inputs := proofs.PublicInputs{
		BlockID:         blockID,
		MetaHash:        blk.MetaHash,
		ParentHash:      ev.ParentHash,
		ParentGasUsed:   ev.ParentGasUsed,
		BlockHash:       ev.BlockHash,
		SignalRoot:      ev.SignalRoot,
		Prover:          ev.Prover,
		VerifierAddress: verifierAddr,
	}
	if err := verifier.Verify(ev.Proof, inputs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofRejected, err)
	}

	fc := ForkChoice{
		ParentHash:    ev.ParentHash,
		ParentGasUsed: ev.ParentGasUsed,
		BlockHash:     ev.BlockHash,
		SignalRoot:    ev.SignalRoot,
		GasUsed:       ev.GasUsed,
		Prover:        ev.Prover,
		ProvenAt:      s.now(),
	}

	if idx := blk.findForkChoice(ev.ParentHash, ev.ParentGasUsed); idx != 0 {
		// Last-writer-wins per parent key.
		blk.forkChoices[idx] = fc
		s.lgProve.Info("fork choice replaced",
			"id", blockID, "slot", idx, "prover", ev.Prover, "blockHash", ev.BlockHash)
	} else {
		if blk.nextForkChoiceID > s.cfg.MaxForkChoicesPerBlock {
			return nil, ErrTooManyForkChoices
		}
		idx = blk.nextForkChoiceID
		blk.forkChoices = append(blk.forkChoices, fc)
		blk.forkChoiceIndex[forkChoiceKey{parentHash: ev.ParentHash, parentGasUsed: ev.ParentGasUsed}] = idx
		blk.nextForkChoiceID++
		s.lgProve.Info("fork choice recorded",
			"id", blockID, "slot", idx, "prover", ev.Prover, "blockHash", ev.BlockHash)
	}

	s.mtr.Inc("protocol.blocks.proven", 1)
	return &fc, nil
}
