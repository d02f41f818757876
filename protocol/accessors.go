package protocol

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BlockInfo is the public view of a tracked block.
type BlockInfo struct {
	ID                   uint64
	MetaHash             common.Hash
	ProposedAt           uint64
	Proposer             common.Address
	GasLimit             uint64
	NextForkChoiceID     uint16
	VerifiedForkChoiceID uint16
}

// GetBlock returns the public view of block id. A block that was never
// proposed, or whose ring slot has been reused, is not found.
func (s *State) GetBlock(id uint64) (BlockInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blk, err := s.occupiedBlock(id)
	if err != nil {
		return BlockInfo{}, err
	}
	return BlockInfo{
		ID:                   blk.ID,
		MetaHash:             blk.MetaHash,
		ProposedAt:           blk.ProposedAt,
		Proposer:             blk.Proposer,
		GasLimit:             blk.GasLimit,
		NextForkChoiceID:     blk.nextForkChoiceID,
		VerifiedForkChoiceID: blk.verifiedForkChoiceID,
	}, nil
}

// GetForkChoice returns the fork choice of block id keyed by the given
// parent commitment.
func (s *State) GetForkChoice(id uint64, parentHash common.Hash, parentGasUsed uint64) (ForkChoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blk, err := s.occupiedBlock(id)
	if err != nil {
		return ForkChoice{}, err
	}
	idx := blk.findForkChoice(parentHash, parentGasUsed)
	if idx == 0 {
		return ForkChoice{}, ErrForkChoiceNotFound
	}
	return blk.forkChoices[idx], nil
}

// GetCrossChainBlockHash returns the finalized block hash of block id for
// cross-chain synchronization. Only verified blocks answer.
func (s *State) GetCrossChainBlockHash(id uint64) (common.Hash, error) {
	fc, err := s.verifiedForkChoice(id)
	if err != nil {
		return common.Hash{}, err
	}
	return fc.BlockHash, nil
}

// GetCrossChainSignalRoot returns the finalized signal root of block id for
// cross-chain messaging. Only verified blocks answer.
func (s *State) GetCrossChainSignalRoot(id uint64) (common.Hash, error) {
	fc, err := s.verifiedForkChoice(id)
	if err != nil {
		return common.Hash{}, err
	}
	return fc.SignalRoot, nil
}

// GetStateVariables returns a consistent snapshot of the chain-level state.
func (s *State) GetStateVariables() StateVariables {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StateVariables{
		GenesisHeight:    s.genesisHeight,
		GenesisTimestamp: s.genesisTimestamp,
		GasExcess:        s.gasExcess,
		NumBlocks:        s.numBlocks,
		LastVerifiedID:   s.lastVerifiedID,
		Basefee:          s.basefee.Uint64(),
	}
}

// GetBasefee returns the cached spot price, the price the next proposed
// block pays.
func (s *State) GetBasefee() *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.basefee.Clone()
}

// occupiedBlock returns the block currently holding ring slot id, failing
// unless that occupant actually is block id.
func (s *State) occupiedBlock(id uint64) (*Block, error) {
	if id > s.numBlocks {
		return nil, ErrBlockNotFound
	}
	blk := s.blockAt(id)
	if blk.ID != id {
		return nil, ErrBlockNotFound
	}
	return blk, nil
}

func (s *State) verifiedForkChoice(id uint64) (ForkChoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blk, err := s.occupiedBlock(id)
	if err != nil {
		return ForkChoice{}, err
	}
	if blk.verifiedForkChoiceID == 0 {
		return ForkChoice{}, ErrBlockNotVerified
	}
	return blk.forkChoices[blk.verifiedForkChoiceID], nil
}
