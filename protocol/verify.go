package protocol

// VerifyBlocks finalizes proposed blocks in order, up to maxBlocks of them
// (clamped to the configured MaxVerificationsPerCall ceiling).
//
// Finalization is a singly-linked walk: block N can only finalize through a
// fork choice whose (parentHash, parentGasUsed) equals the resulting
// (blockHash, gasUsed) of block N-1's finalized fork choice. The walk stops
// at the first block with no matching candidate; that is not an error, just
// nothing more to do this call. Each finalized block frees its ring slot's
// successor-by-capacity for proposal reuse and makes the cross-chain
// queries answer for its id.
func (s *State) VerifyBlocks(maxBlocks uint64) error {
	if maxBlocks == 0 {
		return ErrZeroMaxBlocks
	}
	if maxBlocks > s.cfg.MaxVerificationsPerCall {
		maxBlocks = s.cfg.MaxVerificationsPerCall
	}

	events := s.verify(maxBlocks)
	s.emitVerified(events)
	return nil
}

func (s *State) verify(maxBlocks uint64) []BlockVerifiedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []BlockVerifiedEvent
	parent := s.lastVerifiedForkChoice

	for i := uint64(0); i < maxBlocks; i++ {
		id := s.lastVerifiedID + 1
		if id > s.numBlocks {
			break
		}
		blk := s.blockAt(id)

		idx := blk.findForkChoice(parent.BlockHash, parent.GasUsed)
		if idx == 0 {
			break
		}

		blk.verifiedForkChoiceID = idx
		parent = blk.forkChoices[idx]
		s.lastVerifiedID = id
		s.lastVerifiedForkChoice = parent

		events = append(events, BlockVerifiedEvent{
			BlockID:    id,
			BlockHash:  parent.BlockHash,
			SignalRoot: parent.SignalRoot,
		})
		s.lgVerify.Info("block verified",
			"id", id, "blockHash", parent.BlockHash, "prover", parent.Prover)
	}

	if n := len(events); n > 0 {
		s.mtr.Inc("protocol.blocks.verified", float64(n))
		s.mtr.SetGauge("protocol.last_verified", float64(s.lastVerifiedID))
	}
	return events
}
