package protocol

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tephra-chain/tephra/proofs"
)

func TestProveBlockRecordsForkChoice(t *testing.T) {
	env := newTestEnv(t, nil)
	env.proposeOne(t)

	h1 := common.Hash{0x01}
	sr1 := common.Hash{0x51}
	ev := evidenceFor(ForkChoice{BlockHash: testGenesisHash}, h1, sr1, 21000)
	if err := env.s.ProveBlock(1, ev); err != nil {
		t.Fatalf("ProveBlock: %v", err)
	}

	fc, err := env.s.GetForkChoice(1, testGenesisHash, 0)
	if err != nil {
		t.Fatalf("GetForkChoice: %v", err)
	}
	if fc.BlockHash != h1 {
		t.Errorf("BlockHash = %s, want %s", fc.BlockHash.Hex(), h1.Hex())
	}
	if fc.SignalRoot != sr1 {
		t.Errorf("SignalRoot = %s, want %s", fc.SignalRoot.Hex(), sr1.Hex())
	}
	if fc.GasUsed != 21000 {
		t.Errorf("GasUsed = %d, want 21000", fc.GasUsed)
	}
	if fc.Prover != testProver {
		t.Errorf("Prover = %s, want %s", fc.Prover.Hex(), testProver.Hex())
	}
	if fc.ProvenAt == 0 {
		t.Error("ProvenAt not set")
	}
}

func TestProveBlockIDRange(t *testing.T) {
	env := newTestEnv(t, nil)
	env.proposeOne(t)

	ev := evidenceFor(ForkChoice{BlockHash: testGenesisHash}, common.Hash{0x01}, common.Hash{}, 21000)

	if err := env.s.ProveBlock(0, ev); !errors.Is(err, ErrInvalidBlockID) {
		t.Errorf("blockID 0 err = %v, want ErrInvalidBlockID", err)
	}
	if err := env.s.ProveBlock(2, ev); !errors.Is(err, ErrInvalidBlockID) {
		t.Errorf("unproposed blockID err = %v, want ErrInvalidBlockID", err)
	}

	// After finalization the block becomes immutable.
	if err := env.s.ProveBlock(1, ev); err != nil {
		t.Fatalf("ProveBlock(1): %v", err)
	}
	if err := env.s.VerifyBlocks(1); err != nil {
		t.Fatalf("VerifyBlocks: %v", err)
	}
	if err := env.s.ProveBlock(1, ev); !errors.Is(err, ErrInvalidBlockID) {
		t.Errorf("finalized blockID err = %v, want ErrInvalidBlockID", err)
	}
}

func TestProveEvidenceValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.proposeOne(t)

	valid := evidenceFor(ForkChoice{BlockHash: testGenesisHash}, common.Hash{0x01}, common.Hash{}, 21000)

	muts := []func(*Evidence){
		func(e *Evidence) { e.ParentHash = common.Hash{} },
		func(e *Evidence) { e.BlockHash = common.Hash{} },
		func(e *Evidence) { e.Prover = common.Address{} },
		func(e *Evidence) { e.Proof = nil },
	}
	for i, mut := range muts {
		ev := valid
		mut(&ev)
		if err := env.s.ProveBlock(1, ev); !errors.Is(err, ErrInvalidEvidence) {
			t.Errorf("case %d: err = %v, want ErrInvalidEvidence", i, err)
		}
	}
}

func TestProveOracleRejection(t *testing.T) {
	env := newTestEnv(t, func(_ *Config, d *Dependencies) {
		reg := proofs.NewRegistry()
		if err := reg.Register(1, 0, proofs.RejectAllVerifier{}); err != nil {
			t.Fatalf("Register: %v", err)
		}
		d.Verifiers = reg
	})
	env.proposeOne(t)

	ev := evidenceFor(ForkChoice{BlockHash: testGenesisHash}, common.Hash{0x01}, common.Hash{}, 21000)
	if err := env.s.ProveBlock(1, ev); !errors.Is(err, ErrProofRejected) {
		t.Fatalf("err = %v, want ErrProofRejected", err)
	}

	// The rejected submission left no fork choice behind.
	if _, err := env.s.GetForkChoice(1, testGenesisHash, 0); !errors.Is(err, ErrForkChoiceNotFound) {
		t.Errorf("fork choice err = %v, want ErrForkChoiceNotFound", err)
	}
}

func TestProveDuplicateParentLastWriterWins(t *testing.T) {
	env := newTestEnv(t, nil)
	env.proposeOne(t)

	parent := ForkChoice{BlockHash: testGenesisHash}
	first := evidenceFor(parent, common.Hash{0x01}, common.Hash{0xa1}, 21000)
	second := evidenceFor(parent, common.Hash{0x02}, common.Hash{0xa2}, 42000)
	second.Prover = common.HexToAddress("0x00000000000000000000000000000000000000c2")

	if err := env.s.ProveBlock(1, first); err != nil {
		t.Fatalf("first ProveBlock: %v", err)
	}
	if err := env.s.ProveBlock(1, second); err != nil {
		t.Fatalf("second ProveBlock: %v", err)
	}

	fc, err := env.s.GetForkChoice(1, testGenesisHash, 0)
	if err != nil {
		t.Fatalf("GetForkChoice: %v", err)
	}
	if fc.BlockHash != second.BlockHash || fc.Prover != second.Prover || fc.GasUsed != 42000 {
		t.Errorf("fork choice = %+v, want the second submission's evidence", fc)
	}

	// Exactly one slot consumed.
	blk, err := env.s.GetBlock(1)
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if blk.NextForkChoiceID != 2 {
		t.Errorf("NextForkChoiceID = %d, want 2", blk.NextForkChoiceID)
	}
}

func TestProveForkChoiceCapacity(t *testing.T) {
	env := newTestEnv(t, nil) // 3 fork choices per block
	env.proposeOne(t)

	parents := []common.Hash{{0x71}, {0x72}, {0x73}}
	for i, p := range parents {
		ev := evidenceFor(ForkChoice{BlockHash: p}, common.BytesToHash([]byte{byte(i + 1)}), common.Hash{}, 21000)
		if err := env.s.ProveBlock(1, ev); err != nil {
			t.Fatalf("ProveBlock parent %d: %v", i, err)
		}
	}

	overflow := evidenceFor(ForkChoice{BlockHash: common.Hash{0x74}}, common.Hash{0x04}, common.Hash{}, 21000)
	if err := env.s.ProveBlock(1, overflow); !errors.Is(err, ErrTooManyForkChoices) {
		t.Fatalf("overflow err = %v, want ErrTooManyForkChoices", err)
	}

	// The recorded candidates survive the overflow attempt.
	for i, p := range parents {
		fc, err := env.s.GetForkChoice(1, p, 0)
		if err != nil {
			t.Fatalf("GetForkChoice parent %d: %v", i, err)
		}
		if fc.BlockHash != common.BytesToHash([]byte{byte(i + 1)}) {
			t.Errorf("parent %d fork choice altered", i)
		}
	}

	// Overwriting an existing key still works at capacity.
	replacement := evidenceFor(ForkChoice{BlockHash: parents[0]}, common.Hash{0x09}, common.Hash{}, 21000)
	if err := env.s.ProveBlock(1, replacement); err != nil {
		t.Errorf("capacity blocked a same-key replacement: %v", err)
	}
}

func TestProveVersionedVerifierSelection(t *testing.T) {
	rec := &proofs.RecordingVerifier{}
	env := newTestEnv(t, func(_ *Config, d *Dependencies) {
		reg := proofs.NewRegistry()
		if err := reg.Register(1, 2, rec); err != nil {
			t.Fatalf("Register era 1: %v", err)
		}
		if err := reg.Register(2, 0, proofs.RejectAllVerifier{}); err != nil {
			t.Fatalf("Register era 2: %v", err)
		}
		d.Verifiers = reg
	})
	env.proposeOne(t)
	env.proposeOne(t)

	ev := evidenceFor(ForkChoice{BlockHash: testGenesisHash}, common.Hash{0x01}, common.Hash{}, 21000)
	if err := env.s.ProveBlock(1, ev); err != nil {
		t.Fatalf("ProveBlock era 1: %v", err)
	}
	if err := env.s.ProveBlock(2, ev); !errors.Is(err, ErrProofRejected) {
		t.Errorf("era-2 block err = %v, want ErrProofRejected from era-2 verifier", err)
	}

	// The oracle saw the core's own records, not caller-supplied values.
	calls := rec.Calls()
	if len(calls) != 1 {
		t.Fatalf("era-1 verifier saw %d calls, want 1", len(calls))
	}
	b1, err := env.s.GetBlock(1)
	if err != nil {
		t.Fatalf("GetBlock(1): %v", err)
	}
	if calls[0].MetaHash != b1.MetaHash {
		t.Error("oracle MetaHash differs from the recorded block MetaHash")
	}
	if calls[0].VerifierAddress != testVerifierAddr {
		t.Errorf("oracle VerifierAddress = %s, want resolved %s",
			calls[0].VerifierAddress.Hex(), testVerifierAddr.Hex())
	}
}

func TestProveEventDelivery(t *testing.T) {
	env := newTestEnv(t, nil)
	env.proposeOne(t)

	var got []BlockProvenEvent
	env.s.SubscribeBlockProven(func(ev BlockProvenEvent) { got = append(got, ev) })

	ev := evidenceFor(ForkChoice{BlockHash: testGenesisHash}, common.Hash{0x01}, common.Hash{}, 21000)
	if err := env.s.ProveBlock(1, ev); err != nil {
		t.Fatalf("ProveBlock: %v", err)
	}
	if len(got) != 1 || got[0].BlockID != 1 || got[0].ForkChoice.BlockHash != ev.BlockHash {
		t.Errorf("events = %+v, want one event for block 1", got)
	}
}
