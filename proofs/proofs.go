// Package proofs defines the proof-verification oracle the protocol core
// calls into, plus a registry that selects a verifier implementation by
// block-id range so the proof format can change across protocol versions.
//
// The oracle is deliberately opaque: the core only learns accept or reject.
// Proof-system internals live behind the Verifier interface.
package proofs

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Oracle errors.
var (
	ErrProofEmpty    = errors.New("proofs: proof payload must be non-empty")
	ErrProofRejected = errors.New("proofs: proof rejected")
)

// PublicInputs are the values a proof must commit to. The core fills them
// from its own records, never from the submitted evidence, so a proof can
// only pass for the exact transition the core expects.
type PublicInputs struct {
	// BlockID is the proposed block being proven.
	BlockID uint64

	// MetaHash is the commitment recorded at proposal time.
	MetaHash common.Hash

	// ParentHash and ParentGasUsed identify the claimed parent state.
	ParentHash    common.Hash
	ParentGasUsed uint64

	// BlockHash and SignalRoot are the claimed resulting commitments.
	BlockHash  common.Hash
	SignalRoot common.Hash

	// Prover is the identity that submitted the evidence.
	Prover common.Address

	// VerifierAddress is the deployed verifier the proof targets,
	// resolved through the collaborator registry at call time.
	VerifierAddress common.Address
}

// Verifier is the opaque proof oracle. A nil return accepts the proof; any
// error rejects it and the caller must resubmit with corrected evidence.
type Verifier interface {
	Verify(proof []byte, inputs PublicInputs) error
}
