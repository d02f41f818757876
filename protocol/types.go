// Package protocol implements the consensus-critical state machine of the
// tephra rollup: block proposal, proof submission, and in-order
// finalization over a single shared State.
//
// Every externally triggered operation runs to completion under the State
// lock; contention exists only across calls. A failing call leaves State
// exactly as it was before the call began.
package protocol

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/tephra-chain/tephra/da"
)

// ForkChoice is a claimed state transition for a block, keyed by the parent
// commitment it extends.
type ForkChoice struct {
	// ParentHash and ParentGasUsed identify the prior state this choice
	// extends. Together they form the fork-choice key within a block.
	ParentHash    common.Hash
	ParentGasUsed uint64

	// BlockHash is the claimed resulting block hash.
	BlockHash common.Hash

	// SignalRoot is the resulting signal-service root used for
	// cross-chain messaging.
	SignalRoot common.Hash

	// GasUsed is the gas consumed by the claimed transition. It becomes
	// the ParentGasUsed key of the next block's canonical fork choice.
	GasUsed uint64

	// Prover is the identity that submitted this choice.
	Prover common.Address

	// ProvenAt is the submission timestamp.
	ProvenAt uint64
}

// forkChoiceKey identifies one fork-choice slot within a block.
type forkChoiceKey struct {
	parentHash    common.Hash
	parentGasUsed uint64
}

// Block is one proposed rollup block tracked in the ring buffer. It is
// created exactly once on proposal, extended by proof submissions, and
// sealed by finalization; it is never deleted, only aged out of its slot.
type Block struct {
	// ID is the dense, monotonically increasing block number. 0 is the
	// genesis sentinel.
	ID uint64

	// MetaHash commits to the proposal metadata. Immutable once set.
	MetaHash common.Hash

	// ProposedAt is the proposal timestamp.
	ProposedAt uint64

	// Proposer is the proposing identity, held for bond bookkeeping.
	Proposer common.Address

	// GasLimit is the gas limit declared by the proposal. It is the
	// amount added to the cumulative gas-excess counter.
	GasLimit uint64

	// forkChoices holds candidates indexed 1..MaxForkChoicesPerBlock;
	// index 0 is reserved as "none".
	forkChoices []ForkChoice

	// forkChoiceIndex maps a (parentHash, parentGasUsed) key to its
	// slot in forkChoices.
	forkChoiceIndex map[forkChoiceKey]uint16

	// nextForkChoiceID is the next free fork-choice slot.
	nextForkChoiceID uint16

	// verifiedForkChoiceID is the finalized fork choice, 0 while the
	// block is unverified.
	verifiedForkChoiceID uint16
}

// findForkChoice returns the slot index for the given key, or 0.
func (b *Block) findForkChoice(parentHash common.Hash, parentGasUsed uint64) uint16 {
	return b.forkChoiceIndex[forkChoiceKey{parentHash: parentHash, parentGasUsed: parentGasUsed}]
}

// ProposalInput carries the caller-supplied parts of a block proposal.
type ProposalInput struct {
	// Beneficiary is the proposing identity credited for the block.
	Beneficiary common.Address

	// GasLimit is the proposed block's gas limit. Must be positive and
	// at most the configured per-block maximum.
	GasLimit uint64

	// Sidecar optionally publishes the transaction list as a blob with
	// a KZG commitment. When present it is verified against the
	// transaction list before the proposal is accepted.
	Sidecar *TxListSidecar
}

// TxListSidecar is a blob-carried transaction list with its commitment.
type TxListSidecar struct {
	Blob       *[da.BytesPerBlob]byte
	Commitment [da.BytesPerCommitment]byte
	Proof      [da.BytesPerProof]byte
}

// BlockMetadata is the public record of an accepted proposal. Its RLP
// encoding is the preimage of the block's MetaHash.
type BlockMetadata struct {
	// ID is the assigned block number.
	ID uint64

	// ParentMetaHash references the previous proposal's MetaHash (the
	// genesis hash for block 1).
	ParentMetaHash common.Hash

	// TxListHash commits to the transaction list.
	TxListHash common.Hash

	// Timestamp is the proposal time.
	Timestamp uint64

	// Proposer is the proposing identity.
	Proposer common.Address

	// GasLimit is the declared block gas limit.
	GasLimit uint64

	// GasExcess is the cumulative gas-excess counter before this
	// proposal was applied.
	GasExcess uint64
}

// Evidence bundles a proof submission for a proposed block.
type Evidence struct {
	// ParentHash and ParentGasUsed identify the claimed parent state.
	ParentHash    common.Hash
	ParentGasUsed uint64

	// BlockHash and SignalRoot are the claimed resulting commitments.
	BlockHash  common.Hash
	SignalRoot common.Hash

	// GasUsed is the gas consumed by the claimed transition.
	GasUsed uint64

	// Prover is the submitting identity.
	Prover common.Address

	// Proof is the opaque correctness proof payload handed to the
	// verification oracle.
	Proof []byte
}

// StateVariables is a snapshot of the chain-level state for external query.
type StateVariables struct {
	GenesisHeight    uint64
	GenesisTimestamp uint64
	GasExcess        uint64
	NumBlocks        uint64
	LastVerifiedID   uint64
	Basefee          uint64
}
