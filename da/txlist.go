// Package da validates the data availability of proposed transaction lists.
//
// A proposer may publish the transaction list as a blob and commit to it
// with a KZG commitment; the protocol core then checks the blob against the
// commitment before accepting the proposal. Verification uses the Ethereum
// KZG ceremony trusted setup embedded in go-eth-kzg.
package da

import (
	"encoding/binary"
	"errors"
	"fmt"

	goethkzg "github.com/crate-crypto/go-eth-kzg"
)

// Blob geometry. A blob holds 4096 field elements of 32 bytes; only the low
// 31 bytes of each element are usable, since every element must be a
// canonical BLS scalar.
const (
	BytesPerBlob       = 131072
	BytesPerCommitment = 48
	BytesPerProof      = 48

	bytesPerFieldElement  = 32
	usablePerFieldElement = 31

	// MaxTxListBytes bounds the encoded transaction list. The 4-byte
	// length prefix plus the payload must fit the usable blob space
	// (4096 * 31 bytes).
	MaxTxListBytes = 120_000
)

// DA errors.
var (
	ErrTxListTooLarge       = errors.New("da: transaction list exceeds blob capacity")
	ErrBlobMalformed        = errors.New("da: blob does not decode to a transaction list")
	ErrCommitmentMismatch   = errors.New("da: blob does not match KZG commitment")
	ErrContextUninitialized = errors.New("da: KZG context not initialized")
)

// Checker verifies transaction-list blobs against their KZG commitments.
type Checker struct {
	ctx *goethkzg.Context
}

// NewChecker initializes a Checker with the embedded Ethereum KZG ceremony
// trusted setup. Initialization processes the SRS points and takes a few
// seconds; deployments create one Checker and share it.
func NewChecker() (*Checker, error) {
	ctx, err := goethkzg.NewContext4096Secure()
	if err != nil {
		return nil, fmt.Errorf("da: initializing KZG context: %w", err)
	}
	return &Checker{ctx: ctx}, nil
}

// PackTxList encodes a transaction list into blob form: a 4-byte big-endian
// length followed by the payload, spread across the low 31 bytes of each
// field element so every element stays canonical.
func PackTxList(txList []byte) (*[BytesPerBlob]byte, error) {
	if len(txList) > MaxTxListBytes {
		return nil, ErrTxListTooLarge
	}

	var stream [4 + MaxTxListBytes]byte
	binary.BigEndian.PutUint32(stream[:4], uint32(len(txList)))
	copy(stream[4:], txList)

	blob := new([BytesPerBlob]byte)
	total := 4 + len(txList)
	for i := 0; i < total; i += usablePerFieldElement {
		end := i + usablePerFieldElement
		if end > total {
			end = total
		}
		elem := (i / usablePerFieldElement) * bytesPerFieldElement
		copy(blob[elem+1:elem+bytesPerFieldElement], stream[i:end])
	}
	return blob, nil
}

// UnpackTxList decodes a blob produced by PackTxList.
func UnpackTxList(blob *[BytesPerBlob]byte) ([]byte, error) {
	stream := make([]byte, 0, 4+MaxTxListBytes)
	for elem := 0; elem < BytesPerBlob; elem += bytesPerFieldElement {
		stream = append(stream, blob[elem+1:elem+bytesPerFieldElement]...)
	}

	size := binary.BigEndian.Uint32(stream[:4])
	if size > MaxTxListBytes || int(size) > len(stream)-4 {
		return nil, ErrBlobMalformed
	}
	out := make([]byte, size)
	copy(out, stream[4:4+size])
	return out, nil
}

// CommitTxList packs a transaction list into a blob and produces its KZG
// commitment and proof. Proposers use this to build the sidecar published
// alongside a proposal.
func (c *Checker) CommitTxList(txList []byte) (*[BytesPerBlob]byte, [BytesPerCommitment]byte, [BytesPerProof]byte, error) {
	var commitment [BytesPerCommitment]byte
	var proof [BytesPerProof]byte
	if c == nil || c.ctx == nil {
		return nil, commitment, proof, ErrContextUninitialized
	}

	blob, err := PackTxList(txList)
	if err != nil {
		return nil, commitment, proof, err
	}

	kzgBlob := (*goethkzg.Blob)(blob)
	comm, err := c.ctx.BlobToKZGCommitment(kzgBlob, 0)
	if err != nil {
		return nil, commitment, proof, fmt.Errorf("da: computing commitment: %w", err)
	}
	prf, err := c.ctx.ComputeBlobKZGProof(kzgBlob, comm, 0)
	if err != nil {
		return nil, commitment, proof, fmt.Errorf("da: computing proof: %w", err)
	}
	return blob, [BytesPerCommitment]byte(comm), [BytesPerProof]byte(prf), nil
}

// VerifyTxListBlob checks that blob matches the given commitment and proof.
// A mismatch returns ErrCommitmentMismatch.
func (c *Checker) VerifyTxListBlob(blob *[BytesPerBlob]byte, commitment [BytesPerCommitment]byte, proof [BytesPerProof]byte) error {
	if c == nil || c.ctx == nil {
		return ErrContextUninitialized
	}
	if blob == nil {
		return ErrBlobMalformed
	}

	err := c.ctx.VerifyBlobKZGProof(
		(*goethkzg.Blob)(blob),
		goethkzg.KZGCommitment(commitment),
		goethkzg.KZGProof(proof),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCommitmentMismatch, err)
	}
	return nil
}
