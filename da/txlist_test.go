package da

import (
	"bytes"
	"errors"
	"sync"
	"testing"
)

// sharedChecker memoizes the KZG context so the trusted setup is only
// processed once per test binary.
var (
	sharedChecker     *Checker
	sharedCheckerErr  error
	sharedCheckerOnce sync.Once
)

func testChecker(t *testing.T) *Checker {
	t.Helper()
	sharedCheckerOnce.Do(func() {
		sharedChecker, sharedCheckerErr = NewChecker()
	})
	if sharedCheckerErr != nil {
		t.Fatalf("NewChecker failed: %v", sharedCheckerErr)
	}
	return sharedChecker
}

func TestPackUnpackRoundTrip(t *testing.T) {
	txList := bytes.Repeat([]byte{0xab, 0xcd, 0xef}, 5000)

	blob, err := PackTxList(txList)
	if err != nil {
		t.Fatalf("PackTxList: %v", err)
	}

	got, err := UnpackTxList(blob)
	if err != nil {
		t.Fatalf("UnpackTxList: %v", err)
	}
	if !bytes.Equal(got, txList) {
		t.Error("unpacked transaction list differs from input")
	}
}

func TestPackEmptyTxList(t *testing.T) {
	blob, err := PackTxList(nil)
	if err != nil {
		t.Fatalf("PackTxList(nil): %v", err)
	}
	got, err := UnpackTxList(blob)
	if err != nil {
		t.Fatalf("UnpackTxList: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unpacked %d bytes, want 0", len(got))
	}
}

func TestPackTooLarge(t *testing.T) {
	if _, err := PackTxList(make([]byte, MaxTxListBytes+1)); !errors.Is(err, ErrTxListTooLarge) {
		t.Errorf("err = %v, want ErrTxListTooLarge", err)
	}
}

func TestPackKeepsElementsCanonical(t *testing.T) {
	blob, err := PackTxList(bytes.Repeat([]byte{0xff}, MaxTxListBytes))
	if err != nil {
		t.Fatalf("PackTxList: %v", err)
	}
	// The high byte of every field element must remain zero.
	for elem := 0; elem < BytesPerBlob; elem += bytesPerFieldElement {
		if blob[elem] != 0 {
			t.Fatalf("field element at offset %d has non-zero high byte", elem)
		}
	}
}

func TestCommitAndVerify(t *testing.T) {
	c := testChecker(t)
	txList := []byte("rollup block body")

	blob, commitment, proof, err := c.CommitTxList(txList)
	if err != nil {
		t.Fatalf("CommitTxList: %v", err)
	}

	if err := c.VerifyTxListBlob(blob, commitment, proof); err != nil {
		t.Errorf("VerifyTxListBlob rejected valid sidecar: %v", err)
	}
}

func TestVerifyDetectsTamperedBlob(t *testing.T) {
	c := testChecker(t)

	blob, commitment, proof, err := c.CommitTxList([]byte("original body"))
	if err != nil {
		t.Fatalf("CommitTxList: %v", err)
	}

	blob[33] ^= 0x01
	if err := c.VerifyTxListBlob(blob, commitment, proof); !errors.Is(err, ErrCommitmentMismatch) {
		t.Errorf("tampered blob err = %v, want ErrCommitmentMismatch", err)
	}
}

func TestVerifyNilBlob(t *testing.T) {
	c := testChecker(t)
	var commitment [BytesPerCommitment]byte
	var proof [BytesPerProof]byte
	if err := c.VerifyTxListBlob(nil, commitment, proof); !errors.Is(err, ErrBlobMalformed) {
		t.Errorf("nil blob err = %v, want ErrBlobMalformed", err)
	}
}

func TestUninitializedChecker(t *testing.T) {
	var c *Checker
	if _, _, _, err := c.CommitTxList([]byte("x")); !errors.Is(err, ErrContextUninitialized) {
		t.Errorf("CommitTxList err = %v, want ErrContextUninitialized", err)
	}
}
