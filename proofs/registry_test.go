package proofs

import (
	"errors"
	"testing"
)

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	v1 := AcceptAllVerifier{}
	v2 := RejectAllVerifier{}

	if err := r.Register(1, 100, v1); err != nil {
		t.Fatalf("Register [1,100): %v", err)
	}
	if err := r.Register(100, 0, v2); err != nil {
		t.Fatalf("Register [100,inf): %v", err)
	}

	got, err := r.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve(1): %v", err)
	}
	if _, ok := got.(AcceptAllVerifier); !ok {
		t.Errorf("Resolve(1) = %T, want AcceptAllVerifier", got)
	}

	got, err = r.Resolve(99)
	if err != nil {
		t.Fatalf("Resolve(99): %v", err)
	}
	if _, ok := got.(AcceptAllVerifier); !ok {
		t.Errorf("Resolve(99) = %T, want AcceptAllVerifier", got)
	}

	got, err = r.Resolve(100)
	if err != nil {
		t.Fatalf("Resolve(100): %v", err)
	}
	if _, ok := got.(RejectAllVerifier); !ok {
		t.Errorf("Resolve(100) = %T, want RejectAllVerifier", got)
	}
}

func TestResolveUnregisteredRange(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(10, 20, AcceptAllVerifier{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := r.Resolve(5); !errors.Is(err, ErrNoVerifier) {
		t.Errorf("Resolve(5) err = %v, want ErrNoVerifier", err)
	}
	if _, err := r.Resolve(20); !errors.Is(err, ErrNoVerifier) {
		t.Errorf("Resolve(20) err = %v, want ErrNoVerifier", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(1, 10, nil); !errors.Is(err, ErrNilVerifier) {
		t.Errorf("nil verifier err = %v, want ErrNilVerifier", err)
	}
	if err := r.Register(0, 10, AcceptAllVerifier{}); !errors.Is(err, ErrZeroFromBlock) {
		t.Errorf("from=0 err = %v, want ErrZeroFromBlock", err)
	}
	if err := r.Register(10, 10, AcceptAllVerifier{}); !errors.Is(err, ErrEmptyRange) {
		t.Errorf("empty range err = %v, want ErrEmptyRange", err)
	}
	if err := r.Register(10, 5, AcceptAllVerifier{}); !errors.Is(err, ErrEmptyRange) {
		t.Errorf("inverted range err = %v, want ErrEmptyRange", err)
	}
}

func TestRegisterOverlap(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(1, 100, AcceptAllVerifier{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	overlapping := [][2]uint64{
		{50, 150}, // straddles the upper bound
		{1, 2},    // inside
		{99, 0},   // open-ended starting inside
	}
	for _, c := range overlapping {
		if err := r.Register(c[0], c[1], AcceptAllVerifier{}); !errors.Is(err, ErrRangeOverlap) {
			t.Errorf("Register(%d, %d) err = %v, want ErrRangeOverlap", c[0], c[1], err)
		}
	}

	// Two open-ended ranges always collide.
	r2 := NewRegistry()
	if err := r2.Register(1, 0, AcceptAllVerifier{}); err != nil {
		t.Fatalf("Register open-ended: %v", err)
	}
	if err := r2.Register(500, 0, AcceptAllVerifier{}); !errors.Is(err, ErrRangeOverlap) {
		t.Errorf("second open-ended err = %v, want ErrRangeOverlap", err)
	}
}

func TestRecordingVerifier(t *testing.T) {
	rec := &RecordingVerifier{Inner: RejectAllVerifier{}}

	err := rec.Verify([]byte{1}, PublicInputs{BlockID: 7})
	if !errors.Is(err, ErrProofRejected) {
		t.Errorf("err = %v, want ErrProofRejected from inner verifier", err)
	}

	calls := rec.Calls()
	if len(calls) != 1 || calls[0].BlockID != 7 {
		t.Errorf("recorded calls = %+v, want one call with BlockID 7", calls)
	}
}

func TestAcceptAllRejectsEmptyProof(t *testing.T) {
	if err := (AcceptAllVerifier{}).Verify(nil, PublicInputs{}); !errors.Is(err, ErrProofEmpty) {
		t.Errorf("empty proof err = %v, want ErrProofEmpty", err)
	}
}
