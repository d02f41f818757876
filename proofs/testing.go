package proofs

import "sync"

// AcceptAllVerifier accepts any non-empty proof payload. It stands in for a
// real proof system in tests and simulations.
type AcceptAllVerifier struct{}

// Verify implements Verifier.
func (AcceptAllVerifier) Verify(proof []byte, _ PublicInputs) error {
	if len(proof) == 0 {
		return ErrProofEmpty
	}
	return nil
}

// RejectAllVerifier rejects every proof with ErrProofRejected.
type RejectAllVerifier struct{}

// Verify implements Verifier.
func (RejectAllVerifier) Verify([]byte, PublicInputs) error {
	return ErrProofRejected
}

// RecordingVerifier wraps another Verifier and records the inputs of every
// call, letting tests assert what the core actually asked the oracle.
type RecordingVerifier struct {
	Inner Verifier

	mu    sync.Mutex
	calls []PublicInputs
}

// Verify implements Verifier.
func (v *RecordingVerifier) Verify(proof []byte, inputs PublicInputs) error {
	v.mu.Lock()
	v.calls = append(v.calls, inputs)
	v.mu.Unlock()

	if v.Inner == nil {
		return nil
	}
	return v.Inner.Verify(proof, inputs)
}

// Calls returns a copy of the recorded inputs in call order.
func (v *RecordingVerifier) Calls() []PublicInputs {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]PublicInputs, len(v.calls))
	copy(out, v.calls)
	return out
}
