package proofs

import (
	"errors"
	"sync"
)

// Registry errors.
var (
	ErrNilVerifier   = errors.New("proofs: verifier must be non-nil")
	ErrEmptyRange    = errors.New("proofs: block-id range must be non-empty")
	ErrRangeOverlap  = errors.New("proofs: block-id range overlaps existing entry")
	ErrNoVerifier    = errors.New("proofs: no verifier registered for block id")
	ErrZeroFromBlock = errors.New("proofs: range must start at block id 1 or later")
)

// rangeEntry binds a verifier to the half-open block-id range [from, to).
// to == 0 means the range is open-ended.
type rangeEntry struct {
	from, to uint64
	verifier Verifier
}

// Registry selects a Verifier by block id. Proof formats version by block
// range: a deployment registers one verifier per protocol era and the core
// resolves the right one once per prove call.
type Registry struct {
	mu      sync.RWMutex
	entries []rangeEntry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds v to the block-id range [from, to). Pass to == 0 for an
// open-ended range. Ranges may not overlap; block id 0 is the genesis
// sentinel and never proven.
func (r *Registry) Register(from, to uint64, v Verifier) error {
	if v == nil {
		return ErrNilVerifier
	}
	if from == 0 {
		return ErrZeroFromBlock
	}
	if to != 0 && to <= from {
		return ErrEmptyRange
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if overlaps(from, to, e.from, e.to) {
			return ErrRangeOverlap
		}
	}
	r.entries = append(r.entries, rangeEntry{from: from, to: to, verifier: v})
	return nil
}

// Resolve returns the verifier registered for blockID.
func (r *Registry) Resolve(blockID uint64) (Verifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if blockID >= e.from && (e.to == 0 || blockID < e.to) {
			return e.verifier, nil
		}
	}
	return nil, ErrNoVerifier
}

func overlaps(aFrom, aTo, bFrom, bTo uint64) bool {
	aOpen := aTo == 0
	bOpen := bTo == 0
	if aOpen && bOpen {
		return true
	}
	if aOpen {
		return bTo > aFrom
	}
	if bOpen {
		return aTo > bFrom
	}
	return aFrom < bTo && bFrom < aTo
}
