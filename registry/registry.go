// Package registry resolves named protocol collaborators (the proof
// verifier, the signal service, the bridge) to their deployed addresses.
// The protocol core re-resolves on every call and never caches results, so
// a deployment can swap a collaborator without touching core state.
package registry

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Well-known collaborator names.
const (
	NameProofVerifier = "proof_verifier"
	NameSignalService = "signal_service"
	NameTokenBridge   = "token_bridge"
)

// Registry errors.
var (
	ErrNameEmpty   = errors.New("registry: name must be non-empty")
	ErrZeroAddress = errors.New("registry: address must be non-zero")
	ErrNotFound    = errors.New("registry: name not resolved")
)

// Resolver maps collaborator names to addresses.
type Resolver interface {
	// Resolve returns the address registered under name, or ErrNotFound.
	Resolve(name string) (common.Address, error)
}

// AddressBook is an in-memory Resolver. It is safe for concurrent use.
type AddressBook struct {
	mu      sync.RWMutex
	entries map[string]common.Address
}

// NewAddressBook creates an empty AddressBook.
func NewAddressBook() *AddressBook {
	return &AddressBook{entries: make(map[string]common.Address)}
}

// Register binds name to addr, replacing any previous binding. Rebinding is
// allowed so upgrades can repoint a collaborator in place.
func (b *AddressBook) Register(name string, addr common.Address) error {
	if name == "" {
		return ErrNameEmpty
	}
	if addr == (common.Address{}) {
		return ErrZeroAddress
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[name] = addr
	return nil
}

// Resolve implements Resolver.
func (b *AddressBook) Resolve(name string) (common.Address, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	addr, ok := b.entries[name]
	if !ok {
		return common.Address{}, ErrNotFound
	}
	return addr, nil
}

// Names returns all registered collaborator names.
func (b *AddressBook) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	return names
}
