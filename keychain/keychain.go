// Package keychain provides secret storage for the vault's biometric key
// copy. The data key may only leave process memory wrapped by a store the
// platform itself protects; there is no portable way to do that, so
// platforms without a keychain integration get Unavailable and biometric
// enrollment fails instead of spilling key material to disk.
package keychain

import (
	"context"

	"github.com/tverano/docqa"
)

// Ensure implementations satisfy the interfaces at compile time.
var (
	_ docqa.SecureStore = (*Unavailable)(nil)
	_ docqa.Biometric   = (*NoBiometric)(nil)
)

// NewStore returns the platform secure store. A real keychain
// integration would slot in here per GOOS; until one exists every
// platform reports unavailable.
func NewStore() docqa.SecureStore {
	return Unavailable{}
}

// Unavailable is the SecureStore used when no platform secret storage
// exists.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Store(key string, data []byte) error {
	return docqa.Errorf(docqa.EUNAVAILABLE, "secure storage is not available")
}

func (Unavailable) Retrieve(key string) ([]byte, error) {
	return nil, docqa.Errorf(docqa.EUNAVAILABLE, "secure storage is not available")
}

func (Unavailable) Delete(key string) error {
	return docqa.Errorf(docqa.EUNAVAILABLE, "secure storage is not available")
}

// NoBiometric is the Biometric used on platforms without a biometric
// prompt.
type NoBiometric struct{}

func (NoBiometric) Available() bool { return false }

func (NoBiometric) Authenticate(ctx context.Context, reason string) (bool, error) {
	return false, docqa.Errorf(docqa.EUNAVAILABLE, "biometric authentication is not available")
}
