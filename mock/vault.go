package mock

import (
	"context"

	"github.com/tverano/docqa"
)

var _ docqa.VaultStateStore = (*VaultStateStore)(nil)

// VaultStateStore is a mock implementation of docqa.VaultStateStore.
type VaultStateStore struct {
	LoadVaultStateFn  func(ctx context.Context) (*docqa.VaultState, error)
	SaveVaultStateFn  func(ctx context.Context, state *docqa.VaultState) error
	ClearVaultStateFn func(ctx context.Context) error
}

func (s *VaultStateStore) LoadVaultState(ctx context.Context) (*docqa.VaultState, error) {
	return s.LoadVaultStateFn(ctx)
}

func (s *VaultStateStore) SaveVaultState(ctx context.Context, state *docqa.VaultState) error {
	return s.SaveVaultStateFn(ctx, state)
}

func (s *VaultStateStore) ClearVaultState(ctx context.Context) error {
	return s.ClearVaultStateFn(ctx)
}

var _ docqa.Cipher = (*Cipher)(nil)

// Cipher is a mock implementation of docqa.Cipher.
type Cipher struct {
	EncryptFn func(plaintext []byte) ([]byte, error)
	DecryptFn func(ciphertext []byte) ([]byte, error)
	StateFn   func() docqa.CipherState
}

func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error)  { return c.EncryptFn(plaintext) }
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) { return c.DecryptFn(ciphertext) }
func (c *Cipher) State() docqa.CipherState                  { return c.StateFn() }

var _ docqa.Recryptor = (*Recryptor)(nil)

// Recryptor is a mock implementation of docqa.Recryptor.
type Recryptor struct {
	RecryptSensitiveFn func(ctx context.Context, from, to docqa.Cipher) (int, error)
}

func (r *Recryptor) RecryptSensitive(ctx context.Context, from, to docqa.Cipher) (int, error) {
	return r.RecryptSensitiveFn(ctx, from, to)
}

var _ docqa.SecureStore = (*SecureStore)(nil)

// SecureStore is a mock implementation of docqa.SecureStore.
type SecureStore struct {
	AvailableFn func() bool
	StoreFn     func(key string, data []byte) error
	RetrieveFn  func(key string) ([]byte, error)
	DeleteFn    func(key string) error
}

func (s *SecureStore) Available() bool                     { return s.AvailableFn() }
func (s *SecureStore) Store(key string, data []byte) error { return s.StoreFn(key, data) }
func (s *SecureStore) Retrieve(key string) ([]byte, error) { return s.RetrieveFn(key) }
func (s *SecureStore) Delete(key string) error             { return s.DeleteFn(key) }

var _ docqa.Biometric = (*Biometric)(nil)

// Biometric is a mock implementation of docqa.Biometric.
type Biometric struct {
	AvailableFn    func() bool
	AuthenticateFn func(ctx context.Context, reason string) (bool, error)
}

func (b *Biometric) Available() bool { return b.AvailableFn() }

func (b *Biometric) Authenticate(ctx context.Context, reason string) (bool, error) {
	return b.AuthenticateFn(ctx, reason)
}
