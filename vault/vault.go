// Package vault manages the data encryption key protecting persisted
// state. The key is derived from a user password via Argon2id, wrapped
// with AES-256-GCM, and held in process memory only while the vault is
// unlocked.
package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/tverano/docqa"
)

// Argon2id parameters (time, memory KiB, threads) and key/salt sizes.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4

	keySize   = 32
	saltSize  = 16
	nonceSize = 12
)

// secureStoreKey is the SecureStore entry holding the biometric copy of
// the data key. The SecureStore itself is the platform-backed wrapping.
const secureStoreKey = "docqa.vault.data-key"

// Ensure Vault implements docqa.Cipher at compile time.
var _ docqa.Cipher = (*Vault)(nil)

// Vault holds the vault state machine and the session's data key.
type Vault struct {
	mu        sync.Mutex
	states    docqa.VaultStateStore
	secrets   docqa.SecureStore
	biometric docqa.Biometric

	key []byte // unwrapped data key; nil unless unlocked

	// Cached persisted state, so State() can answer without a context.
	loaded  bool
	enabled bool
}

// New creates a Vault over the given persistence and platform
// capabilities.
func New(states docqa.VaultStateStore, secrets docqa.SecureStore, biometric docqa.Biometric) *Vault {
	return &Vault{states: states, secrets: secrets, biometric: biometric}
}

// Status reports the current vault status.
func (v *Vault) Status(ctx context.Context) (docqa.VaultStatus, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	state, err := v.loadState(ctx)
	if err != nil {
		return docqa.VaultDisabled, err
	}
	if state == nil || !state.Enabled {
		return docqa.VaultDisabled, nil
	}
	if v.key != nil {
		return docqa.VaultUnlocked, nil
	}
	return docqa.VaultLocked, nil
}

// BiometricEnabled reports whether a biometric-wrapped key copy exists.
func (v *Vault) BiometricEnabled(ctx context.Context) (bool, error) {
	state, err := v.loadState(ctx)
	if err != nil {
		return false, err
	}
	return state != nil && state.BiometricEnabled, nil
}

// Setup enables security for the first time: generates a fresh salt and
// data key, wraps the data key under the password-derived key, persists
// the wrapped form, and leaves the vault unlocked.
func (v *Vault) Setup(ctx context.Context, password string, enableBiometric bool) error {
	if password == "" {
		return docqa.Errorf(docqa.EINVALID, "password required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	state, err := v.loadState(ctx)
	if err != nil {
		return err
	}
	if state != nil && state.Enabled {
		return docqa.Errorf(docqa.ECONFLICT, "vault is already set up")
	}

	salt, err := randomBytes(saltSize)
	if err != nil {
		return err
	}
	dataKey, err := randomBytes(keySize)
	if err != nil {
		return err
	}

	wrapped, err := seal(deriveKey(password, salt), dataKey)
	if err != nil {
		return err
	}

	newState := &docqa.VaultState{
		Enabled:          true,
		Salt:             salt,
		WrappedKey:       wrapped,
		BiometricEnabled: false,
	}

	if enableBiometric {
		if err := v.storeBiometricCopy(dataKey); err != nil {
			return err
		}
		newState.BiometricEnabled = true
	}

	if err := v.states.SaveVaultState(ctx, newState); err != nil {
		return err
	}

	v.loaded, v.enabled = true, true
	v.key = dataKey
	return nil
}

// UnlockWithPassword re-derives the wrapping key from password and salt
// and attempts to unwrap the stored data key. A wrong password fails the
// authenticated unwrap and returns false with the state unchanged.
func (v *Vault) UnlockWithPassword(ctx context.Context, password string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	state, err := v.requireEnabled(ctx)
	if err != nil {
		return false, err
	}

	dataKey, err := open(deriveKey(password, state.Salt), state.WrappedKey)
	if err != nil {
		return false, nil
	}

	v.key = dataKey
	return true, nil
}

// UnlockWithBiometric asks the platform biometric prompt to release the
// stored key copy.
func (v *Vault) UnlockWithBiometric(ctx context.Context) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	state, err := v.requireEnabled(ctx)
	if err != nil {
		return false, err
	}
	if !state.BiometricEnabled {
		return false, docqa.Errorf(docqa.EUNSUPPORTED, "biometric unlock is not enabled")
	}
	if v.biometric == nil || !v.biometric.Available() {
		return false, docqa.Errorf(docqa.EUNAVAILABLE, "biometric authentication is not available")
	}

	ok, err := v.biometric.Authenticate(ctx, "Unlock your documents")
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	dataKey, err := v.secrets.Retrieve(secureStoreKey)
	if err != nil {
		return false, err
	}
	if len(dataKey) != keySize {
		return false, docqa.Errorf(docqa.EINTERNAL, "secure store returned a malformed key")
	}

	v.key = dataKey
	return true, nil
}

// Lock discards the in-memory data key. Storage returns to refusing
// secured operations until the next unlock.
func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zeroKey()
}

// Disable tears security down. It requires proof of possession via the
// current password, re-persists all secured rows in plaintext through the
// recryptor, then discards key material and salt. Returns the number of
// rows rewritten.
func (v *Vault) Disable(ctx context.Context, password string, recryptor docqa.Recryptor) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	state, err := v.requireEnabled(ctx)
	if err != nil {
		return 0, err
	}

	dataKey, err := open(deriveKey(password, state.Salt), state.WrappedKey)
	if err != nil {
		return 0, docqa.Errorf(docqa.EUNAUTHORIZED, "wrong password")
	}

	count, err := recryptor.RecryptSensitive(ctx, &keyCipher{key: dataKey}, Plain{})
	if err != nil {
		return 0, err
	}

	if state.BiometricEnabled && v.secrets != nil {
		if err := v.secrets.Delete(secureStoreKey); err != nil {
			return count, err
		}
	}
	if err := v.states.ClearVaultState(ctx); err != nil {
		return count, err
	}

	v.enabled = false
	v.zeroKey()
	zero(dataKey)
	return count, nil
}

// ChangePassword rewraps the existing data key under a freshly salted
// derivation of the new password. Encrypted rows are untouched: only the
// wrapping changes.
func (v *Vault) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if newPassword == "" {
		return docqa.Errorf(docqa.EINVALID, "new password required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	state, err := v.requireEnabled(ctx)
	if err != nil {
		return err
	}

	dataKey, err := open(deriveKey(oldPassword, state.Salt), state.WrappedKey)
	if err != nil {
		return docqa.Errorf(docqa.EUNAUTHORIZED, "wrong password")
	}

	salt, err := randomBytes(saltSize)
	if err != nil {
		return err
	}
	wrapped, err := seal(deriveKey(newPassword, salt), dataKey)
	if err != nil {
		return err
	}

	state.Salt = salt
	state.WrappedKey = wrapped
	if err := v.states.SaveVaultState(ctx, state); err != nil {
		return err
	}

	v.key = dataKey
	return nil
}

// ToggleBiometric adds or removes the biometric-wrapped key copy.
// Requires password proof either way.
func (v *Vault) ToggleBiometric(ctx context.Context, password string, enable bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	state, err := v.requireEnabled(ctx)
	if err != nil {
		return err
	}

	dataKey, err := open(deriveKey(password, state.Salt), state.WrappedKey)
	if err != nil {
		return docqa.Errorf(docqa.EUNAUTHORIZED, "wrong password")
	}
	defer zero(dataKey)

	if enable {
		if err := v.storeBiometricCopy(dataKey); err != nil {
			return err
		}
	} else if v.secrets != nil {
		if err := v.secrets.Delete(secureStoreKey); err != nil {
			return err
		}
	}

	state.BiometricEnabled = enable
	return v.states.SaveVaultState(ctx, state)
}

// Encrypt implements docqa.Cipher. While the vault is enabled but locked
// it returns ELOCKED; while disabled it passes data through unchanged.
func (v *Vault) Encrypt(plaintext []byte) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.key == nil {
		return nil, docqa.Errorf(docqa.ELOCKED, "vault is locked")
	}
	return seal(v.key, plaintext)
}

// Decrypt implements docqa.Cipher.
func (v *Vault) Decrypt(ciphertext []byte) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.key == nil {
		return nil, docqa.Errorf(docqa.ELOCKED, "vault is locked")
	}
	plaintext, err := open(v.key, ciphertext)
	if err != nil {
		return nil, docqa.Errorf(docqa.EUNAUTHORIZED, "decryption failed: data corrupted or wrong key")
	}
	return plaintext, nil
}

// State implements docqa.Cipher. An enabled vault without a key in
// memory reports locked, so storage refuses secured writes instead of
// persisting plaintext. Cipher carries no context, so the persisted
// state is loaded once here and cached; a load failure reads as locked,
// never as pass-through.
func (v *Vault) State() docqa.CipherState {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.key != nil {
		return docqa.CipherReady
	}
	if !v.loaded {
		if _, err := v.loadState(context.Background()); err != nil {
			return docqa.CipherLocked
		}
	}
	if v.enabled {
		return docqa.CipherLocked
	}
	return docqa.CipherDisabled
}

func (v *Vault) storeBiometricCopy(dataKey []byte) error {
	if v.secrets == nil || !v.secrets.Available() {
		return docqa.Errorf(docqa.EUNAVAILABLE, "platform secure storage is not available")
	}
	copyKey := make([]byte, len(dataKey))
	copy(copyKey, dataKey)
	return v.secrets.Store(secureStoreKey, copyKey)
}

// requireEnabled loads state and fails with EUNSUPPORTED when security
// was never enabled. Callers hold v.mu.
func (v *Vault) requireEnabled(ctx context.Context) (*docqa.VaultState, error) {
	state, err := v.loadState(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil || !state.Enabled {
		return nil, docqa.Errorf(docqa.EUNSUPPORTED, "vault is not set up")
	}
	return state, nil
}

// loadState reads persisted state and refreshes the enabled cache.
// Callers hold v.mu.
func (v *Vault) loadState(ctx context.Context) (*docqa.VaultState, error) {
	state, err := v.states.LoadVaultState(ctx)
	if err != nil {
		if docqa.ErrorCode(err) == docqa.ENOTFOUND {
			v.loaded, v.enabled = true, false
			return nil, nil
		}
		return nil, err
	}
	v.loaded, v.enabled = true, state.Enabled
	return state, nil
}

func (v *Vault) zeroKey() {
	zero(v.key)
	v.key = nil
}

// deriveKey runs Argon2id over the password and salt.
func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keySize)
}

// seal encrypts plaintext with AES-256-GCM, prepending the random nonce.
func seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce, err := randomBytes(nonceSize)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts nonce-prefixed AES-256-GCM data. Fails on truncated
// input, tampering, or a wrong key.
func open(key, data []byte) ([]byte, error) {
	if len(data) < nonceSize {
		return nil, docqa.Errorf(docqa.EINVALID, "encrypted data too short")
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// keyCipher is a Cipher over a raw key, used internally during recrypt.
type keyCipher struct {
	key []byte
}

func (c *keyCipher) Encrypt(plaintext []byte) ([]byte, error) { return seal(c.key, plaintext) }
func (c *keyCipher) Decrypt(data []byte) ([]byte, error)      { return open(c.key, data) }
func (c *keyCipher) State() docqa.CipherState                 { return docqa.CipherReady }

// Plain is the identity Cipher used while security is disabled.
type Plain struct{}

// Ensure Plain implements docqa.Cipher at compile time.
var _ docqa.Cipher = Plain{}

func (Plain) Encrypt(plaintext []byte) ([]byte, error)  { return plaintext, nil }
func (Plain) Decrypt(ciphertext []byte) ([]byte, error) { return ciphertext, nil }
func (Plain) State() docqa.CipherState                  { return docqa.CipherDisabled }
