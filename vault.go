package docqa

import "context"

// Vault statuses.
type VaultStatus int

const (
	// VaultDisabled means security was never enabled or has been torn
	// down; storage operates on plaintext.
	VaultDisabled VaultStatus = iota

	// VaultLocked means security is enabled but the data key has not been
	// unwrapped this session; secured storage refuses reads and writes.
	VaultLocked

	// VaultUnlocked means the data key is held in process memory and
	// secured storage is available.
	VaultUnlocked
)

// String returns the status name.
func (s VaultStatus) String() string {
	switch s {
	case VaultLocked:
		return "locked"
	case VaultUnlocked:
		return "unlocked"
	default:
		return "disabled"
	}
}

// VaultState is the persisted portion of the vault. Exactly one instance
// exists per installation. The data encryption key itself is never
// persisted in plaintext; only its wrapped forms are.
type VaultState struct {
	Enabled          bool   `json:"enabled"`
	Salt             []byte `json:"salt"`
	WrappedKey       []byte `json:"wrappedKey"`
	BiometricEnabled bool   `json:"biometricEnabled"`
}

// VaultStateStore persists the single VaultState row.
type VaultStateStore interface {
	// LoadVaultState returns the stored state.
	// Returns ENOTFOUND when the vault has never been set up.
	LoadVaultState(ctx context.Context) (*VaultState, error)

	// SaveVaultState writes the state, replacing any previous one.
	SaveVaultState(ctx context.Context, state *VaultState) error

	// ClearVaultState removes the stored state.
	ClearVaultState(ctx context.Context) error
}

// CipherState classifies a Cipher for storage decisions.
type CipherState int

const (
	// CipherDisabled passes data through as plaintext.
	CipherDisabled CipherState = iota

	// CipherLocked means encryption is required but the key is not in
	// memory. Secured reads and writes fail with ELOCKED; plaintext is
	// never written in this state.
	CipherLocked

	// CipherReady means the key is in memory and data passed through the
	// cipher is encrypted at rest.
	CipherReady
)

// Cipher encrypts and decrypts sensitive storage fields.
//
// Implementations use authenticated encryption: decrypting with a wrong
// key or over tampered data fails, it never silently yields garbage.
// While the vault is enabled but locked, both operations return ELOCKED.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)

	// State reports whether the cipher is a plaintext pass-through,
	// locked, or ready to encrypt.
	State() CipherState
}

// Recryptor re-encrypts every secured row from one cipher to another.
// Used when the vault is disabled (re-persist as plaintext) and offered
// for future key rotation. Returns the number of rows rewritten.
type Recryptor interface {
	RecryptSensitive(ctx context.Context, from, to Cipher) (int, error)
}

// SecureStore is an optional platform-backed secret store (OS keychain).
// The vault keeps its biometric-wrapped key copy here.
type SecureStore interface {
	Available() bool
	Store(key string, data []byte) error
	// Retrieve returns ENOTFOUND if the key is absent.
	Retrieve(key string) ([]byte, error)
	Delete(key string) error
}

// Biometric is the opaque platform biometric prompt.
type Biometric interface {
	Available() bool
	Authenticate(ctx context.Context, reason string) (bool, error)
}
