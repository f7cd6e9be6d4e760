package vault_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tverano/docqa"
	"github.com/tverano/docqa/keychain"
	"github.com/tverano/docqa/mock"
	"github.com/tverano/docqa/vault"
)

// memStateStore keeps vault state in memory for tests.
func memStateStore() *mock.VaultStateStore {
	var state *docqa.VaultState
	return &mock.VaultStateStore{
		LoadVaultStateFn: func(ctx context.Context) (*docqa.VaultState, error) {
			if state == nil {
				return nil, docqa.Errorf(docqa.ENOTFOUND, "vault state not found")
			}
			cp := *state
			return &cp, nil
		},
		SaveVaultStateFn: func(ctx context.Context, s *docqa.VaultState) error {
			cp := *s
			state = &cp
			return nil
		},
		ClearVaultStateFn: func(ctx context.Context) error {
			state = nil
			return nil
		},
	}
}

func memSecureStore() *mock.SecureStore {
	secrets := map[string][]byte{}
	return &mock.SecureStore{
		AvailableFn: func() bool { return true },
		StoreFn: func(key string, data []byte) error {
			secrets[key] = data
			return nil
		},
		RetrieveFn: func(key string) ([]byte, error) {
			data, ok := secrets[key]
			if !ok {
				return nil, docqa.Errorf(docqa.ENOTFOUND, "secret not found")
			}
			return data, nil
		},
		DeleteFn: func(key string) error {
			delete(secrets, key)
			return nil
		},
	}
}

func TestVault_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	v := vault.New(memStateStore(), nil, nil)

	status, err := v.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, docqa.VaultDisabled, status)
	assert.Equal(t, docqa.CipherDisabled, v.State())

	require.NoError(t, v.Setup(ctx, "correct horse", false))

	status, err = v.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, docqa.VaultUnlocked, status)
	assert.Equal(t, docqa.CipherReady, v.State())

	ciphertext, err := v.Encrypt([]byte("secret note"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("secret note"), ciphertext)

	plaintext, err := v.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret note"), plaintext)

	v.Lock()
	status, err = v.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, docqa.VaultLocked, status)
	assert.Equal(t, docqa.CipherLocked, v.State())

	_, err = v.Encrypt([]byte("x"))
	assert.Equal(t, docqa.ELOCKED, docqa.ErrorCode(err))
	_, err = v.Decrypt(ciphertext)
	assert.Equal(t, docqa.ELOCKED, docqa.ErrorCode(err))

	ok, err := v.UnlockWithPassword(ctx, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.UnlockWithPassword(ctx, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	plaintext, err = v.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret note"), plaintext)
}

func TestVault_State_FreshProcess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := memStateStore()
	v := vault.New(store, nil, nil)
	require.NoError(t, v.Setup(ctx, "pw", false))

	// A new process over the same store holds no key. It must read as
	// locked, not as a plaintext pass-through.
	fresh := vault.New(store, nil, nil)
	assert.Equal(t, docqa.CipherLocked, fresh.State())

	ok, err := fresh.UnlockWithPassword(ctx, "pw")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, docqa.CipherReady, fresh.State())
}

func TestVault_Setup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("twice conflicts", func(t *testing.T) {
		t.Parallel()
		v := vault.New(memStateStore(), nil, nil)
		require.NoError(t, v.Setup(ctx, "pw", false))
		err := v.Setup(ctx, "other", false)
		assert.Equal(t, docqa.ECONFLICT, docqa.ErrorCode(err))
	})

	t.Run("empty password invalid", func(t *testing.T) {
		t.Parallel()
		v := vault.New(memStateStore(), nil, nil)
		err := v.Setup(ctx, "", false)
		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
	})

	t.Run("biometric requires platform secure storage", func(t *testing.T) {
		t.Parallel()

		// The raw data key must never reach a store the platform does not
		// protect; without one, biometric enrollment fails outright.
		v := vault.New(memStateStore(), keychain.NewStore(), nil)
		err := v.Setup(ctx, "pw", true)
		assert.Equal(t, docqa.EUNAVAILABLE, docqa.ErrorCode(err))

		status, err := v.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, docqa.VaultDisabled, status)
	})
}

func TestVault_ChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	v := vault.New(memStateStore(), nil, nil)
	require.NoError(t, v.Setup(ctx, "old pw", false))

	// Data encrypted before the change must stay readable after it.
	ciphertext, err := v.Encrypt([]byte("kept across rotation"))
	require.NoError(t, err)

	err = v.ChangePassword(ctx, "not the password", "new pw")
	assert.Equal(t, docqa.EUNAUTHORIZED, docqa.ErrorCode(err))

	require.NoError(t, v.ChangePassword(ctx, "old pw", "new pw"))

	v.Lock()
	ok, err := v.UnlockWithPassword(ctx, "old pw")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.UnlockWithPassword(ctx, "new pw")
	require.NoError(t, err)
	require.True(t, ok)

	plaintext, err := v.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("kept across rotation"), plaintext)
}

func TestVault_Disable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	v := vault.New(memStateStore(), nil, nil)
	require.NoError(t, v.Setup(ctx, "pw", false))

	recryptor := &mock.Recryptor{
		RecryptSensitiveFn: func(ctx context.Context, from, to docqa.Cipher) (int, error) {
			// Rows round-trip from the vault cipher to plaintext.
			data, err := from.Encrypt([]byte("row"))
			if err != nil {
				return 0, err
			}
			plain, err := from.Decrypt(data)
			if err != nil {
				return 0, err
			}
			out, err := to.Encrypt(plain)
			if err != nil {
				return 0, err
			}
			if string(out) != "row" {
				return 0, docqa.Errorf(docqa.EINTERNAL, "plaintext cipher altered data")
			}
			return 7, nil
		},
	}

	_, err := v.Disable(ctx, "wrong", recryptor)
	assert.Equal(t, docqa.EUNAUTHORIZED, docqa.ErrorCode(err))

	count, err := v.Disable(ctx, "pw", recryptor)
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	status, err := v.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, docqa.VaultDisabled, status)
}

func TestVault_Biometric(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	secrets := memSecureStore()
	granted := true
	biometric := &mock.Biometric{
		AvailableFn: func() bool { return true },
		AuthenticateFn: func(ctx context.Context, reason string) (bool, error) {
			return granted, nil
		},
	}

	v := vault.New(memStateStore(), secrets, biometric)
	require.NoError(t, v.Setup(ctx, "pw", true))

	ciphertext, err := v.Encrypt([]byte("biometric data"))
	require.NoError(t, err)

	v.Lock()

	granted = false
	ok, err := v.UnlockWithBiometric(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	granted = true
	ok, err = v.UnlockWithBiometric(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	plaintext, err := v.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("biometric data"), plaintext)

	// Removing the biometric copy leaves password unlock working.
	require.NoError(t, v.ToggleBiometric(ctx, "pw", false))
	v.Lock()
	_, err = v.UnlockWithBiometric(ctx)
	assert.Equal(t, docqa.EUNSUPPORTED, docqa.ErrorCode(err))

	ok, err = v.UnlockWithPassword(ctx, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVault_DecryptTampered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	v := vault.New(memStateStore(), nil, nil)
	require.NoError(t, v.Setup(ctx, "pw", false))

	ciphertext, err := v.Encrypt([]byte("payload"))
	require.NoError(t, err)

	ciphertext[len(ciphertext)-1] ^= 0xff
	_, err = v.Decrypt(ciphertext)
	assert.Equal(t, docqa.EUNAUTHORIZED, docqa.ErrorCode(err))
}
