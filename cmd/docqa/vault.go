package main

import (
	"fmt"

	"github.com/tverano/docqa"
)

// Run executes the vault status command.
func (c *VaultStatusCmd) Run(deps *Dependencies) error {
	status, err := deps.Vault.Status(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Vault: %s\n", status)
	if status != docqa.VaultDisabled {
		biometric, err := deps.Vault.BiometricEnabled(deps.Ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(deps.Stdout, "Biometric unlock: %v\n", biometric)
	}
	return nil
}

// Run executes the vault setup command.
func (c *VaultSetupCmd) Run(deps *Dependencies) error {
	if err := deps.Vault.Setup(deps.Ctx, c.NewPassword, c.Biometric); err != nil {
		if docqa.ErrorCode(err) == docqa.ECONFLICT {
			fmt.Fprintln(deps.Stderr, "Hint: Use 'docqa vault change-password' to rotate the password.")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Vault enabled. New data will be encrypted at rest.")
	fmt.Fprintln(deps.Stdout, "Keep your password safe: without it your data cannot be recovered.")
	return nil
}

// Run executes the vault unlock command.
func (c *VaultUnlockCmd) Run(deps *Dependencies) error {
	ok, err := deps.Vault.UnlockWithPassword(deps.Ctx, c.VaultPassword)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}
	if !ok {
		fmt.Fprintln(deps.Stderr, "error: incorrect password")
		return docqa.Errorf(docqa.EUNAUTHORIZED, "incorrect password")
	}

	fmt.Fprintln(deps.Stdout, "Password verified. Pass --password to commands that read encrypted data.")
	return nil
}

// Run executes the vault lock command.
func (c *VaultLockCmd) Run(deps *Dependencies) error {
	deps.Vault.Lock()
	fmt.Fprintln(deps.Stdout, "Vault locked.")
	return nil
}

// Run executes the vault change-password command.
func (c *VaultChangePasswordCmd) Run(deps *Dependencies) error {
	if err := deps.Vault.ChangePassword(deps.Ctx, c.OldPassword, c.NewPassword); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Password changed. Existing data remains readable; no re-encryption was needed.")
	return nil
}

// Run executes the vault disable command.
func (c *VaultDisableCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: disabling the vault re-persists all data as plaintext; use --force to confirm\n")
		return docqa.Errorf(docqa.EINVALID, "use --force to confirm disabling encryption")
	}

	count, err := deps.Vault.Disable(deps.Ctx, c.VaultPassword, deps.Recryptor)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Vault disabled. %d rows re-persisted as plaintext.\n", count)
	return nil
}

// Run executes the vault biometric command.
func (c *VaultBiometricCmd) Run(deps *Dependencies) error {
	if err := deps.Vault.ToggleBiometric(deps.Ctx, c.VaultPassword, c.Enable); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if c.Enable {
		fmt.Fprintln(deps.Stdout, "Biometric unlock enabled.")
	} else {
		fmt.Fprintln(deps.Stdout, "Biometric unlock disabled.")
	}
	return nil
}
