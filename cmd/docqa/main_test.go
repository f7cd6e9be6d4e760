package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	main "github.com/tverano/docqa/cmd/docqa"
)

// newTestMain returns a Main wired against a temp data directory.
func newTestMain(t *testing.T) *main.Main {
	t.Helper()
	dir := t.TempDir()
	m := main.NewMain()
	m.HomeDir = dir
	m.DBPath = filepath.Join(dir, "docqa.db")
	return m
}

func TestMain_Run(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no command shows help and errors", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(ctx, nil, stdout, stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("docs against an empty database", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(ctx, []string{"docs"}, stdout, stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No documents")
	})

	t.Run("vault setup then status", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(ctx, []string{"vault", "setup", "correct horse"}, stdout, stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Vault enabled")

		// A fresh invocation starts locked.
		stdout.Reset()
		err = m.Run(ctx, []string{"vault", "status"}, stdout, stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "locked")

		// The global password flag unlocks for the invocation.
		stdout.Reset()
		err = m.Run(ctx, []string{"--password", "correct horse", "vault", "status"}, stdout, stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "unlocked")
	})

	t.Run("wrong global password is rejected", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(ctx, []string{"vault", "setup", "correct horse"}, stdout, stderr)
		require.NoError(t, err)

		err = m.Run(ctx, []string{"--password", "wrong", "docs"}, stdout, stderr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "incorrect password")
	})
}
