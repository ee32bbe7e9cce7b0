package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestFixturesCommandEmbedded(t *testing.T) {
	out, err := run(t, "fixtures")
	require.NoError(t, err)
	assert.Contains(t, out, "built-in sample data: ok")
	assert.Contains(t, out, "concepts: 12")
	assert.Contains(t, out, "notes:    19")
}

func TestFixturesCommandInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notes:\n  - key: n\n    folder: nope\n"), 0o644))

	_, err := run(t, "fixtures", path)
	assert.ErrorContains(t, err, "invalid fixtures")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "minddump-server")
}
