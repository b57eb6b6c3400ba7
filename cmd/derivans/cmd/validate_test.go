package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigCommandAcceptsValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "derivans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o644))

	output, err := runDerivans(t, []string{"validate-config", "--config", path})
	require.NoError(t, err)
	assert.Contains(t, output, "configuration valid")
}

func TestValidateConfigCommandRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "derivans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality: 0\n"), 0o644))

	_, err := runDerivans(t, []string{"validate-config", "--config", path})
	assert.Error(t, err)
}
