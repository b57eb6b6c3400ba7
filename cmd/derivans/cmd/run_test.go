package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/derivans/internal/testutil"
)

const testConfigYAML = `
quality: 85
poolsize: 1
footer:
  template: "{{title}}"
pdf:
  font_size: 10
steps:
  - kind: image_copy
    input_subdir: MAX
    output_subdir: COPY
  - kind: pdf
    input_subdir: COPY
    output_subdir: COPY
`

func runDerivans(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := GetRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunCommandProducesPDF(t *testing.T) {
	root := t.TempDir()
	testutil.GenerateDigitalVolume(t, filepath.Join(root, "MAX"), 2)

	cfgPath := filepath.Join(root, "derivans.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfigYAML), 0o644))

	outDir := t.TempDir()
	output, err := runDerivans(t, []string{"run", root, "--config", cfgPath, "--output", outDir})
	require.NoError(t, err)
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "2 pages")
}

func TestRunCommandMissingInputErrors(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "derivans.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfigYAML), 0o644))

	_, err := runDerivans(t, []string{"run", filepath.Join(root, "missing"), "--config", cfgPath})
	assert.Error(t, err)
}
