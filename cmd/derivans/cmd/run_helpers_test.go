package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/derivans/internal/config"
	"github.com/MeKo-Tech/derivans/internal/model"
	"github.com/MeKo-Tech/derivans/internal/pipeline"
	"github.com/MeKo-Tech/derivans/internal/testutil"
)

func TestIdentifierForPrefersKnownIdentifier(t *testing.T) {
	d := model.NewDescriptiveData()
	d.Identifier = "vd18-12345"
	assert.Equal(t, "vd18-12345", identifierFor(d, "fallback"))
}

func TestIdentifierForFallsBackWhenUnknown(t *testing.T) {
	d := model.NewDescriptiveData()
	assert.Equal(t, "fallback", identifierFor(d, "fallback"))
}

func TestPagesFromImageDirOrdersLexically(t *testing.T) {
	dir := t.TempDir()
	testutil.GenerateDigitalVolume(t, dir, 3)

	pages, err := pagesFromImageDir(dir)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "0001.jpg", pages[0].FilePointer)
	assert.Equal(t, 1, pages[0].Order)
	assert.Equal(t, filepath.Join(dir, "0001.jpg"), pages[0].ImagePath)
}

func TestPlanFromConfigResolvesStepKinds(t *testing.T) {
	cfg := config.DefaultConfig()
	plan, err := planFromConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, len(cfg.Steps), plan.Len())
	assert.Equal(t, pipeline.StepImageCopy, plan.Steps()[0].Kind)
}

func TestPlanFromConfigRejectsUnknownKind(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = []config.StepConfig{{Kind: "bogus", InputSubdir: "A", OutputSubdir: "B"}}
	_, err := planFromConfig(cfg)
	assert.Error(t, err)
}
