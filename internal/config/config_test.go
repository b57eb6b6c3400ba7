package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, "info", c.LogLevel)
	assert.NotEmpty(t, c.Steps)
}

func TestValidateRejectsBadQuality(t *testing.T) {
	c := DefaultConfig()
	c.Quality = 0
	assert.Error(t, c.Validate())
	c.Quality = 101
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownConformance(t *testing.T) {
	c := DefaultConfig()
	c.Pdf.Conformance = "PDF_X"
	assert.Error(t, c.Validate())
}

func TestValidateRejectsEmptySteps(t *testing.T) {
	c := DefaultConfig()
	c.Steps = nil
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownStepKind(t *testing.T) {
	c := DefaultConfig()
	c.Steps = []StepConfig{{Kind: "bogus", InputSubdir: "A", OutputSubdir: "B"}}
	assert.Error(t, c.Validate())
}

func TestValidateRejectsMissingStepSubdir(t *testing.T) {
	c := DefaultConfig()
	c.Steps = []StepConfig{{Kind: "pdf", InputSubdir: "", OutputSubdir: "B"}}
	assert.Error(t, c.Validate())
}
