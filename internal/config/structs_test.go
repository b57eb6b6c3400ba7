package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepConfigFieldsRoundTrip(t *testing.T) {
	s := StepConfig{
		Kind:         "image_scale",
		InputSubdir:  "MAX",
		OutputSubdir: "DEFAULT",
		Quality:      90,
		MaxDimension: 2000,
	}
	assert.Equal(t, "image_scale", s.Kind)
	assert.Equal(t, 2000, s.MaxDimension)
}

func TestConfigNestedFields(t *testing.T) {
	c := Config{
		Footer: FooterConfig{Template: "{{title}}"},
		Pdf:    PdfConfig{Conformance: "PDF_A_1B", FontSize: 12},
	}
	assert.Equal(t, "{{title}}", c.Footer.Template)
	assert.Equal(t, "PDF_A_1B", c.Pdf.Conformance)
	assert.Equal(t, 12, c.Pdf.FontSize)
}
