package config

import "fmt"

const (
	defaultLogLevel = "info"
	defaultPoolSize = 2
	defaultQuality  = 85
	defaultMaximal  = 0 // disabled

	defaultFooterTemplate = "{{title}} / {{person}} ({{year_published}})"
	defaultFontSize       = 10
)

// validConformanceLevels are the PDF/A conformance tags accepted by the
// composer (§4.6 "optional PDF/A tag such as PDF_A_1B").
var validConformanceLevels = map[string]bool{
	"":         true, // disabled
	"PDF_A_1B": true,
	"PDF_A_2B": true,
	"PDF_A_3B": true,
}

var validStepKinds = map[string]bool{
	"image_copy":            true,
	"image_scale":           true,
	"image_footer":          true,
	"image_footer_granular": true,
	"pdf":                   true,
	"enrich":                true,
}

// DefaultConfig returns a Config with every field set to its default
// value, mirroring the teacher's DefaultConfig/setDefaults split.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    defaultLogLevel,
		MetricsAddr: "",
		PoolSize:    defaultPoolSize,
		Quality:     defaultQuality,
		Maximal:     defaultMaximal,
		Footer: FooterConfig{
			Template: defaultFooterTemplate,
		},
		Pdf: PdfConfig{
			Conformance: "",
			FontSize:    defaultFontSize,
		},
		Steps: []StepConfig{
			{Kind: "image_copy", InputSubdir: "MAX", OutputSubdir: "COPY"},
			{Kind: "image_scale", InputSubdir: "COPY", OutputSubdir: "DEFAULT", MaxDimension: 2000},
			{Kind: "image_footer", InputSubdir: "DEFAULT", OutputSubdir: "FOOTER"},
			{Kind: "pdf", InputSubdir: "FOOTER", OutputSubdir: "PDF"},
			{Kind: "enrich", InputSubdir: "PDF", OutputSubdir: "PDF"},
		},
	}
}

// Validate checks the configuration for internal consistency, returning
// the first violation found.
func (c *Config) Validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("config: quality must be in [1,100], got %d", c.Quality)
	}
	if c.Maximal < 0 {
		return fmt.Errorf("config: maximal must be >= 0, got %d", c.Maximal)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("config: poolsize must be >= 0, got %d", c.PoolSize)
	}
	if !validConformanceLevels[c.Pdf.Conformance] {
		return fmt.Errorf("config: unsupported pdf.conformance %q", c.Pdf.Conformance)
	}
	if c.Pdf.FontSize <= 0 {
		return fmt.Errorf("config: pdf.font_size must be > 0, got %d", c.Pdf.FontSize)
	}
	if c.Footer.Template == "" {
		return fmt.Errorf("config: footer.template must not be empty")
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("config: steps must not be empty")
	}
	for i, s := range c.Steps {
		if !validStepKinds[s.Kind] {
			return fmt.Errorf("config: step %d has unknown kind %q", i, s.Kind)
		}
		if s.InputSubdir == "" || s.OutputSubdir == "" {
			return fmt.Errorf("config: step %d (%s) missing input/output subdir", i, s.Kind)
		}
	}
	return nil
}
