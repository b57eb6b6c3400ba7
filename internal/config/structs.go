package config

// Config is the complete derivans configuration surface: ambient fields
// (logging, metrics) plus the domain fields that parameterise a RunPlan
// (§6 "Configuration surface").
type Config struct {
	LogLevel    string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr" json:"metrics_addr"`

	PoolSize int `mapstructure:"poolsize" yaml:"poolsize" json:"poolsize"`
	Quality  int `mapstructure:"quality" yaml:"quality" json:"quality"`
	Maximal  int `mapstructure:"maximal" yaml:"maximal" json:"maximal"`

	Footer FooterConfig `mapstructure:"footer" yaml:"footer" json:"footer"`
	Pdf    PdfConfig    `mapstructure:"pdf" yaml:"pdf" json:"pdf"`

	Steps []StepConfig `mapstructure:"steps" yaml:"steps" json:"steps"`
}

// FooterConfig configures the footer band renderer (§4.2).
type FooterConfig struct {
	Template string `mapstructure:"template" yaml:"template" json:"template"`
}

// PdfConfig configures the PDF composer (§4.6).
type PdfConfig struct {
	Conformance string `mapstructure:"conformance" yaml:"conformance" json:"conformance"`
	FontSize    int    `mapstructure:"font_size" yaml:"font_size" json:"font_size"`
}

// StepConfig is the on-disk representation of one RunPlan step (§3
// DerivateStep), before it is resolved against the run's discovered
// input/output directories.
type StepConfig struct {
	Kind         string `mapstructure:"kind" yaml:"kind" json:"kind"`
	InputSubdir  string `mapstructure:"input_subdir" yaml:"input_subdir" json:"input_subdir"`
	OutputSubdir string `mapstructure:"output_subdir" yaml:"output_subdir" json:"output_subdir"`
	Quality      int    `mapstructure:"quality" yaml:"quality" json:"quality"`
	MaxDimension int    `mapstructure:"max_dimension" yaml:"max_dimension" json:"max_dimension"`
}
