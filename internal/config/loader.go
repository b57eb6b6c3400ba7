package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "derivans"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "DERIVANS"
)

// Loader handles loading configuration from files, environment variables,
// and defaults, mirroring the teacher's viper-backed Loader.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader bound to the global viper
// instance, so flag bindings set up by cobra keep working.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables, and
// defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	return l.load(true)
}

// LoadWithoutValidation is Load without the final Validate() call, used by
// `validate-config` to report validation errors itself.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.load(false)
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	return l.loadFrom(configFile, true)
}

// LoadWithFileWithoutValidation is LoadWithFile without validation.
func (l *Loader) LoadWithFileWithoutValidation(configFile string) (*Config, error) {
	if configFile == "" {
		return l.LoadWithoutValidation()
	}
	return l.loadFrom(configFile, false)
}

func (l *Loader) load(validate bool) (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshal(validate)
}

func (l *Loader) loadFrom(configFile string, validate bool) (*Config, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshal(validate)
}

func (l *Loader) unmarshal(validate bool) (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return &cfg, nil
}

// Get returns a value from the configuration.
func (l *Loader) Get(key string) interface{} { return l.v.Get(key) }

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string { return l.v.GetString(key) }

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value interface{}) { l.v.Set(key, value) }

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string { return l.v.ConfigFileUsed() }

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper { return l.v }

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/derivans")
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "derivans"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "derivans"))
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("metrics_addr", d.MetricsAddr)
	l.v.SetDefault("poolsize", d.PoolSize)
	l.v.SetDefault("quality", d.Quality)
	l.v.SetDefault("maximal", d.Maximal)
	l.v.SetDefault("footer.template", d.Footer.Template)
	l.v.SetDefault("pdf.conformance", d.Pdf.Conformance)
	l.v.SetDefault("pdf.font_size", d.Pdf.FontSize)
	l.v.SetDefault("steps", stepsAsMaps(d.Steps))
}

func stepsAsMaps(steps []StepConfig) []map[string]interface{} {
	out := make([]map[string]interface{}, len(steps))
	for i, s := range steps {
		out[i] = map[string]interface{}{
			"kind":          s.Kind,
			"input_subdir":  s.InputSubdir,
			"output_subdir": s.OutputSubdir,
			"quality":       s.Quality,
			"max_dimension": s.MaxDimension,
		}
	}
	return out
}

// GetResolvedConfig returns the current resolved configuration for debugging.
func (l *Loader) GetResolvedConfig() map[string]interface{} {
	return l.v.AllSettings()
}

// WriteConfigToFile writes the current configuration to a file.
func (l *Loader) WriteConfigToFile(filename string) error {
	return l.v.WriteConfigAs(filename)
}

// GenerateDefaultConfigFile generates a default configuration file at filename
// (or "derivans.yaml" if empty).
func GenerateDefaultConfigFile(filename string) error {
	loader := NewLoader()
	loader.setDefaults()
	if filename == "" {
		filename = "derivans.yaml"
	}
	return loader.WriteConfigToFile(filename)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	paths = append(paths, "/etc/derivans")
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "derivans"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "derivans"))
	}
	return paths
}
