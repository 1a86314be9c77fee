// Package config provides configuration loading and structs for bunrui.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool              `yaml:"debug"`
	Server     ServerConfig      `yaml:"server"`
	Model      ModelConfig       `yaml:"model"`
	Training   TrainingConfig    `yaml:"training"`
	Categories map[string]string `yaml:"categories"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AllowedOrigins lists origins allowed to call the API from a browser. Empty allows any.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ModelConfig locates the persisted classifier and vectorizer artifacts.
type ModelConfig struct {
	Dir            string `yaml:"dir"`
	ClassifierFile string `yaml:"classifier_file"`
	VectorizerFile string `yaml:"vectorizer_file"`
}

// ClassifierPath returns the full path of the classifier artifact.
func (m *ModelConfig) ClassifierPath() string {
	return filepath.Join(m.Dir, m.ClassifierFile)
}

// VectorizerPath returns the full path of the vectorizer artifact.
func (m *ModelConfig) VectorizerPath() string {
	return filepath.Join(m.Dir, m.VectorizerFile)
}

// TrainingConfig holds dataset location and model hyperparameters.
type TrainingConfig struct {
	DataDir     string  `yaml:"data_dir"`
	ArchiveName string  `yaml:"archive_name"`
	CSVName     string  `yaml:"csv_name"`
	// MaxFeatures caps the vocabulary size; negative means no bound.
	MaxFeatures int     `yaml:"max_features"`
	TestSize    float64 `yaml:"test_size"`
	// Seed and Alpha are pointers so an explicit 0 is kept rather than defaulted.
	Seed  *int64   `yaml:"seed"`
	Alpha *float64 `yaml:"alpha"`
	// HistoryPath is the SQLite file recording training runs. "none" disables history.
	HistoryPath string `yaml:"history_path"`
}

// RandomSeed returns the split seed, DefaultSeed when unset.
func (t *TrainingConfig) RandomSeed() int64 {
	if t.Seed == nil {
		return DefaultSeed
	}
	return *t.Seed
}

// Smoothing returns the Naive Bayes alpha, DefaultAlpha when unset.
func (t *TrainingConfig) Smoothing() float64 {
	if t.Alpha == nil {
		return DefaultAlpha
	}
	return *t.Alpha
}

// HistoryEnabled reports whether training runs should be recorded.
func (t *TrainingConfig) HistoryEnabled() bool {
	return t.HistoryPath != "" && t.HistoryPath != HistoryDisabled
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Model.Dir = expandPath(cfg.Model.Dir, configDir)
	cfg.Training.DataDir = expandPath(cfg.Training.DataDir, configDir)
	if cfg.Training.HistoryEnabled() {
		cfg.Training.HistoryPath = expandPath(cfg.Training.HistoryPath, configDir)
	}

	return &cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
// The returned string is the path actually loaded, empty when defaults were used.
func LoadOrDefault(path string) (*Config, string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), "", nil
		}
		return nil, "", fmt.Errorf("failed to stat config: %w", err)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Default returns a config with every field set to its default. Relative paths
// are left relative to the working directory.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func validate(cfg *Config) error {
	if ts := cfg.Training.TestSize; ts < 0 || ts >= 1 {
		return fmt.Errorf("invalid config: training.test_size must be in (0, 1), got %v", ts)
	}
	if a := cfg.Training.Alpha; a != nil && *a < 0 {
		return fmt.Errorf("invalid config: training.alpha must not be negative, got %v", *a)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are left untouched so they resolve against the working directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
