package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".royal-terminal"
	DefaultConfigFile = "config.yaml"

	DefaultBackendURL = "https://royal-ai-backend.onrender.com/"

	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// Config represents the application configuration
type Config struct {
	BackendURL      string        `yaml:"backend_url"`
	Storage         StorageConfig `yaml:"storage"`
	PersistDebounce time.Duration `yaml:"persist_debounce"`
	ImagesDir       string        `yaml:"images_dir"`
	LogDir          string        `yaml:"log_dir"`

	// Models overrides the built-in model catalog when non-empty.
	Models []ModelConfig `yaml:"models,omitempty"`
}

// StorageConfig selects where conversations are kept between sessions
type StorageConfig struct {
	// Driver is either "badger" or "sqlite"
	Driver string `yaml:"driver"`
	// Path is a directory for badger and a database file for sqlite
	Path string `yaml:"path"`
}

// ModelConfig describes one selectable model
type ModelConfig struct {
	Label           string `yaml:"label"`
	BackendModel    string `yaml:"backend_model"`
	Provider        string `yaml:"provider,omitempty"`
	Vision          bool   `yaml:"vision,omitempty"`
	ImageGeneration bool   `yaml:"image_generation,omitempty"`
	Description     string `yaml:"description,omitempty"`
}

func DefaultConfig() *Config {
	baseDir := configDirOrTemp()
	return &Config{
		BackendURL: DefaultBackendURL,
		Storage: StorageConfig{
			Driver: DriverBadger,
			Path:   DefaultStoragePath(DriverBadger),
		},
		PersistDebounce: 250 * time.Millisecond,
		ImagesDir:       filepath.Join(baseDir, "images"),
		LogDir:          filepath.Join(baseDir, "logs"),
	}
}

// DefaultStoragePath returns where driver keeps its data by default: a
// directory for badger, a database file for sqlite.
func DefaultStoragePath(driver string) string {
	if driver == DriverSQLite {
		return filepath.Join(configDirOrTemp(), "royal.db")
	}
	return filepath.Join(configDirOrTemp(), "db")
}

// UseDriver switches the storage driver. A path still at the previous
// driver's default follows the switch.
func (c *Config) UseDriver(driver string) {
	if c.Storage.Path == DefaultStoragePath(c.Storage.Driver) {
		c.Storage.Path = DefaultStoragePath(driver)
	}
	c.Storage.Driver = driver
}

func configDirOrTemp() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), DefaultConfigDir)
	}
	return filepath.Join(homeDir, DefaultConfigDir)
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)
	return filepath.Join(configDir, DefaultConfigFile), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from path, creating a default file if it
// does not exist. A .env file in the working directory and ROYAL_* environment
// variables override values from the file.
func LoadFrom(configPath string) (*Config, error) {
	// Missing .env is normal
	_ = godotenv.Load()

	cfg, err := readOrCreate(configPath)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func readOrCreate(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg, configPath); err != nil {
			// The app still works with defaults if the file can't be written
			return cfg, nil
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so a partial file only overrides what it sets
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ROYAL_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("ROYAL_STORAGE_DRIVER"); v != "" {
		cfg.UseDriver(v)
	}
	if v := os.Getenv("ROYAL_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
}

// Save saves the configuration to configPath
func Save(cfg *Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url must not be empty")
	}

	switch c.Storage.Driver {
	case DriverBadger, DriverSQLite:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverBadger, DriverSQLite, c.Storage.Driver)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must not be empty")
	}

	if c.PersistDebounce < 0 {
		return fmt.Errorf("persist_debounce must not be negative, got %s", c.PersistDebounce)
	}

	for i, m := range c.Models {
		if m.Label == "" || m.BackendModel == "" {
			return fmt.Errorf("models[%d]: label and backend_model are required", i)
		}
	}

	return nil
}
