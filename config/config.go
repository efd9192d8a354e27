package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the assembler configuration
type Config struct {
	// Output settings
	Output struct {
		DefaultName string `toml:"default_name"`
	} `toml:"output"`

	// Assembler settings
	Assembler struct {
		StrictByteRange bool `toml:"strict_byte_range"`
		Verbose         bool `toml:"verbose"`
	} `toml:"assembler"`

	// Warning settings. They are loaded and saved with the file; the
	// CLI prints every warning whatever their values.
	Warnings struct {
		FieldOverflow bool `toml:"field_overflow"`
		LowEmission   bool `toml:"low_emission"`
	} `toml:"warnings"`

	// Listing settings
	Listing struct {
		AddressWidth int `toml:"address_width"`
		BytesColumn  int `toml:"bytes_column"`
		SourceColumn int `toml:"source_column"`
	} `toml:"listing"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Output.DefaultName = "output.c8"

	cfg.Assembler.StrictByteRange = false
	cfg.Assembler.Verbose = false

	cfg.Warnings.FieldOverflow = true
	cfg.Warnings.LowEmission = true

	cfg.Listing.AddressWidth = 4
	cfg.Listing.BytesColumn = 6
	cfg.Listing.SourceColumn = 20

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\c8asm\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "c8asm")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/c8asm/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "c8asm")

	default:
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load reads configuration from the given path. A missing file is not
// an error: defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDefault reads configuration from the platform config path
func LoadDefault() (*Config, error) {
	return Load(GetConfigPath())
}

// Save writes the configuration to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	f, err := os.Create(path) // #nosec G304 -- path is the config location
	if err != nil {
		return fmt.Errorf("creating config file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
