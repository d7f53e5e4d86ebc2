/*
Package config manages the TOML config for nearword.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/bastiangx/nearword/internal/utils"
	"github.com/bastiangx/nearword/pkg/stringset"
	"github.com/charmbracelet/log"
)

// AppDir is the directory name used under the XDG base directories.
const AppDir = "nearword"

// Config holds the entire config structure
type Config struct {
	Index  IndexConfig  `toml:"index"`
	Model  ModelConfig  `toml:"model"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// IndexConfig controls how the string set compares keys.
type IndexConfig struct {
	Normalize  string  `toml:"normalize"`
	SplitWidth float64 `toml:"split_width"`
}

// ModelConfig points at the saved model.
type ModelConfig struct {
	Path             string `toml:"path"`
	CompressionLevel int    `toml:"compression_level"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int    `toml:"max_limit"`
	DefaultLimit int    `toml:"default_limit"`
	MaxQuery     int    `toml:"max_query"`
	CacheSize    int    `toml:"cache_size"`
	MetricsAddr  string `toml:"metrics_addr"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	FilterInput  bool `toml:"filter_input"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. $XDG_CONFIG_HOME/nearword (or the platform equivalent)
// 2. Current executable dir
func GetConfigDir() (string, error) {
	primaryPath := filepath.Join(xdg.ConfigHome, AppDir)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/nearword/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Normalize:  "lower",
			SplitWidth: 12,
		},
		Model: ModelConfig{
			Path:             "model.lss",
			CompressionLevel: 3,
		},
		Server: ServerConfig{
			MaxLimit:     64,
			DefaultLimit: 10,
			MaxQuery:     60,
			CacheSize:    1024,
			MetricsAddr:  "",
		},
		CLI: CliConfig{
			DefaultLimit: 10,
			FilterInput:  false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps every value that still parses and defaults the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "model"); ok {
		extractModelConfig(section, &config.Model)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractString(data, "normalize"); ok {
		index.Normalize = val
	}
	if val, ok := utils.ExtractFloat(data, "split_width"); ok {
		index.SplitWidth = val
	}
}

func extractModelConfig(data map[string]any, model *ModelConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		model.Path = val
	}
	if val, ok := utils.ExtractInt64(data, "compression_level"); ok {
		model.CompressionLevel = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		server.MaxQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
	if val, ok := utils.ExtractString(data, "metrics_addr"); ok {
		server.MetricsAddr = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractBool(data, "filter_input"); ok {
		cli.FilterInput = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// IndexOptions turns the [index] section into string set options.
func (c *Config) IndexOptions() ([]stringset.Option, error) {
	normalize, ok := stringset.NormalizerByName(c.Index.Normalize)
	if !ok {
		return nil, fmt.Errorf("unknown normalizer %q (want none, lower or fold)", c.Index.Normalize)
	}
	return []stringset.Option{
		stringset.WithNormalizer(normalize),
		stringset.WithSplitWidth(c.Index.SplitWidth),
	}, nil
}
