// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for botstudio.
type Config struct {
	APIBaseURL   string `mapstructure:"api_base_url" yaml:"api_base_url"`
	SessionToken string `mapstructure:"session_token" yaml:"session_token"`
	Tone         string `mapstructure:"tone" yaml:"tone"`
	UploadMaxMB  int    `mapstructure:"upload_max_mb" yaml:"upload_max_mb"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	LogFile      string `mapstructure:"log_file" yaml:"log_file"`
}

// Load loads configuration with full precedence:
// ENV vars > project config > XDG global config > defaults
//
// A .env file in the working directory is loaded first so deployments that
// keep BOTSTUDIO_SESSION_TOKEN out of the shell environment still work.
func Load() (*Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("botstudio")

	// Set defaults (session_token has no default - the backend requires one)
	v.SetDefault("api_base_url", "https://api.quantumweb.mx")
	v.SetDefault("tone", "amigable")
	v.SetDefault("upload_max_mb", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	// Setup ENV binding with BOTSTUDIO_ prefix
	v.SetEnvPrefix("BOTSTUDIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better parsing
	// Note: BindEnv errors are very rare (only invalid key names), but we check them anyway
	if err := v.BindEnv("api_base_url", "BOTSTUDIO_API_BASE_URL"); err != nil {
		return nil, fmt.Errorf("binding api_base_url env: %w", err)
	}
	if err := v.BindEnv("session_token", "BOTSTUDIO_SESSION_TOKEN"); err != nil {
		return nil, fmt.Errorf("binding session_token env: %w", err)
	}
	if err := v.BindEnv("tone", "BOTSTUDIO_TONE"); err != nil {
		return nil, fmt.Errorf("binding tone env: %w", err)
	}
	if err := v.BindEnv("upload_max_mb", "BOTSTUDIO_UPLOAD_MAX_MB"); err != nil {
		return nil, fmt.Errorf("binding upload_max_mb env: %w", err)
	}
	if err := v.BindEnv("log_level", "BOTSTUDIO_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("binding log_level env: %w", err)
	}
	if err := v.BindEnv("log_file", "BOTSTUDIO_LOG_FILE"); err != nil {
		return nil, fmt.Errorf("binding log_file env: %w", err)
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		// Need to set config file explicitly for merge
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/botstudio/botstudio.yml or $XDG_CONFIG_HOME/botstudio/botstudio.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "botstudio", "botstudio.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "botstudio", "botstudio.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./botstudio.yml in the current working directory.
func ProjectPath() string {
	return "botstudio.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	path := ProjectPath()

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
