// Package config handles configuration loading and management.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for tokensage.
type Config struct {
	Anthropic   AnthropicConfig   `mapstructure:"anthropic"`
	Router      RouterConfig      `mapstructure:"router"`
	Context     ContextConfig     `mapstructure:"context"`
	Server      ServerConfig      `mapstructure:"server"`
	State       StateConfig       `mapstructure:"state"`
	Dexscreener DexscreenerConfig `mapstructure:"dexscreener"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	MaxTokens     int    `mapstructure:"max_tokens"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// RouterConfig holds routing policy settings.
type RouterConfig struct {
	// Threshold is the minimum confidence for a category to win a route.
	Threshold float64 `mapstructure:"threshold"`
	// Epsilon is the score distance within which categories count as tied.
	Epsilon float64 `mapstructure:"epsilon"`
	// Default is the category used when nothing clears the threshold.
	Default string `mapstructure:"default"`
	// EnableComposite toggles market+analysis composite dispatch.
	EnableComposite bool `mapstructure:"enable_composite"`
	// ExtraKeywords adds keywords per category on top of the built-ins.
	ExtraKeywords map[string][]string `mapstructure:"extra_keywords"`
}

// ContextConfig holds context window settings.
type ContextConfig struct {
	// WindowCapacity is the number of interactions the window keeps.
	WindowCapacity int `mapstructure:"window_capacity"`
	// DispatchTimeout bounds a single agent dispatch.
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// StateConfig holds persistence settings.
type StateConfig struct {
	// Enabled toggles the SQLite interaction log.
	Enabled bool `mapstructure:"enabled"`
	// DBPath overrides the default database location.
	DBPath string `mapstructure:"db_path"`
}

// DexscreenerConfig holds market data API settings.
type DexscreenerConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, TOKENSAGE_*)
// 2. Project config (.tokensage.yaml in current directory or parent)
// 3. User config (~/.config/tokensage/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("TOKENSAGE")
	v.AutomaticEnv()

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("server.listen_addr", "TOKENSAGE_LISTEN_ADDR")
	v.BindEnv("state.db_path", "TOKENSAGE_DB_PATH")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("router.threshold", cfg.Router.Threshold)
	v.Set("router.epsilon", cfg.Router.Epsilon)
	v.Set("router.default", cfg.Router.Default)
	v.Set("router.enable_composite", cfg.Router.EnableComposite)
	v.Set("context.window_capacity", cfg.Context.WindowCapacity)
	v.Set("context.dispatch_timeout", cfg.Context.DispatchTimeout.String())
	v.Set("server.listen_addr", cfg.Server.ListenAddr)
	v.Set("state.enabled", cfg.State.Enabled)
	v.Set("state.db_path", cfg.State.DBPath)
	v.Set("dexscreener.base_url", cfg.Dexscreener.BaseURL)

	return v.WriteConfig()
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.use_aws_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("router.threshold", 0.6)
	v.SetDefault("router.epsilon", 0.05)
	v.SetDefault("router.default", "analysis")
	v.SetDefault("router.enable_composite", true)

	v.SetDefault("context.window_capacity", 10)
	v.SetDefault("context.dispatch_timeout", "30s")

	v.SetDefault("server.listen_addr", ":8080")

	v.SetDefault("state.enabled", true)
	v.SetDefault("state.db_path", "")

	v.SetDefault("dexscreener.base_url", "")
}

// getUserConfigDir returns the XDG config directory for tokensage.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tokensage")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "tokensage")
	}
	return filepath.Join(home, ".config", "tokensage")
}

// findProjectConfig searches for .tokensage.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".tokensage.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a config value.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}
