package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tokensage/tokensage/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View or initialize tokensage configuration.

Configuration is stored at ~/.config/tokensage/config.yaml
Project-specific overrides can be placed in .tokensage.yaml`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.model: %s\n", orDefault(cfg.Anthropic.Model, "(sdk default)"))
	fmt.Printf("anthropic.max_tokens: %d\n", cfg.Anthropic.MaxTokens)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("router.threshold: %.2f\n", cfg.Router.Threshold)
	fmt.Printf("router.epsilon: %.2f\n", cfg.Router.Epsilon)
	fmt.Printf("router.default: %s\n", cfg.Router.Default)
	fmt.Printf("router.enable_composite: %t\n", cfg.Router.EnableComposite)
	fmt.Printf("context.window_capacity: %d\n", cfg.Context.WindowCapacity)
	fmt.Printf("context.dispatch_timeout: %s\n", cfg.Context.DispatchTimeout)
	fmt.Printf("server.listen_addr: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("state.enabled: %t\n", cfg.State.Enabled)
	fmt.Printf("state.db_path: %s\n", orDefault(cfg.State.DBPath, "(default)"))
	fmt.Printf("dexscreener.base_url: %s\n", orDefault(cfg.Dexscreener.BaseURL, "(default)"))

	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("\nproject overrides: %s\n", project)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.GetUserConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	cfg := config.Default()
	body, err := yaml.Marshal(map[string]any{
		"anthropic": map[string]any{
			"api_key":    "",
			"model":      "",
			"max_tokens": cfg.Anthropic.MaxTokens,
		},
		"router": map[string]any{
			"threshold":        cfg.Router.Threshold,
			"epsilon":          cfg.Router.Epsilon,
			"default":          cfg.Router.Default,
			"enable_composite": cfg.Router.EnableComposite,
		},
		"context": map[string]any{
			"window_capacity":  cfg.Context.WindowCapacity,
			"dispatch_timeout": cfg.Context.DispatchTimeout.String(),
		},
		"server": map[string]any{
			"listen_addr": cfg.Server.ListenAddr,
		},
		"state": map[string]any{
			"enabled": cfg.State.Enabled,
			"db_path": "",
		},
	})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	header := "# tokensage configuration\n" +
		"# API keys may reference environment variables: api_key: ${ANTHROPIC_API_KEY}\n" +
		"# Extra routing keywords: router.extra_keywords.<category>: [term, ...]\n"

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(header), body...), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
