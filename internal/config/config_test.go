package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Router.Threshold != 0.6 {
		t.Errorf("expected default threshold 0.6, got %v", cfg.Router.Threshold)
	}

	if cfg.Router.Epsilon != 0.05 {
		t.Errorf("expected default epsilon 0.05, got %v", cfg.Router.Epsilon)
	}

	if cfg.Router.Default != "analysis" {
		t.Errorf("expected default category 'analysis', got %q", cfg.Router.Default)
	}

	if !cfg.Router.EnableComposite {
		t.Error("expected composite dispatch enabled by default")
	}

	if cfg.Context.WindowCapacity != 10 {
		t.Errorf("expected window capacity 10, got %d", cfg.Context.WindowCapacity)
	}

	if cfg.Context.DispatchTimeout != 30*time.Second {
		t.Errorf("expected dispatch timeout 30s, got %v", cfg.Context.DispatchTimeout)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("expected listen addr :8080, got %q", cfg.Server.ListenAddr)
	}

	if !cfg.State.Enabled {
		t.Error("expected state persistence enabled by default")
	}

	if cfg.Anthropic.MaxTokens != 1024 {
		t.Errorf("expected max tokens 1024, got %d", cfg.Anthropic.MaxTokens)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
anthropic:
  api_key: test-key
  model: claude-sonnet-4-20250514
router:
  threshold: 0.7
  extra_keywords:
    market: [degen, moonshot]
context:
  window_capacity: 5
  dispatch_timeout: 10s
server:
  listen_addr: ":9090"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("api_key = %q, want test-key", cfg.Anthropic.APIKey)
	}
	if cfg.Router.Threshold != 0.7 {
		t.Errorf("threshold = %v, want 0.7", cfg.Router.Threshold)
	}
	if cfg.Context.WindowCapacity != 5 {
		t.Errorf("window_capacity = %d, want 5", cfg.Context.WindowCapacity)
	}
	if cfg.Context.DispatchTimeout != 10*time.Second {
		t.Errorf("dispatch_timeout = %v, want 10s", cfg.Context.DispatchTimeout)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, want :9090", cfg.Server.ListenAddr)
	}

	kw := cfg.Router.ExtraKeywords["market"]
	if len(kw) != 2 || kw[0] != "degen" {
		t.Errorf("extra_keywords[market] = %v", kw)
	}

	// Unset fields keep their defaults.
	if cfg.Router.Epsilon != 0.05 {
		t.Errorf("epsilon = %v, want default 0.05", cfg.Router.Epsilon)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestExpandEnvInAPIKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_TOKENSAGE_KEY", "expanded-key")
	content := "anthropic:\n  api_key: ${TEST_TOKENSAGE_KEY}\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "expanded-key" {
		t.Errorf("api_key = %q, want expanded-key", cfg.Anthropic.APIKey)
	}
}
