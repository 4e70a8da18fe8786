package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "TABLE_PREFIX", "DEFAULT_MODEL", "CLASSIFY_MODEL",
		"CLASSIFY_MAX_TOKENS", "CHAT_MAX_TOKENS", "TEMPERATURE",
		"SANDBOX_ALLOWED_COMMANDS", "SANDBOX_COMMAND_TIMEOUT", "SANDBOX_AUTO_RUN",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "5000" {
		t.Errorf("Port = %s, want 5000", cfg.Port)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %s, want dev_", cfg.TablePrefix)
	}
	if cfg.ClassifyModel != cfg.DefaultModel {
		t.Errorf("ClassifyModel = %s, want DefaultModel %s", cfg.ClassifyModel, cfg.DefaultModel)
	}
	if cfg.ClassifyMaxTokens != 200 || cfg.ChatMaxTokens != 8000 {
		t.Errorf("max tokens = %d/%d, want 200/8000", cfg.ClassifyMaxTokens, cfg.ChatMaxTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if diff := cmp.Diff([]string{"npm install"}, cfg.SandboxAllowedCmds); diff != "" {
		t.Errorf("SandboxAllowedCmds mismatch (-want +got):\n%s", diff)
	}
	if cfg.SandboxCommandTimeout != 2*time.Minute {
		t.Errorf("SandboxCommandTimeout = %v, want 2m", cfg.SandboxCommandTimeout)
	}
	if cfg.SandboxAutoRun {
		t.Error("SandboxAutoRun should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("CHAT_MAX_TOKENS", "4096")
	t.Setenv("TEMPERATURE", "0")
	t.Setenv("SANDBOX_ALLOWED_COMMANDS", "npm install, npm run build ,,")
	t.Setenv("SANDBOX_COMMAND_TIMEOUT", "30s")
	t.Setenv("SANDBOX_AUTO_RUN", "true")

	cfg := Load()

	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %s, want prod_", cfg.TablePrefix)
	}
	if cfg.ChatMaxTokens != 4096 {
		t.Errorf("ChatMaxTokens = %d, want 4096", cfg.ChatMaxTokens)
	}
	if cfg.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", cfg.Temperature)
	}
	if diff := cmp.Diff([]string{"npm install", "npm run build"}, cfg.SandboxAllowedCmds); diff != "" {
		t.Errorf("SandboxAllowedCmds mismatch (-want +got):\n%s", diff)
	}
	if cfg.SandboxCommandTimeout != 30*time.Second {
		t.Errorf("SandboxCommandTimeout = %v, want 30s", cfg.SandboxCommandTimeout)
	}
	if !cfg.SandboxAutoRun {
		t.Error("SandboxAutoRun should be true")
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("CLASSIFY_MAX_TOKENS", "lots")
	t.Setenv("TEMPERATURE", "-1")
	t.Setenv("SANDBOX_COMMAND_TIMEOUT", "soon")

	cfg := Load()

	if cfg.ClassifyMaxTokens != 200 {
		t.Errorf("ClassifyMaxTokens = %d, want 200", cfg.ClassifyMaxTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.SandboxCommandTimeout != 2*time.Minute {
		t.Errorf("SandboxCommandTimeout = %v, want 2m", cfg.SandboxCommandTimeout)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"codeforge-2024-01-01T00-00-00.log",
		"codeforge-2024-01-02T00-00-00.log",
		"codeforge-2024-01-03T00-00-00.log",
		"other.log",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanupOldLogs(dir, 2); err != nil {
		t.Fatalf("cleanupOldLogs() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Error("oldest log file was not removed")
	}
	for _, name := range names[1:] {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should remain: %v", name, err)
		}
	}
}
