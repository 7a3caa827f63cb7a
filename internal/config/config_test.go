package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parthubhe/DeepFakeStudio/internal/config"
)

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	t.Setenv("DFSTUDIO_API_TOKEN", "secret-token")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "dfstudio", "state")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected backend base url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.APIToken != "secret-token" {
		t.Fatalf("expected token from env, got %q", cfg.Backend.APIToken)
	}
	if cfg.Workflow.StatusPollInterval != 1 {
		t.Fatalf("unexpected poll interval: %d", cfg.Workflow.StatusPollInterval)
	}
	if cfg.Workflow.BannerSeconds != 3 {
		t.Fatalf("unexpected banner seconds: %d", cfg.Workflow.BannerSeconds)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dfstudio.toml")
	content := `
[backend]
base_url = "https://pipeline.example.com/"
api_token = " padded "
request_timeout = 5

[workflow]
status_poll_interval = 2

[resolutions.Video3]
width = 1920
height = 1080
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Backend.BaseURL != "https://pipeline.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.APIToken != "padded" {
		t.Fatalf("expected token trimmed, got %q", cfg.Backend.APIToken)
	}
	if cfg.Workflow.StatusPollInterval != 2 {
		t.Fatalf("unexpected poll interval: %d", cfg.Workflow.StatusPollInterval)
	}

	res, ok := cfg.ResolutionFor("Video3")
	if !ok || res.Width != 1920 || res.Height != 1080 {
		t.Fatalf("unexpected Video3 resolution: %+v ok=%v", res, ok)
	}
	// The default entry is re-added even when the file defines its own table.
	res, ok = cfg.ResolutionFor("Video1")
	if !ok || res.Width != 832 || res.Height != 480 {
		t.Fatalf("unexpected fallback resolution: %+v ok=%v", res, ok)
	}
}

func TestResolutionForKnownDeployments(t *testing.T) {
	cfg := config.Default()
	res, ok := cfg.ResolutionFor("Video2")
	if !ok || res.Width != 480 || res.Height != 832 {
		t.Fatalf("unexpected Video2 resolution: %+v ok=%v", res, ok)
	}
	res, ok = cfg.ResolutionFor("anything-else")
	if !ok || res.Width != 832 || res.Height != 480 {
		t.Fatalf("unexpected default resolution: %+v ok=%v", res, ok)
	}
}

func TestValidateRejectsBadBackendURL(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.BaseURL = "not-a-url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for relative base url")
	}

	cfg = config.Default()
	cfg.Backend.BaseURL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unsupported scheme")
	}
}

func TestValidateRequiresDefaultResolution(t *testing.T) {
	cfg := config.Default()
	delete(cfg.Resolutions, "default")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing default resolution")
	}
}
