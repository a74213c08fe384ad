package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	if cfg.TagPolicy != TagPolicyKeep {
		t.Errorf("TagPolicy = %q, want %q", cfg.TagPolicy, TagPolicyKeep)
	}

	if cfg.ToolName != "vals" {
		t.Errorf("ToolName = %q, want vals", cfg.ToolName)
	}

	if got, want := cfg.LatestReleaseURL(), "https://github.com/helmfile/vals/releases/latest"; got != want {
		t.Errorf("LatestReleaseURL() = %q, want %q", got, want)
	}

	if got, want := cfg.ReleaseDownloadURL("v0.42.0"), "https://github.com/helmfile/vals/releases/download/v0.42.0"; got != want {
		t.Errorf("ReleaseDownloadURL() = %q, want %q", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		wantField string
	}{
		{
			name:      "invalid_tool",
			modify:    func(c *Config) { c.ToolName = "../vals" },
			wantField: "tool",
		},
		{
			name:      "repository_without_owner",
			modify:    func(c *Config) { c.Repository = "vals" },
			wantField: "repository",
		},
		{
			name:      "empty_default_version",
			modify:    func(c *Config) { c.DefaultVersion = "  " },
			wantField: "defaultVersion",
		},
		{
			name:      "ftp_server",
			modify:    func(c *Config) { c.ServerURL = "ftp://github.com" },
			wantField: "serverURL",
		},
		{
			name:      "zip_archive",
			modify:    func(c *Config) { c.ArchiveExt = "zip" },
			wantField: "archiveExt",
		},
		{
			name:      "zero_depth",
			modify:    func(c *Config) { c.MaxSearchDepth = 0 },
			wantField: "maxSearchDepth",
		},
		{
			name:      "unknown_tag_policy",
			modify:    func(c *Config) { c.TagPolicy = "strip" },
			wantField: "tagPolicy",
		},
		{
			name:      "negative_retries",
			modify:    func(c *Config) { c.HTTP.Retries = -1 },
			wantField: "http.retries",
		},
		{
			name:      "zero_timeout",
			modify:    func(c *Config) { c.HTTP.Timeout = 0 },
			wantField: "http.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error but got none")
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("GITHUB_SERVER_URL", "")

	t.Run("no_file", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg != Default() {
			t.Errorf("Load(\"\") = %+v, want defaults", cfg)
		}
	})

	t.Run("partial_override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setup-vals.yaml")
		content := "repository: my-org/vals\nhttp:\n  timeout: 30s\n  retries: 5\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Repository != "my-org/vals" {
			t.Errorf("Repository = %q, want my-org/vals", cfg.Repository)
		}
		if cfg.HTTP.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", cfg.HTTP.Timeout)
		}
		if cfg.HTTP.Retries != 5 {
			t.Errorf("Retries = %d, want 5", cfg.HTTP.Retries)
		}
		// untouched fields keep their defaults
		if cfg.ToolName != DefaultToolName {
			t.Errorf("ToolName = %q, want %q", cfg.ToolName, DefaultToolName)
		}
		if cfg.HTTP.UserAgent != DefaultUserAgent {
			t.Errorf("UserAgent = %q, want %q", cfg.HTTP.UserAgent, DefaultUserAgent)
		}
	})

	t.Run("tag_policy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setup-vals.yaml")
		if err := os.WriteFile(path, []byte("tagPolicy: prefix\n"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TagPolicy != TagPolicyPrefix {
			t.Errorf("TagPolicy = %q, want %q", cfg.TagPolicy, TagPolicyPrefix)
		}
	})

	t.Run("unknown_field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setup-vals.yaml")
		if err := os.WriteFile(path, []byte("repo: my-org/vals\n"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		if _, err := Load(path); err == nil {
			t.Error("expected error for unknown field")
		}
	})

	t.Run("invalid_after_merge", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setup-vals.yaml")
		if err := os.WriteFile(path, []byte("serverURL: file:///tmp\n"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		_, err := Load(path)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil || !strings.Contains(err.Error(), "read config") {
			t.Errorf("expected read config error, got %v", err)
		}
	})
}

func TestLoad_ServerFromEnv(t *testing.T) {
	t.Setenv("GITHUB_SERVER_URL", "https://github.example.com/")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerURL != "https://github.example.com" {
		t.Errorf("ServerURL = %q, want https://github.example.com", cfg.ServerURL)
	}

	// an explicit file wins over the environment
	path := filepath.Join(t.TempDir(), "setup-vals.yaml")
	if err := os.WriteFile(path, []byte("serverURL: https://mirror.example.com\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerURL != "https://mirror.example.com" {
		t.Errorf("ServerURL = %q, want https://mirror.example.com", cfg.ServerURL)
	}
}

func TestConfigMerge_Empty(t *testing.T) {
	cfg := Default()
	if err := cfg.Merge([]byte("\n  \n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Error("empty document should not change the config")
	}
}
