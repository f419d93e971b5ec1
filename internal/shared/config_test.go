package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "trailctl.db" {
			t.Errorf("expected default database path trailctl.db, got %q", config.Database.Path)
		}
		if config.Database.MaxOpenConns != 5 {
			t.Errorf("expected 5 max open conns, got %d", config.Database.MaxOpenConns)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected loopback host, got %q", config.Server.Host)
		}
		if config.Endpoints.ProfileURL != "" {
			t.Errorf("expected endpoints to default empty, got %q", config.Endpoints.ProfileURL)
		}
	})

	t.Run("ServerConfig", func(t *testing.T) {
		server := ServerConfig{Host: "127.0.0.1", Port: 8910}

		if got := server.Addr(); got != "127.0.0.1:8910" {
			t.Errorf("unexpected addr: %q", got)
		}
		if got := server.RedirectURI(); got != "http://127.0.0.1:8910/callback" {
			t.Errorf("unexpected redirect uri: %q", got)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("parses a full file", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")
			content := `
[endpoints]
auth_url = "https://api.example.com/auth"
profile_url = "https://api.example.com/profile"
scan_url = "https://api.example.com/scan"
task_status_url = "https://api.example.com/tasks"
fetch_log_url = "https://api.example.com/fetch-log"
sheet_update_url = "https://api.example.com/sheet"

[database]
path = "custom.db"
max_open_conns = 10
max_idle_conns = 4

[server]
host = "localhost"
port = 9000
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}

			if config.Endpoints.ProfileURL != "https://api.example.com/profile" {
				t.Errorf("unexpected profile url: %q", config.Endpoints.ProfileURL)
			}
			if config.Database.Path != "custom.db" {
				t.Errorf("unexpected database path: %q", config.Database.Path)
			}
			if config.Server.Port != 9000 {
				t.Errorf("unexpected port: %d", config.Server.Port)
			}
		})

		t.Run("missing file returns error", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
				t.Error("expected error for missing file")
			}
		})

		t.Run("malformed file returns error", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error for malformed file")
			}
		})
	})

	t.Run("SaveConfig roundtrips", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		config := DefaultConfig()
		config.Endpoints.ScanURL = "https://api.example.com/scan"
		config.Database.Path = "roundtrip.db"

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if loaded.Endpoints.ScanURL != config.Endpoints.ScanURL {
			t.Errorf("scan url did not survive roundtrip: %q", loaded.Endpoints.ScanURL)
		}
		if loaded.Database.Path != "roundtrip.db" {
			t.Errorf("database path did not survive roundtrip: %q", loaded.Database.Path)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("CreateConfigFile failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read created config: %v", err)
		}
		if !strings.Contains(string(data), "[endpoints]") {
			t.Error("expected template to contain an endpoints section")
		}

		if _, err := LoadConfig(path); err != nil {
			t.Errorf("created template should parse: %v", err)
		}
	})
}
