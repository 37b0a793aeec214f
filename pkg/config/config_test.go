package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NETUI_CONFIG", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Listen != ":8013" {
		t.Errorf("listen: got %q, want %q", cfg.Server.Listen, ":8013")
	}
	if cfg.Editor.UndoLimit != 1000 {
		t.Errorf("undo limit: got %d, want 1000", cfg.Editor.UndoLimit)
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing enabled by default")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
listen = ":9000"

[topology]
id = 4

[editor]
width = 800
undo_limit = 20
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NETUI_CONFIG", path)
	t.Setenv("NETUI_AWX_TOKEN", "secret")
	t.Setenv("NETUI_EDITOR_HEIGHT", "600")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"listen", cfg.Server.Listen, ":9000"},
		{"topology", cfg.Topology.ID, 4},
		{"width", cfg.Editor.Width, 800},
		{"undo limit", cfg.Editor.UndoLimit, 20},
		{"height from env", cfg.Editor.Height, 600},
		{"token from env", cfg.AWX.Token, "secret"},
		{"url default", cfg.AWX.URL, "http://localhost:8052"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nlisten ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config loaded without error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("NETUI_CONFIG", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	in, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	in.Topology.ID = 12
	in.Inventory.ID = 3
	in.Log.Format = "json"
	in.Tracing.Enabled = true
	if err := Save(path, in); err != nil {
		t.Fatal(err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}
