package postoffice

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cluster.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
servers:
  - id: server-0
    addr: http://127.0.0.1:9000
  - id: server-1
    addr: http://127.0.0.1:9001
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Servers) != 2 {
		t.Fatalf("len(Servers) = %d, want 2", len(cfg.Servers))
	}
	if cfg.Slicer != "range" {
		t.Fatalf("Slicer = %q, want %q", cfg.Slicer, "range")
	}
	if cfg.KeySpaceEnd == 0 {
		t.Fatal("KeySpaceEnd defaulted to 0")
	}
}

func TestLoadConfigRejectsEmptyServers(t *testing.T) {
	path := writeConfig(t, "servers: []\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig accepted a config with no servers")
	}
}

func TestLoadConfigRejectsUnknownSlicer(t *testing.T) {
	path := writeConfig(t, `
servers:
  - id: server-0
    addr: http://127.0.0.1:9000
slicer: consistent-hash
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig accepted an unknown slicer policy")
	}
}
