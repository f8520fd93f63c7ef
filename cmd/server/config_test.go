package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogogo1024/accesskit/internal/directory"
	"github.com/gogogo1024/accesskit/internal/resource"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, fromFile, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if fromFile {
		t.Fatalf("missing file should not count as loaded")
	}
	if cfg.Server.Addr != ":8890" || cfg.Redis.KeyPrefix != "accesskit:" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, _, _, err := cfg.redisTimeouts(); err != nil {
		t.Fatalf("default timeouts must parse: %v", err)
	}
}

func TestLoadConfig_FileOverridesAndBackfill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accesskit.yaml")
	body := "server:\n  addr: ':9999'\nredis:\n  addr: 'localhost:6379'\n  cache_ttl: 30s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, fromFile, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !fromFile {
		t.Fatalf("expected file to be loaded")
	}
	if cfg.Server.Addr != ":9999" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	// Unset fields fall back to defaults.
	if cfg.Redis.DialTimeout != "1s" {
		t.Fatalf("dial timeout not backfilled: %q", cfg.Redis.DialTimeout)
	}
	ttl, err := cfg.cacheTTL()
	if err != nil || ttl != 30*time.Second {
		t.Fatalf("cache ttl = %v, %v", ttl, err)
	}
}

func TestLoadSeed_PopulatesDirectoryAndTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	body := `principals:
  users:
    - {id: u1, name: Ada Lovelace, login: ada}
  groups:
    - {id: g1, name: Operators, description: on-call}
resources:
  - {id: root, name: Root, parent: ""}
  - {id: a, name: Folder A, parent: root}
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	seed, err := loadSeed(path)
	if err != nil {
		t.Fatalf("loadSeed: %v", err)
	}

	static := directory.NewStatic()
	tree := resource.NewTree()
	if err := seed.apply(static, tree); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if got := static.Search("ada", 10); len(got) != 1 || got[0].ID != "u1" {
		t.Fatalf("seeded user not searchable: %v", got)
	}
	if _, ok := tree.State("a"); !ok {
		t.Fatalf("seeded resource missing")
	}
}
