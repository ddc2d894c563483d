package cli

import (
	"testing"

	"github.com/rcliao/vocab-keeper/internal/config"
)

func TestFlagsOverrideConfig(t *testing.T) {
	t.Setenv(config.EnvDB, "/tmp/env.db")
	t.Setenv(config.EnvBackend, "sqlite")

	defer func() { dbPath, kvPath, backendFlag = "", "", "" }()
	dbPath = "/tmp/flag.db"
	backendFlag = "kv"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBPath != "/tmp/flag.db" || cfg.Backend != "kv" {
		t.Fatalf("flags should override the environment: %+v", cfg)
	}

	dbPath, backendFlag = "", ""
	cfg, err = loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBPath != "/tmp/env.db" || cfg.Backend != "sqlite" {
		t.Fatalf("environment should apply without flags: %+v", cfg)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"add", "edit", "get", "list", "rm", "restore", "search",
		"today", "practice", "streak", "confidence", "packs", "bundles",
		"export", "import", "import-words", "stats",
	}
	for _, name := range want {
		cmd, _, err := RootCmd.Find([]string{name})
		if err != nil || cmd == RootCmd {
			t.Errorf("command %q not registered", name)
		}
	}
}
