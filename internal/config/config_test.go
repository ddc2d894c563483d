package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{EnvDB, EnvKV, EnvBackend, EnvLogLevel, EnvLogFile, EnvDailyWords, EnvExtraWords} {
		t.Setenv(k, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "auto" || cfg.DailyWords != 5 || cfg.ExtraWords != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !strings.HasSuffix(cfg.DBPath, filepath.Join(".vocab-keeper", "vocab.db")) {
		t.Errorf("unexpected db path %q", cfg.DBPath)
	}
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	for _, k := range []string{EnvDB, EnvKV, EnvBackend, EnvLogLevel, EnvLogFile, EnvDailyWords, EnvExtraWords} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	path := filepath.Join(t.TempDir(), "test.env")
	data := "VOCAB_DB=/tmp/from-file.db\nVOCAB_BACKEND=kv\nVOCAB_DAILY_WORDS=8\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDailyWords, "12")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/from-file.db" || cfg.Backend != "kv" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.DailyWords != 12 {
		t.Errorf("environment should win over the file, got %d", cfg.DailyWords)
	}
	opts := cfg.StoreOptions()
	if opts.Mode != "kv" || opts.SQLitePath != "/tmp/from-file.db" {
		t.Errorf("unexpected store options: %+v", opts)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvBackend, "postgres"},
		{EnvDailyWords, "zero"},
		{EnvExtraWords, "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			for _, k := range []string{EnvBackend, EnvDailyWords, EnvExtraWords} {
				t.Setenv(k, "")
			}
			t.Setenv(tt.key, tt.value)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
