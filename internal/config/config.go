// Package config loads settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/rcliao/vocab-keeper/internal/store"
)

// Environment variables.
const (
	EnvDB         = "VOCAB_DB"
	EnvKV         = "VOCAB_KV"
	EnvBackend    = "VOCAB_BACKEND"
	EnvLogLevel   = "VOCAB_LOG_LEVEL"
	EnvLogFile    = "VOCAB_LOG_FILE"
	EnvDailyWords = "VOCAB_DAILY_WORDS"
	EnvExtraWords = "VOCAB_EXTRA_WORDS"
)

// Config holds the runtime settings.
type Config struct {
	DBPath     string
	KVPath     string
	Backend    string
	LogLevel   string
	LogFile    string
	DailyWords int
	ExtraWords int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	dir := ".vocab-keeper"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".vocab-keeper")
	}
	return Config{
		DBPath:     filepath.Join(dir, "vocab.db"),
		KVPath:     filepath.Join(dir, "legacy.kv"),
		Backend:    store.ModeAuto,
		LogLevel:   "warn",
		DailyWords: 5,
		ExtraWords: 5,
	}
}

// Load reads envFiles (default ".env") when present, then the environment.
// Variables already set in the environment win over the files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	setString(&cfg.DBPath, EnvDB)
	setString(&cfg.KVPath, EnvKV)
	setString(&cfg.Backend, EnvBackend)
	setString(&cfg.LogLevel, EnvLogLevel)
	setString(&cfg.LogFile, EnvLogFile)
	if err := setInt(&cfg.DailyWords, EnvDailyWords); err != nil {
		return Config{}, err
	}
	if err := setInt(&cfg.ExtraWords, EnvExtraWords); err != nil {
		return Config{}, err
	}

	switch cfg.Backend {
	case store.ModeAuto, store.ModeSQLite, store.ModeKV:
	default:
		return Config{}, fmt.Errorf("%s: unknown backend %q (valid: auto, sqlite, kv)", EnvBackend, cfg.Backend)
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("%s: expected a positive integer, got %q", key, v)
	}
	*dst = n
	return nil
}

// StoreOptions returns the storage selection for store.Open.
func (c Config) StoreOptions() store.Options {
	return store.Options{Mode: c.Backend, SQLitePath: c.DBPath, KVPath: c.KVPath}
}
