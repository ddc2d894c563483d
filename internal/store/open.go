package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rcliao/vocab-keeper/internal/logger"
)

// Backend selection modes.
const (
	ModeAuto   = "auto"
	ModeSQLite = "sqlite"
	ModeKV     = "kv"
)

// Options selects and locates the storage backend.
type Options struct {
	Mode       string // auto, sqlite or kv
	SQLitePath string
	KVPath     string
}

// Open picks the backend once for the process. In auto mode SQLite is
// preferred; if it cannot be opened the flat key-value store is used instead.
// Whenever SQLite is selected, records in an existing flat store are migrated
// into it once.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Mode {
	case ModeKV:
		return NewKVStore(opts.KVPath)
	case ModeSQLite:
		return openSQLite(ctx, opts)
	case ModeAuto, "":
		b, err := openSQLite(ctx, opts)
		if err == nil {
			return b, nil
		}
		logger.Warn("structured store unavailable, falling back to key-value store", "path", opts.SQLitePath, "error", err)
		return NewKVStore(opts.KVPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (valid: auto, sqlite, kv)", opts.Mode)
	}
}

func openSQLite(ctx context.Context, opts Options) (*SQLiteStore, error) {
	s, err := NewSQLiteStore(opts.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := migrateLegacy(ctx, s, opts.KVPath); err != nil {
		// The structured store is usable; the legacy data stays where it is.
		logger.Error("legacy migration failed", "path", opts.KVPath, "error", err)
	}
	return s, nil
}

func migrateLegacy(ctx context.Context, s *SQLiteStore, kvPath string) error {
	done, err := s.Migrated(ctx)
	if err != nil || done {
		return err
	}

	var legacy Backend
	if kvPath != "" {
		if _, err := os.Stat(kvPath); err == nil {
			kv, err := NewKVStore(kvPath)
			if err != nil {
				return err
			}
			defer kv.Close()
			legacy = kv
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	copied, err := s.MigrateFrom(ctx, legacy)
	if err != nil {
		return err
	}
	if copied {
		logger.Info("migrated legacy key-value store", "from", kvPath)
	}
	return nil
}
