// Package cli implements the vocab CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rcliao/vocab-keeper/internal/app"
	"github.com/rcliao/vocab-keeper/internal/config"
	"github.com/rcliao/vocab-keeper/internal/logger"
	"github.com/spf13/cobra"
)

var (
	dbPath      string
	kvPath      string
	backendFlag string
	formatFlag  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Local-first English/Mongolian vocabulary trainer",
	Long:  "Daily vocabulary practice with streaks, confidence labels and versioned word packs. Everything is stored locally.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $VOCAB_DB or ~/.vocab-keeper/vocab.db)")
	RootCmd.PersistentFlags().StringVar(&kvPath, "kv", "", "Key-value store path (default: $VOCAB_KV or ~/.vocab-keeper/legacy.kv)")
	RootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: auto, sqlite or kv (default: $VOCAB_BACKEND or auto)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format for word lists, today, streak and packs: json or text")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if kvPath != "" {
		cfg.KVPath = kvPath
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	return cfg, nil
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return app.Open(ctx, cfg)
}

func mustOpenApp(cmd *cobra.Command) *app.App {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	return a
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func parseID(s string) int {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		exitErr("parse id", fmt.Errorf("expected a positive word id, got %q", s))
	}
	return id
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
