// Package cli implements the lessonforge CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/config"
	"github.com/rcliao/lessonforge/internal/logging"
	"github.com/rcliao/lessonforge/internal/store"
)

var (
	dbPath     string
	configPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lessonforge",
	Short: "Generate canonical scripture lessons for reading plans",
	Long: "lessonforge turns plan items into shared lessons: one lesson per canonical reference and translation, " +
		"reused by every plan that schedules the same passage. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $LESSONFORGE_DB or paths.db_path)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.config/lessonforge/config.toml, then ./lessonforge.toml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "Output format: json or text (default: text on a terminal, json otherwise)")
}

func loadConfig() *config.Config {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		p, err := config.ExpandPath(dbPath)
		if err != nil {
			exitErr("db path", err)
		}
		cfg.Paths.DBPath = p
	}
	return cfg
}

func openStore(cfg *config.Config) *store.SQLiteStore {
	s, err := store.NewSQLiteStore(cfg.Paths.DBPath)
	if err != nil {
		exitErr("open store", err)
	}
	return s
}

func newLogger(cfg *config.Config) *logging.Logger {
	log, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		exitErr("init logger", err)
	}
	return log
}

// textOutput reports whether results should be rendered as tables.
func textOutput() bool {
	switch formatFlag {
	case "text":
		return true
	case "json":
		return false
	case "":
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	default:
		exitErr("format", fmt.Errorf("unknown format %q (want json or text)", formatFlag))
		return false
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
