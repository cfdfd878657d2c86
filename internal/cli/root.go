// Package cli implements the truthdare commands. Running the binary with no
// subcommand starts the HTTP server.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/truthdare/truthdare-api/internal/config"
)

var (
	sourceFlag    string
	truthsFlag    string
	daresFlag     string
	dsnFlag       string
	logLevelFlag  string
	logFormatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "truthdare",
	Short: "Truth or dare content service",
	Long: "Serves random truths and dares from an in-memory cache loaded from JSON files, " +
		"HTTP endpoints or a SQL database. Settings come from TRUTH_DARE_* variables (and .env); " +
		"flags override them.",
	SilenceUsage: true,
	Run:          runServe,
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&sourceFlag, "source", "", "Content source: file, http, sqlite or postgres")
	pf.StringVar(&truthsFlag, "truths", "", "Truths JSON file (file source)")
	pf.StringVar(&daresFlag, "dares", "", "Dares JSON file (file source)")
	pf.StringVar(&dsnFlag, "dsn", "", "Database DSN (sqlite or postgres source)")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&logFormatFlag, "log-format", "", "Log format: text or json")

	serveFlags(RootCmd)
}

// loadConfig reads the environment, applies any flag the user set and
// validates the result once, so a flag can fix what the environment got
// wrong.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		exitErr("load config", err)
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("source", &cfg.Source, sourceFlag)
	override("truths", &cfg.TruthsFile, truthsFlag)
	override("dares", &cfg.DaresFile, daresFlag)
	override("dsn", &cfg.DatabaseDSN, dsnFlag)
	override("log-level", &cfg.LogLevel, logLevelFlag)
	override("log-format", &cfg.LogFormat, logFormatFlag)
	applyServeFlags(cmd, &cfg)
	cfg.Source = strings.ToLower(cfg.Source)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		exitErr("invalid config", err)
	}
	return cfg
}

func newLogger(cfg config.Config) *slog.Logger {
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return logger
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
