package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/truthdare/truthdare-api/internal/config"
	"github.com/truthdare/truthdare-api/internal/server"
)

var (
	hostFlag           string
	portFlag           int
	prefixFlag         string
	reloadIntervalFlag time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load content and serve the HTTP API (default)",
		Long: "Loads every content kind, then serves the API until SIGINT or SIGTERM. " +
			"SIGHUP reloads content without a restart.",
		Run: runServe,
	}
	serveFlags(cmd)

	RootCmd.AddCommand(cmd)
}

func serveFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&hostFlag, "host", "", "Listen host (default $TRUTH_DARE_HOST or 127.0.0.1)")
	f.IntVarP(&portFlag, "port", "p", 0, "Listen port (default $TRUTH_DARE_PORT or 8000)")
	f.StringVar(&prefixFlag, "api-prefix", "", "API mount point (default /api/v1)")
	f.DurationVar(&reloadIntervalFlag, "reload-interval", 0, "Reload content on this period; 0 disables")
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Lookup("port") == nil {
		return
	}
	if flags.Changed("host") {
		cfg.Host = hostFlag
	}
	if flags.Changed("port") {
		cfg.Port = portFlag
	}
	if flags.Changed("api-prefix") {
		cfg.APIPrefix = prefixFlag
	}
	if flags.Changed("reload-interval") {
		cfg.ReloadInterval = reloadIntervalFlag
	}
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	logger := newLogger(cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cache, closeSource, err := newCache(ctx, cfg)
	if err != nil {
		exitErr("open source", err)
	}
	defer closeSource()

	start := time.Now()
	if err := cache.Initialize(ctx); err != nil {
		// Without a first snapshot of every kind there is nothing to serve.
		logger.Error("initial content load failed", slog.String("error", err.Error()))
		closeSource()
		exitErr("load content", err)
	}
	logger.Info("content loaded",
		slog.String("source", cfg.Source),
		slog.Duration("duration", time.Since(start)),
	)

	srv, err := server.New(cfg, cache, logger)
	if err != nil {
		closeSource()
		exitErr("create server", err)
	}

	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		closeSource()
		exitErr("serve", err)
	}
}
