package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/eringen/quillpress"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd, args := parseCommand(os.Args[1:])

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "migrate":
		err = runMigrate()
	case "sessions":
		if len(args) < 1 || args[0] != "prune" {
			fmt.Fprintln(os.Stderr, "Usage: quillpress sessions prune")
			os.Exit(1)
		}
		err = runPruneSessions()
	case "version":
		fmt.Printf("quillpress %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseCommand splits the command line into a subcommand and its arguments.
// With no arguments the server is started.
func parseCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "serve", nil
	}
	return args[0], args[1:]
}

func printUsage() {
	fmt.Println(`quillpress - A personal publishing engine built with Go, Echo, and templ

Usage:
  quillpress [command] [arguments]

Commands:
  serve           Start the web server (default)
  migrate         Create missing tables and indexes, then exit
  sessions prune  Delete expired login sessions
  version         Print the quillpress version
  help            Show this help message

Configuration is read from the environment and from a .env file in the
working directory. See DATABASE_URL, ADMIN_PASSWORD and SITE_URL.`)
}

func setup() (quillpress.SiteConfig, *zap.Logger, error) {
	cfg, err := quillpress.LoadConfig(".env")
	if err != nil {
		return cfg, nil, err
	}
	logger, err := quillpress.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func runServe() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := quillpress.New(cfg, quillpress.DefaultViews(), quillpress.WithLogger(logger))
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close", zap.Error(err))
		}
	}()
	return app.Start(ctx)
}

func openStore(ctx context.Context, cfg quillpress.SiteConfig) (*quillpress.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return quillpress.NewStore(ctx, cfg.StoreConfig())
}

func runMigrate() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("schema up to date", zap.String("database", store.Dialect()))
	return nil
}

func runPruneSessions() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	n, err := store.SweepSessions(ctx)
	if err != nil {
		return err
	}
	logger.Info("expired sessions deleted", zap.Int64("count", n))
	return nil
}
