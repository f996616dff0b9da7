package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"needsstep/internal/adapter/memory"
	"needsstep/internal/adapter/postgres"
	"needsstep/internal/adapter/sqlite"
	"needsstep/internal/domain"
	"needsstep/internal/logging"
)

var CLI struct {
	Version     kong.VersionFlag
	DatabaseURL string `help:"PostgreSQL URL, SQLite file path, or \"memory\"." env:"DATABASE_URL" default:"needsstep.db"`
	LogLevel    string `help:"Log level (debug, info, warn, error)." env:"LOG_LEVEL" default:"info"`
	LogFile     string `help:"Also write logs to this file, rotated." env:"LOG_FILE" type:"path"`

	Serve      ServeCmd      `cmd:"" help:"Run the HTTP server." default:"1"`
	CreateUser CreateUserCmd `cmd:"" help:"Create a user."`
}

// runContext is passed to every command's Run method.
type runContext struct {
	Store domain.Store
	Log   *log.Logger
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("needsstep"),
		kong.Description("Daily needs and targets tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": "v0.1.0"},
	)

	logger, closer, err := logging.New(logging.Config{Level: CLI.LogLevel, File: CLI.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	store, err := openStore(CLI.DatabaseURL)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	if err := ctx.Run(&runContext{Store: store, Log: logger}); err != nil {
		logger.Error(ctx.Command(), "err", err)
		_ = store.Close()
		_ = closer.Close()
		os.Exit(1)
	}
}

// openStore picks the storage backend from the shape of dsn.
func openStore(dsn string) (domain.Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn)
	case dsn == "memory":
		return memory.New(), nil
	default:
		return sqlite.Open(dsn)
	}
}
