package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/hpungsan/tokime/internal/config"
	"github.com/hpungsan/tokime/internal/db"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "list": true, "show": true, "rename": true, "delete": true,
	"start": true, "stop": true, "toggle": true, "running": true,
	"session": true, "report": true, "copy": true, "popup": true,
	"export": true, "import": true, "clear": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func printBanner() {
	fmt.Println(`
   _        _    _
  | |_ ___ | | _(_)_ __ ___   ___
  | __/ _ \| |/ / | '_ ` + "`" + ` _ \ / _ \
  | || (_) |   <| | | | | | |  __/
   \__\___/|_|\_\_|_| |_| |_|\___|

  Stopwatches for the terminal

  Usage: tokime <command> [options]
         tokime popup
         tokime --help

  MCP server mode requires piped input.`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Help and version need no database
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.RunContext(ctx, os.Args); err != nil {
			fatalf("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatalf("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".tokime")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = baseDir
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	for _, name := range mcp.ValidateDisabledTools(cfg.DisabledTools) {
		logger.Warn("unknown tool in disabled_tools", "tool", name)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fatalf("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	store := db.NewStore(database)
	if ts, ok, err := store.LastUpdated(ctx); err == nil && ok {
		logger.Debug("opened store", "path", filepath.Join(baseDir, db.FileName), "last_write", time.UnixMilli(ts).Format(time.RFC3339))
	}

	mgr := manager.New(store,
		manager.WithConfig(cfg),
		manager.WithLogger(logger),
	)

	if isCLIMode() {
		app := newCLIApp(mgr, cfg)
		if err := app.RunContext(ctx, os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			database.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument on a terminal is a typo, not an MCP client
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'tokime --help' for usage.\n")
		database.Close()
		os.Exit(1)
	}

	if err := mcp.Run(mgr, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		database.Close()
		os.Exit(1)
	}
}
