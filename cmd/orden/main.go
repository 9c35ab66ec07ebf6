package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/hpungsan/orden/internal/agent"
	"github.com/hpungsan/orden/internal/catalog"
	"github.com/hpungsan/orden/internal/config"
	"github.com/hpungsan/orden/internal/db"
	"github.com/hpungsan/orden/internal/llm"
	"github.com/hpungsan/orden/internal/mcp"
	"github.com/hpungsan/orden/internal/ops"
	"github.com/hpungsan/orden/internal/tools"
	"github.com/hpungsan/orden/internal/websearch"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"ask": true, "status": true, "tool": true, "tools": true,
	"folders": true, "notes": true, "read": true, "search": true,
	"edits": true, "custom": true, "serve": true, "mcp": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand or global flag → CLI
	if cliCommands[arg] || strings.HasPrefix(arg, "--user") {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
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
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___  _ __ __| | ___ _ __
  / _ \| '__/ _' |/ _ \ '_ \
 | (_) | | | (_| |  __/ | | |
  \___/|_|  \__,_|\___|_| |_|

  Notes agent

  Usage: orden <command> [options]
         orden --help

  MCP server mode requires piped input.`)
}

// baseDir returns $ORDEN_HOME, or ~/.orden.
func baseDir() (string, error) {
	if dir := os.Getenv("ORDEN_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".orden"), nil
}

// newLogger writes colored logs to stderr when it is a terminal. stdout is
// reserved for command output and the MCP transport.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

// services bundles everything the commands run against.
type services struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	deps    *ops.Deps
	exec    *tools.Executor
	agent   *agent.Service
	logger  *slog.Logger
}

// setup loads credentials and config from base and opens the stores.
// The returned close function releases the database.
func setup(base string) (*services, func(), error) {
	if err := godotenv.Load(filepath.Join(base, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = base
	}
	cfg, err := config.LoadWithProject(base, cwd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	database, err := db.Init(base)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	cat, err := catalog.Open(cfg.ResolveDataDir(base), logger)
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	if unknown := tools.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("ignoring unknown disabled tools", "tools", unknown)
	}

	web := websearch.New(cfg.WebSearch, websearch.WithLogger(logger))
	deps := ops.NewDeps(database, cat, web, logger)
	exec := tools.NewExecutor(deps, tools.NewRegistry(cfg.DisabledTools), logger)
	model := llm.New(cfg, llm.WithLogger(logger))
	if !llm.IsConfigured(model) {
		logger.Debug("model credential not set, only fast-path commands will work", "env", cfg.APIKeyEnv())
	}

	svc := agent.NewService(model, exec, agent.LoopConfig{
		MaxRounds: cfg.MaxRounds,
		MaxTokens: cfg.MaxTokens,
		Logger:    logger,
	})

	s := &services{
		cfg:     cfg,
		catalog: cat,
		deps:    deps,
		exec:    exec,
		agent:   svc,
		logger:  logger,
	}
	return s, func() { database.Close() }, nil
}

// watchCatalog keeps the static note cache fresh for long-running modes.
func (s *services) watchCatalog(ctx context.Context) {
	if err := s.catalog.Watch(ctx); err != nil {
		s.logger.Warn("not watching data directory; restart to pick up note changes", "err", err)
	}
}

// runMCP serves the enabled tools over stdio on behalf of user.
func runMCP(s *services, user string) error {
	return mcp.Run(s.exec, user, Version)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	base, err := baseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, closeDB, err := setup(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeDB()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(s)
		if err := app.Run(os.Args); err != nil {
			// ask prints its own failure; the exit code is all that is left.
			if msg := err.Error(); msg != "" {
				fmt.Fprintf(os.Stderr, "error: %s\n", msg)
			}
			closeDB()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'orden --help' for usage.\n")
		closeDB()
		os.Exit(1)
	}

	// MCP server mode (default)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.watchCatalog(ctx)
	if err := runMCP(s, s.cfg.DefaultUser); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		cancel()
		closeDB()
		os.Exit(1)
	}
}
