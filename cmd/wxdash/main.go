package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/hpungsan/wxdash/internal/config"
	"github.com/hpungsan/wxdash/internal/db"
	"github.com/hpungsan/wxdash/internal/district"
	"github.com/hpungsan/wxdash/internal/mcp"
	"github.com/hpungsan/wxdash/internal/observability"
	"github.com/hpungsan/wxdash/internal/ops"
	"github.com/hpungsan/wxdash/internal/weather"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "districts": true, "suggest": true,
	"weather": true, "history": true, "purge": true, "dash": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
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
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
                 _           _
  __      ___  _| | __ _ ___| |__
  \ \ /\ / \ \/ / |/ _' / __| '_ \
   \ V  V / >  <| | (_| \__ \ | | |
    \_/\_/ /_/\_\_|\__,_|___/_| |_|

  Kerala district weather dashboard

  Usage: wxdash <command> [options]
         wxdash serve
         wxdash --help

  MCP server mode requires piped input.`)
}

// newProvider builds the upstream chain: the Open-Meteo client, instrumented,
// rate limited, then cached when a TTL is configured.
func newProvider(cfg *config.Config, metrics *observability.Metrics, clock clockwork.Clock) weather.Provider {
	var p weather.Provider = weather.NewClient(weather.ClientOptions{
		BaseURL:       cfg.WeatherBaseURL,
		Timeout:       cfg.RequestTimeout(),
		UserAgent:     "wxdash/" + Version,
		ForecastHours: cfg.ForecastHours,
		ForecastDays:  cfg.ForecastDays,
		Clock:         clock,
	})
	if metrics != nil {
		p = weather.NewInstrumentedProvider(p, metrics, clock)
	}
	if cfg.RateLimitRPS > 0 {
		p = weather.NewRateLimitedProvider(p, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if ttl := cfg.CacheTTL(); ttl > 0 {
		p = weather.NewCachedProvider(p, ttl, clock, metrics)
	}
	return p
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	bootLogger := observability.NewLogger(os.Stderr, "info", "text")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal(bootLogger, "could not determine home directory", err)
	}
	baseDir := filepath.Join(homeDir, ".wxdash")

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal(bootLogger, "failed to load config", err)
	}

	// Logs go to stderr so stdout stays clean for JSON and MCP stdio.
	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fatal(logger, "failed to initialize database", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()
	env := &ops.Env{
		DB:           database,
		Directory:    district.Kerala(),
		Provider:     newProvider(cfg, metrics, clock),
		Clock:        clock,
		Metrics:      metrics,
		Logger:       logger,
		HistoryLimit: cfg.HistoryLimit,
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(env, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'wxdash --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(env, cfg, Version); err != nil {
		logger.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
