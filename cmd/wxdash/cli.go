package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/wxdash/internal/client"
	"github.com/hpungsan/wxdash/internal/config"
	"github.com/hpungsan/wxdash/internal/connectivity"
	"github.com/hpungsan/wxdash/internal/dashboard"
	"github.com/hpungsan/wxdash/internal/errors"
	"github.com/hpungsan/wxdash/internal/observability"
	"github.com/hpungsan/wxdash/internal/ops"
	"github.com/hpungsan/wxdash/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *ops.Env, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "wxdash",
		Usage:   "Kerala district weather dashboard",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(env, cfg),
			districtsCmd(env),
			suggestCmd(env),
			weatherCmd(env),
			historyCmd(env),
			purgeCmd(env),
			dashCmd(env, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(env *ops.Env, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web dashboard and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides config)"},
			&cli.BoolFlag{Name: "no-probe", Usage: "Skip upstream connectivity probing"},
		},
		Action: func(c *cli.Context) error {
			serveCfg := *cfg
			if bind := c.String("bind"); bind != "" {
				serveCfg.Bind = bind
			}
			if port := c.Int("port"); port > 0 {
				serveCfg.Port = port
			}

			monitor := connectivity.New(true)
			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()
			if !c.Bool("no-probe") {
				prober := &connectivity.Prober{
					URL:      serveCfg.WeatherBaseURL,
					Interval: serveCfg.ProbeInterval(),
					Monitor:  monitor,
					Metrics:  env.Metrics,
					Clock:    env.Clock,
					Logger:   env.Logger,
				}
				go prober.Run(ctx)
			}

			srv := web.NewServer(web.Options{
				Env:     env,
				Config:  &serveCfg,
				Monitor: monitor,
				Metrics: env.Metrics,
				Clock:   env.Clock,
				Logger:  env.Logger,
				Version: Version,
			})
			return web.Run(srv, env.Logger)
		},
	}
}

// districtsCmd creates the districts command.
func districtsCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "districts",
		Usage: "List every district in directory order",
		Action: func(c *cli.Context) error {
			return outputJSON(c.App.Writer, ops.ListDistricts(env))
		},
	}
}

// suggestCmd creates the suggest command.
func suggestCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Show district suggestions for a partial name",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")
			return outputJSON(c.App.Writer, ops.Suggest(env, ops.SuggestInput{Query: query}))
		},
	}
}

// weatherCmd creates the weather command.
func weatherCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "weather",
		Usage:     "Fetch current conditions and the next hours for a district",
		ArgsUsage: "<district>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|markdown"},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			if format != "json" && format != "markdown" {
				return outputError(errors.NewInvalidRequest("format must be json or markdown"))
			}

			output, err := ops.Weather(c.Context, env, ops.WeatherInput{District: strings.Join(c.Args().Slice(), " ")})
			if err != nil {
				return outputError(err)
			}

			if format == "markdown" {
				_, err := io.WriteString(c.App.Writer, weatherMarkdown(output))
				return err
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent weather lookups, most recent first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum entries (default 10, max 100)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.History(c.Context, env, ops.HistoryInput{Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete search history",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge lookups older than N days (e.g., 30d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, env, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// dashCmd creates the dash command: the dashboard pipeline rendered to the
// terminal, served in-process or by a running wxdash server.
func dashCmd(env *ops.Env, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "dash",
		Usage:     "Show the dashboard for a district in the terminal",
		ArgsUsage: "<district>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "metric", Aliases: []string{"m"}, Value: string(dashboard.MetricTemp), Usage: "Chart metric: temp|humidity|wind|clouds"},
			&cli.StringFlag{Name: "server", Aliases: []string{"s"}, Usage: "wxdash server URL (default: in-process)"},
		},
		Action: func(c *cli.Context) error {
			metric := dashboard.Metric(c.String("metric"))
			if _, ok := dashboard.LookupMetric(metric); !ok {
				return outputError(errors.NewInvalidRequest("unknown metric: " + string(metric)))
			}
			return runDash(c.Context, c.App.Writer, env, cfg, c.String("server"), strings.Join(c.Args().Slice(), " "), metric)
		},
	}
}

type dashSource interface {
	dashboard.DirectorySource
	dashboard.WeatherSource
	dashboard.HistorySource
}

func runDash(ctx context.Context, w io.Writer, env *ops.Env, cfg *config.Config, server, text string, metric dashboard.Metric) error {
	logger := env.Logger
	if logger == nil {
		logger = observability.Discard()
	}

	var (
		src     dashSource = ops.LocalSource{Env: env}
		monitor *connectivity.Monitor
	)
	if server != "" {
		api := client.New(server, cfg.RequestTimeout())
		src = api
		monitor = connectivity.New(true)
		prober := &connectivity.Prober{
			URL:     api.BaseURL + "/healthz",
			Client:  api.HTTPClient,
			Monitor: monitor,
			Logger:  logger,
		}
		prober.ProbeOnce(ctx)
	}

	view := &terminalView{}
	canvas := newTextCanvas()
	nav := &terminalNav{}
	opts := dashboard.Options{
		Directory: src,
		Weather:   src,
		History:   src,
		View:      view,
		Canvas:    canvas,
		Navigator: nav,
		Clock:     env.Clock,
		Location:  cfg.Location(),
		Logger:    logger,
	}
	if monitor != nil {
		opts.Connectivity = monitor
	}
	session := dashboard.NewSession(opts)
	defer session.Close()

	if err := session.LoadDirectory(ctx); err != nil {
		view.render(w, "")
		return outputError(err)
	}

	session.Selector.Input(text)
	session.Selector.Dismiss()
	name, err := session.Selector.Commit()
	if err != nil {
		return outputError(err)
	}
	logger.Debug("dashboard navigation", "target", nav.take())

	openErr := session.Controller.Open(ctx, name)
	if openErr == nil && metric != dashboard.MetricTemp {
		session.SwitchMetric(metric)
	}

	view.render(w, canvas.String())
	if openErr != nil {
		return outputError(openErr)
	}
	return nil
}

// weatherMarkdown formats a lookup as a short markdown report.
func weatherMarkdown(out *ops.WeatherOutput) string {
	r := dashboard.BuildReadouts(out.Current, out.FetchedAt)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", out.District)
	fmt.Fprintf(&b, "**%s**, %s (feels like %s)\n\n", out.Condition, r.Temperature, r.FeelsLike)
	fmt.Fprintf(&b, "| Wind | Humidity | Pressure | Rain | Clouds | Visibility |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", r.Wind, r.Humidity, r.Pressure, r.Rain, r.Clouds, r.Visibility)
	if len(out.Forecast) > 0 {
		b.WriteString("\n## Next hours\n\n")
		for _, p := range out.Forecast {
			fmt.Fprintf(&b, "- %s: %d °C, %g%% humidity, %g km/h wind, %g%% clouds\n",
				dashboard.HourLabel(p.Time), dashboard.Round(p.Temp), p.Humidity, p.Wind, p.Clouds)
		}
	}
	return b.String()
}

// Helper functions

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if wxErr := errors.As(err); wxErr != nil {
		return cli.Exit(fmt.Sprintf("[%s] %s", wxErr.Code, wxErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}

var _ dashSource = (*client.Client)(nil)
