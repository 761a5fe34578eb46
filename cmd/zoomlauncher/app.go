package main

import (
	"context"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/guilherme-santos/zoomlauncher/browser"
	"github.com/guilherme-santos/zoomlauncher/calendar/google"
	"github.com/guilherme-santos/zoomlauncher/internal/config"
	"github.com/guilherme-santos/zoomlauncher/internal/file"
	"github.com/guilherme-santos/zoomlauncher/internal/logging"
	"github.com/guilherme-santos/zoomlauncher/internal/seen"
	"github.com/guilherme-santos/zoomlauncher/internal/sqlite"
)

func newApp(w io.Writer) *cli.Command {
	// Without a subcommand the root runs one pass, same as run.
	var root options
	return &cli.Command{
		Name:   "zoomlauncher",
		Usage:  "Open the Zoom link of the calendar event starting now, once per event",
		Writer: w,
		Flags:  root.flags(),
		Action: root.run,
		Commands: []*cli.Command{
			runCommand(),
			loginCommand(),
			seenCommand(),
			pruneCommand(),
		},
	}
}

// options receives the flag values shared by every command.
type options struct {
	dataDir     string
	calendarID  string
	lookback    string
	lookahead   string
	maxStartAge string
	retention   string
	store       string
	browser     string
	logLevel    string
}

func (o *options) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory holding credentials.json, token.json, config.toml and the seen meetings (default: ~/.zoomlauncher)",
			Sources:     cli.EnvVars("ZOOMLAUNCHER_DATA_DIR"),
			Destination: &o.dataDir,
		},
		&cli.StringFlag{
			Name:        "calendar-id",
			Usage:       "Calendar to poll",
			Sources:     cli.EnvVars("ZOOMLAUNCHER_CALENDAR_ID"),
			Destination: &o.calendarID,
		},
		&cli.StringFlag{
			Name:        "lookback",
			Usage:       "How far before now the event window starts (e.g. 5m)",
			Sources:     cli.EnvVars("ZOOMLAUNCHER_LOOKBACK"),
			Destination: &o.lookback,
		},
		&cli.StringFlag{
			Name:        "lookahead",
			Usage:       "How far after now the event window ends (e.g. 5m)",
			Sources:     cli.EnvVars("ZOOMLAUNCHER_LOOKAHEAD"),
			Destination: &o.lookahead,
		},
		&cli.StringFlag{
			Name:        "max-start-age",
			Usage:       "Skip events that started longer ago than this",
			Sources:     cli.EnvVars("ZOOMLAUNCHER_MAX_START_AGE"),
			Destination: &o.maxStartAge,
		},
		&cli.StringFlag{
			Name:        "retention",
			Usage:       "How long opened meetings are remembered (e.g. 24h, 1d)",
			Sources:     cli.EnvVars("ZOOMLAUNCHER_RETENTION"),
			Destination: &o.retention,
		},
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Seen meetings backend: file or sqlite",
			Sources:     cli.EnvVars("ZOOMLAUNCHER_STORE"),
			Destination: &o.store,
		},
		&cli.StringFlag{
			Name:        "browser",
			Usage:       "Command used to open links instead of the system default",
			Sources:     cli.EnvVars("ZOOMLAUNCHER_BROWSER"),
			Destination: &o.browser,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Aliases:     []string{"l"},
			Usage:       "debug, info, warn or error",
			Sources:     cli.EnvVars("ZOOMLAUNCHER_LOG_LEVEL"),
			Destination: &o.logLevel,
		},
	}
}

// config loads config.toml and applies the flags that were set on c.
func (o *options) config(c *cli.Command) (config.Config, error) {
	dataDir := o.dataDir
	if dataDir == "" {
		dir, err := config.DefaultDataDir()
		if err != nil {
			return config.Config{}, err
		}
		dataDir = dir
	}
	cfg, err := config.Load(dataDir)
	if err != nil {
		return cfg, err
	}

	strs := []struct {
		flag string
		src  string
		dst  *string
	}{
		{"calendar-id", o.calendarID, &cfg.CalendarID},
		{"store", o.store, &cfg.Store},
		{"browser", o.browser, &cfg.Browser},
		{"log-level", o.logLevel, &cfg.LogLevel},
	}
	for _, s := range strs {
		if c.IsSet(s.flag) {
			*s.dst = s.src
		}
	}

	durations := []struct {
		flag string
		src  string
		dst  *time.Duration
	}{
		{"lookback", o.lookback, &cfg.Lookback},
		{"lookahead", o.lookahead, &cfg.Lookahead},
		{"max-start-age", o.maxStartAge, &cfg.MaxStartAge},
		{"retention", o.retention, &cfg.Retention},
	}
	for _, d := range durations {
		if !c.IsSet(d.flag) {
			continue
		}
		v, err := config.ParseDuration(d.src)
		if err != nil {
			return cfg, goerr.Wrap(err, "invalid duration flag", goerr.V("flag", d.flag), goerr.V("value", d.src))
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setup resolves the configuration and installs the logger in ctx and as
// the process default.
func (o *options) setup(ctx context.Context, c *cli.Command) (context.Context, config.Config, error) {
	cfg, err := o.config(c)
	if err != nil {
		return ctx, cfg, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return ctx, cfg, err
	}
	logger := logging.New(c.Root().Writer, level)
	logging.SetDefault(logger)
	return logging.With(ctx, logger), cfg, nil
}

func openStore(cfg config.Config) (seen.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.Path(sqlite.DefaultFilename))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return file.NewStore(cfg.Path(file.DefaultFilename)), func() error { return nil }, nil
	}
}

func newGoogleClient(cfg config.Config, opener *browser.Opener) (*google.Client, error) {
	credJSON, err := google.LoadCredentials(cfg.Path(google.CredentialsFilename))
	if err != nil {
		return nil, err
	}
	client, err := google.NewClient(credJSON, google.NewTokenFile(cfg.Path(google.TokenFilename)))
	if err != nil {
		return nil, err
	}
	client.CalendarID = cfg.CalendarID
	client.OpenURL = func(authURL string) {
		_ = opener.Open(authURL)
	}
	return client, nil
}
