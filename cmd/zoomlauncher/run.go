package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/guilherme-santos/zoomlauncher/browser"
	"github.com/guilherme-santos/zoomlauncher/internal/launcher"
	"github.com/guilherme-santos/zoomlauncher/internal/logging"
)

func runCommand() *cli.Command {
	var opts options
	return &cli.Command{
		Name:   "run",
		Usage:  "Check the calendar once and open the meeting starting now",
		Flags:  opts.flags(),
		Action: opts.run,
	}
}

func (o *options) run(ctx context.Context, c *cli.Command) error {
	ctx, cfg, err := o.setup(ctx, c)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	opener := browser.New(cfg.Browser)
	client, err := newGoogleClient(cfg, opener)
	if err != nil {
		return err
	}

	l := launcher.New(client, opener, store, launcher.Options{
		Lookback:    cfg.Lookback,
		Lookahead:   cfg.Lookahead,
		MaxStartAge: cfg.MaxStartAge,
		Retention:   cfg.Retention,
	})
	report, err := l.Run(ctx, time.Now())
	if err != nil {
		return err
	}

	logging.From(ctx).Debug("Run finished",
		"events", report.Events,
		"opened", len(report.Opened),
		"skipped", report.Skipped,
		"no_link", report.NoLink,
		"pruned", report.Pruned,
	)
	return nil
}
