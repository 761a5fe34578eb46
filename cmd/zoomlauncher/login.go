package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/guilherme-santos/zoomlauncher/browser"
	"github.com/guilherme-santos/zoomlauncher/internal/logging"
)

func loginCommand() *cli.Command {
	var opts options
	return &cli.Command{
		Name:  "login",
		Usage: "Authorize read access to Google Calendar and save the token",
		Flags: opts.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, cfg, err := opts.setup(ctx, c)
			if err != nil {
				return err
			}

			client, err := newGoogleClient(cfg, browser.New(cfg.Browser))
			if err != nil {
				return err
			}
			tok, err := client.Login(ctx)
			if err != nil {
				return err
			}
			if err := client.SaveToken(tok); err != nil {
				return err
			}

			logging.From(ctx).Info("Token saved", "expiry", tok.Expiry)
			return nil
		},
	}
}
