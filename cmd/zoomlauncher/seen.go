package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/guilherme-santos/zoomlauncher/internal/seen"
)

func seenCommand() *cli.Command {
	var opts options
	return &cli.Command{
		Name:  "seen",
		Usage: "List the meetings already opened",
		Flags: opts.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, cfg, err := opts.setup(ctx, c)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := store.Load(ctx)
			if err != nil {
				return err
			}
			return printEntries(c.Root().Writer, entries, time.Now())
		},
	}
}

func pruneCommand() *cli.Command {
	var opts options
	return &cli.Command{
		Name:  "prune",
		Usage: "Forget opened meetings older than the retention period",
		Flags: opts.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, cfg, err := opts.setup(ctx, c)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := store.Prune(ctx, time.Now(), cfg.Retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "pruned %d entries\n", n)
			return nil
		},
	}
}

func printEntries(w io.Writer, entries []seen.Entry, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EVENT\tKIND\tAGE")
	for _, e := range entries {
		age := "-"
		if e.Kind == seen.Timestamped {
			age = now.Sub(e.At).Truncate(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Kind, age)
	}
	return tw.Flush()
}
