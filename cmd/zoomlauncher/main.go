package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/guilherme-santos/zoomlauncher/calendar/google"
	"github.com/guilherme-santos/zoomlauncher/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		logger := logging.Default()
		logger.Error("zoomlauncher failed", "error", err)
		if errors.Is(err, google.ErrCredentialsNotFound) {
			logger.Error("Create an OAuth client ID of type Desktop app in the Google Cloud console, enable the Calendar API and save the JSON as credentials.json in the data directory")
		}
		if google.IsUnauthorized(err) {
			logger.Error("The saved token was rejected, run `zoomlauncher login` to authorize again")
		}
		os.Exit(1)
	}
}
