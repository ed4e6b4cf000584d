// cmd/feastfox/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"feastfox/internal/client"
	"feastfox/internal/config"
	"feastfox/internal/logging"
	"feastfox/internal/mock"
	"feastfox/internal/tui"
	"feastfox/internal/views"
)

var (
	apiURL   = flag.String("api-url", "", "Base URL of the FeastFox API (overrides FEASTFOX_API_URL)")
	useMock  = flag.Bool("mock", false, "Use the in-process mock instead of a server")
	logLevel = flag.String("log-level", "", "Log level for stderr output (overrides FEASTFOX_LOG_LEVEL, default warn)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.Client.APIURL = *apiURL
	}
	if *useMock {
		cfg.Client.UseMock = true
	}

	logging.Setup(os.Stderr, resolveLogLevel(*logLevel, cfg.LogLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		api  *client.Client
		opts []views.CoordinatorOption
	)
	if cfg.Client.UseMock {
		// The mock answers the API paths in process; the client code path is
		// the same as against a real server.
		api = client.New(cfg.Client.APIURL, client.WithHTTPClient(mock.NewHTTPClient(mock.NewSeeded())))
	} else {
		api = client.New(cfg.Client.APIURL)
		if cfg.Client.Watch {
			opts = append(opts, views.WithChangeFeed(api.WatchChanges))
		}
	}
	log.Debug().Str("api", api.BaseURL()).Bool("mock", cfg.Client.UseMock).Msg("starting feastfox")

	coord := views.NewCoordinator(ctx, api, opts...)
	defer coord.Close()

	if err := tui.Run(ctx, coord, cfg.Client.UseMock); err != nil {
		log.Error().Err(err).Msg("terminal ui failed")
		os.Exit(1)
	}
}

// resolveLogLevel prefers the flag, then the configured level, then warn so
// log lines stay out of the terminal UI.
func resolveLogLevel(flagValue, configured string) string {
	if flagValue != "" {
		return flagValue
	}
	if configured != "" {
		return configured
	}
	return "warn"
}
