// cmd/feastfox-server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"feastfox/internal/config"
	"feastfox/internal/logging"
	"feastfox/internal/server"
)

var (
	port      = flag.Int("port", 0, "Port for HTTP transport (overrides FEASTFOX_PORT)")
	host      = flag.String("host", "", "Host address (overrides FEASTFOX_HOST)")
	storeName = flag.String("store", "", "Store backend: memory, sqlite, dynamodb or postgres")
	dbPath    = flag.String("db-path", "", "SQLite database path")
	version   = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("feastfox-server version 1.0.0")
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *storeName != "" {
		cfg.Store.Backend = *storeName
	}
	if *dbPath != "" {
		cfg.Store.DBPath = *dbPath
	}

	logging.Setup(os.Stderr, cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := server.NewFeastFoxServer(ctx, &server.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
		Store:       cfg.StoreOptions(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		log.Info().Msg("received shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	log.Info().Msg("shutting down")
	cancel()
	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
