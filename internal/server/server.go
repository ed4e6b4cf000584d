// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"feastfox/internal/storage"
)

const (
	serviceName    = "feastfox-backend"
	serviceVersion = "1.0.0"
)

type Config struct {
	Host        string
	Port        int
	CORSOrigins []string
	Store       storage.Options
}

type FeastFoxServer struct {
	engine     *gin.Engine
	httpServer *http.Server
	store      storage.Store
	hub        *Hub
	config     *Config
}

// NewFeastFoxServer opens the configured store and builds the server around
// it.
func NewFeastFoxServer(ctx context.Context, cfg *Config) (*FeastFoxServer, error) {
	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return NewWithStore(cfg, store), nil
}

// NewWithStore builds the server over an already opened store. The server
// takes ownership of the store and closes it in Stop.
func NewWithStore(cfg *Config, store storage.Store) *FeastFoxServer {
	s := &FeastFoxServer{
		store:  store,
		hub:    NewHub(cfg.CORSOrigins),
		config: cfg,
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), requestLogger(), corsMiddleware(cfg.CORSOrigins))
	s.registerRoutes(s.engine)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *FeastFoxServer) Handler() http.Handler {
	return s.engine
}

func (s *FeastFoxServer) Addr() string {
	return s.httpServer.Addr
}

func (s *FeastFoxServer) Start(ctx context.Context) error {
	log.Info().Str("addr", s.httpServer.Addr).Str("store", s.config.Store.Backend).Msg("starting feastfox server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *FeastFoxServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.hub.Close()
	if s.store != nil {
		if cerr := s.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
