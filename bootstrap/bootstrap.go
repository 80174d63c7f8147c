// Package bootstrap wires configuration, adapters, and the engine into a
// runnable server. It is the only place that knows about every adapter.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/artpar/rpcgate/adapters/auth"
	gatehttp "github.com/artpar/rpcgate/adapters/http"
	"github.com/artpar/rpcgate/adapters/metrics"
	"github.com/artpar/rpcgate/adapters/sqlite"
	"github.com/artpar/rpcgate/app"
	"github.com/artpar/rpcgate/config"
	"github.com/artpar/rpcgate/core/openapi"
	"github.com/artpar/rpcgate/domain/procedure"
	"github.com/artpar/rpcgate/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// App is the assembled application.
type App struct {
	Config *config.Config
	Engine *app.Engine
	Logger zerolog.Logger

	server *http.Server
	db     *sqlite.DB
}

// New assembles an application from configuration and a procedure table.
func New(cfg *config.Config, table *procedure.Table) (*App, error) {
	logger := NewLogger(cfg.Logging)

	var authz ports.ContextBuilder
	if cfg.Auth.Mode == "apikey" {
		keys := make(map[string]string, len(cfg.Auth.Keys))
		for _, k := range cfg.Auth.Keys {
			keys[k.ID] = k.Hash
		}
		authz = auth.NewKeyAuthenticator(keys)
	}

	var m ports.Metrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metricsHandler = promhttp.Handler()
	}

	engine := app.NewEngine(app.EngineDeps{
		Table:   table,
		Auth:    authz,
		Metrics: m,
		Logger:  logger,
	}, app.EngineConfig{
		MaxBodyBytes: cfg.Engine.MaxBodyBytes,
	})

	var logStore ports.RequestLogStore
	var db *sqlite.DB
	if cfg.Database.DSN != "" {
		var err error
		db, err = sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open request log database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate request log database: %w", err)
		}
		logStore = sqlite.NewRequestLogStore(db)
	}

	var doc []byte
	if cfg.Docs.Enabled {
		var err error
		doc, err = GenerateDoc(cfg, table)
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, err
		}
	}

	handler := gatehttp.NewHandler(gatehttp.Deps{
		Engine:       engine,
		Logger:       logger,
		Log:          logStore,
		MaxBodyBytes: cfg.Engine.MaxBodyBytes,
	})
	router := handler.Router(gatehttp.RouterOptions{
		OpenAPIDoc: doc,
		Metrics:    metricsHandler,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		Config: cfg,
		Engine: engine,
		Logger: logger,
		server: server,
		db:     db,
	}, nil
}

// GenerateDoc renders the OpenAPI document for the table using the
// configured metadata. The docs command uses this without a server.
func GenerateDoc(cfg *config.Config, table *procedure.Table) ([]byte, error) {
	servers := make([]openapi.Server, 0, len(cfg.Docs.Servers))
	for _, u := range cfg.Docs.Servers {
		servers = append(servers, openapi.Server{URL: u})
	}
	gen := openapi.NewGenerator(table, openapi.Info{
		Title:       cfg.Docs.Title,
		Version:     cfg.Docs.Version,
		Description: cfg.Docs.Description,
	}, servers...)

	doc, err := gen.Generate().ToJSON()
	if err != nil {
		return nil, fmt.Errorf("generate openapi document: %w", err)
	}
	return doc, nil
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails. Shutdown is graceful with a 10 second drain.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	a.Logger.Info().Str("addr", a.server.Addr).Msg("server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Close releases resources held by the app.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// NewLogger builds the root logger from logging configuration.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
