package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/codex-crm/internal/adapters/events/rabbitmq"
	"github.com/ogurasousui/codex-crm/internal/adapters/grpc/handler"
	httpapi "github.com/ogurasousui/codex-crm/internal/adapters/http"
	"github.com/ogurasousui/codex-crm/internal/adapters/repository/memory"
	"github.com/ogurasousui/codex-crm/internal/app"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/ogurasousui/codex-crm/internal/platform/config"
	pg "github.com/ogurasousui/codex-crm/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-crm/internal/platform/logger"
	"github.com/ogurasousui/codex-crm/internal/platform/server"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logger, nil)
	if err != nil {
		return err
	}
	ctx = log.WithContext(ctx)

	repos, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	events, closeEvents := openEvents(ctx, cfg.Events, log)
	defer closeEvents()

	c := app.New(repos, app.Options{Events: events, Atomic: cfg.Orchestrator.Atomic})

	grpcServer := server.New(cfg.Server.ListenAddr, log, func(s grpc.ServiceRegistrar) {
		handler.RegisterEmployeeServer(s, handler.NewEmployeeGrpcHandler(c.Employees))
		handler.RegisterWorkflowServer(s, handler.NewWorkflowGrpcHandler(c.Workflows))
	})

	httpServer, err := newHTTPServer(cfg, c, log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	if httpServer != nil {
		g.Go(func() error { return httpServer.Run(ctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// newHTTPServer は REST API サーバーを構築します。http.listen_addr が空の場合は nil を返します。
func newHTTPServer(cfg *config.Config, c *app.Container, log zerolog.Logger) (*server.HTTPServer, error) {
	if cfg.HTTP.ListenAddr == "" {
		return nil, nil
	}
	h, err := httpapi.NewHandler(httpapi.Services{
		Employees: c.Employees,
		Customers: c.Customers,
		Notes:     c.Notes,
		Inactive:  c.Inactive,
		Workflows: c.Workflows,
	}, httpapi.Options{
		Logger:         log,
		AllowedOrigins: cfg.HTTP.CORS.AllowedOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimit.RPS,
		RateLimitBurst: cfg.HTTP.RateLimit.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("build http handler: %w", err)
	}
	return server.NewHTTP(cfg.HTTP.ListenAddr, h, log, server.HTTPOptions{
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}), nil
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (app.Repositories, func(), error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return app.MemoryRepositories(memory.NewStore()), func() {}, nil
	}

	pool, err := pg.NewPool(ctx, cfg.Database, log, cfg.Logger.DBTraceLevel)
	if err != nil {
		return app.Repositories{}, nil, fmt.Errorf("initialize database pool: %w", err)
	}
	return app.PostgresRepositories(pool, pg.NewTransactionManager(pool)), pool.Close, nil
}

func openEvents(ctx context.Context, cfg config.EventsConfig, log zerolog.Logger) (orchestrator.EventPublisher, func()) {
	if !cfg.Enabled {
		return orchestrator.NoopPublisher{}, func() {}
	}

	publisher, err := rabbitmq.New(ctx, rabbitmq.Options{
		Connection: rabbitmq.ConnectionOptions{
			URL:           cfg.URL,
			RetryAttempts: cfg.RetryAttempts,
			Delay:         cfg.RetryDelay,
		},
		Exchange: cfg.Exchange,
		Producer: cfg.Producer,
	})
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq unavailable; events will only be logged")
		return rabbitmq.NewFallback(log), func() {}
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("close rabbitmq publisher")
		}
	}
}
