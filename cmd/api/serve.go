package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"legalchat/docs"
	"legalchat/internal/catalog"
	"legalchat/internal/config"
	"legalchat/internal/extract"
	"legalchat/internal/generator"
	handlers "legalchat/internal/http/handler"
	"legalchat/internal/http/middleware"
	"legalchat/internal/logging"
	"legalchat/internal/observability"
	apiotel "legalchat/internal/otel"
	"legalchat/internal/prompt"
	"legalchat/internal/repository/memory"
	"legalchat/internal/service"
	"legalchat/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// multipartOverhead is the body allowance on top of the upload limit for form boundaries and fields.
const multipartOverhead = 1 << 20

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	shutdownTracing, err := apiotel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	gen, err := generator.New(ctx, cfg.Generator, log)
	if err != nil {
		return fmt.Errorf("init generator: %w", err)
	}

	// Initialize the optional S3-compatible archive for raw uploads (MinIO-supported)
	var archive storage.Archive
	if cfg.MinIO.Enabled() {
		archive, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("init upload archive: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newServer(cfg, gen, archive, reg, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("generator", cfg.Generator.Provider),
			zap.Bool("archive", archive != nil),
		)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		log.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}

// newServer wires stores, services and routes. archive may be nil.
func newServer(
	cfg *config.AppConfig,
	gen generator.Generator,
	archive storage.Archive,
	reg *prometheus.Registry,
	log *zap.Logger,
) (*fiber.App, error) {
	refs, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load reference catalog: %w", err)
	}
	store, err := memory.NewContextStore(refs)
	if err != nil {
		return nil, fmt.Errorf("seed context store: %w", err)
	}
	ledger := memory.NewLedger()

	asmOpts := []prompt.Option{prompt.WithLogger(log)}
	if cfg.Chat.StrictDocumentIDs {
		asmOpts = append(asmOpts, prompt.WithDocumentPolicy(prompt.RejectUnknownDocuments))
	}
	if cfg.Chat.MaxContextChars > 0 {
		asmOpts = append(asmOpts, prompt.WithTruncator(prompt.TruncateRunes(cfg.Chat.MaxContextChars)))
	}
	assembler := prompt.NewAssembler(store, asmOpts...)

	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	chatSvc := service.NewChatService(ledger, assembler, gen, cfg.Chat, log, metrics)
	docSvc := service.NewDocumentService(store, extract.DefaultRegistry(), archive, gen, service.DocumentOptions{
		MaxUploadBytes:    cfg.Upload.MaxBytes,
		GenerationTimeout: cfg.Chat.GenerationTimeout,
	}, log, metrics)

	app := fiber.New(fiber.Config{
		AppName:      "legalchat",
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Upload.MaxBytes) + multipartOverhead,
		// Chat requests wait on the generator.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Chat.GenerationTimeout + 10*time.Second,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMW.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Services{
		Chat:      chatSvc,
		Documents: docSvc,
		Contexts:  store,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})

	return app, nil
}
