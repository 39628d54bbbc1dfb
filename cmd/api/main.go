package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"meetapi/internal/billing"
	"meetapi/internal/config"
	"meetapi/internal/database"
	"meetapi/internal/database/migration"
	openaiengine "meetapi/internal/engine/openai"
	"meetapi/internal/export"
	handlers "meetapi/internal/http/handler"
	"meetapi/internal/http/middleware"
	"meetapi/internal/otel"
	"meetapi/internal/repository/postgres"
	"meetapi/internal/service"
	"meetapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// External engines and collaborators
	transcriber, err := openaiengine.NewTranscriber(cfg.OpenAI)
	if err != nil {
		log.Fatalf("failed to initialize transcription engine: %v", err)
	}
	summarizer, err := openaiengine.NewSummarizer(cfg.OpenAI)
	if err != nil {
		log.Fatalf("failed to initialize summarization engine: %v", err)
	}
	renderer, err := export.NewHTTPRenderer(cfg.Export)
	if err != nil {
		log.Fatalf("failed to initialize document renderer: %v", err)
	}

	var usage service.UsageRecorder = billing.LogUsageRecorder{}
	if cfg.Billing.UsageURL != "" {
		usage = billing.NewHTTPUsageRecorder(cfg.Billing.UsageURL, time.Duration(cfg.Billing.TimeoutSec)*time.Second)
	}

	// Repositories and services
	meetingRepo := postgres.NewMeetingPostgres(db)
	fragmentRepo := postgres.NewFragmentPostgres(db)

	sessions := service.NewSessionRegistry(meetingRepo, fragmentRepo, objStore, cfg.Recording)
	guard := service.NewDurationGuard(sessions)
	ingester := service.NewFragmentIngester(sessions, guard, meetingRepo, fragmentRepo, objStore, cfg.Recording.MaxFragmentBytes)
	assembler := service.NewTranscriptAssembler(fragmentRepo, objStore, transcriber)
	coordinator := service.NewProcessingCoordinator(sessions, assembler, summarizer, meetingRepo, fragmentRepo, usage, cfg.Recording.BarrierMaxAttempts)
	exporter := service.NewExportBridge(sessions, renderer, objStore, time.Duration(cfg.Export.URLExpirySec)*time.Second)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promRegistry := prometheus.NewRegistry()
	promMiddleware, err := middleware.NewPrometheusMiddleware(promRegistry)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())

	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, handlers.Services{
		Sessions:    sessions,
		Ingester:    ingester,
		Coordinator: coordinator,
		Exporter:    exporter,
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
