package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certdocs/docs"
	"certdocs/internal/auth"
	"certdocs/internal/config"
	"certdocs/internal/database"
	"certdocs/internal/database/migration"
	"certdocs/internal/generator"
	handlers "certdocs/internal/http/handler"
	"certdocs/internal/http/middleware"
	"certdocs/internal/logging"
	"certdocs/internal/metrics"
	"certdocs/internal/model"
	"certdocs/internal/otel"
	"certdocs/internal/pdfstamp"
	"certdocs/internal/repository/postgres"
	"certdocs/internal/service"
	"certdocs/internal/sibling"
	"certdocs/internal/storage"
)

// @title Certification Documents API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	logger := logging.NewJSON(os.Stdout, loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is required")
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	objStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics, err := metrics.NewDomain(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}

	generators, templates := buildGenerators(ctx, cfg, logger, domainMetrics)
	defaultStrategy, ok := generator.ParseStrategy(cfg.Generator.DefaultStrategy)
	if _, available := generators[defaultStrategy]; !ok || !available {
		logger.Warn(ctx, "default generation strategy unavailable, using local",
			"configured", cfg.Generator.DefaultStrategy)
		defaultStrategy = generator.StrategyLocal
	}

	// Initialize repositories and services
	artifactRepo := postgres.NewArtifactPostgres(db)
	artifactSvc := service.NewArtifactService(objStore, artifactRepo, logger)
	formSvc := service.NewFormService(service.FormServiceDeps{
		Generators:      generators,
		Templates:       templates,
		DefaultStrategy: defaultStrategy,
		Stamper:         pdfstamp.New(),
		Presets:         cfg.Stamp.Presets,
		Artifacts:       artifactSvc,
		Log:             logger,
	})
	siblings := sibling.NewClient(cfg.Sibling.DocumentsBaseURL, cfg.Sibling.Timeout)
	bundleSvc := service.NewBundleService(artifactRepo, objStore, siblings, domainMetrics, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(logger),
		BodyLimit:    64 << 20,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.LoggerWithWriter(os.Stdout, loc))
	app.Use(promMW.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:         db,
		Artifacts:  artifactSvc,
		Forms:      formSvc,
		Bundles:    bundleSvc,
		Verifier:   auth.NewVerifier([]byte(cfg.Auth.JWTSecret)),
		CookieName: cfg.Auth.CookieName,
		LinkExpiry: cfg.Storage.LinkExpiry,
		Log:        logger,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logger.Error(context.Background(), "server shutdown failed", "err", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info(ctx, "server starting", "addr", addr, "default_strategy", defaultStrategy, "storage", cfg.Storage.Driver)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn(flushCtx, "tracer shutdown failed", "err", err)
	}
}

// buildGenerators wires the local generator, and the remote one when Google
// credentials are configured, with the template reference of each form kind.
func buildGenerators(ctx context.Context, cfg *config.AppConfig, logger logging.Logger, m *metrics.Domain) (map[generator.Strategy]generator.Generator, service.FormTemplates) {
	conv := generator.NewConverter(generator.ConverterOptions{
		Bin:           cfg.Generator.ConverterBin,
		WorkDir:       cfg.Generator.WorkDir,
		Timeout:       cfg.Generator.ConverterTimeout,
		MaxConcurrent: cfg.Generator.MaxConcurrentConvs,
	}, logger, m)

	generators := map[generator.Strategy]generator.Generator{
		generator.StrategyLocal: generator.NewLocal(generator.Templates(cfg.Generator.TemplateDir), conv, logger),
	}
	templates := service.FormTemplates{
		generator.StrategyLocal: {
			model.KindMedicalForm:       generator.LocalTemplateRef(model.KindMedicalForm),
			model.KindPsychologicalForm: generator.LocalTemplateRef(model.KindPsychologicalForm),
		},
	}

	if cfg.Google.CredentialsFile == "" {
		logger.Warn(ctx, "google credentials not configured, remote generation disabled")
		return generators, templates
	}
	creds, err := os.ReadFile(cfg.Google.CredentialsFile)
	if err != nil {
		log.Fatalf("failed to read google credentials: %v", err)
	}
	docsSvc, driveSvc, err := generator.NewGoogleServices(ctx, creds)
	if err != nil {
		log.Fatalf("failed to initialize google clients: %v", err)
	}
	api := generator.NewGoogleTemplateAPI(docsSvc, driveSvc, cfg.Google.RequestsPerSecond, cfg.Google.Burst)
	generators[generator.StrategyRemote] = generator.NewRemote(api, logger)
	templates[generator.StrategyRemote] = map[model.Kind]string{
		model.KindMedicalForm:       cfg.Google.MedicalTemplateID,
		model.KindPsychologicalForm: cfg.Google.PsychologicalTemplateID,
	}
	return generators, templates
}
