package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/cache"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/config"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/database"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/flags"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/middleware"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/repository"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/service"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/worker"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client
	prom   *fiberprometheus.FiberPrometheus

	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	userRepo         repository.UserRepository
	listingRepo      repository.ListingRepository
	verificationRepo repository.VerificationRepository
	reportRepo       repository.ReportRepository
	entitlementRepo  repository.EntitlementRepository
	analyticsRepo    repository.AnalyticsRepository

	featureFlags *flags.Manager

	verificationService *service.VerificationService
	moderationService   *service.ModerationService
	entitlementService  *service.EntitlementService
	analyticsService    *service.AnalyticsService

	expiryScanner *worker.ExpiryScanner
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	clock := service.SystemClock()
	notifier := service.NewLogNotifier()

	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		prom:             fiberprometheus.New("sublimes-drive-api"),
		userRepo:         repository.NewUserRepository(db),
		listingRepo:      repository.NewListingRepository(db),
		verificationRepo: repository.NewVerificationRepository(db),
		reportRepo:       repository.NewReportRepository(db),
		entitlementRepo:  repository.NewEntitlementRepository(db),
		analyticsRepo:    repository.NewAnalyticsRepository(db),
		featureFlags:     flags.NewManager(cfg.FeatureFlags),
	}
	server.shutdownCtx, server.shutdownFn = context.WithCancel(context.Background())

	server.verificationService = service.NewVerificationService(server.verificationRepo, server.userRepo, notifier, clock)
	server.moderationService = service.NewModerationService(server.reportRepo, server.listingRepo, server.userRepo, notifier, clock)
	server.entitlementService = service.NewEntitlementService(server.entitlementRepo, clock)

	// The debounce map is per-instance unless Redis is up, in which case a
	// shared SET NX store keeps counts honest across replicas.
	var debounce service.DebounceStore
	if redisClient != nil {
		debounce = cache.NewRedisDebounce(redisClient, "debounce:impression:")
	} else {
		debounce = service.NewMemoryDebounce(clock)
	}
	// The sample percentage knob joins the flag manager so the refresh
	// rollout is evaluated like any other flag and visible on /admin/flags.
	server.featureFlags.SetRollout(service.StatsRefreshFlag, cfg.StatsSamplePercent)
	server.analyticsService = service.NewAnalyticsService(
		server.analyticsRepo, debounce, clock, cfg.DebounceWindow(), server.featureFlags)

	server.expiryScanner = worker.NewExpiryScanner(server.entitlementRepo, clock, cfg.ScannerInterval())

	middleware.InitMiddleware(cfg)

	return server, nil
}

// StartWorkers launches background loops (the boost expiry scanner).
func (s *Server) StartWorkers() {
	s.expiryScanner.Start(s.shutdownCtx)
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.RequestLogger())

	s.prom.RegisterAt(app, "/metrics")
	app.Use(s.prom.Middleware)

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(strings.Split(s.config.AllowedOrigins, ","), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
}

// SetupRoutes registers all API routes.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/healthz", s.HealthCheck)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)

	// Engagement tracking is unauthenticated and fire-and-forget.
	api.Post("/track", s.TrackEvent)

	authed := api.Group("", middleware.AuthRequired, middleware.ContextMiddleware())

	authed.Post("/listings", s.CreateListing)
	authed.Post("/listings/:id/report",
		middleware.RateLimit(s.redis, 10, time.Hour, "file-report"), s.FileReport)

	authed.Post("/verifications", s.SubmitVerification)
	authed.Get("/verifications/latest", s.LatestVerification)

	authed.Post("/boosts", s.GrantBoost)
	authed.Get("/boosts/:entityId/active", s.IsBoosted)

	authed.Post("/offers/:id/claim", s.ClaimOffer)
	authed.Post("/redemptions/:code/redeem", s.RedeemCode)
	authed.Get("/offers/:id/stats", s.OfferStats)

	admin := authed.Group("/admin", middleware.ModeratorRequired)
	admin.Get("/verifications", s.ListPendingVerifications)
	admin.Get("/verifications/pending-count", s.PendingVerificationCount)
	admin.Post("/verifications/:id/review", s.ReviewVerification)
	admin.Get("/reports", s.ListReports)
	admin.Post("/reports/:id/resolve", s.ResolveReport)
	admin.Post("/reports/bulk-resolve", s.BulkResolveReports)
	admin.Post("/offers", s.CreateOffer)
	admin.Get("/flags", s.ListFlags)
}

// ListFlags exposes the effective feature-flag configuration to operators.
func (s *Server) ListFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"flags": s.featureFlags.Raw()})
}

// HealthCheck reports liveness and database reachability.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Shutdown releases server resources. Every store is closed even when an
// earlier close fails; the errors are joined so none is lost.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownFn()

	var closers []func() error
	if s.redis != nil {
		closers = append(closers, s.redis.Close)
	}
	closers = append(closers, func() error {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return closeAll(closers...)
}

// closeAll runs every closer and joins their errors.
func closeAll(closers ...func() error) error {
	var errs []error
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
