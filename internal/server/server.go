// Package server contains HTTP and WebSocket handlers for the NestAway API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "nestaway/docs" // swagger docs
	"nestaway/internal/cache"
	"nestaway/internal/config"
	"nestaway/internal/featureflags"
	"nestaway/internal/mailer"
	"nestaway/internal/middleware"
	"nestaway/internal/models"
	"nestaway/internal/notifications"
	"nestaway/internal/repository"
	"nestaway/internal/service"
	"nestaway/internal/session"
	"nestaway/internal/storage"
	"nestaway/internal/verification"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Pinger is a store whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the already-initialized collaborators of a Server. Redis, Pages,
// Store and the pingers are optional.
type Deps struct {
	Users      repository.UserRepository
	Properties repository.PropertyRepository
	Codes      verification.Registry
	Mail       mailer.Sender
	Storage    storage.ObjectStorage
	Pages      *cache.ListingCache
	Redis      *redis.Client
	// Store reports database health for /health/ready.
	Store Pinger
	// MediaRoot is served under /media when images are kept on local disk.
	MediaRoot string
}

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	redis           *redis.Client
	store           Pinger
	mediaRoot       string
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	shutdownCtx     context.Context
	shutdownFn      context.CancelFunc
	sessions        *session.Manager
	featureFlags    *featureflags.Manager
	authService     *service.AuthService
	propertyService *service.PropertyService
	notifier        *notifications.Notifier
	hub             *notifications.Hub
}

// NewServer wires services over deps.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Users == nil || deps.Properties == nil || deps.Codes == nil || deps.Mail == nil || deps.Storage == nil {
		return nil, errors.New("server: users, properties, codes, mail and storage are required")
	}

	s := &Server{
		config:         cfg,
		redis:          deps.Redis,
		store:          deps.Store,
		mediaRoot:      deps.MediaRoot,
		promMiddleware: middleware.InitMetrics("nestaway-api"),
		sessions:       session.NewManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		hub:            notifications.NewHub(),
	}

	// Without Redis this process is the only instance, so events go straight to the local hub.
	var events notifications.Publisher = s.hub
	if deps.Redis != nil {
		s.notifier = notifications.NewNotifier(deps.Redis)
		events = s.notifier
	}

	s.authService = service.NewAuthService(
		deps.Users,
		deps.Codes,
		deps.Mail,
		s.sessions,
		s.featureFlags,
		time.Duration(cfg.VerificationTTLMinutes)*time.Minute,
	)
	s.propertyService = service.NewPropertyService(service.PropertyServiceDeps{
		Properties: deps.Properties,
		Users:      deps.Users,
		Storage:    deps.Storage,
		Images:     service.NewImageService(cfg),
		Pages:      deps.Pages,
		Events:     events,
		KeyPrefix:  cfg.StoragePrefix,
	})

	return s, nil
}

// NewApp builds the Fiber application with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "NestAway API",
		// Room for a full gallery of maximum size images plus the form fields.
		BodyLimit: (models.MaxListingImages*max(s.config.ImageMaxUploadSizeMB, 1) + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, errors.New(fe.Message))
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
				"msg":   "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if s.mediaRoot != "" {
		app.Static(storage.MediaRoute, s.mediaRoot, fiber.Static{MaxAge: 86400})
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "NestAway API Metrics"}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	requireSession := middleware.SessionRequired(s.sessions, s.config.SessionCookieName)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/verify", middleware.RateLimitWithPolicy(s.redis, middleware.RateLimitPolicy{
		Name: "verify", Limit: 10, Window: 10 * time.Minute, Key: emailKey,
	}), s.Verify)
	auth.Post("/resend-code", middleware.RateLimitWithPolicy(s.redis, middleware.RateLimitPolicy{
		Name: "resend_code", Limit: 3, Window: 10 * time.Minute, Key: emailKey,
	}), s.ResendCode)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/home", requireSession, s.Home)

	properties := api.Group("/properties")
	properties.Get("/", s.ListProperties)
	properties.Post("/", requireSession,
		middleware.RateLimit(s.redis, 10, time.Hour, "create_property"), s.CreateProperty)
	// Specific routes before the generic /:id route.
	properties.Get("/user/my-properties", requireSession, s.MyProperties)
	properties.Get("/:id", s.GetProperty)

	api.Get("/ws/listings", s.ListingFeedHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis reachability. Redis is optional:
// when it is not configured it is reported but does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.store == nil {
		dbStatus = "unavailable"
	} else if err := s.store.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start listing feed wiring", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and closes feed connections. Stores are
// owned and closed by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down listing feed", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
