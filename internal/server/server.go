package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/dgaponov99/practicum-my-blog/docs" // swagger docs
	"github.com/dgaponov99/practicum-my-blog/internal/bootstrap"
	"github.com/dgaponov99/practicum-my-blog/internal/cache"
	"github.com/dgaponov99/practicum-my-blog/internal/config"
	"github.com/dgaponov99/practicum-my-blog/internal/featureflags"
	"github.com/dgaponov99/practicum-my-blog/internal/middleware"
	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/notifications"
	"github.com/dgaponov99/practicum-my-blog/internal/repository"
	"github.com/dgaponov99/practicum-my-blog/internal/service"
	"github.com/dgaponov99/practicum-my-blog/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "myblog-api"

// globalRequestLimit is the per-IP request budget per minute across all routes.
const globalRequestLimit = 300

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	images         storage.ImageStore
	notifier       *notifications.Notifier
	featureFlags   *featureflags.Manager
	postService    *service.PostService
	commentService *service.CommentService
	stopEvents     context.CancelFunc
}

// NewServer connects the database, Redis and the image store described by
// cfg and creates a server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{SeedDemo: cfg.DevSeedDemo})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Images)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case caching, events and Redis-backed
// rate limits are skipped.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images storage.ImageStore) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		images:         images,
		notifier:       notifications.NewNotifier(redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}
	s.initServices()
	return s, nil
}

// initServices builds the services from the server's repositories. It runs
// once before any handler is registered.
func (s *Server) initServices() {
	svcCfg := service.PostServiceConfig{}
	if s.config != nil {
		svcCfg.CacheTTL = cache.PostTTL(s.config.PostCacheTTLSec)
		svcCfg.MaxImageBytes = int64(s.config.ImageMaxUploadSizeMB) * 1024 * 1024
	}
	s.postService = service.NewPostService(s.postRepo, s.commentRepo, s.images, s.featureFlags, s.notifier, svcCfg)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.notifier)
}

// NewApp creates the Fiber application with the server's error handler and
// JSON codec.
func (s *Server) NewApp() *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if s.config != nil && s.config.ImageMaxUploadSizeMB > 0 {
		// Leave room for multipart framing around the image.
		bodyLimit = (s.config.ImageMaxUploadSizeMB + 1) * 1024 * 1024
	}

	return fiber.New(fiber.Config{
		AppName:     "My Blog API",
		BodyLimit:   bodyLimit,
		JSONEncoder: jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder: jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, fe)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID and trace ID first so every later log line carries them.
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        globalRequestLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
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

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/feature-flags", s.GetFeatureFlags)
	api.Get("/events", s.EventsUpgrade, s.EventsStream())

	posts := api.Group("/posts")
	posts.Get("/", middleware.RateLimit(s.redis, 120, time.Minute, "search"), s.SearchPosts)
	posts.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "create_post"), s.CreatePost)

	// Specific /:postId/:resource routes before the generic /:postId routes.
	posts.Post("/:postId/likes", s.LikePost)
	posts.Put("/:postId/image", middleware.RateLimit(s.redis, 10, time.Minute, "upload_image"), s.UploadPostImage)
	posts.Get("/:postId/image", s.GetPostImage)

	posts.Get("/:postId/comments", s.GetComments)
	posts.Post("/:postId/comments", middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:postId/comments/:commentId", s.GetComment)
	posts.Put("/:postId/comments/:commentId", s.UpdateComment)
	posts.Delete("/:postId/comments/:commentId", s.DeleteComment)

	posts.Get("/:postId", s.GetPost)
	posts.Put("/:postId", s.UpdatePost)
	posts.Delete("/:postId", s.DeletePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: without
// it the blog serves uncached, so only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unavailable"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// GetFeatureFlags returns the configured feature flags and whether each is on.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(),
	})
}

// Start builds the app and listens on the configured port. It blocks until
// the listener stops.
func (s *Server) Start() error {
	app := s.NewApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.watchEvents()

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// watchEvents logs every published blog event at debug level. It is a no-op
// without Redis.
func (s *Server) watchEvents() {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	err := s.notifier.Subscribe(ctx, func(ev notifications.Event) {
		middleware.Logger.Debug("blog event",
			slog.String("type", ev.Type),
			slog.Time("occurred_at", ev.OccurredAt),
		)
	})
	if err != nil {
		cancel()
		middleware.Logger.Warn("event subscription failed", slog.String("error", err.Error()))
		return
	}
	s.stopEvents = cancel
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopEvents != nil {
		s.stopEvents()
	}
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing database", slog.String("error", cerr.Error()))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
