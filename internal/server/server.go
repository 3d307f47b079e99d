// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"duskblog/internal/auth"
	"duskblog/internal/cache"
	"duskblog/internal/config"
	"duskblog/internal/database"
	"duskblog/internal/mail"
	"duskblog/internal/middleware"
	"duskblog/internal/repository"
	"duskblog/internal/service"
	"duskblog/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *database.Mongo
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	tokens  *auth.TokenService
	session *middleware.Session
	uploads storage.Store
	oauth   *oauth2.Config

	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	activityRepo repository.ActivityLogRepository

	userService     *service.UserService
	postService     *service.PostService
	commentService  *service.CommentService
	activityService *service.ActivityService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	uploads, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload storage failed: %w", err)
	}

	mailer := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	return NewServerWithDeps(cfg, db, redisClient, mailer, uploads)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *database.Mongo, redisClient *redis.Client, mailer mail.Sender, uploads storage.Store) (*Server, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("duskblog-api")

	tokens := auth.NewTokenService(userRepo,
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	session := middleware.NewSession(tokens, userRepo, middleware.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
	})

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		tokens:         tokens,
		session:        session,
		uploads:        uploads,
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		activityRepo:   activityRepo,
	}

	server.activityService = service.NewActivityService(activityRepo)
	server.userService = service.NewUserService(userRepo, mailer, cfg.FrontendURL, cfg.AdminEmail)
	server.postService = service.NewPostService(postRepo, commentRepo, server.activityService)
	server.commentService = service.NewCommentService(commentRepo, userRepo)

	if cfg.GoogleClientID != "" {
		server.oauth = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Distributed tracing spans per request
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS must allow credentials: the session rides on cookies.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Dusk Blog Metrics Dashboard",
	}))

	// Uploaded images are served from disk
	app.Static("/uploads", s.config.UploadDir)

	authRequired := s.session.RequireAuth()

	// User routes live at the root, not under /api
	user := app.Group("/user")
	user.Get("/test", s.TestBanner)
	user.Post("/signup", s.Signup)
	user.Post("/login", s.Login)
	user.Get("/google", s.GoogleLogin)
	user.Get("/google/callback", s.GoogleCallback)
	user.Post("/forgot-password", s.ForgotPassword)
	user.Post("/reset-password/:userId", s.ResetPassword)
	user.Post("/contact-admin", s.ContactAdmin)
	user.Get("/me", s.Me)
	user.Post("/signout", authRequired, s.SignOut)
	user.Post("/update/:id", authRequired, s.UpdateUser)
	user.Delete("/delete/:id", authRequired, s.DeleteUser)
	user.Get("/allUsers", authRequired, s.GetAllUsers)
	user.Delete("/delete-account/:userId", authRequired, s.DeleteAccount)

	// Post routes
	post := api.Group("/post")
	post.Get("/pages", s.GetPostPages)
	post.Post("/create", authRequired, s.CreatePost)
	post.Put("/update/:postId", authRequired, s.UpdatePost)
	post.Delete("/delete/:postId", authRequired, s.DeletePost)
	// Generic /:id route must be last
	post.Get("/:id", s.GetPost)

	// Comment routes
	comment := api.Group("/comment")
	comment.Get("/", s.GetAllComments)
	comment.Put("/like/:commentId", authRequired, s.LikeComment)
	comment.Put("/dislike/:commentId", authRequired, s.DislikeComment)
	comment.Delete("/delete/:commentId", authRequired, s.DeleteComment)
	comment.Post("/:postId/:userId", authRequired, s.CreateComment)
	// Generic /:postId route must be last
	comment.Get("/:postId", s.GetPostComments)

	// Activity log routes
	logs := api.Group("/log", authRequired)
	logs.Get("/all", s.GetActivityLogs)

	// Image upload
	api.Post("/upload", authRequired, s.UploadImage)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := s.db.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// The cache is optional, so Redis never fails readiness outright.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// Shutdown releases the server's backing resources. The HTTP listener
// itself is stopped by the caller before this runs.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.db.Close(ctx); err != nil {
		log.Printf("error closing MongoDB client: %v", err)
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
