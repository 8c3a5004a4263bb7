// Package server assembles the HTTP API: middleware, routes and lifecycle.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"expensetracker/internal/config"
	"expensetracker/internal/handlers"
	"expensetracker/internal/logger"
	"expensetracker/internal/middleware"
	"expensetracker/internal/services"
	"expensetracker/internal/validator"

	_ "expensetracker/internal/docs" // Import swagger docs
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute
)

// Server is the expense API bound to one storage backend.
type Server struct {
	cfg     *config.Config
	storage *Storage
	router  *gin.Engine
	limiter *middleware.RateLimiter
	metrics *middleware.Metrics

	bcryptCost int
}

// Option customizes a Server.
type Option func(*Server)

// WithBcryptCost overrides the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.bcryptCost = cost }
}

// New builds the router for cfg over storage.
func New(cfg *config.Config, storage *Storage, opts ...Option) *Server {
	validator.Register()

	s := &Server{
		cfg:     cfg,
		storage: storage,
		limiter: middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		metrics: middleware.NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	tokens := middleware.NewTokenManager(s.cfg.JWTSecret, s.cfg.JWTExpirationDur)

	var userService services.UserServicer
	if s.bcryptCost > 0 {
		userService = services.NewUserServiceWithCost(s.storage.Users, s.bcryptCost)
	} else {
		userService = services.NewUserService(s.storage.Users)
	}
	expenseService := services.NewExpenseService(s.storage.Expenses)
	categoryService := services.NewCategoryService(s.cfg.Categories)

	authHandler := handlers.NewAuthHandler(userService, tokens)
	expenseHandler := handlers.NewExpenseHandler(expenseService, s.metrics)
	categoryHandler := handlers.NewCategoryHandler(categoryService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(s.metrics.Middleware())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(s.cfg.CORSOrigin))
	router.NoRoute(middleware.NotFound())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", middleware.APIKeyMiddleware(s.cfg.MetricsAPIKey), gin.WrapH(s.metrics.Handler()))
	router.GET("/api/health", s.health)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Use(s.limiter.Middleware())
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.GET("/profile", authHandler.GetProfile)

	expenses := protected.Group("/expenses")
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	protected.GET("/categories", categoryHandler.ListCategories)

	return router
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.storage.Ping(ctx); err != nil {
		logger.Get().Warnw("Health check failed", "driver", s.storage.Driver, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "storage": s.storage.Driver})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": s.storage.Driver})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on cfg.Port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.Get()

	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)
	go s.limiter.RunCleanup(done, cleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting expense API on port %s (storage: %s)", s.cfg.Port, s.storage.Driver)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
