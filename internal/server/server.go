package server

import (
	"context"
	"net/http"
	"time"

	"novelhub/internal/auth"
	"novelhub/internal/config"
	"novelhub/internal/novel"
	"novelhub/internal/settings"
	"novelhub/internal/user"
	"novelhub/internal/wallet"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services are the domain services the HTTP layer routes to.
type Services struct {
	Users    user.Service
	Novels   novel.Service
	Settings settings.Service
	Wallet   wallet.Service
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

func New(cfg *config.Config, svc Services) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.AllowedOrigins))
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userHandler := user.NewHandler(svc.Users)
	novelHandler := novel.NewHandler(svc.Novels)
	settingsHandler := settings.NewHandler(svc.Settings)
	walletHandler := wallet.NewHandler(svc.Wallet)

	limited := RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", limited, userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	router.GET("/settings", settingsHandler.GetPublic)

	optional := auth.OptionalAuth(cfg.JWTSecret)
	catalog := router.Group("/")
	catalog.Use(optional)
	{
		catalog.GET("/novels", novelHandler.ListNovels)
		catalog.GET("/novels/:id", novelHandler.GetNovel)
		catalog.GET("/novels/:id/chapters", novelHandler.ListChapters)
		catalog.GET("/chapters/:id", novelHandler.GetChapter)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.POST("/users/purchase/:chapterId", limited, walletHandler.Purchase)
		protected.POST("/users/add-coins", limited, walletHandler.AddCoins)
		protected.GET("/users/transactions", walletHandler.ListTransactions)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(user.RoleAdmin))
	{
		admin.GET("/settings", settingsHandler.Get)
		admin.PUT("/settings", settingsHandler.Update)
		admin.POST("/novels", novelHandler.CreateNovel)
		admin.PUT("/novels/:id", novelHandler.UpdateNovel)
		admin.POST("/novels/:id/chapters", novelHandler.CreateChapter)
		admin.PUT("/chapters/:id", novelHandler.UpdateChapter)
	}

	return &Server{
		router: router,
		config: cfg,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowCredentials = false
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
