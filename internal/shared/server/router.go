package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"

	"legal-backend/internal/analyses"
	"legal-backend/internal/documents"
	"legal-backend/internal/intake"
	"legal-backend/internal/shared/config"
	"legal-backend/internal/shared/metrics"
	"legal-backend/internal/shared/server/middleware"
	"legal-backend/internal/shared/server/respond"
)

// publicPaths skip identity.
var publicPaths = []string{"/health", "/api/v1/health", "/metrics", "/api/v1/mode"}

// RouterDeps are the handlers mounted under /api/v1.
type RouterDeps struct {
	Intake    *intake.Handler
	Documents *documents.Handler
	Analyses  *analyses.Handler
	Limiter   *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.Auth(middleware.AuthOptions{Secret: cfg.JWTSecret, PublicPaths: publicPaths}),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: middleware.GroupByRoute,
			Limiter:  deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				middleware.GroupDefault: middleware.DefaultRule,
				middleware.GroupAnalyze: middleware.AnalyzeRule(cfg.AnalyzeRatePerMinute, cfg.AnalyzeRateBurst),
			},
		}),
	)

	health := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	}
	r.GET("/health", health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", health)
	api.GET("/me", me)
	if deps.Intake != nil {
		deps.Intake.RegisterRoutes(api)
	}
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(api)
	}
	if deps.Analyses != nil {
		deps.Analyses.RegisterRoutes(api)
	}

	return r
}

// Handler wraps the engine with CORS handling for the configured origins.
func Handler(cfg config.Config, engine http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowOrigin,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Guest-Id", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	})(engine)
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
