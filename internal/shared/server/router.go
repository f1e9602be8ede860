package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-critic/internal/analyses"
	"resume-critic/internal/services/health"
	"resume-critic/internal/shared/config"
	"resume-critic/internal/shared/metrics"
	"resume-critic/internal/shared/server/middleware"
	"resume-critic/internal/shared/server/respond"
)

const completionRateLimitGroup = "COMPLETION"

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	Health          *health.Service
	Limiter         *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Session(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT":                {Rate: 10, Burst: 30},
				completionRateLimitGroup: {Rate: deps.Config.CompletionRateLimit, Burst: deps.Config.CompletionBurst},
			},
			GroupFor: groupFor,
			Limiter:  deps.Limiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		payload, ok := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, payload)
	})
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}

	return r
}

// groupFor puts the two routes that call the completion provider in the
// stricter rate limit group.
func groupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	p := c.Request.URL.Path
	if strings.HasSuffix(p, "/analyses") || strings.HasSuffix(p, "/sessions/current/optimize") {
		return completionRateLimitGroup
	}
	return ""
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
