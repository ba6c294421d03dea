package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	apphttp "crm_backend/internal/http"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// New builds the Gin engine and mounts every module.
//
//	/api/health       liveness + database ping
//	/metrics          Prometheus scrape endpoint
//	/functions/v1/*   service-key functions, permissive CORS
//	/api/v1/*         CRM API, per-IP rate limit, JWT + seller profile
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(metrics.Middleware())
	engine.Use(httpkit.SecurityHeaders())
	// CORS for the CRM API only; function routes set their own headers.
	engine.Use(pathScoped("/api/v1", cors.New(corsConfig(app.Config))))

	engine.GET("/api/health", func(c *gin.Context) {
		if app.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := app.Health.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", metrics.Handler())

	functions := engine.Group("/functions/v1")
	functions.Use(httpkit.FunctionCORS())
	functions.Use(httpkit.ServiceKeyRequired(app.Config, app.Logger))

	// Function endpoints answer 200 or 500 only, so the limiter stays on the CRM API.
	v1 := engine.Group("/api/v1")
	v1.Use(httpkit.NewAPIRateLimiter(app.Logger).RateLimit())

	authMiddleware := httpkit.AuthRequired(app.Config)
	protected := v1.Group("")
	protected.Use(authMiddleware)
	if app.ProfileMiddleware != nil {
		protected.Use(app.ProfileMiddleware)
	}

	admin := protected.Group("/admin")
	admin.Use(httpkit.RequireRole(access.RoleAdmin))

	ctx := &apphttp.RouterContext{
		Engine:         engine,
		V1:             v1,
		Protected:      protected,
		Admin:          admin,
		Functions:      functions,
		Config:         app.Config,
		AuthMiddleware: authMiddleware,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Info("module routes registered", "module", module.Name())
	}

	return engine
}

// pathScoped runs h only for requests under prefix.
func pathScoped(prefix string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			h(c)
			return
		}
		c.Next()
	}
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}
