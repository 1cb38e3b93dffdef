package http

import (
	"context"
	"net/http"
	"time"

	"miniurban-backend/internal/common/metrics"
	"miniurban-backend/internal/common/middleware"
	adminhttp "miniurban-backend/internal/features/adminauth/delivery/http"
	"miniurban-backend/internal/features/adminauth/guard"
	userhttp "miniurban-backend/internal/features/user/delivery/http"
	"miniurban-backend/internal/utils/telegram"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "miniurban-backend"

// ReadinessCheck is one dependency probed by /ready.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Deps is everything the router mounts. Metrics may be nil.
type Deps struct {
	Users     *userhttp.UserHandler
	AdminAuth *adminhttp.AdminAuthHandler
	Guard     *guard.Guard

	BotToken    string
	InitDataTTL time.Duration
	CORSOrigins []string

	Metrics *metrics.Metrics
	Checks  []ReadinessCheck
	Logger  zerolog.Logger
	Swagger bool
}

// NewRouter builds the gin engine with the full middleware chain and routes.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler(d.Logger))
	router.Use(d.Metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = d.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Accept", "Origin",
		middleware.InitDataHeader, "init_data", "X-Request-ID",
	}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	api.Use(middleware.InitData(d.BotToken, initDataTTL(d.InitDataTTL), d.Metrics))
	d.Users.RegisterRoutes(api)

	d.AdminAuth.RegisterRoutes(router.Group("/admin/auth"))

	adminAPI := router.Group("/admin/api")
	adminAPI.Use(middleware.RequireAdmin(d.Guard))
	d.AdminAuth.RegisterProtectedRoutes(adminAPI)
	d.Users.RegisterAdminRoutes(adminAPI)

	registerProbes(router, d.Checks)
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	if d.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return router
}

func initDataTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return telegram.DefaultInitDataMaxAge
	}
	return ttl
}

func registerProbes(router *gin.Engine, checks []ReadinessCheck) {
	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unready",
					"error":  check.Name + " unavailable",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
}
