package handler

import (
	"github.com/amoylab/rentmanager/internal/apiserver/middleware"
	"github.com/amoylab/rentmanager/internal/apiserver/service"
	"github.com/amoylab/rentmanager/internal/auth/jwt"
	"github.com/amoylab/rentmanager/internal/common/errorx"
	"github.com/amoylab/rentmanager/internal/i18n"
	"github.com/amoylab/rentmanager/pkg/metrics"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// RouterConfig carries everything the HTTP layer is assembled from.
// Metrics, Doc and TracingService are optional.
type RouterConfig struct {
	Service        *service.Service
	Errors         *errorx.ErrorHandler
	I18n           *i18n.I18n
	JWT            *jwt.Service
	CookieName     string
	DB             Pinger
	Metrics        *metrics.Metrics
	MetricsPath    string
	Doc            *openapi3.T
	TracingService string
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(cfg.Errors.RecoveryMiddleware())
	r.Use(middleware.RequestLogger(cfg.Logger.Named("http")))
	r.Use(cfg.I18n.Middleware())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.Metrics.Handler()))
	}

	r.GET("/health", Health(cfg.DB, cfg.Logger))
	r.GET("/health/live", Live)
	if cfg.Doc != nil {
		r.GET("/api/openapi.json", OpenAPI(cfg.Doc))
	}

	h := New(cfg.Service, cfg.Errors)
	api := r.Group("/api", middleware.JWTAuthMiddleware(cfg.JWT, cfg.CookieName, cfg.Errors))
	{
		api.GET("/properties", h.ListProperties)
		api.POST("/properties", h.CreateProperty)
		api.GET("/properties/:id", h.GetProperty)
		api.PUT("/properties/:id", h.UpdateProperty)

		api.GET("/rooms", h.ListRooms)
		api.POST("/rooms", h.CreateRoom)
		api.GET("/rooms/:id", h.GetRoom)
		api.PUT("/rooms/:id", h.UpdateRoom)
		api.DELETE("/rooms/:id", h.DeleteRoom)

		api.GET("/tenants", h.ListTenants)
		api.POST("/tenants", h.CreateTenant)
		api.GET("/tenants/:id", h.GetTenant)
		api.PUT("/tenants/:id", h.UpdateTenant)
		api.DELETE("/tenants/:id", h.DeleteTenant)

		api.GET("/dashboard/stats", h.DashboardStats)
	}

	r.NoRoute(cfg.Errors.NoRoute)
	return r
}
