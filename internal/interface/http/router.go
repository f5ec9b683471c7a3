package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/yanqian/fleet-risk-dashboard/internal/infra/config"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/telemetry"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, tp *telemetry.Provider) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	tracer := otel.Tracer(cfg.Telemetry.ServiceName)
	if tp != nil {
		tracer = tp.Tracer()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		tracingMiddleware(tracer),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	refreshLimit := rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger)

	for _, route := range navRoutes {
		router.GET(route.Path, handler.page(route))
	}
	router.POST("/refresh", refreshLimit, handler.RefreshPage)
	router.GET("/healthz", handler.Health)

	api := router.Group("/api")
	{
		api.GET("/dashboard", handler.DashboardStatus)
		api.POST("/dashboard/refresh", refreshLimit, handler.RefreshDashboard)
		if handler.archive != nil {
			api.GET("/weekly-report/latest", handler.LatestReport)
			api.GET("/weekly-report/:date", handler.ReportByDate)
			api.GET("/weekly-reports", handler.ListReports)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
