package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/polyglot-faq/internal/infra/config"
	"github.com/yanqian/polyglot-faq/pkg/metrics"
)

const requestIDHeader = "X-Request-ID"

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(handler.logger, handler.recorder),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Health)
	if handler.recorder != nil {
		router.GET("/metrics", gin.WrapH(handler.recorder.Handler()))
	}

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)

		faqs := api.Group("/faqs")
		faqs.GET("", handler.ListFAQs)
		faqs.GET("/available-languages", handler.AvailableLanguages)
		faqs.GET("/:id", handler.GetFAQ)
		faqs.GET("/:id/translations", handler.FAQTranslations)

		editor := faqs.Group("", authMiddleware(handler.authSvc))
		editor.POST("", handler.CreateFAQ)
		editor.POST("/export", handler.ExportTranslations)
		editor.PUT("/:id", handler.ReplaceFAQ)
		editor.PATCH("/:id", handler.PatchFAQ)
		editor.DELETE("/:id", handler.DeleteFAQ)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger, recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		recorder.HTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), latency)
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"request_id", requestID(c),
		)
	}
}
