package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is implemented by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Route registers a group of routes under /api.
type Route func(api gin.IRouter)

func NewRouter(log logger.ZapLogger, db Pinger, routes ...Route) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	for _, route := range routes {
		route(api)
	}
	return r
}

// RequestLogger logs one line per request.
func RequestLogger(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
