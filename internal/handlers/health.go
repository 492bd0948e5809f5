package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"apporbit/internal/apperrors"
)

func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "AppOrbit server running")
	}
}

// Healthz reports 200 when the store answers a ping and 503 otherwise.
func Healthz(ping PingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /healthz"
		defer handlePanic(c, route)

		if err := ping(c.Request.Context()); err != nil {
			zap.L().Warn("health check failed", zap.Error(err))
			respondError(c, route, apperrors.ServiceUnavailable("database unavailable"))
			return
		}
		respondOK(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
