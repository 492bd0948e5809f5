package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apporbit/internal/services"
)

func GetStatistics(svc *services.StatisticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/statistics"
		defer handlePanic(c, route)

		stats, err := svc.Get(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, stats)
	}
}
