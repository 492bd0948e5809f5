package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apporbit/internal/services"
)

type reportRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Reason    string `json:"reason" binding:"max=1000"`
}

// GET /api/reports returns the products that carry at least one report.
func ListReports(svc *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reports"
		defer handlePanic(c, route)

		products, err := svc.ListReportedProducts(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, products)
	}
}

/*
POST /api/reports
- the reporter is the authenticated caller
- one report per reporter and product
*/
func FileReport(svc *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reports"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		var req reportRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		report, err := svc.FileReport(c.Request.Context(), req.ProductID, id.Email, req.Reason)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusCreated, report)
	}
}
