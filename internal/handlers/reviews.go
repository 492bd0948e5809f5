package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apporbit/internal/services"
)

type reviewRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	ReviewerName  string `json:"reviewerName" binding:"max=200"`
	ReviewerImage string `json:"reviewerImage" binding:"omitempty,url"`
	Description   string `json:"description" binding:"required,max=5000"`
	Rating        int    `json:"rating" binding:"required,min=1,max=5"`
}

type reviewQuery struct {
	ProductID string `form:"productId" binding:"required"`
}

// GET /api/reviews?productId=
func ListReviews(svc *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reviews"
		defer handlePanic(c, route)

		var q reviewQuery
		if err := bindQuery(c, &q); err != nil {
			respondError(c, route, err)
			return
		}

		reviews, err := svc.ListReviews(c.Request.Context(), q.ProductID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, reviews)
	}
}

func AddReview(svc *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		var req reviewRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		review, err := svc.AddReview(c.Request.Context(), services.ReviewInput{
			ProductID:     req.ProductID,
			ReviewerName:  req.ReviewerName,
			ReviewerEmail: id.Email,
			ReviewerImage: req.ReviewerImage,
			Description:   req.Description,
			Rating:        req.Rating,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusCreated, review)
	}
}
