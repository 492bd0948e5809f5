package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"apporbit/internal/models"
	"apporbit/internal/services"
)

type productRequest struct {
	Name         string   `json:"name" binding:"required,max=200"`
	Image        string   `json:"image" binding:"omitempty,url"`
	Description  string   `json:"description" binding:"max=5000"`
	Tags         []string `json:"tags" binding:"max=20"`
	ExternalLink string   `json:"externalLink" binding:"omitempty,url"`
	Owner        struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	} `json:"owner"`
}

type productPatchRequest struct {
	Name         *string   `json:"name" binding:"omitempty,max=200"`
	Image        *string   `json:"image" binding:"omitempty,url"`
	Description  *string   `json:"description" binding:"omitempty,max=5000"`
	Tags         *[]string `json:"tags" binding:"omitempty,max=20"`
	ExternalLink *string   `json:"externalLink" binding:"omitempty,url"`
}

type featureRequest struct {
	IsFeatured *bool `json:"isFeatured" binding:"required"`
}

/*
POST /api/products
- owner comes from the token, never from the body
- free users are limited to one product
*/
func SubmitProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		var req productRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		product, err := svc.Submit(c.Request.Context(), id, services.ProductInput{
			Name:         req.Name,
			Image:        req.Image,
			Description:  req.Description,
			Tags:         req.Tags,
			ExternalLink: req.ExternalLink,
			OwnerName:    req.Owner.Name,
			OwnerImage:   req.Owner.Image,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}

		respondOK(c, http.StatusCreated, product)
	}
}

// GET /api/products?search=&page=&limit=
func ListProducts(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		result, err := svc.ListApproved(c.Request.Context(), c.Query("search"), page, limit)
		if err != nil {
			respondError(c, route, err)
			return
		}

		zap.L().Debug("listed products", zap.Int("count", len(result.Items)), zap.Int64("total", result.Total))
		respondOK(c, http.StatusOK, result)
	}
}

func ListTrendingProducts(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/trending"
		defer handlePanic(c, route)

		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		products, err := svc.ListTrending(c.Request.Context(), limit)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, products)
	}
}

func ListFeaturedProducts(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/featured"
		defer handlePanic(c, route)

		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		products, err := svc.ListFeatured(c.Request.Context(), limit)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, products)
	}
}

func ListMyProducts(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/mine"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		products, err := svc.ListByOwner(c.Request.Context(), id.Email)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, products)
	}
}

func ListPendingProducts(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/pending"
		defer handlePanic(c, route)

		products, err := svc.ListPending(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, products)
	}
}

func ListReportedProducts(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/reported"
		defer handlePanic(c, route)

		products, err := svc.ListReported(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, products)
	}
}

func GetProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		product, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, product)
	}
}

func UpdateProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/products/:id"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		var req productPatchRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		product, err := svc.Update(c.Request.Context(), id, c.Param("id"), models.ProductPatch{
			Name:         req.Name,
			Image:        req.Image,
			Description:  req.Description,
			Tags:         req.Tags,
			ExternalLink: req.ExternalLink,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, product)
	}
}

func DeleteProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		if err := svc.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
			respondError(c, route, err)
			return
		}
		respondMessage(c, http.StatusOK, "product deleted")
	}
}

func VoteProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/products/:id/vote"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		product, err := svc.Vote(c.Request.Context(), c.Param("id"), id.Email)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, product)
	}
}

func AcceptProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/products/:id/accept"
		defer handlePanic(c, route)

		if err := svc.Accept(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, route, err)
			return
		}
		respondMessage(c, http.StatusOK, "product accepted")
	}
}

func RejectProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/products/:id/reject"
		defer handlePanic(c, route)

		if err := svc.Reject(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, route, err)
			return
		}
		respondMessage(c, http.StatusOK, "product rejected")
	}
}

func FeatureProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/products/:id/feature"
		defer handlePanic(c, route)

		var req featureRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		if err := svc.SetFeatured(c.Request.Context(), c.Param("id"), *req.IsFeatured); err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"isFeatured": *req.IsFeatured})
	}
}
