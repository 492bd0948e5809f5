package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apporbit/internal/services"
)

type couponRequest struct {
	Code               string   `json:"code" binding:"required,max=64"`
	DiscountPercentage *float64 `json:"discountPercentage" binding:"required,gte=0,lte=100"`
	Expiry             string   `json:"expiry" binding:"required"`
	Description        string   `json:"description" binding:"max=500"`
}

type couponPatchRequest struct {
	Code               *string  `json:"code" binding:"omitempty,max=64"`
	DiscountPercentage *float64 `json:"discountPercentage" binding:"omitempty,gte=0,lte=100"`
	Expiry             *string  `json:"expiry"`
	Description        *string  `json:"description" binding:"omitempty,max=500"`
}

func ListCoupons(svc *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/coupons"
		defer handlePanic(c, route)

		coupons, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, coupons)
	}
}

func ListValidCoupons(svc *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/coupons/valid"
		defer handlePanic(c, route)

		coupons, err := svc.ListValid(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, coupons)
	}
}

func CreateCoupon(svc *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/coupons"
		defer handlePanic(c, route)

		var req couponRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		coupon, err := svc.Create(c.Request.Context(), services.CouponInput{
			Code:               req.Code,
			DiscountPercentage: *req.DiscountPercentage,
			Expiry:             req.Expiry,
			Description:        req.Description,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusCreated, coupon)
	}
}

func UpdateCoupon(svc *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/coupons/:id"
		defer handlePanic(c, route)

		var uri idURI
		if err := c.ShouldBindUri(&uri); err != nil {
			respondError(c, route, bindingError(err))
			return
		}

		var req couponPatchRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		err := svc.Update(c.Request.Context(), uri.ID, services.CouponUpdate{
			Code:               req.Code,
			DiscountPercentage: req.DiscountPercentage,
			Expiry:             req.Expiry,
			Description:        req.Description,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondMessage(c, http.StatusOK, "coupon updated")
	}
}

func DeleteCoupon(svc *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/coupons/:id"
		defer handlePanic(c, route)

		var uri idURI
		if err := c.ShouldBindUri(&uri); err != nil {
			respondError(c, route, bindingError(err))
			return
		}

		if err := svc.Delete(c.Request.Context(), uri.ID); err != nil {
			respondError(c, route, err)
			return
		}
		respondMessage(c, http.StatusOK, "coupon deleted")
	}
}
