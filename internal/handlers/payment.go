package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"apporbit/internal/apperrors"
	"apporbit/internal/services"
)

type paymentIntentRequest struct {
	Amount     int64  `json:"amount" binding:"required,min=1"`
	CouponCode string `json:"couponCode" binding:"max=64"`
}

/*
PATCH /api/payment/subscribe?email=
- callers subscribe themselves; admins may subscribe anyone
- the email query parameter defaults to the caller
*/
func Subscribe(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/payment/subscribe"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		email := strings.TrimSpace(c.Query("email"))
		if email == "" {
			email = id.Email
		}
		if !isSelfOrAdmin(id, email) {
			respondError(c, route, apperrors.Forbidden("you can only subscribe your own account"))
			return
		}

		if err := svc.SetSubscribed(c.Request.Context(), email); err != nil {
			respondError(c, route, err)
			return
		}
		respondMessage(c, http.StatusOK, "subscription updated")
	}
}

// CreatePaymentIntent serves /api/payment/create-payment-intent and its legacy
// alias under /api/coupons. Amounts are in currency subunits.
func CreatePaymentIntent(svc *services.PaymentService, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		var req paymentIntentRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		intent, err := svc.CreatePaymentIntent(c.Request.Context(), id.Email, req.Amount, req.CouponCode)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, intent)
	}
}
