package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"apporbit/internal/apperrors"
	"apporbit/internal/identity"
	"apporbit/internal/models"
	"apporbit/internal/services"
)

// upsertUserRequest captures the writable profile. The remaining fields are only
// decoded to refuse them: role and subscription never travel through this route.
type upsertUserRequest struct {
	Name     string `json:"name" binding:"max=200"`
	PhotoURL string `json:"photoURL" binding:"omitempty,url"`
	UID      string `json:"uid" binding:"max=128"`

	Subscribed   json.RawMessage `json:"subscribed"`
	IsSubscribed json.RawMessage `json:"isSubscribed"`
	Role         json.RawMessage `json:"role"`
}

type idURI struct {
	ID string `uri:"id" binding:"required,objectid"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=user moderator admin"`
}

type emailQuery struct {
	Email string `form:"email" binding:"required,email"`
}

// PUT /api/users/:email creates or refreshes the caller's own profile.
func UpsertUser(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/:email"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		email := strings.TrimSpace(c.Param("email"))
		if !isSelfOrAdmin(id, email) {
			respondError(c, route, apperrors.Forbidden("you can only update your own profile"))
			return
		}

		var req upsertUserRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}
		switch {
		case len(req.Subscribed) > 0:
			respondError(c, route, apperrors.Validation("'subscribed' is not accepted, subscription is managed by the payment flow"))
			return
		case len(req.IsSubscribed) > 0:
			respondError(c, route, apperrors.Validation("'isSubscribed' cannot be set through this route"))
			return
		case len(req.Role) > 0:
			respondError(c, route, apperrors.Validation("'role' cannot be set through this route"))
			return
		}

		result, err := svc.Upsert(c.Request.Context(), email, models.UserProfile{
			Name:     req.Name,
			PhotoURL: req.PhotoURL,
			UID:      req.UID,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, result)
	}
}

func GetCurrentUser(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/me"
		defer handlePanic(c, route)

		id, err := caller(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		user, err := svc.GetUser(c.Request.Context(), id.Email)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, user)
	}
}

func ListUsers(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users"
		defer handlePanic(c, route)

		users, err := svc.ListUsers(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, users)
	}
}

func SetUserRole(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/users/:id/role"
		defer handlePanic(c, route)

		var uri idURI
		if err := c.ShouldBindUri(&uri); err != nil {
			respondError(c, route, bindingError(err))
			return
		}

		var req roleRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		if err := svc.SetRole(c.Request.Context(), uri.ID, req.Role); err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"role": req.Role})
	}
}

// GetSubscriptionStatus serves both /api/users/subscription-status and
// /api/payment/subscription-status.
func GetSubscriptionStatus(svc *services.UserService, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		var q emailQuery
		if err := bindQuery(c, &q); err != nil {
			respondError(c, route, err)
			return
		}

		subscribed, err := svc.GetSubscriptionStatus(c.Request.Context(), q.Email)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"isSubscribed": subscribed})
	}
}

func isSelfOrAdmin(id identity.Identity, email string) bool {
	return id.HasRole(models.RoleAdmin) || strings.EqualFold(id.Email, email)
}
