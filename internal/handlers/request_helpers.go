package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"apporbit/internal/apperrors"
	"apporbit/internal/identity"
	"apporbit/internal/middleware"
)

// PingFunc reports whether the backing store is reachable.
type PingFunc func(ctx context.Context) error

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		zap.L().Error("panic recovered",
			zap.String("route", route),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Any("panic", r),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{Message: "internal server error", Code: "INTERNAL_ERROR"})
	}
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: true, Message: message})
}

// respondError maps err onto the envelope. Server-side failures are logged with their cause;
// clients only ever see the safe message.
func respondError(c *gin.Context, route string, err error) {
	status := apperrors.Status(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("route", route),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, envelope{Message: apperrors.Message(err), Code: apperrors.Code(err)})
}

// bindJSON decodes the body into dst and turns binding failures into validation errors.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeFieldError(fe))
		}
		return apperrors.Validation(strings.Join(msgs, "; "))
	}
	return apperrors.Validation("invalid request body")
}

func describeFieldError(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "objectid":
		return field + " must be a valid id"
	case "min", "gte":
		return field + " must be at least " + fe.Param()
	case "max", "lte":
		return field + " must be at most " + fe.Param()
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// caller returns the authenticated identity. Routes without an auth guard never call it.
func caller(c *gin.Context) (identity.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return identity.Identity{}, apperrors.Unauthorized("authentication required")
	}
	return id, nil
}
