package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"apporbit/internal/identity"
	"apporbit/internal/models"
)

const identityKey = "identity"

// AuthGuard requires a valid bearer token and, when roles are given, one of them.
// A missing or non-bearer header is 401; a bad token or the wrong role is 403.
func AuthGuard(verifier identity.Verifier, log *zap.Logger, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing token")
			return
		}

		parts := strings.Fields(raw)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header")
			return
		}

		id, err := verifier.Verify(parts[1])
		if err != nil {
			log.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			abort(c, http.StatusForbidden, "FORBIDDEN", "invalid token")
			return
		}

		if len(allowedRoles) > 0 && !id.HasRole(allowedRoles...) {
			abort(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func AdminAuth(verifier identity.Verifier, log *zap.Logger) gin.HandlerFunc {
	return AuthGuard(verifier, log, models.RoleAdmin)
}

// ModeratorAuth admits moderators and admins.
func ModeratorAuth(verifier identity.Verifier, log *zap.Logger) gin.HandlerFunc {
	return AuthGuard(verifier, log, models.RoleModerator, models.RoleAdmin)
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "code": code, "message": message})
}
