package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"apporbit/internal/identity"
)

// UserAuth admits any authenticated caller regardless of role.
func UserAuth(verifier identity.Verifier, log *zap.Logger) gin.HandlerFunc {
	return AuthGuard(verifier, log)
}

// CurrentIdentity returns the caller set by AuthGuard.
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := value.(identity.Identity)
	return id, ok
}
