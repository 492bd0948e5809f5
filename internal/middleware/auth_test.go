package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"apporbit/internal/identity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T, v *identity.JWTVerifier) *gin.Engine {
	t.Helper()

	r := gin.New()
	whoami := func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, id)
	}
	r.GET("/user", UserAuth(v, zap.NewNop()), whoami)
	r.GET("/mod", ModeratorAuth(v, zap.NewNop()), whoami)
	r.GET("/admin", AdminAuth(v, zap.NewNop()), whoami)
	return r
}

func TestAuthGuard(t *testing.T) {
	v := identity.NewJWTVerifier("secret", "")
	r := newAuthRouter(t, v)

	token := func(role string) string {
		tok, err := v.Issue(identity.Identity{Email: "a@apporbit.test", Role: role}, time.Hour)
		require.NoError(t, err)
		return "Bearer " + tok
	}
	forged, err := identity.NewJWTVerifier("other", "").Issue(identity.Identity{Email: "a@apporbit.test", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/user", "", http.StatusUnauthorized},
		{"not bearer", "/user", "Basic abc", http.StatusUnauthorized},
		{"bearer without token", "/user", "Bearer", http.StatusUnauthorized},
		{"forged token", "/user", "Bearer " + forged, http.StatusForbidden},
		{"user on user route", "/user", token("user"), http.StatusOK},
		{"lowercase scheme", "/user", "bearer " + token("user")[len("Bearer "):], http.StatusOK},
		{"user on moderator route", "/mod", token("user"), http.StatusForbidden},
		{"moderator on moderator route", "/mod", token("moderator"), http.StatusOK},
		{"admin on moderator route", "/mod", token("admin"), http.StatusOK},
		{"moderator on admin route", "/admin", token("moderator"), http.StatusForbidden},
		{"admin on admin route", "/admin", token("admin"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}
