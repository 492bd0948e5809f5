package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewJWTVerifier("secret", "apporbit")

	token, err := v.Issue(Identity{Email: "Ada@Example.com", Role: "moderator", UID: "u1"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{Email: "ada@example.com", Role: "moderator", UID: "u1"}, id)
	assert.True(t, id.IsStaff())
}

func TestVerifyDefaultsRoleToUser(t *testing.T) {
	v := NewJWTVerifier("secret", "")

	token, err := v.Issue(Identity{Email: "a@b.c"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user", id.Role)
	assert.False(t, id.IsStaff())
}

func TestVerifyRejects(t *testing.T) {
	v := NewJWTVerifier("secret", "apporbit")

	expired, err := v.Issue(Identity{Email: "a@b.c", Role: "user"}, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewJWTVerifier("other", "apporbit").Issue(Identity{Email: "a@b.c"}, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewJWTVerifier("secret", "elsewhere").Issue(Identity{Email: "a@b.c"}, time.Hour)
	require.NoError(t, err)

	noEmail, err := v.Issue(Identity{Role: "user"}, time.Hour)
	require.NoError(t, err)

	badRole, err := v.Issue(Identity{Email: "a@b.c", Role: "root"}, time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Email: "a@b.c"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"no email":     noEmail,
		"unknown role": badRole,
		"alg none":     none,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
