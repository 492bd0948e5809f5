// Package identity turns bearer tokens into caller identities.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"apporbit/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller.
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	UID   string `json:"uid,omitempty"`
}

// HasRole reports whether the identity carries one of roles.
func (i Identity) HasRole(roles ...string) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the identity may moderate content.
func (i Identity) IsStaff() bool {
	return i.HasRole(models.RoleModerator, models.RoleAdmin)
}

type Verifier interface {
	Verify(token string) (Identity, error)
}

// Claims is the token payload.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	UID   string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *JWTVerifier) Verify(raw string) (Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return Identity{}, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}

	role := claims.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return Identity{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}

	return Identity{Email: email, Role: role, UID: claims.UID}, nil
}

// Issue signs a token for id. It is used by tooling and tests; production tokens
// come from the identity provider.
func (v *JWTVerifier) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Email: id.Email,
		Role:  id.Role,
		UID:   id.UID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
