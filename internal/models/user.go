package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one the backend knows how to authorize.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents a marketplace account keyed by email.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	UID          string             `bson:"uid,omitempty" json:"uid,omitempty"`
	Name         string             `bson:"name" json:"name"`
	PhotoURL     string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	Role         string             `bson:"role" json:"role"`
	IsSubscribed bool               `bson:"isSubscribed" json:"isSubscribed"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// LegacySubscribed is the old spelling of IsSubscribed. It is decoded only so that
	// documents still carrying it can be rejected instead of silently read as unsubscribed.
	LegacySubscribed *bool `bson:"subscribed,omitempty" json:"-"`
}

// UserProfile holds the fields writable through the upsert path.
type UserProfile struct {
	Name     string
	PhotoURL string
	UID      string
}

// UpsertResult mirrors the store's match/modify summary.
type UpsertResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
	Upserted bool  `json:"upserted"`
}
