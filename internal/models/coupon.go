package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Coupon struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code               string             `bson:"code" json:"code"`
	DiscountPercentage float64            `bson:"discountPercentage" json:"discountPercentage"`
	Expiry             time.Time          `bson:"expiry" json:"expiry"`
	Description        string             `bson:"description,omitempty" json:"description,omitempty"`
}

// ValidAt reports whether the coupon can still be redeemed at now.
func (c *Coupon) ValidAt(now time.Time) bool {
	return !c.Expiry.Before(now)
}

// CouponPatch is a normalized coupon update. Nil fields are left untouched.
type CouponPatch struct {
	Code               *string
	DiscountPercentage *float64
	Expiry             *time.Time
	Description        *string
}

func (p CouponPatch) Empty() bool {
	return p.Code == nil && p.DiscountPercentage == nil && p.Expiry == nil && p.Description == nil
}
