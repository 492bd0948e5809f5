package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Owner is the submitting user as denormalized onto the product.
type Owner struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Tags         StringList         `bson:"tags" json:"tags"`
	ExternalLink string             `bson:"externalLink,omitempty" json:"externalLink,omitempty"`
	Owner        Owner              `bson:"owner" json:"owner"`
	Status       string             `bson:"status" json:"status"`
	Upvotes      int                `bson:"upvotes" json:"upvotes"`
	Voters       []string           `bson:"voters" json:"voters"`
	IsFeatured   bool               `bson:"isFeatured" json:"isFeatured"`
	Reports      []Report           `bson:"reports" json:"reports"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}

// HasVoter reports whether voter already upvoted the product.
func (p *Product) HasVoter(voter string) bool {
	for _, v := range p.Voters {
		if v == voter {
			return true
		}
	}
	return false
}

// HasReporter reports whether reporter already filed a report on the product.
func (p *Product) HasReporter(reporter string) bool {
	for _, r := range p.Reports {
		if r.ReporterID == reporter {
			return true
		}
	}
	return false
}

// ProductPatch lists the fields an owner may edit. Nil fields are left untouched.
type ProductPatch struct {
	Name         *string   `json:"name"`
	Image        *string   `json:"image"`
	Description  *string   `json:"description"`
	Tags         *[]string `json:"tags"`
	ExternalLink *string   `json:"externalLink"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Image == nil && p.Description == nil && p.Tags == nil && p.ExternalLink == nil
}
