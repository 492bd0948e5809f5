package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID     string             `bson:"productId" json:"productId"`
	ReviewerName  string             `bson:"reviewerName" json:"reviewerName"`
	ReviewerEmail string             `bson:"reviewerEmail" json:"reviewerEmail"`
	ReviewerImage string             `bson:"reviewerImage,omitempty" json:"reviewerImage,omitempty"`
	Description   string             `bson:"description" json:"description"`
	Rating        int                `bson:"rating" json:"rating"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
}
