package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ReportStatusPending = "pending"

	DefaultReportReason = "Inappropriate content"
)

// Report is stored in the reports collection and, with the same _id, embedded in the
// product's reports list.
type Report struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID  string             `bson:"productId" json:"productId"`
	ReporterID string             `bson:"reporterId" json:"reporterId"`
	Reason     string             `bson:"reason" json:"reason"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	Status     string             `bson:"status" json:"status"`
}
