package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestProductFilter(t *testing.T) {
	tests := []struct {
		name  string
		query ProductQuery
		want  bson.M
	}{
		{"empty", ProductQuery{}, bson.M{}},
		{"status", ProductQuery{Status: "approved"}, bson.M{"status": "approved"}},
		{"owner", ProductQuery{OwnerEmail: "a@b.c"}, bson.M{"owner.email": "a@b.c"}},
		{
			"featured approved",
			ProductQuery{Status: "approved", FeaturedOnly: true},
			bson.M{"status": "approved", "isFeatured": true},
		},
		{
			"reported",
			ProductQuery{ReportedOnly: true},
			bson.M{"reports.0": bson.M{"$exists": true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, productFilter(tt.query))
		})
	}
}

func TestProductFilterEscapesSearch(t *testing.T) {
	filter := productFilter(ProductQuery{Search: "a.i (beta)"})

	or, ok := filter["$or"].([]bson.M)
	if assert.True(t, ok) && assert.Len(t, or, 2) {
		assert.Equal(t, bson.M{"$regex": `a\.i \(beta\)`, "$options": "i"}, or[0]["name"])
		assert.Equal(t, bson.M{"$regex": `a\.i \(beta\)`, "$options": "i"}, or[1]["tags"])
	}
}

func TestProductSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "timestamp", Value: -1}}, productSort(SortRecent))
	assert.Equal(t,
		bson.D{{Key: "upvotes", Value: -1}, {Key: "timestamp", Value: -1}},
		productSort(SortTrending),
	)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	err := translateError(dup)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.ErrorAs(t, err, &mongo.WriteException{})

	other := errors.New("socket closed")
	assert.Equal(t, other, translateError(other))
}
