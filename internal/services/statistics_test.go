package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"apporbit/internal/models"
)

func TestStatistics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser("a@apporbit.test", false)
	env.seedUser("b@apporbit.test", true)
	env.seedProduct(t, "p1", "a@apporbit.test", models.StatusPending, 0)
	env.seedProduct(t, "p2", "b@apporbit.test", models.StatusApproved, 0)
	env.seedProduct(t, "p3", "b@apporbit.test", models.StatusApproved, 0)
	env.seedProduct(t, "p4", "b@apporbit.test", models.StatusRejected, 0)
	_, err := env.reviews.AddReview(ctx, ReviewInput{ProductID: primitive.NewObjectID().Hex(), Description: "ok", Rating: 3})
	require.NoError(t, err)

	stats, err := NewStatisticsService(env.store.Products, env.store.Users, env.store.Reviews).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Statistics{
		TotalProducts:    4,
		PendingProducts:  1,
		ApprovedProducts: 2,
		TotalUsers:       2,
		TotalReviews:     1,
	}, *stats)
}
