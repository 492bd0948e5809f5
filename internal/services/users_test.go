package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"apporbit/internal/apperrors"
	"apporbit/internal/models"
)

func TestUpsertCreatesThenRefreshes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.users.Upsert(ctx, " Ada@Apporbit.test ", models.UserProfile{Name: "Ada", UID: "u1"})
	require.NoError(t, err)
	assert.True(t, res.Upserted)

	user, err := env.users.GetUser(ctx, "ada@apporbit.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.IsSubscribed)
	assert.Equal(t, "u1", user.UID)

	require.NoError(t, env.users.SetSubscribed(ctx, "ada@apporbit.test"))
	require.NoError(t, env.users.SetRole(ctx, user.ID.Hex(), models.RoleModerator))

	res, err = env.users.Upsert(ctx, "ada@apporbit.test", models.UserProfile{PhotoURL: "https://img.test/a.png"})
	require.NoError(t, err)
	assert.False(t, res.Upserted)
	assert.Equal(t, int64(1), res.Matched)

	user, err = env.users.GetUser(ctx, "ada@apporbit.test")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name, "empty profile fields do not erase stored ones")
	assert.Equal(t, "https://img.test/a.png", user.PhotoURL)
	assert.Equal(t, models.RoleModerator, user.Role, "upsert never resets the role")
	assert.True(t, user.IsSubscribed, "upsert never resets the subscription")
}

func TestUpsertRequiresEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Upsert(context.Background(), "  ", models.UserProfile{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSubscriptionStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser("free@apporbit.test", false)

	subscribed, err := env.users.GetSubscriptionStatus(ctx, "free@apporbit.test")
	require.NoError(t, err)
	assert.False(t, subscribed)

	require.NoError(t, env.users.SetSubscribed(ctx, "free@apporbit.test"))
	require.NoError(t, env.users.SetSubscribed(ctx, "free@apporbit.test"))

	subscribed, err = env.users.GetSubscriptionStatus(ctx, "free@apporbit.test")
	require.NoError(t, err)
	assert.True(t, subscribed)

	_, err = env.users.GetSubscriptionStatus(ctx, "ghost@apporbit.test")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, env.users.SetSubscribed(ctx, "ghost@apporbit.test"), apperrors.ErrNotFound)
}

func TestLegacySubscribedFieldFailsLoudly(t *testing.T) {
	env := newTestEnv(t)
	legacy := true
	env.store.Users.Put(models.User{Email: "old@apporbit.test", LegacySubscribed: &legacy})

	_, err := env.users.GetSubscriptionStatus(context.Background(), "old@apporbit.test")
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.Status(err))
}

func TestSetRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser("a@apporbit.test", false)
	user, err := env.users.GetUser(ctx, "a@apporbit.test")
	require.NoError(t, err)

	assert.ErrorIs(t, env.users.SetRole(ctx, user.ID.Hex(), "root"), apperrors.ErrValidation)
	assert.ErrorIs(t, env.users.SetRole(ctx, "bad", models.RoleAdmin), apperrors.ErrValidation)
	assert.ErrorIs(t, env.users.SetRole(ctx, primitive.NewObjectID().Hex(), models.RoleAdmin), apperrors.ErrNotFound)
	require.NoError(t, env.users.SetRole(ctx, user.ID.Hex(), models.RoleAdmin))

	users, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
}
