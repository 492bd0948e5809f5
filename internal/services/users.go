package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"apporbit/internal/apperrors"
	"apporbit/internal/models"
	"apporbit/internal/repository"
)

type UserService struct {
	users UserStore
	log   *zap.Logger
	now   Clock
}

func NewUserService(users UserStore, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log.Named("users"), now: systemClock}
}

// Upsert creates the user on first sight and refreshes profile fields afterwards.
// Role and subscription are only ever initialised here, never overwritten.
func (s *UserService) Upsert(ctx context.Context, email string, profile models.UserProfile) (models.UpsertResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.UpsertResult{}, apperrors.Validation("email is required")
	}

	result, err := s.users.Upsert(ctx, email, profile, s.now())
	if err != nil {
		return models.UpsertResult{}, apperrors.Internal("failed to save user", err)
	}
	if result.Upserted {
		s.log.Info("user created", zap.String("email", email))
	}
	return result, nil
}

func (s *UserService) GetUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}
	if err := rejectLegacySubscription(user); err != nil {
		s.log.Error("user document carries legacy subscription field", zap.String("email", user.Email))
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to load users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *UserService) SetRole(ctx context.Context, userID, role string) error {
	oid, ok := parseObjectID(userID)
	if !ok {
		return apperrors.Validation("invalid user id")
	}
	if !models.ValidRole(role) {
		return apperrors.Validation("role must be one of user, moderator, admin")
	}

	matched, err := s.users.SetRole(ctx, oid, role, s.now())
	if err != nil {
		return apperrors.Internal("failed to update role", err)
	}
	if !matched {
		return apperrors.NotFound("user")
	}

	s.log.Info("user role changed", zap.String("id", userID), zap.String("role", role))
	return nil
}

func (s *UserService) GetSubscriptionStatus(ctx context.Context, email string) (bool, error) {
	user, err := s.GetUser(ctx, email)
	if err != nil {
		return false, err
	}
	return user.IsSubscribed, nil
}

// SetSubscribed marks the user as subscribed. The flag never goes back to false.
func (s *UserService) SetSubscribed(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.Validation("email is required")
	}

	matched, err := s.users.SetSubscribed(ctx, email, s.now())
	if err != nil {
		return apperrors.Internal("failed to update subscription", err)
	}
	if !matched {
		return apperrors.NotFound("user")
	}

	s.log.Info("user subscribed", zap.String("email", email))
	return nil
}

func rejectLegacySubscription(user *models.User) error {
	if user.LegacySubscribed != nil {
		return apperrors.Internal("user record uses the unsupported 'subscribed' field",
			errors.New("schema violation: users."+user.Email+" has 'subscribed' instead of 'isSubscribed'"))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
