package services

import (
	"context"
	"errors"
	"strings"

	"vidtube/internal/apperrors"
	"vidtube/internal/models"
	"vidtube/internal/repositories"

	"go.uber.org/zap"
)

// ChannelService serves channel profiles and subscription edges.
type ChannelService struct {
	users         repositories.UserRepository
	subscriptions repositories.SubscriptionRepository
	collaborators
}

// NewChannelService creates a new ChannelService.
func NewChannelService(users repositories.UserRepository, subscriptions repositories.SubscriptionRepository) *ChannelService {
	return &ChannelService{
		users:         users,
		subscriptions: subscriptions,
		collaborators: defaultCollaborators(),
	}
}

// WithLogger sets the service logger.
func (s *ChannelService) WithLogger(logger *zap.Logger) *ChannelService {
	s.logger = logger
	return s
}

// GetChannelProfile returns the channel named username as seen by viewerID.
// A channel without subscribers is a valid zero count, not an error.
func (s *ChannelService) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperrors.Validation("username is missing")
	}

	profile, err := s.subscriptions.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("channel does not exist")
		}
		return nil, s.storeFailure(err, "failed to load channel profile")
	}
	return profile, nil
}

// ToggleSubscription subscribes subscriberID to channelID, or unsubscribes if
// the edge already exists. It returns the resulting subscription state.
func (s *ChannelService) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	subscriberID = strings.TrimSpace(subscriberID)
	channelID = strings.TrimSpace(channelID)
	if subscriberID == "" || channelID == "" {
		return false, apperrors.Validation("channel id is required")
	}
	if subscriberID == channelID {
		return false, apperrors.Validation("cannot subscribe to your own channel")
	}

	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return false, apperrors.NotFound("channel does not exist")
		}
		return false, s.storeFailure(err, "failed to load channel")
	}

	removed, err := s.subscriptions.Delete(ctx, subscriberID, channelID)
	if err != nil {
		return false, s.storeFailure(err, "failed to update subscription")
	}
	if removed {
		return false, nil
	}

	if err := s.subscriptions.Create(ctx, &models.Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
	}); err != nil {
		return false, s.storeFailure(err, "failed to update subscription")
	}
	return true, nil
}
