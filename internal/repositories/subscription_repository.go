package repositories

import (
	"context"

	"vidtube/internal/models"
)

// SubscriptionRepository defines the interface for subscription data access.
type SubscriptionRepository interface {
	// Create stores a new edge. Creating an edge that already exists is not an error.
	Create(ctx context.Context, sub *models.Subscription) error
	// Delete removes the edge and reports whether one existed.
	Delete(ctx context.Context, subscriberID, channelID string) (bool, error)
	// ChannelProfile aggregates the channel named username as seen by viewerID.
	// It returns ErrUserNotFound when no such user exists.
	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
}
