package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidtube/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// channelProfileQuery reads the channel row and all three derived numbers in
// one statement, so they are computed against the same snapshot.
const channelProfileQuery = `
SELECT
	u.full_name,
	u.username,
	u.email,
	u.avatar,
	u.cover_image,
	(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
	(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_to_count,
	(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?) AS viewer_edges
FROM users u
WHERE u.username = ?
LIMIT 1`

type channelProfileRow struct {
	FullName                  string
	Username                  string
	Email                     string
	Avatar                    string
	CoverImage                string
	SubscribersCount          int64
	ChannelsSubscribedToCount int64
	ViewerEdges               int64
}

// GORMSubscriptionRepository is a GORM implementation of SubscriptionRepository.
type GORMSubscriptionRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGORMSubscriptionRepository creates a new instance of GORMSubscriptionRepository.
func NewGORMSubscriptionRepository(db *gorm.DB, timeout time.Duration) *GORMSubscriptionRepository {
	return &GORMSubscriptionRepository{
		db:      db,
		timeout: timeout,
	}
}

func (r *GORMSubscriptionRepository) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

// Create inserts a subscription edge.
func (r *GORMSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	db, cancel := r.session(ctx)
	defer cancel()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if err := db.Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// Delete removes a subscription edge.
func (r *GORMSubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID string) (bool, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).Delete(&models.Subscription{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ChannelProfile runs the channel aggregation.
func (r *GORMSubscriptionRepository) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var rows []channelProfileRow
	if err := db.Raw(channelProfileQuery, viewerID, username).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate channel %s: %w", username, err)
	}
	if len(rows) == 0 {
		return nil, ErrUserNotFound
	}

	row := rows[0]
	return &models.ChannelProfile{
		FullName:                  row.FullName,
		Username:                  row.Username,
		Email:                     row.Email,
		Avatar:                    row.Avatar,
		CoverImage:                row.CoverImage,
		SubscribersCount:          row.SubscribersCount,
		ChannelsSubscribedToCount: row.ChannelsSubscribedToCount,
		IsSubscribed:              row.ViewerEdges > 0,
	}, nil
}
