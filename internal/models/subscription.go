package models

import "time"

// Subscription is a directed edge: SubscriberID follows ChannelID.
type Subscription struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	SubscriberID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_subscriber_channel;index"`
	ChannelID    string `gorm:"type:varchar(36);not null;uniqueIndex:idx_subscriber_channel;index"`
	CreatedAt    time.Time
}

// ChannelProfile is a user viewed as a channel, with counts derived from
// Subscription edges and the viewer's relation to it.
type ChannelProfile struct {
	FullName                  string `json:"fullname"`
	Username                  string `json:"username"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}
