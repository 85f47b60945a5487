package services

import (
	"context"

	"vidtube/internal/apperrors"
	"vidtube/pkg/storage"

	"go.uber.org/zap"
)

// Event types published by the services.
const (
	EventUserRegistered       = "user.registered"
	EventUserLoggedIn         = "user.logged_in"
	EventUserLoggedOut        = "user.logged_out"
	EventPasswordChanged      = "user.password_changed"
	EventRefreshReuseDetected = "session.reuse_detected"
)

// Uploader stores a local file remotely. Implementations remove the local
// file whatever the outcome.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (*storage.UploadResult, error)
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	PublishEvent(eventType string, data map[string]interface{}) error
}

// AuthMetrics records authentication outcomes.
type AuthMetrics interface {
	RecordRegistration()
	RecordLogin(success bool)
	RecordRefresh(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) RecordRegistration() {}
func (nopMetrics) RecordLogin(bool) {}
func (nopMetrics) RecordRefresh(string) {}

// Refresh outcomes reported to AuthMetrics.
const (
	RefreshRotated = "rotated"
	RefreshInvalid = "invalid"
	RefreshReused  = "reused"
)

// collaborators holds the optional dependencies shared by the services.
type collaborators struct {
	events  EventPublisher
	metrics AuthMetrics
	logger  *zap.Logger
}

func defaultCollaborators() collaborators {
	return collaborators{metrics: nopMetrics{}, logger: zap.NewNop()}
}

// publish sends an event if a publisher is configured. Failures are logged and
// never fail the calling operation.
func (c *collaborators) publish(eventType string, data map[string]interface{}) {
	if c.events == nil {
		return
	}
	if err := c.events.PublishEvent(eventType, data); err != nil {
		c.logger.Warn("failed to publish event", zap.String("event", eventType), zap.Error(err))
	}
}

// storeFailure logs an unexpected store error and hides it behind an InternalError.
func (c *collaborators) storeFailure(err error, message string) error {
	c.logger.Error(message, zap.Error(err))
	return apperrors.Internal(err, "%s", message)
}

// upload runs uploader and treats an empty result as a failure.
func upload(ctx context.Context, uploader Uploader, localPath string) (string, error) {
	result, err := uploader.Upload(ctx, localPath)
	if err != nil {
		return "", err
	}
	if result == nil || result.URL == "" {
		return "", storage.ErrEmptyResult
	}
	return result.URL, nil
}
