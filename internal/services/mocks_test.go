package services_test

import (
	"context"
	"sync"

	"vidtube/internal/models"
	"vidtube/internal/repositories"
	"vidtube/pkg/storage"

	"github.com/stretchr/testify/mock"
)

// MockUploader is a mock implementation of services.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, localPath string) (*storage.UploadResult, error) {
	args := m.Called(ctx, localPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindOne(ctx context.Context, filter repositories.UserFilter) (*models.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateByID(ctx context.Context, id string, patch repositories.UserPatch, opts repositories.UpdateOptions) (*models.User, error) {
	args := m.Called(ctx, id, patch, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CompareAndSwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	args := m.Called(ctx, id, expected, next)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(eventType string, data map[string]interface{}) error {
	args := m.Called(eventType, data)
	return args.Error(0)
}

// recordingMetrics counts calls to services.AuthMetrics.
type recordingMetrics struct {
	mu            sync.Mutex
	registrations int
	logins        map[bool]int
	refreshes     map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{logins: map[bool]int{}, refreshes: map[string]int{}}
}

func (r *recordingMetrics) RecordRegistration() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations++
}

func (r *recordingMetrics) RecordLogin(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins[success]++
}

func (r *recordingMetrics) RecordRefresh(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes[outcome]++
}
