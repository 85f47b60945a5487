package repositories

import (
	"context"
	"sync"
	"time"

	"vidtube/internal/models"

	"github.com/google/uuid"
)

// MockStore is an in-memory implementation of UserRepository and
// SubscriptionRepository. A single lock guards both collections so the
// channel aggregation reads a consistent snapshot.
type MockStore struct {
	users         map[string]models.User
	subscriptions map[string]models.Subscription
	mu            sync.RWMutex
}

// NewMockStore creates a new, empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:         make(map[string]models.User),
		subscriptions: make(map[string]models.Subscription),
	}
}

func subscriptionKey(subscriberID, channelID string) string {
	return subscriberID + "->" + channelID
}

// Create adds a new user.
func (s *MockStore) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return ErrDuplicateUser
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

// FindOne returns the first user matching filter.
func (s *MockStore) FindOne(ctx context.Context, filter UserFilter) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter = filter.normalized()
	if filter.isEmpty() {
		return nil, ErrUserNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if (filter.Email != "" && u.Email == filter.Email) ||
			(filter.Username != "" && u.Username == filter.Username) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByID returns a user by its ID.
func (s *MockStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// UpdateByID applies patch to the stored user.
func (s *MockStore) UpdateByID(ctx context.Context, id string, patch UserPatch, opts UpdateOptions) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	patch.apply(&u)
	if !opts.SkipValidation {
		if err := validateUser(&u); err != nil {
			return nil, err
		}
	}
	if patch.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Email == u.Email {
				return nil, ErrDuplicateUser
			}
		}
	}
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return &u, nil
}

// CompareAndSwapRefreshToken swaps the refresh token under the store lock.
func (s *MockStore) CompareAndSwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if expected == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.RefreshToken != expected {
		return false, nil
	}
	u.RefreshToken = next
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return true, nil
}

// createSubscription backs Create on the Subscriptions view; MockStore.Create
// already belongs to UserRepository.
func (s *MockStore) createSubscription(ctx context.Context, sub *models.Subscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := subscriptionKey(sub.SubscriberID, sub.ChannelID)
	if _, exists := s.subscriptions[key]; exists {
		return nil
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.CreatedAt = time.Now()
	s.subscriptions[key] = *sub
	return nil
}

func (s *MockStore) deleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := subscriptionKey(subscriberID, channelID)
	if _, exists := s.subscriptions[key]; !exists {
		return false, nil
	}
	delete(s.subscriptions, key)
	return true, nil
}

func (s *MockStore) channelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var channel *models.User
	for _, u := range s.users {
		if u.Username == username {
			found := u
			channel = &found
			break
		}
	}
	if channel == nil {
		return nil, ErrUserNotFound
	}

	profile := &models.ChannelProfile{
		FullName:   channel.FullName,
		Username:   channel.Username,
		Email:      channel.Email,
		Avatar:     channel.Avatar,
		CoverImage: channel.CoverImage,
	}
	for _, sub := range s.subscriptions {
		if sub.ChannelID == channel.ID {
			profile.SubscribersCount++
			if sub.SubscriberID == viewerID {
				profile.IsSubscribed = true
			}
		}
		if sub.SubscriberID == channel.ID {
			profile.ChannelsSubscribedToCount++
		}
	}
	return profile, nil
}

// Subscriptions returns the SubscriptionRepository view of the store.
func (s *MockStore) Subscriptions() SubscriptionRepository {
	return mockSubscriptions{store: s}
}

type mockSubscriptions struct {
	store *MockStore
}

func (m mockSubscriptions) Create(ctx context.Context, sub *models.Subscription) error {
	return m.store.createSubscription(ctx, sub)
}

func (m mockSubscriptions) Delete(ctx context.Context, subscriberID, channelID string) (bool, error) {
	return m.store.deleteSubscription(ctx, subscriberID, channelID)
}

func (m mockSubscriptions) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	return m.store.channelProfile(ctx, username, viewerID)
}
