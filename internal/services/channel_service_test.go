package services_test

import (
	"context"
	"errors"
	"testing"

	"vidtube/internal/apperrors"
	"vidtube/internal/models"
	"vidtube/internal/repositories"
	"vidtube/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChannelService(t *testing.T) (*authFixture, *services.ChannelService) {
	t.Helper()
	f := newAuthFixture(t)
	return f, services.NewChannelService(f.store, f.store.Subscriptions())
}

func TestGetChannelProfile(t *testing.T) {
	f, channels := newChannelService(t)
	ctx := context.Background()

	ids := map[string]string{}
	for _, name := range []string{"chan", "sub1", "sub2", "sub3", "other"} {
		ids[name] = f.register(t, name).ID
	}
	for _, subscriber := range []string{"sub1", "sub2", "sub3"} {
		subscribed, err := channels.ToggleSubscription(ctx, ids[subscriber], ids["chan"])
		require.NoError(t, err)
		require.True(t, subscribed)
	}
	_, err := channels.ToggleSubscription(ctx, ids["chan"], ids["other"])
	require.NoError(t, err)

	profile, err := channels.GetChannelProfile(ctx, " CHAN ", ids["sub1"])
	require.NoError(t, err)
	assert.Equal(t, "chan", profile.Username)
	assert.Equal(t, int64(3), profile.SubscribersCount)
	assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
	assert.True(t, profile.IsSubscribed)

	profile, err = channels.GetChannelProfile(ctx, "chan", ids["other"])
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed)

	profile, err = channels.GetChannelProfile(ctx, "sub2", ids["chan"])
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.SubscribersCount)
	assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)

	_, err = channels.GetChannelProfile(ctx, "nobody", ids["sub1"])
	assertKind(t, err, apperrors.KindNotFound)

	_, err = channels.GetChannelProfile(ctx, "  ", ids["sub1"])
	assertKind(t, err, apperrors.KindValidation)
}

func TestToggleSubscription(t *testing.T) {
	f, channels := newChannelService(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	subscribed, err := channels.ToggleSubscription(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	subscribed, err = channels.ToggleSubscription(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)

	profile, err := channels.GetChannelProfile(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.SubscribersCount)

	_, err = channels.ToggleSubscription(ctx, bob.ID, bob.ID)
	assertKind(t, err, apperrors.KindValidation)
	_, err = channels.ToggleSubscription(ctx, bob.ID, "")
	assertKind(t, err, apperrors.KindValidation)
	_, err = channels.ToggleSubscription(ctx, bob.ID, "no-such-channel")
	assertKind(t, err, apperrors.KindNotFound)
}

type failingSubscriptions struct{}

func (failingSubscriptions) Create(context.Context, *models.Subscription) error {
	return errors.New("disk full")
}

func (failingSubscriptions) Delete(context.Context, string, string) (bool, error) {
	return false, errors.New("disk full")
}

func (failingSubscriptions) ChannelProfile(context.Context, string, string) (*models.ChannelProfile, error) {
	return nil, context.DeadlineExceeded
}

func TestChannelService_StoreFailures(t *testing.T) {
	store := repositories.NewMockStore()
	owner := &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice",
		Password: "$2a$04$digest",
		Avatar:   avatarURL,
	}
	require.NoError(t, store.Create(context.Background(), owner))
	channels := services.NewChannelService(store, failingSubscriptions{})

	_, err := channels.GetChannelProfile(context.Background(), "alice", "")
	assertKind(t, err, apperrors.KindInternal)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = channels.ToggleSubscription(context.Background(), "viewer", owner.ID)
	assertKind(t, err, apperrors.KindInternal)
}
