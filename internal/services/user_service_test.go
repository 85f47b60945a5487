package services_test

import (
	"context"
	"errors"
	"testing"

	"vidtube/internal/apperrors"
	"vidtube/internal/repositories"
	"vidtube/internal/services"
	"vidtube/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*authFixture, *services.UserService) {
	t.Helper()
	f := newAuthFixture(t)
	return f, services.NewUserService(f.store, f.uploader)
}

func TestCurrentUser(t *testing.T) {
	f, users := newUserService(t)
	registered := f.register(t, "alice")

	me, err := users.CurrentUser(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	_, err = users.CurrentUser(context.Background(), "no-such-user")
	assertKind(t, err, apperrors.KindNotFound)
}

func TestUpdateAccountDetails(t *testing.T) {
	f, users := newUserService(t)
	alice := f.register(t, "alice")
	f.register(t, "bob")

	updated, err := users.UpdateAccountDetails(context.Background(), alice.ID, " Alice Liddell ", "liddell@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName)
	assert.Equal(t, "liddell@example.com", updated.Email)

	// Keeping one's own email is not a conflict.
	_, err = users.UpdateAccountDetails(context.Background(), alice.ID, "Alice", "liddell@example.com")
	assert.NoError(t, err)

	_, err = users.UpdateAccountDetails(context.Background(), alice.ID, "Alice", "bob@example.com")
	assertKind(t, err, apperrors.KindConflict)

	_, err = users.UpdateAccountDetails(context.Background(), alice.ID, "", "x@example.com")
	assertKind(t, err, apperrors.KindValidation)

	_, err = users.UpdateAccountDetails(context.Background(), alice.ID, "Alice", "not-an-email")
	assertKind(t, err, apperrors.KindValidation)

	_, err = users.UpdateAccountDetails(context.Background(), "no-such-user", "Ghost", "ghost@example.com")
	assertKind(t, err, apperrors.KindNotFound)
}

func TestUpdateImages(t *testing.T) {
	f, users := newUserService(t)
	alice := f.register(t, "alice")
	f.uploader.On("Upload", mock.Anything, "/tmp/new-avatar.png").
		Return(&storage.UploadResult{URL: "https://cdn.example.test/new-avatar.png"}, nil)
	f.uploader.On("Upload", mock.Anything, "/tmp/broken.png").Return(nil, errors.New("cdn down"))

	updated, err := users.UpdateAvatar(context.Background(), alice.ID, "/tmp/new-avatar.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.test/new-avatar.png", updated.Avatar)

	updated, err = users.UpdateCoverImage(context.Background(), alice.ID, coverPath)
	require.NoError(t, err)
	assert.Equal(t, coverURL, updated.CoverImage)

	_, err = users.UpdateAvatar(context.Background(), alice.ID, "")
	assertKind(t, err, apperrors.KindValidation)
	_, err = users.UpdateCoverImage(context.Background(), alice.ID, "")
	assertKind(t, err, apperrors.KindValidation)

	_, err = users.UpdateAvatar(context.Background(), alice.ID, "/tmp/broken.png")
	assertKind(t, err, apperrors.KindUpload)

	stored, err := f.store.FindOne(context.Background(), repositories.UserFilter{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.test/new-avatar.png", stored.Avatar)
}

func TestUpdateAccountDetails_AfterRegistration(t *testing.T) {
	f, users := newUserService(t)
	bob := f.register(t, "bob")

	updated, err := users.UpdateAccountDetails(context.Background(), bob.ID, "New Name", "Bob@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, "bob@example.com", updated.Email)

	updated, err = users.UpdateAvatar(context.Background(), bob.ID, coverPath)
	require.NoError(t, err)
	assert.Equal(t, coverURL, updated.Avatar)
}
