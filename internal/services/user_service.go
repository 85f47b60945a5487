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

// UserService handles reads and profile updates of the signed-in user.
type UserService struct {
	users    repositories.UserRepository
	uploader Uploader
	collaborators
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, uploader Uploader) *UserService {
	return &UserService{
		users:         users,
		uploader:      uploader,
		collaborators: defaultCollaborators(),
	}
}

// WithLogger sets the service logger.
func (s *UserService) WithLogger(logger *zap.Logger) *UserService {
	s.logger = logger
	return s
}

// CurrentUser returns the public projection of the user with the given id.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.lookupFailure(err)
	}
	public := user.Public()
	return &public, nil
}

// UpdateAccountDetails changes the full name and email. The whole record is
// re-validated before it is written.
func (s *UserService) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.PublicUser, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, apperrors.Validation("fullname and email are required")
	}

	existing, err := s.users.FindOne(ctx, repositories.UserFilter{Email: email})
	switch {
	case err == nil && existing.ID != userID:
		return nil, apperrors.Conflict("email is already in use")
	case err != nil && !errors.Is(err, repositories.ErrUserNotFound):
		return nil, s.storeFailure(err, "failed to check existing email")
	}

	return s.update(ctx, userID, repositories.UserPatch{FullName: &fullName, Email: &email})
}

// UpdateAvatar uploads a new avatar and stores its URL.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, localPath string) (*models.PublicUser, error) {
	if strings.TrimSpace(localPath) == "" {
		return nil, apperrors.Validation("avatar file is missing")
	}
	url, err := upload(ctx, s.uploader, localPath)
	if err != nil {
		return nil, apperrors.Upload(err, "error while uploading avatar")
	}
	return s.update(ctx, userID, repositories.UserPatch{Avatar: &url})
}

// UpdateCoverImage uploads a new cover image and stores its URL.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.PublicUser, error) {
	if strings.TrimSpace(localPath) == "" {
		return nil, apperrors.Validation("cover image file is missing")
	}
	url, err := upload(ctx, s.uploader, localPath)
	if err != nil {
		return nil, apperrors.Upload(err, "error while uploading cover image")
	}
	return s.update(ctx, userID, repositories.UserPatch{CoverImage: &url})
}

func (s *UserService) update(ctx context.Context, userID string, patch repositories.UserPatch) (*models.PublicUser, error) {
	user, err := s.users.UpdateByID(ctx, userID, patch, repositories.UpdateOptions{})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateUser):
			return nil, apperrors.Conflict("email is already in use")
		case errors.Is(err, repositories.ErrInvalidUser):
			return nil, apperrors.Validation("invalid account details")
		}
		return nil, s.lookupFailure(err)
	}
	public := user.Public()
	return &public, nil
}

func (s *UserService) lookupFailure(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.NotFound("user does not exist")
	}
	return s.storeFailure(err, "failed to load user")
}
