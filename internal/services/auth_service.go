package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"vidtube/internal/apperrors"
	"vidtube/internal/models"
	"vidtube/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries the fields of a registration request. AvatarPath and
// CoverImagePath point at local temp files awaiting upload.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// minUsernameLength matches the min rule on models.User.Username.
const minUsernameLength = 3

// LoginInput identifies a user by email or username.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// AuthService handles registration, login and the refresh-token lifecycle.
type AuthService struct {
	users    repositories.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenService
	uploader Uploader
	collaborators
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, hasher *PasswordHasher, tokens *TokenService, uploader Uploader) *AuthService {
	return &AuthService{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		uploader:      uploader,
		collaborators: defaultCollaborators(),
	}
}

// WithEvents sets the publisher used for user and session events.
func (s *AuthService) WithEvents(events EventPublisher) *AuthService {
	s.events = events
	return s
}

// WithMetrics sets the recorder for authentication outcomes.
func (s *AuthService) WithMetrics(metrics AuthMetrics) *AuthService {
	s.metrics = metrics
	return s
}

// WithLogger sets the service logger.
func (s *AuthService) WithLogger(logger *zap.Logger) *AuthService {
	s.logger = logger
	return s
}

// Register creates a user after checking uniqueness and uploading the avatar.
// The returned projection never carries the password or refresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperrors.Validation("all fields are required")
	}
	if len(username) < minUsernameLength {
		return nil, apperrors.Validation("username must be at least %d characters", minUsernameLength)
	}

	_, err := s.users.FindOne(ctx, repositories.UserFilter{Email: email, Username: username})
	switch {
	case err == nil:
		return nil, apperrors.Conflict("user with email or username already exists")
	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, s.storeFailure(err, "failed to check existing user")
	}

	if strings.TrimSpace(in.AvatarPath) == "" {
		return nil, apperrors.Validation("avatar file is required")
	}

	digest, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	avatarURL, err := upload(ctx, s.uploader, in.AvatarPath)
	if err != nil {
		s.logger.Warn("avatar upload failed", zap.String("username", username), zap.Error(err))
		return nil, apperrors.Upload(err, "avatar upload failed")
	}

	var coverURL string
	if strings.TrimSpace(in.CoverImagePath) != "" {
		coverURL, err = upload(ctx, s.uploader, in.CoverImagePath)
		if err != nil {
			s.logger.Warn("cover image upload failed, continuing without it", zap.String("username", username), zap.Error(err))
			coverURL = ""
		}
	}

	user := &models.User{
		FullName:   fullName,
		Email:      email,
		Username:   username,
		Password:   digest,
		Avatar:     avatarURL,
		CoverImage: coverURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateUser):
			return nil, apperrors.Conflict("user with email or username already exists")
		case errors.Is(err, repositories.ErrInvalidUser):
			return nil, apperrors.Validation("invalid user details")
		}
		return nil, s.storeFailure(err, "failed to create user")
	}

	created, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, s.storeFailure(err, "something went wrong while registering the user")
	}

	s.metrics.RecordRegistration()
	s.publish(EventUserRegistered, map[string]interface{}{
		"userID":   created.ID,
		"username": created.Username,
		"email":    created.Email,
	})

	public := created.Public()
	return &public, nil
}

// Login verifies credentials and starts a new session. The issued refresh
// token replaces any previously stored one.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.LoginResult, error) {
	filter := repositories.UserFilter{
		Email:    strings.TrimSpace(in.Email),
		Username: strings.TrimSpace(in.Username),
	}
	if filter.Email == "" && filter.Username == "" {
		return nil, apperrors.Validation("username or email is required")
	}

	user, err := s.users.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.metrics.RecordLogin(false)
			return nil, apperrors.NotFound("user does not exist")
		}
		return nil, s.storeFailure(err, "failed to look up user")
	}

	if !s.hasher.Verify(in.Password, user.Password) {
		s.metrics.RecordLogin(false)
		return nil, apperrors.Auth("invalid user credentials")
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, s.storeFailure(err, "something went wrong while generating tokens")
	}

	updated, err := s.users.UpdateByID(ctx, user.ID,
		repositories.UserPatch{RefreshToken: &pair.RefreshToken},
		repositories.UpdateOptions{SkipValidation: true})
	if err != nil {
		return nil, s.storeFailure(err, "something went wrong while generating tokens")
	}

	s.metrics.RecordLogin(true)
	s.publish(EventUserLoggedIn, map[string]interface{}{"userID": user.ID})

	return &models.LoginResult{User: updated.Public(), Tokens: *pair}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// be the one currently stored for its user; on success it is replaced, so
// each refresh token can be used once.
func (s *AuthService) Refresh(ctx context.Context, incoming string) (*models.TokenPair, error) {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" {
		s.metrics.RecordRefresh(RefreshInvalid)
		return nil, apperrors.Auth("unauthorized request")
	}

	claims, err := s.tokens.Verify(incoming, RefreshToken)
	if err != nil {
		s.metrics.RecordRefresh(RefreshInvalid)
		return nil, apperrors.Auth("invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.metrics.RecordRefresh(RefreshInvalid)
			return nil, apperrors.Auth("invalid refresh token")
		}
		return nil, s.storeFailure(err, "failed to load user for refresh")
	}

	if !tokensEqual(incoming, user.RefreshToken) {
		return nil, s.rejectReuse(user.ID)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, s.storeFailure(err, "something went wrong while generating tokens")
	}

	swapped, err := s.users.CompareAndSwapRefreshToken(ctx, user.ID, incoming, pair.RefreshToken)
	if err != nil {
		return nil, s.storeFailure(err, "failed to rotate refresh token")
	}
	if !swapped {
		// Another request rotated the same token first.
		return nil, s.rejectReuse(user.ID)
	}

	s.metrics.RecordRefresh(RefreshRotated)
	return pair, nil
}

func (s *AuthService) rejectReuse(userID string) error {
	s.metrics.RecordRefresh(RefreshReused)
	s.logger.Warn("refresh token reuse detected", zap.String("userID", userID))
	s.publish(EventRefreshReuseDetected, map[string]interface{}{"userID": userID})
	return apperrors.Auth("refresh token is expired or used")
}

func tokensEqual(presented, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}

// Logout clears the stored refresh token. Calling it again is harmless.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	cleared := ""
	_, err := s.users.UpdateByID(ctx, userID,
		repositories.UserPatch{RefreshToken: &cleared},
		repositories.UpdateOptions{SkipValidation: true})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFound("user does not exist")
		}
		return s.storeFailure(err, "failed to log out user")
	}

	s.publish(EventUserLoggedOut, map[string]interface{}{"userID": userID})
	return nil
}

// ChangePassword replaces the password after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperrors.Validation("new password is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFound("user does not exist")
		}
		return s.storeFailure(err, "failed to load user")
	}

	if !s.hasher.Verify(oldPassword, user.Password) {
		return apperrors.Auth("invalid old password")
	}

	digest, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.UpdateByID(ctx, userID,
		repositories.UserPatch{Password: &digest},
		repositories.UpdateOptions{SkipValidation: true}); err != nil {
		return s.storeFailure(err, "failed to change password")
	}

	s.publish(EventPasswordChanged, map[string]interface{}{"userID": userID})
	return nil
}

// VerifyAccessToken validates an access token for the auth middleware.
func (s *AuthService) VerifyAccessToken(token string) (*Claims, error) {
	claims, err := s.tokens.Verify(token, AccessToken)
	if err != nil {
		return nil, apperrors.Auth("invalid access token")
	}
	return claims, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.Validation("password must be at most 72 bytes")
		}
		return "", s.storeFailure(err, "failed to hash password")
	}
	return digest, nil
}
