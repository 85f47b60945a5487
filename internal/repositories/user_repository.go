package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vidtube/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when a write violates email or username uniqueness.
	ErrDuplicateUser = errors.New("user with this email or username already exists")
	// ErrInvalidUser is returned when a created or updated user fails model validation.
	ErrInvalidUser = errors.New("invalid user")
)

var validate = validator.New()

// UserFilter matches users whose email OR username equals the given value.
// Empty fields take no part in the match. Both are compared lowercased.
type UserFilter struct {
	Email    string
	Username string
}

func (f UserFilter) normalized() UserFilter {
	return UserFilter{
		Email:    strings.ToLower(strings.TrimSpace(f.Email)),
		Username: strings.ToLower(strings.TrimSpace(f.Username)),
	}
}

func (f UserFilter) isEmpty() bool {
	return f.Email == "" && f.Username == ""
}

// UserPatch lists the fields to change; nil fields are left untouched.
type UserPatch struct {
	FullName     *string
	Email        *string
	Password     *string
	Avatar       *string
	CoverImage   *string
	RefreshToken *string
}

// UpdateOptions controls how UpdateByID persists a patch.
type UpdateOptions struct {
	// SkipValidation writes the patched columns without re-validating the
	// whole user. Used for token and password bookkeeping.
	SkipValidation bool
}

func (p UserPatch) apply(u *models.User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.CoverImage != nil {
		u.CoverImage = *p.CoverImage
	}
	if p.RefreshToken != nil {
		u.RefreshToken = *p.RefreshToken
	}
}

// columns returns the patch as a column map. A map is used so empty strings,
// such as a cleared refresh token, are written instead of skipped.
func (p UserPatch) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.FullName != nil {
		cols["full_name"] = *p.FullName
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Password != nil {
		cols["password"] = *p.Password
	}
	if p.Avatar != nil {
		cols["avatar"] = *p.Avatar
	}
	if p.CoverImage != nil {
		cols["cover_image"] = *p.CoverImage
	}
	if p.RefreshToken != nil {
		cols["refresh_token"] = *p.RefreshToken
	}
	return cols
}

func validateUser(u *models.User) error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	return nil
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create validates and stores a new user. It returns ErrInvalidUser or
	// ErrDuplicateUser for rejected records.
	Create(ctx context.Context, user *models.User) error
	FindOne(ctx context.Context, filter UserFilter) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateByID(ctx context.Context, id string, patch UserPatch, opts UpdateOptions) (*models.User, error)
	// CompareAndSwapRefreshToken stores next only if the user's current refresh
	// token equals expected. It reports whether the swap happened.
	CompareAndSwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error)
}
