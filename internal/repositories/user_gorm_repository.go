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

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGORMUserRepository creates a new instance of GORMUserRepository. Every
// call is bounded by timeout. The *gorm.DB must be opened with TranslateError
// so unique violations surface as gorm.ErrDuplicatedKey.
func NewGORMUserRepository(db *gorm.DB, timeout time.Duration) *GORMUserRepository {
	return &GORMUserRepository{
		db:      db,
		timeout: timeout,
	}
}

func (r *GORMUserRepository) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	db, cancel := r.session(ctx)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := validateUser(user); err != nil {
		return err
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindOne retrieves the first user matching filter.
func (r *GORMUserRepository) FindOne(ctx context.Context, filter UserFilter) (*models.User, error) {
	filter = filter.normalized()
	if filter.isEmpty() {
		return nil, ErrUserNotFound
	}

	db, cancel := r.session(ctx)
	defer cancel()

	switch {
	case filter.Email != "" && filter.Username != "":
		db = db.Where("email = ? OR username = ?", filter.Email, filter.Username)
	case filter.Email != "":
		db = db.Where("email = ?", filter.Email)
	default:
		db = db.Where("username = ?", filter.Username)
	}

	var user models.User
	if err := db.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	return findUserByID(db, id)
}

func findUserByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// UpdateByID applies patch to the user and returns the updated record.
func (r *GORMUserRepository) UpdateByID(ctx context.Context, id string, patch UserPatch, opts UpdateOptions) (*models.User, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	cols := patch.columns()
	if len(cols) == 0 {
		return findUserByID(db, id)
	}

	var updated *models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		if !opts.SkipValidation {
			current, err := findUserByID(tx, id)
			if err != nil {
				return err
			}
			patch.apply(current)
			if err := validateUser(current); err != nil {
				return err
			}
		}

		res := tx.Model(&models.User{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUser
			}
			return fmt.Errorf("failed to update user %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		user, err := findUserByID(tx, id)
		if err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CompareAndSwapRefreshToken rotates the stored refresh token in a single
// conditional UPDATE, so two callers presenting the same token cannot both win.
func (r *GORMUserRepository) CompareAndSwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	if expected == "" {
		return false, nil
	}

	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", id, expected).
		Update("refresh_token", next)
	if res.Error != nil {
		return false, fmt.Errorf("failed to rotate refresh token for user %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
