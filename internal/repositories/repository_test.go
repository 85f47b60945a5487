package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a private in-memory SQLite database with the schema migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Subscription{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newUser(username string) *models.User {
	return &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "User " + username,
		Password: "$2a$04$hash",
		Avatar:   "https://cdn.example.com/" + username + ".png",
	}
}

// seedUsers stores users in repo and returns them keyed by username.
func seedUsers(t *testing.T, repo repositories.UserRepository, usernames ...string) map[string]*models.User {
	t.Helper()
	users := make(map[string]*models.User, len(usernames))
	for _, name := range usernames {
		u := newUser(name)
		require.NoError(t, repo.Create(context.Background(), u))
		users[name] = u
	}
	return users
}

const testTimeout = 5 * time.Second

func strPtr(s string) *string { return &s }
