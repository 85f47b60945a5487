package services

import (
	"errors"
	"fmt"
	"time"

	"vidtube/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by both token kinds. Refresh tokens only
// fill UserID.
type Claims struct {
	UserID   string    `json:"_id"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	Kind     TokenKind `json:"typ"`
	jwt.StandardClaims
}

// TokenConfig holds signing secrets and lifetimes for both token kinds.
type TokenConfig struct {
	AccessSecret  string
	AccessExpiry  time.Duration
	RefreshSecret string
	RefreshExpiry time.Duration
}

// TokenService issues and verifies access and refresh tokens.
type TokenService struct {
	accessSecret  []byte
	accessExpiry  time.Duration
	refreshSecret []byte
	refreshExpiry time.Duration
}

// NewTokenService creates a TokenService. It fails when a secret is missing,
// both kinds share a secret, or a lifetime is not positive.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	if cfg.AccessExpiry <= 0 || cfg.RefreshExpiry <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		accessExpiry:  cfg.AccessExpiry,
		refreshSecret: []byte(cfg.RefreshSecret),
		refreshExpiry: cfg.RefreshExpiry,
	}, nil
}

func (s *TokenService) secretFor(kind TokenKind) ([]byte, error) {
	switch kind {
	case AccessToken:
		return s.accessSecret, nil
	case RefreshToken:
		return s.refreshSecret, nil
	default:
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
}

func (s *TokenService) sign(claims Claims, ttl time.Duration) (string, error) {
	secret, err := s.secretFor(claims.Kind)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims.Id = uuid.New().String()
	claims.Subject = claims.UserID
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", claims.Kind, err)
	}
	return signed, nil
}

// IssueAccessToken creates a short-lived token carrying id, username and email.
func (s *TokenService) IssueAccessToken(user *models.User) (string, error) {
	return s.sign(Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Kind:     AccessToken,
	}, s.accessExpiry)
}

// IssueRefreshToken creates a long-lived token carrying only the user id.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.sign(Claims{
		UserID: userID,
		Kind:   RefreshToken,
	}, s.refreshExpiry)
}

// IssuePair creates a new access/refresh pair for user.
func (s *TokenService) IssuePair(user *models.User) (*models.TokenPair, error) {
	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		CookieOptions: models.CookieOptions{HTTPOnly: true, Secure: true},
	}, nil
}

// Verify checks signature, expiry and kind of tokenString and returns its claims.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	secret, err := s.secretFor(kind)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Kind != kind || claims.UserID == "" || claims.ExpiresAt == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
