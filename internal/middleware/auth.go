package middleware

import (
	"strings"

	"vidtube/internal/apperrors"
	"vidtube/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

// AccessTokenCookie is the cookie holding the access token.
const AccessTokenCookie = "accessToken"

// AccessTokenVerifier validates access tokens.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware that requires a valid access token,
// taken from the accessToken cookie or an "Authorization: Bearer" header.
func AuthRequired(verifier AccessTokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(AccessTokenCookie)
		if token == "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				token = strings.TrimSpace(parts[1])
			}
		}
		if token == "" {
			return apperrors.Auth("unauthorized request")
		}

		claims, err := verifier.VerifyAccessToken(token)
		if err != nil {
			return err
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		return c.Next()
	}
}

// UserID returns the id stored by AuthRequired, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
