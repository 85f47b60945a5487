package handlers

import (
	"strings"

	"vidtube/internal/apperrors"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RefreshTokenCookie is the cookie holding the refresh token.
const RefreshTokenCookie = "refreshToken"

// AuthHandler handles HTTP requests for registration and sessions.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	tempDir     string
	limiter     middleware.Limiter
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. Uploaded files are staged in tempDir.
func NewAuthHandler(authService *services.AuthService, tempDir string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		tempDir:     tempDir,
		logger:      zap.NewNop(),
	}
}

// WithRateLimit limits login and registration attempts per client IP.
func (h *AuthHandler) WithRateLimit(limiter middleware.Limiter, logger *zap.Logger) *AuthHandler {
	h.limiter = limiter
	h.logger = logger
	return h
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	users := router.Group("/users")
	users.Post("/register", h.rateLimited("register"), h.HandleRegister)
	users.Post("/login", h.rateLimited("login"), h.HandleLogin)
	users.Post("/refresh-token", h.HandleRefresh)
	users.Post("/logout", authRequired, h.HandleLogout)
	users.Post("/change-password", authRequired, h.HandleChangePassword)
}

func (h *AuthHandler) rateLimited(scope string) fiber.Handler {
	if h.limiter == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(h.limiter, scope, h.logger)
}

// RegisterRequest is the multipart form of a registration.
type RegisterRequest struct {
	FullName string `form:"fullname" validate:"max=255"`
	Email    string `form:"email" validate:"omitempty,email"`
	Username string `form:"username" validate:"omitempty,min=3,max=100"`
	Password string `form:"password"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	avatarPath, err := saveUpload(c, "avatar", h.tempDir)
	if err != nil {
		return err
	}
	coverPath, err := saveUpload(c, "coverImage", h.tempDir)
	if err != nil {
		removeTemp(avatarPath)
		return err
	}
	defer removeTemp(avatarPath, coverPath)

	user, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, user, "User registered successfully")
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"omitempty,email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleLogin verifies credentials and sets both token cookies.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	result, err := h.authService.Login(c.UserContext(), services.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	setTokenCookies(c, result.Tokens)
	return respond(c, fiber.StatusOK, fiber.Map{
		"user":         result.User,
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// RefreshRequest carries a refresh token for clients that do not keep cookies.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

// HandleRefresh rotates the refresh token and issues a new pair. A token in
// the body takes precedence over the cookie.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var token string
	if len(c.Body()) > 0 {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.Validation("invalid request body")
		}
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		token = c.Cookies(RefreshTokenCookie)
	}

	pair, err := h.authService.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}

	setTokenCookies(c, *pair)
	return respond(c, fiber.StatusOK, pair, "Access token refreshed")
}

// HandleLogout ends the session of the signed-in user.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.UserID(c)); err != nil {
		return err
	}

	c.ClearCookie(middleware.AccessTokenCookie, RefreshTokenCookie)
	return respond(c, fiber.StatusOK, nil, "User logged out")
}

// ChangePasswordRequest is the body of a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword"`
}

// HandleChangePassword replaces the password of the signed-in user.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	if err := h.authService.ChangePassword(c.UserContext(), middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, nil, "Password changed successfully")
}

func setTokenCookies(c *fiber.Ctx, pair models.TokenPair) {
	for name, value := range map[string]string{
		middleware.AccessTokenCookie: pair.AccessToken,
		RefreshTokenCookie:           pair.RefreshToken,
	} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			HTTPOnly: pair.CookieOptions.HTTPOnly,
			Secure:   pair.CookieOptions.Secure,
		})
	}
}
