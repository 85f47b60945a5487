package handlers

import (
	"vidtube/internal/apperrors"
	"vidtube/internal/middleware"
	"vidtube/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the signed-in user's account.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
	tempDir     string
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, tempDir string) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
		tempDir:     tempDir,
	}
}

// RegisterRoutes registers the account routes. All of them require authentication.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	users := router.Group("/users")
	users.Get("/current-user", authRequired, h.HandleCurrentUser)
	users.Patch("/update-account", authRequired, h.HandleUpdateAccount)
	users.Patch("/avatar", authRequired, h.HandleUpdateAvatar)
	users.Patch("/cover-image", authRequired, h.HandleUpdateCoverImage)
}

// HandleCurrentUser returns the signed-in user.
func (h *UserHandler) HandleCurrentUser(c *fiber.Ctx) error {
	user, err := h.userService.CurrentUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user, "User fetched successfully")
}

// UpdateAccountRequest is the body of an account details update.
type UpdateAccountRequest struct {
	FullName string `json:"fullname" validate:"max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// HandleUpdateAccount changes the full name and email.
func (h *UserHandler) HandleUpdateAccount(c *fiber.Ctx) error {
	var req UpdateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	user, err := h.userService.UpdateAccountDetails(c.UserContext(), middleware.UserID(c), req.FullName, req.Email)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user, "Account details updated successfully")
}

// HandleUpdateAvatar replaces the avatar from the "avatar" form file.
func (h *UserHandler) HandleUpdateAvatar(c *fiber.Ctx) error {
	path, err := saveUpload(c, "avatar", h.tempDir)
	if err != nil {
		return err
	}
	defer removeTemp(path)

	user, err := h.userService.UpdateAvatar(c.UserContext(), middleware.UserID(c), path)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user, "Avatar updated successfully")
}

// HandleUpdateCoverImage replaces the cover image from the "coverImage" form file.
func (h *UserHandler) HandleUpdateCoverImage(c *fiber.Ctx) error {
	path, err := saveUpload(c, "coverImage", h.tempDir)
	if err != nil {
		return err
	}
	defer removeTemp(path)

	user, err := h.userService.UpdateCoverImage(c.UserContext(), middleware.UserID(c), path)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user, "Cover image updated successfully")
}
