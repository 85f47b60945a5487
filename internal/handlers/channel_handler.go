package handlers

import (
	"vidtube/internal/middleware"
	"vidtube/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ChannelHandler serves channel profiles and subscriptions.
type ChannelHandler struct {
	channelService *services.ChannelService
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(channelService *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// RegisterRoutes registers the channel routes. All of them require authentication.
func (h *ChannelHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/users/c/:username", authRequired, h.HandleChannelProfile)
	router.Post("/subscriptions/c/:channelId", authRequired, h.HandleToggleSubscription)
}

// HandleChannelProfile returns the channel profile as seen by the caller.
func (h *ChannelHandler) HandleChannelProfile(c *fiber.Ctx) error {
	profile, err := h.channelService.GetChannelProfile(c.UserContext(), c.Params("username"), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, profile, "User channel fetched successfully")
}

// HandleToggleSubscription subscribes to or unsubscribes from a channel.
func (h *ChannelHandler) HandleToggleSubscription(c *fiber.Ctx) error {
	subscribed, err := h.channelService.ToggleSubscription(c.UserContext(), middleware.UserID(c), c.Params("channelId"))
	if err != nil {
		return err
	}

	message := "Unsubscribed successfully"
	if subscribed {
		message = "Subscribed successfully"
	}
	return respond(c, fiber.StatusOK, fiber.Map{"subscribed": subscribed}, message)
}
