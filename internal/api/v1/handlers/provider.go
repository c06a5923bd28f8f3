package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/llm"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/types"
)

// ProviderHandler handles HTTP requests for LLM provider operations
type ProviderHandler struct {
	dispatcher *llm.Dispatcher
}

// NewProviderHandler creates a new provider handler instance
func NewProviderHandler(d *llm.Dispatcher) *ProviderHandler {
	return &ProviderHandler{dispatcher: d}
}

// ListProviders handles the request to list available providers. Listing
// probes providers that have not been constructed yet.
func (h *ProviderHandler) ListProviders(c *fiber.Ctx) error {
	registry := h.dispatcher.Registry()
	return c.JSON(success(types.ProvidersResponse{
		Available: registry.Available(),
		Default:   registry.DefaultProvider(),
	}))
}

// SetDefaultProvider handles the request to change the fallback provider.
// Availability is validated at use time, not here.
func (h *ProviderHandler) SetDefaultProvider(c *fiber.Ctx) error {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput(err.Error()))
	}
	if req.Provider == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput("provider is required"))
	}

	h.dispatcher.Registry().SetDefaultProvider(req.Provider)
	return c.JSON(success(fiber.Map{"default": req.Provider}))
}
