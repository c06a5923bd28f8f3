package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/services"
)

// RecoveryHandler handles HTTP requests for the stuck-job recovery sweep
type RecoveryHandler struct {
	recovery *services.RecoveryService
}

// NewRecoveryHandler creates a new recovery handler instance
func NewRecoveryHandler(r *services.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recovery: r}
}

// RunSweep handles the request to run a recovery sweep on demand. With
// dry_run=true the sweep reports candidates without mutating state.
func (h *RecoveryHandler) RunSweep(c *fiber.Ctx) error {
	dryRun := c.QueryBool("dry_run", false)

	summary, err := h.recovery.RunRecoverySweep(c.Context(), dryRun)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(errServer(err.Error()))
	}

	return c.JSON(success(summary))
}
