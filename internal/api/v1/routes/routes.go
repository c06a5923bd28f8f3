// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/api/v1/handlers"
)

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Handlers groups the handler instances the routes dispatch to
type Handlers struct {
	Job      *handlers.JobHandler
	Provider *handlers.ProviderHandler
	Recovery *handlers.RecoveryHandler
}

// RegisterRoutes configures all the v1 routes
func RegisterRoutes(router fiber.Router, h Handlers) {
	// Job routes
	jobs := router.Group("/jobs")
	jobs.Get("/", h.Job.ListJobs)
	jobs.Post("/", h.Job.CreateJob)
	jobs.Get("/:id", h.Job.GetJob)
	jobs.Get("/:id/result", h.Job.GetJobResult)
	jobs.Get("/:id/status", h.Job.GetJobStatus)

	// Provider routes
	providers := router.Group("/providers")
	providers.Get("/", h.Provider.ListProviders)
	providers.Put("/default", h.Provider.SetDefaultProvider)

	// Recovery routes
	recovery := router.Group("/recovery")
	recovery.Post("/sweep", h.Recovery.RunSweep)
}

// Register registers the v1 routes
func Register(app *fiber.App, h Handlers) {
	v1Group := app.Group(APIv1Prefix)
	RegisterRoutes(v1Group, h)
}
