package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"meetapi/internal/http/middleware"
	"meetapi/internal/service"
)

// Services bundles the collaborators the HTTP surface depends on.
type Services struct {
	Sessions    service.SessionRegistry
	Ingester    service.FragmentIngester
	Coordinator service.ProcessingCoordinator
	Exporter    service.ExportBridge
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers stay
// thin; every business decision lives in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Everything below requires a gateway-verified identity.
	recordings := app.Group("/recordings", middleware.Account())

	recordings.Post("/", StartRecording(svcs.Sessions))
	recordings.Get("/", ListRecordings(svcs.Sessions))
	recordings.Get("/:id", GetRecording(svcs.Sessions))
	recordings.Delete("/:id", DeleteRecording(svcs.Sessions))

	recordings.Post("/:id/fragments", UploadFragment(svcs.Ingester))
	recordings.Post("/:id/end", EndRecording(svcs.Coordinator))
	recordings.Post("/:id/export", ExportRecording(svcs.Exporter))
}
