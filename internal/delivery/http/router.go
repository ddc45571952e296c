package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vpfs/backend/internal/domain"
	"github.com/vpfs/backend/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, engine *service.Engine, auth *service.Authenticator, repo domain.AuditRepository) {
	handler := NewHandler(engine, auth, repo)

	// Health check
	app.Get("/", handler.HealthCheck)

	// Team-facing endpoints
	app.Get("/match", handler.GetMatch)
	app.Get("/fares", handler.GetFares)
	app.Get("/fares/claim/:idx", handler.ClaimFare)
	app.Get("/fares/current/:team", handler.GetCurrentFare)
	app.Get("/whereami/:team", handler.WhereAmI)

	// Position pipeline pushes batched telemetry here
	app.Post("/whereami/update", handler.UpdatePositions)

	// Dashboard endpoints
	dashboard := app.Group("/dashboard")
	{
		dashboard.Get("/teams", handler.GetDashboardTeams)
		dashboard.Get("/fares", handler.GetDashboardFares)
		dashboard.Get("/history", handler.GetFareHistory)
	}

	// Operator endpoints, LAB mode only
	lab := app.Group("/lab", handler.RequireLab)
	{
		lab.Get("/teams/add/:team", handler.AddTeam)
		lab.Get("/teams/remove/:team", handler.RemoveTeam)
		lab.Post("/match/config", handler.ConfigMatch)
		lab.Post("/match/start", handler.StartMatch)
		lab.Post("/match/cancel", handler.CancelMatch)
	}
}
