package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vpfs/backend/internal/domain"
	"github.com/vpfs/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	engine *service.Engine
	auth   *service.Authenticator
	repo   domain.AuditRepository
}

// NewHandler creates a new handler
func NewHandler(engine *service.Engine, auth *service.Authenticator, repo domain.AuditRepository) *Handler {
	return &Handler{
		engine: engine,
		auth:   auth,
		repo:   repo,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "vpfs-backend",
		"mode":    h.engine.Mode().String(),
	})
}

// GetMatch returns the match status for the polling team. The auth
// query parameter carries a code or team number depending on mode.
func (h *Handler) GetMatch(c *fiber.Ctx) error {
	team := service.TeamUnauthenticated
	if code := c.Query("auth"); code != "" {
		team = h.auth.Authenticate(code)
	}
	return c.JSON(h.engine.Status(team))
}

// GetDashboardTeams returns the extended roster for dashboards
func (h *Handler) GetDashboardTeams(c *fiber.Ctx) error {
	return c.JSON(h.engine.Teams())
}

// GetDashboardFares returns the extended fare list, retired fares
// included, for dashboards
func (h *Handler) GetDashboardFares(c *fiber.Ctx) error {
	return c.JSON(h.engine.Fares(true, true))
}

// GetFares returns the public fare list. ?all=true includes retired
// fares.
func (h *Handler) GetFares(c *fiber.Ctx) error {
	includeInactive := c.QueryBool("all", false)
	return c.JSON(h.engine.Fares(false, includeInactive))
}

// ClaimFare claims the fare at :idx for the authenticated team
func (h *Handler) ClaimFare(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("idx")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid fare index")
	}

	team := h.auth.Authenticate(c.Query("auth"))
	if team == service.TeamUnauthenticated {
		return c.JSON(fiber.Map{
			"success": false,
			"message": "Authentication failed",
		})
	}

	success, message := h.engine.ClaimFare(idx, team)
	return c.JSON(fiber.Map{
		"success": success,
		"message": message,
	})
}

// GetCurrentFare returns the fare a team currently holds
func (h *Handler) GetCurrentFare(c *fiber.Ctx) error {
	team, err := c.ParamsInt("team")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid team number")
	}

	fare, message := h.engine.CurrentFare(team)
	return c.JSON(fiber.Map{
		"fare":    fare,
		"message": message,
	})
}

// WhereAmI returns a team's last known position
func (h *Handler) WhereAmI(c *fiber.Ctx) error {
	team, err := c.ParamsInt("team")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid team number")
	}

	pos, lastUpdate, message := h.engine.WhereAmI(team)
	return c.JSON(fiber.Map{
		"position":    pos,
		"last_update": lastUpdate,
		"message":     message,
	})
}

// UpdatePositions applies a batched position update. Entries for
// unknown teams are skipped; the batch never fails part-way.
func (h *Handler) UpdatePositions(c *fiber.Ctx) error {
	var batch []domain.PositionUpdate
	if err := c.BodyParser(&batch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	h.engine.UpdatePositions(batch)
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(batch),
	})
}

// RequireLab rejects operator endpoints outside LAB mode
func (h *Handler) RequireLab(c *fiber.Ctx) error {
	if h.engine.Mode() != domain.ModeLab {
		return fiber.NewError(fiber.StatusForbidden, "Allowed only in LAB mode")
	}
	return c.Next()
}

// AddTeam registers a team (operator action)
func (h *Handler) AddTeam(c *fiber.Ctx) error {
	team, err := c.ParamsInt("team")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid team number")
	}

	if err := h.engine.AddTeam(team); err != nil {
		return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Team %d already exists", team))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Team %d added", team),
	})
}

// RemoveTeam unregisters a team (operator action)
func (h *Handler) RemoveTeam(c *fiber.Ctx) error {
	team, err := c.ParamsInt("team")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid team number")
	}

	if err := h.engine.RemoveTeam(team); err != nil {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Team %d not found", team))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Team %d removed", team),
	})
}

// matchConfigRequest is the operator payload for configuring a match.
type matchConfigRequest struct {
	Number   int `json:"number"`
	Duration int `json:"duration"` // seconds
}

// ConfigMatch configures the next match (operator action)
func (h *Handler) ConfigMatch(c *fiber.Ctx) error {
	var req matchConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Duration <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Duration must be positive")
	}

	h.engine.ConfigureMatch(req.Number, time.Duration(req.Duration)*time.Second)
	return c.JSON(fiber.Map{"success": true})
}

// StartMatch starts the configured match (operator action)
func (h *Handler) StartMatch(c *fiber.Ctx) error {
	if err := h.engine.StartMatch(); err != nil {
		return fiber.NewError(fiber.StatusConflict, "Match is not configured")
	}
	return c.JSON(fiber.Map{"success": true})
}

// CancelMatch aborts the current match (operator action)
func (h *Handler) CancelMatch(c *fiber.Ctx) error {
	if err := h.engine.CancelMatch(); err != nil {
		return fiber.NewError(fiber.StatusConflict, "No match to cancel")
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetFareHistory returns retired fares from the audit store
func (h *Handler) GetFareHistory(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	if hours < 1 || hours > 720 { // max 30 days
		hours = 24
	}

	to := time.Now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	records, err := h.repo.GetFareHistory(c.Context(), from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch fare history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
		"count":   len(records),
	})
}
