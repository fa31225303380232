package handlers

import (
	"github.com/gofiber/fiber/v3"

	"diningwatch/internal/db"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	db *db.DB
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(database *db.DB) *HealthHandler {
	return &HealthHandler{db: database}
}

// Healthz returns 200 when the database responds to a ping.
func (h *HealthHandler) Healthz(c fiber.Ctx) error {
	if err := h.db.Pool.Ping(c.Context()); err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "database unreachable")
	}
	return jsonSuccess(c, fiber.Map{"healthy": true})
}
