package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-bot/internal/api/dto"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

const defaultAuditLimit = 50

// AuditTrail returns recently published domain events.
type AuditTrail interface {
	Recent(limit int) []events.Event
}

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	trail AuditTrail
}

// NewAuditHandler constructs handler.
func NewAuditHandler(trail AuditTrail) *AuditHandler {
	return &AuditHandler{trail: trail}
}

// List handles GET /v1/audit.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultAuditLimit)
	if limit <= 0 {
		return apperrors.NewInvalidInput("limit")
	}
	recent := h.trail.Recent(limit)
	out := make([]dto.AuditEventResponse, 0, len(recent))
	for _, e := range recent {
		out = append(out, dto.NewAuditEventResponse(e))
	}
	return c.JSON(fiber.Map{"data": out})
}
