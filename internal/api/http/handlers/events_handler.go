package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/api/dto"
	"github.com/spec-kit/helpdesk-bot/internal/conversation"
	"github.com/spec-kit/helpdesk-bot/internal/worker"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// EventQueue accepts inbound events for asynchronous handling.
type EventQueue interface {
	Enqueue(ev conversation.Event) error
}

// EventsHandler receives chat events from the messaging gateway.
type EventsHandler struct {
	queue     EventQueue
	validator *Validator
	logger    *zap.Logger
}

// NewEventsHandler constructs handler.
func NewEventsHandler(queue EventQueue, validator *Validator, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{queue: queue, validator: validator, logger: logger}
}

// Receive handles POST /v1/events.
func (h *EventsHandler) Receive(c *fiber.Ctx) error {
	var req dto.InboundEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	if err := h.queue.Enqueue(req.ToEvent()); err != nil {
		h.logger.Warn("event dropped", zap.Int64("actor_id", req.ActorID), zap.Error(err))
		if errors.Is(err, worker.ErrQueueFull) || errors.Is(err, worker.ErrStopped) {
			return apperrors.NewUnavailable(err.Error())
		}
		return apperrors.NewInternalError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"data": dto.AcceptedResponse{Accepted: true},
	})
}
