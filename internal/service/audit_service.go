package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/events"
)

// DefaultAuditCapacity bounds the in-memory trail when none is configured.
const DefaultAuditCapacity = 200

// AuditService records every domain event in the log and keeps the most
// recent ones for the audit endpoint.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu       sync.Mutex
	trail    []events.Event
	next     int
	filled   bool
	capacity int
}

// NewAuditService creates the service. capacity <= 0 uses DefaultAuditCapacity.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, capacity int) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		trail:      make([]events.Event, capacity),
		capacity:   capacity,
	}
}

// RegisterHandlers subscribes to every event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, t := range events.AllTypes {
		a.dispatcher.Subscribe(t, a.handle)
	}
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("actor_id", event.ActorID),
		zap.String("subject", event.Subject),
		zap.Any("payload", event.Payload),
	)

	a.mu.Lock()
	a.trail[a.next] = event
	a.next = (a.next + 1) % a.capacity
	if a.next == 0 {
		a.filled = true
	}
	a.mu.Unlock()
	return nil
}

// Recent returns up to limit events, newest first. limit <= 0 returns all kept events.
func (a *AuditService) Recent(limit int) []events.Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	size := a.next
	if a.filled {
		size = a.capacity
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]events.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, a.trail[(a.next-i+a.capacity)%a.capacity])
	}
	return out
}
