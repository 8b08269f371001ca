package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/conversation"
)

// ErrQueueFull is returned by Enqueue when the actor's shard has no room.
var ErrQueueFull = errors.New("event queue full")

// ErrStopped is returned by Enqueue after Stop.
var ErrStopped = errors.New("event worker stopped")

// Handler processes one inbound event.
type Handler interface {
	Handle(ctx context.Context, ev conversation.Event) error
}

// EventWorker runs inbound events on a fixed set of shards. Events of one
// actor always land on the same shard, so they are handled in arrival order.
type EventWorker struct {
	handler Handler
	shards  []chan conversation.Event
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewEventWorker builds a worker with shards queues of depth each.
func NewEventWorker(handler Handler, shards, depth int, timeout time.Duration, logger *zap.Logger) *EventWorker {
	if shards <= 0 {
		shards = 4
	}
	if depth <= 0 {
		depth = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &EventWorker{
		handler: handler,
		shards:  make([]chan conversation.Event, shards),
		timeout: timeout,
		logger:  logger.Named("events"),
	}
	for i := range w.shards {
		w.shards[i] = make(chan conversation.Event, depth)
	}
	return w
}

// Start launches one goroutine per shard.
func (w *EventWorker) Start() {
	for i, ch := range w.shards {
		w.wg.Add(1)
		go w.run(i, ch)
	}
}

// Enqueue schedules ev without blocking.
func (w *EventWorker) Enqueue(ev conversation.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.shards[w.shardOf(ev.Actor())] <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queues and waits until queued events are drained or ctx ends.
func (w *EventWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		for _, ch := range w.shards {
			close(ch)
		}
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *EventWorker) shardOf(actor int64) int {
	return int(uint64(actor) % uint64(len(w.shards)))
}

func (w *EventWorker) run(shard int, ch <-chan conversation.Event) {
	defer w.wg.Done()
	for ev := range ch {
		w.process(shard, ev)
	}
}

func (w *EventWorker) process(shard int, ev conversation.Event) {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("event handler panicked",
				zap.Int("shard", shard),
				zap.Int64("actor_id", ev.Actor()),
				zap.Any("panic", r),
			)
		}
	}()
	if err := w.handler.Handle(ctx, ev); err != nil {
		w.logger.Warn("event not answered",
			zap.Int("shard", shard),
			zap.Int64("actor_id", ev.Actor()),
			zap.String("event", ev.Kind()),
			zap.Error(err),
		)
	}
}
