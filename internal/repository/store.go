package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
	"github.com/spec-kit/helpdesk-bot/internal/persistence"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// errUnchanged aborts a transaction that turned out to be a no-op; nothing is saved.
var errUnchanged = errors.New("unchanged")

// Options tunes a Store.
type Options struct {
	Now        func() time.Time
	IsOperator func(userID int64) bool
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// Store is the sole owner of durable state. Mutations are serialized behind
// one writer lock and persisted as a whole snapshot before they become
// visible to readers.
type Store struct {
	backend    persistence.SnapshotBackend
	writeMu    sync.Mutex
	committed  atomic.Pointer[domain.Snapshot]
	now        func() time.Time
	isOperator func(int64) bool
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// Open loads the current snapshot from backend. An empty backend starts a
// fresh snapshot.
func Open(ctx context.Context, backend persistence.SnapshotBackend, opts Options) (*Store, error) {
	s := &Store{
		backend:    backend,
		now:        opts.Now,
		isOperator: opts.IsOperator,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.isOperator == nil {
		s.isOperator = func(int64) bool { return false }
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	snap := &domain.Snapshot{}
	payload, err := backend.Load(ctx)
	switch {
	case errors.Is(err, persistence.ErrNoSnapshot):
	case err != nil:
		return nil, fmt.Errorf("load snapshot: %w", err)
	default:
		if err := json.Unmarshal(payload, snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
	}
	snap.Backfill()
	s.committed.Store(snap)
	s.logger.Info("store opened",
		zap.Int("users", len(snap.Users)),
		zap.Int("lines", len(snap.Lines)),
		zap.Int("complaints", len(snap.Complaints)),
	)
	return s, nil
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// view returns the last committed snapshot. Callers must not mutate it.
func (s *Store) view() *domain.Snapshot {
	return s.committed.Load()
}

// update runs fn against a private copy of the committed snapshot and
// persists the result. Nothing is published when fn or the save fails.
func (s *Store) update(ctx context.Context, op string, fn func(tx *tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	work := s.view().Clone()
	work.Backfill()
	t := &tx{snap: work, now: s.now().UTC(), isOperator: s.isOperator}

	if err := fn(t); err != nil {
		if errors.Is(err, errUnchanged) {
			s.metrics.RecordStoreOp(op, "unchanged")
			return nil
		}
		s.metrics.RecordStoreOp(op, string(apperrors.KindOf(err)))
		return err
	}

	payload, err := json.MarshalIndent(work, "", "  ")
	if err != nil {
		s.metrics.RecordStoreOp(op, string(apperrors.KindUnexpected))
		return apperrors.NewInternalError(fmt.Errorf("encode snapshot: %w", err))
	}
	if err := s.backend.Save(ctx, payload); err != nil {
		s.metrics.RecordStoreOp(op, string(apperrors.KindUnexpected))
		s.logger.Error("snapshot save failed", zap.String("op", op), zap.Error(err))
		return apperrors.NewInternalError(fmt.Errorf("save snapshot: %w", err))
	}
	s.committed.Store(work)
	s.metrics.RecordStoreOp(op, "ok")
	return nil
}

// tx is the mutable view handed to a transaction body.
type tx struct {
	snap       *domain.Snapshot
	now        time.Time
	isOperator func(int64) bool
}

func (t *tx) user(id int64) (*domain.User, error) {
	for i := range t.snap.Users {
		if t.snap.Users[i].ID == id {
			return &t.snap.Users[i], nil
		}
	}
	return nil, apperrors.NewNotFound("user", id)
}

func (t *tx) line(id string) (*domain.Line, error) {
	for i := range t.snap.Lines {
		if t.snap.Lines[i].ID == id {
			return &t.snap.Lines[i], nil
		}
	}
	return nil, apperrors.NewNotFound("line", id)
}

func (t *tx) application(id string) (*domain.Application, error) {
	for i := range t.snap.Applications {
		if t.snap.Applications[i].ID == id {
			return &t.snap.Applications[i], nil
		}
	}
	return nil, apperrors.NewNotFound("application", id)
}

func (t *tx) coldProfile(id string) (*domain.ColdProfile, error) {
	for i := range t.snap.ColdProfiles {
		if t.snap.ColdProfiles[i].ID == id {
			return &t.snap.ColdProfiles[i], nil
		}
	}
	return nil, apperrors.NewNotFound("cold profile", id)
}

func (t *tx) complaint(id string) (*domain.Complaint, error) {
	for i := range t.snap.Complaints {
		if t.snap.Complaints[i].ID == id {
			return &t.snap.Complaints[i], nil
		}
	}
	return nil, apperrors.NewNotFound("complaint", id)
}

// hasLineAccess mirrors policy.HasLineAccess against the transaction's view.
func (t *tx) hasLineAccess(userID int64, lineID string) bool {
	if t.isOperator(userID) {
		return true
	}
	u, err := t.user(userID)
	if err != nil {
		return false
	}
	return u.HasLine(lineID)
}
