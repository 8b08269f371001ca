package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// CreateLine adds a line with an operator-chosen id. An empty title falls
// back to "Линия <id>".
func (s *Store) CreateLine(ctx context.Context, id, title string) (*domain.Line, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewInvalidInput("lineId")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Линия %s", id)
	}
	var out domain.Line
	err := s.update(ctx, "CreateLine", func(t *tx) error {
		if _, err := t.line(id); err == nil {
			return apperrors.NewConflict(fmt.Sprintf("line %s already exists", id), map[string]any{"lineId": id})
		}
		line := domain.Line{
			ID:        id,
			Title:     title,
			UserIDs:   []int64{},
			CreatedAt: t.now,
			UpdatedAt: t.now,
		}
		t.snap.Lines = append(t.snap.Lines, line)
		out = line.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLine renames a line.
func (s *Store) UpdateLine(ctx context.Context, id, title string) (*domain.Line, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewInvalidInput("title")
	}
	return s.mutateLine(ctx, "UpdateLine", id, func(l *domain.Line) {
		l.Title = title
	})
}

// SetLineGroup binds the chat complaints are logged to; nil unbinds.
func (s *Store) SetLineGroup(ctx context.Context, id string, groupID *int64) (*domain.Line, error) {
	return s.mutateLine(ctx, "SetLineGroup", id, func(l *domain.Line) {
		if groupID == nil {
			l.GroupID = nil
			return
		}
		v := *groupID
		l.GroupID = &v
	})
}

func (s *Store) mutateLine(ctx context.Context, op, id string, fn func(l *domain.Line)) (*domain.Line, error) {
	var out domain.Line
	err := s.update(ctx, op, func(t *tx) error {
		l, err := t.line(id)
		if err != nil {
			return err
		}
		fn(l)
		l.UpdatedAt = t.now
		out = l.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLine returns a copy of the line.
func (s *Store) GetLine(id string) (*domain.Line, error) {
	snap := s.view()
	for i := range snap.Lines {
		if snap.Lines[i].ID == id {
			l := snap.Lines[i].Clone()
			return &l, nil
		}
	}
	return nil, apperrors.NewNotFound("line", id)
}

// ListLines returns every line in creation order.
func (s *Store) ListLines() []domain.Line {
	snap := s.view()
	out := make([]domain.Line, len(snap.Lines))
	for i := range snap.Lines {
		out[i] = snap.Lines[i].Clone()
	}
	return out
}

// LinesForUser returns the lines the user is a member of, in line order.
func (s *Store) LinesForUser(userID int64) []domain.Line {
	out := []domain.Line{}
	for _, l := range s.ListLines() {
		if l.HasUser(userID) {
			out = append(out, l)
		}
	}
	return out
}
