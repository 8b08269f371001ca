package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// CreateApplication files a signup request. When the user already has a
// pending application it is returned unchanged with created=false.
func (s *Store) CreateApplication(ctx context.Context, userID int64) (*domain.Application, bool, error) {
	var (
		out     domain.Application
		created bool
	)
	err := s.update(ctx, "CreateApplication", func(t *tx) error {
		if _, err := t.user(userID); err != nil {
			return err
		}
		for i := range t.snap.Applications {
			app := &t.snap.Applications[i]
			if app.UserID == userID && app.Status == domain.ApplicationStatusPending {
				out = app.Clone()
				return errUnchanged
			}
		}
		app := domain.Application{
			ID:        uuid.NewString(),
			UserID:    userID,
			Status:    domain.ApplicationStatusPending,
			CreatedAt: t.now,
			UpdatedAt: t.now,
		}
		t.snap.Applications = append(t.snap.Applications, app)
		out = app.Clone()
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

// ApproveApplication attaches the applicant to lineID, activates the account
// and marks the application approved, all in one transaction.
func (s *Store) ApproveApplication(ctx context.Context, appID, lineID string) (*domain.Application, *domain.User, error) {
	var (
		outApp  domain.Application
		outUser domain.User
	)
	err := s.update(ctx, "ApproveApplication", func(t *tx) error {
		app, err := t.application(appID)
		if err != nil {
			return err
		}
		if app.Status != domain.ApplicationStatusPending {
			return apperrors.NewConflict("application already processed", map[string]any{"status": app.Status})
		}
		if err := t.link(app.UserID, lineID); err != nil {
			return err
		}
		u, err := t.user(app.UserID)
		if err != nil {
			return err
		}
		u.Status = domain.UserStatusActive
		u.UpdatedAt = t.now
		app.Status = domain.ApplicationStatusApproved
		app.LineID = stringPtr(lineID)
		app.UpdatedAt = t.now
		outApp = app.Clone()
		outUser = u.Clone()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &outApp, &outUser, nil
}

// DeclineApplication marks the application and its user declined.
func (s *Store) DeclineApplication(ctx context.Context, appID string) (*domain.Application, *domain.User, error) {
	var (
		outApp  domain.Application
		outUser domain.User
	)
	err := s.update(ctx, "DeclineApplication", func(t *tx) error {
		app, err := t.application(appID)
		if err != nil {
			return err
		}
		if app.Status != domain.ApplicationStatusPending {
			return apperrors.NewConflict("application already processed", map[string]any{"status": app.Status})
		}
		u, err := t.user(app.UserID)
		if err != nil {
			return err
		}
		u.Status = domain.UserStatusDeclined
		u.UpdatedAt = t.now
		app.Status = domain.ApplicationStatusDeclined
		app.UpdatedAt = t.now
		outApp = app.Clone()
		outUser = u.Clone()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &outApp, &outUser, nil
}

// GetApplication returns a copy of the application.
func (s *Store) GetApplication(id string) (*domain.Application, error) {
	snap := s.view()
	for i := range snap.Applications {
		if snap.Applications[i].ID == id {
			app := snap.Applications[i].Clone()
			return &app, nil
		}
	}
	return nil, apperrors.NewNotFound("application", id)
}

// ListPendingApplications returns pending applications oldest first.
func (s *Store) ListPendingApplications() []domain.Application {
	snap := s.view()
	out := []domain.Application{}
	for i := range snap.Applications {
		if snap.Applications[i].Status == domain.ApplicationStatusPending {
			out = append(out, snap.Applications[i].Clone())
		}
	}
	return out
}
