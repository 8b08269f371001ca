package repository

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// MuteState is the outcome of a lazy mute check.
type MuteState struct {
	Muted bool
	Until *time.Time
}

// UpsertUser creates the user on first contact or refreshes display fields.
// A stored language is never overwritten. When an unbound cold profile names
// this user's username, the profile is claimed in the same transaction.
func (s *Store) UpsertUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if identity.ID == 0 {
		return nil, apperrors.NewInvalidInput("userId")
	}
	var out domain.User
	err := s.update(ctx, "UpsertUser", func(t *tx) error {
		u, err := t.user(identity.ID)
		if err != nil {
			t.snap.Users = append(t.snap.Users, domain.User{
				ID:        identity.ID,
				Status:    domain.UserStatusPending,
				LineIDs:   []string{},
				CreatedAt: t.now,
			})
			u = &t.snap.Users[len(t.snap.Users)-1]
		}
		if identity.Username != "" {
			u.Username = stringPtr(identity.Username)
		}
		if identity.FirstName != "" {
			u.FirstName = stringPtr(identity.FirstName)
		}
		if identity.LastName != "" {
			u.LastName = stringPtr(identity.LastName)
		}
		u.UpdatedAt = t.now

		if err := t.claimColdProfiles(u); err != nil {
			return err
		}
		out = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserStatus moves a user to status.
func (s *Store) SetUserStatus(ctx context.Context, userID int64, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, apperrors.NewInvalidInput("status")
	}
	return s.mutateUser(ctx, "SetUserStatus", userID, func(u *domain.User) {
		u.Status = status
	})
}

// SetUserMute sets or clears (nil) the mute deadline.
func (s *Store) SetUserMute(ctx context.Context, userID int64, until *time.Time) (*domain.User, error) {
	return s.mutateUser(ctx, "SetUserMute", userID, func(u *domain.User) {
		if until == nil {
			u.MutedUntil = nil
			return
		}
		v := until.UTC()
		u.MutedUntil = &v
	})
}

// SetUserLanguage stores the interface language.
func (s *Store) SetUserLanguage(ctx context.Context, userID int64, language string) (*domain.User, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if !domain.SupportedLanguage(language) {
		return nil, apperrors.NewInvalidInput("language")
	}
	return s.mutateUser(ctx, "SetUserLanguage", userID, func(u *domain.User) {
		u.Language = stringPtr(language)
	})
}

func (s *Store) mutateUser(ctx context.Context, op string, userID int64, fn func(u *domain.User)) (*domain.User, error) {
	var out domain.User
	err := s.update(ctx, op, func(t *tx) error {
		u, err := t.user(userID)
		if err != nil {
			return err
		}
		fn(u)
		u.UpdatedAt = t.now
		out = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsureMuteExpiry reports the user's mute state, clearing a lapsed deadline
// as a side effect.
func (s *Store) EnsureMuteExpiry(ctx context.Context, userID int64) (MuteState, error) {
	u, err := s.GetUser(userID)
	if err != nil {
		return MuteState{}, err
	}
	if u.MutedUntil == nil {
		return MuteState{}, nil
	}
	if u.MutedUntil.After(s.now()) {
		return MuteState{Muted: true, Until: u.MutedUntil}, nil
	}

	var state MuteState
	err = s.update(ctx, "EnsureMuteExpiry", func(t *tx) error {
		u, err := t.user(userID)
		if err != nil {
			return err
		}
		if u.MutedUntil == nil {
			return errUnchanged
		}
		if u.MutedUntil.After(t.now) {
			until := *u.MutedUntil
			state = MuteState{Muted: true, Until: &until}
			return errUnchanged
		}
		u.MutedUntil = nil
		u.UpdatedAt = t.now
		return nil
	})
	return state, err
}

// AttachUserToLine makes the user a member of the line. Attaching an existing
// member is a no-op.
func (s *Store) AttachUserToLine(ctx context.Context, userID int64, lineID string) error {
	return s.update(ctx, "AttachUserToLine", func(t *tx) error {
		u, err := t.user(userID)
		if err != nil {
			return err
		}
		l, err := t.line(lineID)
		if err != nil {
			return err
		}
		if u.HasLine(lineID) && l.HasUser(userID) {
			return errUnchanged
		}
		return t.link(userID, lineID)
	})
}

// AttachAndActivate links the user to the line and activates an account
// that is still pending or was declined. Banned accounts keep their status.
func (s *Store) AttachAndActivate(ctx context.Context, userID int64, lineID string) (*domain.User, *domain.Line, error) {
	var (
		outUser domain.User
		outLine domain.Line
	)
	err := s.update(ctx, "AttachAndActivate", func(t *tx) error {
		u, err := t.user(userID)
		if err != nil {
			return err
		}
		l, err := t.line(lineID)
		if err != nil {
			return err
		}
		if err := t.link(userID, lineID); err != nil {
			return err
		}
		if u.Status == domain.UserStatusPending || u.Status == domain.UserStatusDeclined {
			u.Status = domain.UserStatusActive
		}
		u.UpdatedAt = t.now
		outUser = u.Clone()
		outLine = l.Clone()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &outUser, &outLine, nil
}

// DetachUserFromLine removes the membership from both sides.
func (s *Store) DetachUserFromLine(ctx context.Context, userID int64, lineID string) error {
	return s.update(ctx, "DetachUserFromLine", func(t *tx) error {
		return t.unlink(userID, lineID)
	})
}

// GetUser returns a copy of the user.
func (s *Store) GetUser(userID int64) (*domain.User, error) {
	snap := s.view()
	for i := range snap.Users {
		if snap.Users[i].ID == userID {
			u := snap.Users[i].Clone()
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFound("user", userID)
}

// FindUser returns the user or nil when unknown.
func (s *Store) FindUser(userID int64) *domain.User {
	u, err := s.GetUser(userID)
	if err != nil {
		return nil
	}
	return u
}

// ListUsers returns every user in creation order.
func (s *Store) ListUsers() []domain.User {
	snap := s.view()
	out := make([]domain.User, len(snap.Users))
	for i := range snap.Users {
		out[i] = snap.Users[i].Clone()
	}
	return out
}

func stringPtr(v string) *string {
	return &v
}
