package repository

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
)

// Stats summarizes the store for the operator panel.
type Stats struct {
	Users               map[domain.UserStatus]int
	Lines               int
	PendingApplications int
	Complaints          map[domain.ComplaintStatus]int
	ColdProfiles        int
}

// GetSettings returns a copy of the settings singleton.
func (s *Store) GetSettings() domain.Settings {
	return s.view().Settings.Clone()
}

// SetStopWork replaces the stop-work switch. A blank message is stored as nil.
func (s *Store) SetStopWork(ctx context.Context, active bool, until *time.Time, message string) (domain.StopWork, error) {
	var out domain.StopWork
	err := s.update(ctx, "SetStopWork", func(t *tx) error {
		sw := domain.StopWork{Active: active}
		if until != nil {
			v := until.UTC()
			sw.Until = &v
		}
		if m := strings.TrimSpace(message); m != "" {
			sw.Message = stringPtr(m)
		}
		t.snap.Settings.StopWork = sw
		out = t.snap.Settings.Clone().StopWork
		return nil
	})
	return out, err
}

// SetDefaultStopWorkMessage stores the fallback notice; blank clears it.
func (s *Store) SetDefaultStopWorkMessage(ctx context.Context, message string) error {
	return s.update(ctx, "SetDefaultStopWorkMessage", func(t *tx) error {
		if m := strings.TrimSpace(message); m != "" {
			t.snap.Settings.DefaultStopWorkMessage = stringPtr(m)
		} else {
			t.snap.Settings.DefaultStopWorkMessage = nil
		}
		return nil
	})
}

// Stats counts entities in the committed snapshot.
func (s *Store) Stats() Stats {
	snap := s.view()
	st := Stats{
		Users:        map[domain.UserStatus]int{},
		Lines:        len(snap.Lines),
		Complaints:   map[domain.ComplaintStatus]int{},
		ColdProfiles: len(snap.ColdProfiles),
	}
	for _, u := range snap.Users {
		st.Users[u.Status]++
	}
	for _, a := range snap.Applications {
		if a.Status == domain.ApplicationStatusPending {
			st.PendingApplications++
		}
	}
	for _, c := range snap.Complaints {
		st.Complaints[c.Status]++
	}
	return st
}
