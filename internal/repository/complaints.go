package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// ComplaintInput describes a new complaint.
type ComplaintInput struct {
	UserID        int64
	LineID        string
	Sip           string
	Message       string
	ColdProfileID string
}

// SipStat aggregates complaints for one line and sub-number.
type SipStat struct {
	LineID    string
	Sip       string
	Total     int
	Resolved  int
	Cancelled int
}

// CreateComplaint files a complaint against a line the user belongs to.
func (s *Store) CreateComplaint(ctx context.Context, in ComplaintInput) (*domain.Complaint, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, apperrors.NewInvalidInput("message")
	}
	var out domain.Complaint
	err := s.update(ctx, "CreateComplaint", func(t *tx) error {
		if _, err := t.user(in.UserID); err != nil {
			return err
		}
		if _, err := t.line(in.LineID); err != nil {
			return err
		}
		if !t.hasLineAccess(in.UserID, in.LineID) {
			return apperrors.NewForbidden(fmt.Sprintf("no access to line %s", in.LineID))
		}
		c := domain.Complaint{
			ID:        uuid.NewString(),
			UserID:    in.UserID,
			LineID:    in.LineID,
			Message:   message,
			Status:    domain.ComplaintStatusNew,
			CreatedAt: t.now,
			UpdatedAt: t.now,
		}
		if sip := strings.TrimSpace(in.Sip); sip != "" {
			c.Sip = stringPtr(sip)
		}
		if in.ColdProfileID != "" {
			if _, err := t.coldProfile(in.ColdProfileID); err != nil {
				return err
			}
			c.ColdProfileID = stringPtr(in.ColdProfileID)
		}
		t.snap.Complaints = append(t.snap.Complaints, c)
		out = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetComplaintLogInfo records where the complaint was posted.
func (s *Store) SetComplaintLogInfo(ctx context.Context, id string, loc domain.LogLocation) error {
	return s.update(ctx, "SetComplaintLogInfo", func(t *tx) error {
		c, err := t.complaint(id)
		if err != nil {
			return err
		}
		c.Log = &loc
		c.UpdatedAt = t.now
		return nil
	})
}

// UpdateComplaintStatus resolves or cancels a new complaint. A complaint that
// already left "new" is returned as is with changed=false.
func (s *Store) UpdateComplaintStatus(ctx context.Context, id string, status domain.ComplaintStatus, resolverID int64) (*domain.Complaint, bool, error) {
	if status != domain.ComplaintStatusResolved && status != domain.ComplaintStatusCancelled {
		return nil, false, apperrors.NewInvalidInput("status")
	}
	var (
		out     domain.Complaint
		changed bool
	)
	err := s.update(ctx, "UpdateComplaintStatus", func(t *tx) error {
		c, err := t.complaint(id)
		if err != nil {
			return err
		}
		if c.Status != domain.ComplaintStatusNew {
			out = c.Clone()
			return errUnchanged
		}
		c.Status = status
		c.ResolvedBy = &resolverID
		at := t.now
		c.ResolvedAt = &at
		c.UpdatedAt = t.now
		out = c.Clone()
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, changed, nil
}

// DeleteComplaint removes a complaint whose delivery failed.
func (s *Store) DeleteComplaint(ctx context.Context, id string) error {
	return s.update(ctx, "DeleteComplaint", func(t *tx) error {
		if _, err := t.complaint(id); err != nil {
			return err
		}
		kept := t.snap.Complaints[:0]
		for _, c := range t.snap.Complaints {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		t.snap.Complaints = kept
		return nil
	})
}

// GetComplaint returns a copy of the complaint.
func (s *Store) GetComplaint(id string) (*domain.Complaint, error) {
	snap := s.view()
	for i := range snap.Complaints {
		if snap.Complaints[i].ID == id {
			c := snap.Complaints[i].Clone()
			return &c, nil
		}
	}
	return nil, apperrors.NewNotFound("complaint", id)
}

// GetSipStatistics aggregates complaints per line and sub-number, sorted by
// total descending, then line and sub-number.
func (s *Store) GetSipStatistics() []SipStat {
	snap := s.view()
	index := map[[2]string]*SipStat{}
	for _, c := range snap.Complaints {
		sip := ""
		if c.Sip != nil {
			sip = *c.Sip
		}
		key := [2]string{c.LineID, sip}
		st, ok := index[key]
		if !ok {
			st = &SipStat{LineID: c.LineID, Sip: sip}
			index[key] = st
		}
		st.Total++
		switch c.Status {
		case domain.ComplaintStatusResolved:
			st.Resolved++
		case domain.ComplaintStatusCancelled:
			st.Cancelled++
		}
	}
	out := make([]SipStat, 0, len(index))
	for _, st := range index {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		if out[i].LineID != out[j].LineID {
			return out[i].LineID < out[j].LineID
		}
		return out[i].Sip < out[j].Sip
	})
	return out
}
