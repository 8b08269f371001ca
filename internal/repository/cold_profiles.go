package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)

// ColdProfileInput describes a create (ProfileID empty) or edit.
type ColdProfileInput struct {
	ProfileID string
	LineID    string
	Sip       string
	Username  string
}

// ColdProfileEntry is one row of a bulk upload.
type ColdProfileEntry struct {
	Sip      string
	Username string
}

// BulkResult counts what a bulk upload did.
type BulkResult struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
}

// ValidUsername reports whether a normalized username is acceptable.
func ValidUsername(normalized string) bool {
	return usernamePattern.MatchString(normalized)
}

// SaveColdProfileForOwner creates or edits one of the owner's cold profiles.
func (s *Store) SaveColdProfileForOwner(ctx context.Context, ownerID int64, in ColdProfileInput) (*domain.ColdProfile, error) {
	username := domain.NormalizeUsername(in.Username)
	if !ValidUsername(username) {
		return nil, apperrors.NewInvalidInput("username")
	}
	sip := strings.TrimSpace(in.Sip)
	if sip == "" {
		return nil, apperrors.NewInvalidInput("sip")
	}
	lineID := strings.TrimSpace(in.LineID)
	if lineID == "" {
		return nil, apperrors.NewInvalidInput("lineId")
	}

	var out domain.ColdProfile
	err := s.update(ctx, "SaveColdProfileForOwner", func(t *tx) error {
		if _, err := t.line(lineID); err != nil {
			return err
		}
		if !t.hasLineAccess(ownerID, lineID) {
			return apperrors.NewForbidden(fmt.Sprintf("no access to line %s", lineID))
		}

		var profile *domain.ColdProfile
		if in.ProfileID != "" {
			p, err := t.ownedProfile(in.ProfileID, ownerID)
			if err != nil {
				return err
			}
			profile = p
		}
		for i := range t.snap.ColdProfiles {
			other := &t.snap.ColdProfiles[i]
			if other.Username != username || (profile != nil && other.ID == profile.ID) {
				continue
			}
			if other.OwnerID != ownerID || profile != nil {
				return usernameConflict(username)
			}
			// creating a profile whose username the owner already uses edits it
			profile = other
		}

		if profile == nil {
			t.snap.ColdProfiles = append(t.snap.ColdProfiles, domain.ColdProfile{
				ID:        uuid.NewString(),
				OwnerID:   ownerID,
				LineID:    lineID,
				Sip:       sip,
				Username:  username,
				CreatedAt: t.now,
				UpdatedAt: t.now,
			})
			profile = &t.snap.ColdProfiles[len(t.snap.ColdProfiles)-1]
			if err := t.bindByUsername(profile); err != nil {
				return err
			}
		} else if err := t.rebindProfile(profile, lineID, sip, username); err != nil {
			return err
		}
		out = profile.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertColdProfiles merges entries into the owner's profiles on lineID by
// username. Malformed entries are dropped; usernames owned by someone else
// are skipped. A batch with nothing usable is rejected.
func (s *Store) UpsertColdProfiles(ctx context.Context, ownerID int64, lineID string, entries []ColdProfileEntry) (BulkResult, error) {
	var result BulkResult
	err := s.update(ctx, "UpsertColdProfiles", func(t *tx) error {
		result = BulkResult{}
		if _, err := t.line(lineID); err != nil {
			return err
		}
		if !t.hasLineAccess(ownerID, lineID) {
			return apperrors.NewForbidden(fmt.Sprintf("no access to line %s", lineID))
		}

		seen := map[string]bool{}
		for _, entry := range entries {
			username := domain.NormalizeUsername(entry.Username)
			sip := strings.TrimSpace(entry.Sip)
			if !ValidUsername(username) || sip == "" || seen[username] {
				continue
			}
			seen[username] = true

			existing := t.profileByUsername(username)
			switch {
			case existing == nil:
				t.snap.ColdProfiles = append(t.snap.ColdProfiles, domain.ColdProfile{
					ID:        uuid.NewString(),
					OwnerID:   ownerID,
					LineID:    lineID,
					Sip:       sip,
					Username:  username,
					CreatedAt: t.now,
					UpdatedAt: t.now,
				})
				if err := t.bindByUsername(&t.snap.ColdProfiles[len(t.snap.ColdProfiles)-1]); err != nil {
					return err
				}
				result.Created++
			case existing.OwnerID != ownerID:
				result.Skipped++
				continue
			default:
				if err := t.rebindProfile(existing, lineID, sip, username); err != nil {
					return err
				}
				result.Updated++
			}
			result.Processed++
		}
		if result.Processed == 0 {
			return apperrors.NewValidationError("no valid entries", map[string]any{
				"field":   "entries",
				"skipped": result.Skipped,
			})
		}
		return nil
	})
	if err != nil {
		return BulkResult{}, err
	}
	return result, nil
}

// DeleteColdProfile removes one of the owner's profiles and revokes the line
// membership it granted.
func (s *Store) DeleteColdProfile(ctx context.Context, id string, ownerID int64) error {
	return s.update(ctx, "DeleteColdProfile", func(t *tx) error {
		profile, err := t.ownedProfile(id, ownerID)
		if err != nil {
			return err
		}
		if err := t.releaseColdMembership(profile); err != nil {
			return err
		}
		kept := t.snap.ColdProfiles[:0]
		for _, p := range t.snap.ColdProfiles {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		t.snap.ColdProfiles = kept
		return nil
	})
}

// GetColdProfile returns a copy of the profile.
func (s *Store) GetColdProfile(id string) (*domain.ColdProfile, error) {
	snap := s.view()
	for i := range snap.ColdProfiles {
		if snap.ColdProfiles[i].ID == id {
			p := snap.ColdProfiles[i].Clone()
			return &p, nil
		}
	}
	return nil, apperrors.NewNotFound("cold profile", id)
}

// ListColdProfilesByOwner returns the owner's profiles in creation order.
func (s *Store) ListColdProfilesByOwner(ownerID int64) []domain.ColdProfile {
	snap := s.view()
	out := []domain.ColdProfile{}
	for i := range snap.ColdProfiles {
		if snap.ColdProfiles[i].OwnerID == ownerID {
			out = append(out, snap.ColdProfiles[i].Clone())
		}
	}
	return out
}

// BoundColdProfile returns the profile bound to userID on lineID, or nil.
func (s *Store) BoundColdProfile(userID int64, lineID string) *domain.ColdProfile {
	snap := s.view()
	for i := range snap.ColdProfiles {
		p := snap.ColdProfiles[i]
		if p.UserID != nil && *p.UserID == userID && p.LineID == lineID {
			c := p.Clone()
			return &c
		}
	}
	return nil
}

func (t *tx) ownedProfile(id string, ownerID int64) (*domain.ColdProfile, error) {
	profile, err := t.coldProfile(id)
	if err != nil {
		return nil, err
	}
	if profile.OwnerID != ownerID && !t.isOperator(ownerID) {
		return nil, apperrors.NewNotFound("cold profile", id)
	}
	return profile, nil
}

func (t *tx) profileByUsername(username string) *domain.ColdProfile {
	for i := range t.snap.ColdProfiles {
		if t.snap.ColdProfiles[i].Username == username {
			return &t.snap.ColdProfiles[i]
		}
	}
	return nil
}

// rebindProfile applies new line/sip/username values and moves the bound
// user's membership along with them.
func (t *tx) rebindProfile(profile *domain.ColdProfile, lineID, sip, username string) error {
	usernameChanged := profile.Username != username
	lineChanged := profile.LineID != lineID

	if profile.UserID != nil && (usernameChanged || lineChanged) {
		if err := t.releaseColdMembership(profile); err != nil {
			return err
		}
	}
	profile.LineID = lineID
	profile.Sip = sip
	profile.Username = username
	profile.UpdatedAt = t.now

	switch {
	case usernameChanged:
		profile.UserID = nil
		return t.bindByUsername(profile)
	case lineChanged && profile.UserID != nil:
		return t.link(*profile.UserID, lineID)
	}
	return nil
}

// bindByUsername binds an unbound profile to the existing user with its
// username, if any.
func (t *tx) bindByUsername(profile *domain.ColdProfile) error {
	if profile.UserID != nil {
		return nil
	}
	for i := range t.snap.Users {
		u := &t.snap.Users[i]
		if domain.NormalizeUsername(u.UsernameValue()) == profile.Username {
			return t.bind(profile, u)
		}
	}
	return nil
}

// claimColdProfiles binds every unbound profile naming u's username.
func (t *tx) claimColdProfiles(u *domain.User) error {
	username := domain.NormalizeUsername(u.UsernameValue())
	if username == "" {
		return nil
	}
	for i := range t.snap.ColdProfiles {
		p := &t.snap.ColdProfiles[i]
		if p.UserID == nil && p.Username == username {
			if err := t.bind(p, u); err != nil {
				return err
			}
		}
	}
	return nil
}

// bind links the user to the profile's line. Status is left alone: only an
// application decision or an operator changes it.
func (t *tx) bind(profile *domain.ColdProfile, u *domain.User) error {
	id := u.ID
	profile.UserID = &id
	profile.UpdatedAt = t.now
	if _, err := t.line(profile.LineID); err != nil {
		return nil
	}
	return t.link(u.ID, profile.LineID)
}

func usernameConflict(username string) error {
	return apperrors.NewConflict(fmt.Sprintf("username %s is already used by another profile", username),
		map[string]any{"username": username})
}
