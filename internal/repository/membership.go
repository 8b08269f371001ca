package repository

import "github.com/spec-kit/helpdesk-bot/internal/domain"

// link and unlink are the only writers of User.LineIDs and Line.UserIDs.
// Both sides change together so the two lists stay mirror images.

func (t *tx) link(userID int64, lineID string) error {
	u, err := t.user(userID)
	if err != nil {
		return err
	}
	l, err := t.line(lineID)
	if err != nil {
		return err
	}
	changed := false
	if !u.HasLine(lineID) {
		u.LineIDs = append(u.LineIDs, lineID)
		changed = true
	}
	if !l.HasUser(userID) {
		l.UserIDs = append(l.UserIDs, userID)
		changed = true
	}
	if changed {
		u.UpdatedAt = t.now
		l.UpdatedAt = t.now
	}
	return nil
}

func (t *tx) unlink(userID int64, lineID string) error {
	u, err := t.user(userID)
	if err != nil {
		return err
	}
	l, err := t.line(lineID)
	if err != nil {
		return err
	}
	u.LineIDs = removeString(u.LineIDs, lineID)
	l.UserIDs = removeInt64(l.UserIDs, userID)
	u.UpdatedAt = t.now
	l.UpdatedAt = t.now
	return nil
}

// releaseColdMembership drops the membership a cold profile granted unless
// another profile still binds the same user to the same line.
func (t *tx) releaseColdMembership(profile *domain.ColdProfile) error {
	if profile.UserID == nil {
		return nil
	}
	userID := *profile.UserID
	for i := range t.snap.ColdProfiles {
		other := &t.snap.ColdProfiles[i]
		if other.ID != profile.ID && other.UserID != nil && *other.UserID == userID && other.LineID == profile.LineID {
			return nil
		}
	}
	if _, err := t.line(profile.LineID); err != nil {
		return nil
	}
	if _, err := t.user(userID); err != nil {
		return nil
	}
	return t.unlink(userID, profile.LineID)
}

func removeString(values []string, target string) []string {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}

func removeInt64(values []int64, target int64) []int64 {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
