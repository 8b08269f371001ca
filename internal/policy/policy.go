// Package policy holds the access gates evaluated before a non-operator
// event reaches a conversation handler. Every function here is pure.
package policy

import (
	"time"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
)

// Gate names the check that stopped an event.
type Gate string

const (
	GateNone      Gate = ""
	GateBanned    Gate = "banned"
	GateStopWork  Gate = "stop_work"
	GateNotActive Gate = "not_active"
	GateLanguage  Gate = "language"
	GateMuted     Gate = "muted"
)

// StopWorkNotice carries what the stop-work message renders.
type StopWorkNotice struct {
	Until   *time.Time
	Message string
}

// MuteCheck resolves the current mute state. The store's lazy expiry
// implements it; a nil MuteCheck falls back to IsMuted.
type MuteCheck func() (muted bool, until *time.Time, err error)

// Input is everything Evaluate needs about one actor.
type Input struct {
	User                    *domain.User
	Settings                domain.Settings
	IsOperator              bool
	Now                     time.Time
	FallbackStopWorkMessage string
	Mute                    MuteCheck
}

// Decision is the outcome of Evaluate. Gate is GateNone when the event may proceed.
type Decision struct {
	Gate       Gate
	Status     domain.UserStatus
	StopWork   StopWorkNotice
	MutedUntil *time.Time
}

// Allowed reports whether no gate fired.
func (d Decision) Allowed() bool {
	return d.Gate == GateNone
}

// Evaluate runs the gates in fixed order: banned, stop-work, not active,
// language unset, muted. The first failing gate wins. Operators always pass.
func Evaluate(in Input) (Decision, error) {
	if in.IsOperator {
		return Decision{}, nil
	}
	if IsBanned(in.User) {
		return Decision{Gate: GateBanned, Status: domain.UserStatusBanned}, nil
	}
	if active, notice := IsStopWorkActive(in.Settings, false, in.Now, in.FallbackStopWorkMessage); active {
		return Decision{Gate: GateStopWork, StopWork: notice}, nil
	}
	if pending, status := IsPendingApproval(in.User); pending {
		return Decision{Gate: GateNotActive, Status: status}, nil
	}
	if in.User.LanguageCode() == "" {
		return Decision{Gate: GateLanguage, Status: in.User.Status}, nil
	}

	check := in.Mute
	if check == nil {
		check = func() (bool, *time.Time, error) {
			muted, until := IsMuted(in.User, in.Now)
			return muted, until, nil
		}
	}
	muted, until, err := check()
	if err != nil {
		return Decision{}, err
	}
	if muted {
		return Decision{Gate: GateMuted, Status: in.User.Status, MutedUntil: until}, nil
	}
	return Decision{Status: in.User.Status}, nil
}

// IsBanned reports whether the account is banned.
func IsBanned(u *domain.User) bool {
	return u != nil && u.Status == domain.UserStatusBanned
}

// IsStopWorkActive reports whether stop-work blocks a non-operator. A switch
// whose deadline has passed no longer blocks. The notice message falls back
// from the switch's own message to the stored default, then to fallback.
func IsStopWorkActive(settings domain.Settings, isOperator bool, now time.Time, fallback string) (bool, StopWorkNotice) {
	sw := settings.StopWork
	if isOperator || !sw.Active {
		return false, StopWorkNotice{}
	}
	if sw.Until != nil && !sw.Until.After(now) {
		return false, StopWorkNotice{}
	}
	return true, StopWorkNotice{Until: sw.Until, Message: StopWorkMessage(settings, fallback)}
}

// StopWorkMessage resolves the text shown while stop-work is on.
func StopWorkMessage(settings domain.Settings, fallback string) string {
	if m := settings.StopWork.Message; m != nil && *m != "" {
		return *m
	}
	if m := settings.DefaultStopWorkMessage; m != nil && *m != "" {
		return *m
	}
	return fallback
}

// IsPendingApproval reports whether the account may not act yet. Unknown
// users count as pending.
func IsPendingApproval(u *domain.User) (bool, domain.UserStatus) {
	if u == nil {
		return true, domain.UserStatusPending
	}
	return u.Status != domain.UserStatusActive, u.Status
}

// IsMuted reports whether the mute deadline is still ahead of now.
func IsMuted(u *domain.User, now time.Time) (bool, *time.Time) {
	if u == nil || u.MutedUntil == nil || !u.MutedUntil.After(now) {
		return false, nil
	}
	return true, u.MutedUntil
}

// HasLineAccess reports whether the actor may file against lineID.
func HasLineAccess(u *domain.User, lineID string, isOperator bool) bool {
	if isOperator {
		return true
	}
	return u != nil && u.HasLine(lineID)
}
