package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func str(v string) *string { return &v }

func activeUser() *domain.User {
	return &domain.User{ID: 1, Status: domain.UserStatusActive, Language: str("ru"), LineIDs: []string{"42"}}
}

func TestEvaluateOrder(t *testing.T) {
	muted := now.Add(time.Hour)
	stopWork := domain.Settings{StopWork: domain.StopWork{Active: true, Message: str("maintenance")}}

	cases := []struct {
		name     string
		user     func() *domain.User
		settings domain.Settings
		operator bool
		want     Gate
	}{
		{"allowed", activeUser, domain.Settings{}, false, GateNone},
		{"banned beats stop-work", func() *domain.User {
			u := activeUser()
			u.Status = domain.UserStatusBanned
			return u
		}, stopWork, false, GateBanned},
		{"stop-work beats mute", func() *domain.User {
			u := activeUser()
			u.MutedUntil = &muted
			return u
		}, stopWork, false, GateStopWork},
		{"stop-work beats pending", func() *domain.User {
			u := activeUser()
			u.Status = domain.UserStatusPending
			return u
		}, stopWork, false, GateStopWork},
		{"pending", func() *domain.User {
			u := activeUser()
			u.Status = domain.UserStatusDeclined
			return u
		}, domain.Settings{}, false, GateNotActive},
		{"unknown user", func() *domain.User { return nil }, domain.Settings{}, false, GateNotActive},
		{"language before mute", func() *domain.User {
			u := activeUser()
			u.Language = nil
			u.MutedUntil = &muted
			return u
		}, domain.Settings{}, false, GateLanguage},
		{"muted", func() *domain.User {
			u := activeUser()
			u.MutedUntil = &muted
			return u
		}, domain.Settings{}, false, GateMuted},
		{"operator exempt", func() *domain.User {
			u := activeUser()
			u.Status = domain.UserStatusBanned
			return u
		}, stopWork, true, GateNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Evaluate(Input{User: tc.user(), Settings: tc.settings, IsOperator: tc.operator, Now: now})
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if d.Gate != tc.want {
				t.Fatalf("gate = %q, want %q", d.Gate, tc.want)
			}
		})
	}
}

func TestEvaluateUsesMuteCheck(t *testing.T) {
	called := false
	d, err := Evaluate(Input{User: activeUser(), Now: now, Mute: func() (bool, *time.Time, error) {
		called = true
		return false, nil, nil
	}})
	if err != nil || !called || !d.Allowed() {
		t.Fatalf("expected MuteCheck to be consulted and pass: %+v %v", d, err)
	}

	boom := errors.New("boom")
	_, err = Evaluate(Input{User: activeUser(), Now: now, Mute: func() (bool, *time.Time, error) {
		return false, nil, boom
	}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mute error to propagate, got %v", err)
	}
}

func TestStopWorkLapsesAndFallsBack(t *testing.T) {
	past := now.Add(-time.Minute)
	settings := domain.Settings{StopWork: domain.StopWork{Active: true, Until: &past}}
	if active, _ := IsStopWorkActive(settings, false, now, "fallback"); active {
		t.Fatalf("expected lapsed stop-work to be inactive")
	}

	future := now.Add(time.Hour)
	settings.StopWork.Until = &future
	active, notice := IsStopWorkActive(settings, false, now, "fallback")
	if !active || notice.Message != "fallback" || !notice.Until.Equal(future) {
		t.Fatalf("unexpected notice: %v %+v", active, notice)
	}
	settings.DefaultStopWorkMessage = str("default")
	if _, notice := IsStopWorkActive(settings, false, now, "fallback"); notice.Message != "default" {
		t.Fatalf("expected stored default, got %q", notice.Message)
	}
	settings.StopWork.Message = str("own")
	if _, notice := IsStopWorkActive(settings, false, now, "fallback"); notice.Message != "own" {
		t.Fatalf("expected own message, got %q", notice.Message)
	}
	if active, _ := IsStopWorkActive(settings, true, now, "fallback"); active {
		t.Fatalf("operators are exempt")
	}
}

func TestHasLineAccess(t *testing.T) {
	u := activeUser()
	if !HasLineAccess(u, "42", false) || HasLineAccess(u, "43", false) {
		t.Fatalf("membership check wrong")
	}
	if !HasLineAccess(nil, "43", true) {
		t.Fatalf("operators always have access")
	}
}
