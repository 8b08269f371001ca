package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/persistence"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingBackend struct {
	*persistence.MemoryBackend
	fail bool
}

func (f *failingBackend) Save(ctx context.Context, payload []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Save(ctx, payload)
}

func newTestStore(t *testing.T, operators ...int64) (*Store, *fakeClock, *persistence.MemoryBackend) {
	t.Helper()
	clock := &fakeClock{now: baseTime}
	backend := persistence.NewMemoryBackend()
	store, err := Open(context.Background(), backend, Options{
		Now: clock.Now,
		IsOperator: func(id int64) bool {
			for _, op := range operators {
				if op == id {
					return true
				}
			}
			return false
		},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store, clock, backend
}

func mustUser(t *testing.T, s *Store, id int64, username string) *domain.User {
	t.Helper()
	u, err := s.UpsertUser(context.Background(), domain.Identity{ID: id, Username: username, FirstName: "First"})
	if err != nil {
		t.Fatalf("UpsertUser(%d): %v", id, err)
	}
	return u
}

func mustLine(t *testing.T, s *Store, id, title string) {
	t.Helper()
	if _, err := s.CreateLine(context.Background(), id, title); err != nil {
		t.Fatalf("CreateLine(%s): %v", id, err)
	}
}

// assertDuality checks that user.lineIds and line.userIds mirror each other.
func assertDuality(t *testing.T, s *Store) {
	t.Helper()
	users := s.ListUsers()
	lines := s.ListLines()
	for _, l := range lines {
		for _, uid := range l.UserIDs {
			u, err := s.GetUser(uid)
			if err != nil {
				t.Fatalf("line %s references unknown user %d", l.ID, uid)
			}
			if !u.HasLine(l.ID) {
				t.Fatalf("line %s has user %d but user lacks line", l.ID, uid)
			}
		}
	}
	for _, u := range users {
		for _, lid := range u.LineIDs {
			l, err := s.GetLine(lid)
			if err != nil {
				t.Fatalf("user %d references unknown line %s", u.ID, lid)
			}
			if !l.HasUser(u.ID) {
				t.Fatalf("user %d has line %s but line lacks user", u.ID, lid)
			}
		}
	}
}

func TestOpenReadsExistingSnapshot(t *testing.T) {
	backend := persistence.NewMemoryBackend()
	raw := `{"settings":{"stopWork":{"active":true}},"lines":[{"id":"42","title":"Support","userIds":[7]}],"users":[{"id":7,"lineIds":["42"],"extra":"ignored"}]}`
	if err := backend.Save(context.Background(), []byte(raw)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := Open(context.Background(), backend, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	u, err := store.GetUser(7)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Status != domain.UserStatusPending {
		t.Fatalf("expected backfilled pending status, got %q", u.Status)
	}
	if !store.GetSettings().StopWork.Active {
		t.Fatalf("expected stop-work to load")
	}
	assertDuality(t, store)
}

func TestUpsertUserKeepsLanguage(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")
	if _, err := s.SetUserLanguage(ctx, 1, "en"); err != nil {
		t.Fatalf("SetUserLanguage: %v", err)
	}
	u, err := s.UpsertUser(ctx, domain.Identity{ID: 1, Username: "alice2", FirstName: "Alice"})
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if u.LanguageCode() != "en" {
		t.Fatalf("language overwritten: %q", u.LanguageCode())
	}
	if u.UsernameValue() != "alice2" || *u.FirstName != "Alice" {
		t.Fatalf("display fields not refreshed: %+v", u)
	}
}

func TestUserMutationsOnUnknownUser(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := s.SetUserStatus(ctx, 99, domain.UserStatusBanned); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("SetUserStatus: expected NotFound, got %v", err)
	}
	if _, err := s.SetUserMute(ctx, 99, nil); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("SetUserMute: expected NotFound, got %v", err)
	}
	if _, err := s.SetUserLanguage(ctx, 99, "ru"); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("SetUserLanguage: expected NotFound, got %v", err)
	}
	if _, err := s.SetUserLanguage(ctx, 99, "de"); !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("SetUserLanguage: expected InvalidInput, got %v", err)
	}
}

func TestAttachDetachKeepsDuality(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")
	mustUser(t, s, 2, "bob")
	mustLine(t, s, "42", "Support")
	mustLine(t, s, "43", "")

	for _, step := range []struct {
		attach bool
		user   int64
		line   string
	}{
		{true, 1, "42"}, {true, 1, "42"}, {true, 2, "42"}, {true, 1, "43"}, {false, 1, "42"}, {false, 2, "43"},
	} {
		var err error
		if step.attach {
			err = s.AttachUserToLine(ctx, step.user, step.line)
		} else {
			err = s.DetachUserFromLine(ctx, step.user, step.line)
		}
		if err != nil {
			t.Fatalf("step %+v: %v", step, err)
		}
		assertDuality(t, s)
	}

	l, _ := s.GetLine("42")
	if len(l.UserIDs) != 1 || l.UserIDs[0] != 2 {
		t.Fatalf("unexpected members of 42: %v", l.UserIDs)
	}
	if err := s.AttachUserToLine(ctx, 1, "missing"); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected NotFound for missing line, got %v", err)
	}
}

func TestAttachExistingMemberDoesNotSave(t *testing.T) {
	s, _, backend := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")
	mustLine(t, s, "42", "Support")
	if err := s.AttachUserToLine(ctx, 1, "42"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	saves := backend.Saves()
	if err := s.AttachUserToLine(ctx, 1, "42"); err != nil {
		t.Fatalf("re-attach: %v", err)
	}
	if backend.Saves() != saves {
		t.Fatalf("re-attach should not persist")
	}
}

func TestCreateLineConflictAndDefaults(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	line, err := s.CreateLine(ctx, "7", "")
	if err != nil {
		t.Fatalf("CreateLine: %v", err)
	}
	if line.Title != "Линия 7" {
		t.Fatalf("unexpected default title %q", line.Title)
	}
	if _, err := s.CreateLine(ctx, "7", "Other"); !apperrors.Is(err, apperrors.KindConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if _, err := s.UpdateLine(ctx, "8", "Title"); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	group := int64(-100500)
	updated, err := s.SetLineGroup(ctx, "7", &group)
	if err != nil || updated.GroupID == nil || *updated.GroupID != group {
		t.Fatalf("SetLineGroup: %+v %v", updated, err)
	}
}

func TestSinglePendingApplication(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")

	first, created, err := s.CreateApplication(ctx, 1)
	if err != nil || !created {
		t.Fatalf("first CreateApplication: created=%v err=%v", created, err)
	}
	second, created, err := s.CreateApplication(ctx, 1)
	if err != nil || created {
		t.Fatalf("second CreateApplication: created=%v err=%v", created, err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same application id, got %s and %s", first.ID, second.ID)
	}
	if pending := s.ListPendingApplications(); len(pending) != 1 {
		t.Fatalf("expected exactly one pending application, got %d", len(pending))
	}
}

func TestApproveApplicationScenario(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")
	mustLine(t, s, "42", "Support 10-12")
	app, _, err := s.CreateApplication(ctx, 1)
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	approved, user, err := s.ApproveApplication(ctx, app.ID, "42")
	if err != nil {
		t.Fatalf("ApproveApplication: %v", err)
	}
	if approved.Status != domain.ApplicationStatusApproved || *approved.LineID != "42" {
		t.Fatalf("unexpected application: %+v", approved)
	}
	if user.Status != domain.UserStatusActive || len(user.LineIDs) != 1 || user.LineIDs[0] != "42" {
		t.Fatalf("unexpected user: %+v", user)
	}
	line, _ := s.GetLine("42")
	if !line.HasUser(1) {
		t.Fatalf("line does not list the user")
	}
	if _, _, err := s.ApproveApplication(ctx, app.ID, "42"); !apperrors.Is(err, apperrors.KindConflict) {
		t.Fatalf("expected Conflict on second approval, got %v", err)
	}
}

func TestApproveWithMissingLineChangesNothing(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")
	app, _, _ := s.CreateApplication(ctx, 1)

	if _, _, err := s.ApproveApplication(ctx, app.ID, "nope"); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	u, _ := s.GetUser(1)
	if u.Status != domain.UserStatusPending {
		t.Fatalf("user status changed on failed approval: %s", u.Status)
	}
	stored, _ := s.GetApplication(app.ID)
	if stored.Status != domain.ApplicationStatusPending {
		t.Fatalf("application changed on failed approval: %s", stored.Status)
	}
}

func TestDeclineApplication(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")
	app, _, _ := s.CreateApplication(ctx, 1)
	_, user, err := s.DeclineApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("DeclineApplication: %v", err)
	}
	if user.Status != domain.UserStatusDeclined {
		t.Fatalf("expected declined user, got %s", user.Status)
	}
}

func TestMuteLazyExpiry(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")

	past := clock.Now().Add(-5 * time.Minute)
	if _, err := s.SetUserMute(ctx, 1, &past); err != nil {
		t.Fatalf("SetUserMute: %v", err)
	}
	state, err := s.EnsureMuteExpiry(ctx, 1)
	if err != nil {
		t.Fatalf("EnsureMuteExpiry: %v", err)
	}
	if state.Muted {
		t.Fatalf("expected not muted")
	}
	u, _ := s.GetUser(1)
	if u.MutedUntil != nil {
		t.Fatalf("expected mutedUntil cleared, got %v", u.MutedUntil)
	}

	future := clock.Now().Add(time.Hour)
	if _, err := s.SetUserMute(ctx, 1, &future); err != nil {
		t.Fatalf("SetUserMute: %v", err)
	}
	state, err = s.EnsureMuteExpiry(ctx, 1)
	if err != nil || !state.Muted || !state.Until.Equal(future) {
		t.Fatalf("expected muted until %v, got %+v (%v)", future, state, err)
	}
	clock.Advance(2 * time.Hour)
	state, _ = s.EnsureMuteExpiry(ctx, 1)
	if state.Muted {
		t.Fatalf("expected mute to lapse")
	}
}

func TestComplaintStatusExactlyOnce(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")
	mustLine(t, s, "42", "Support")
	if err := s.AttachUserToLine(ctx, 1, "42"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	c, err := s.CreateComplaint(ctx, ComplaintInput{UserID: 1, LineID: "42", Sip: "11", Message: "no sound"})
	if err != nil {
		t.Fatalf("CreateComplaint: %v", err)
	}

	got, changed, err := s.UpdateComplaintStatus(ctx, c.ID, domain.ComplaintStatusResolved, 500)
	if err != nil || !changed || got.Status != domain.ComplaintStatusResolved {
		t.Fatalf("resolve: %+v changed=%v err=%v", got, changed, err)
	}
	got, changed, err = s.UpdateComplaintStatus(ctx, c.ID, domain.ComplaintStatusCancelled, 501)
	if err != nil || changed {
		t.Fatalf("second update: changed=%v err=%v", changed, err)
	}
	if got.Status != domain.ComplaintStatusResolved || *got.ResolvedBy != 500 {
		t.Fatalf("second update mutated complaint: %+v", got)
	}
}

func TestCreateComplaintRequiresMembership(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, 1, "alice")
	mustLine(t, s, "42", "Support")
	_, err := s.CreateComplaint(ctx, ComplaintInput{UserID: 1, LineID: "42", Message: "hi"})
	if !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	_, err = s.CreateComplaint(ctx, ComplaintInput{UserID: 1, LineID: "42", Message: "  "})
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestDeleteComplaintCompensates(t *testing.T) {
	s, _, _ := newTestStore(t, 900)
	ctx := context.Background()
	mustUser(t, s, 900, "root")
	mustLine(t, s, "42", "Support")
	c, err := s.CreateComplaint(ctx, ComplaintInput{UserID: 900, LineID: "42", Message: "hi"})
	if err != nil {
		t.Fatalf("CreateComplaint: %v", err)
	}
	if err := s.DeleteComplaint(ctx, c.ID); err != nil {
		t.Fatalf("DeleteComplaint: %v", err)
	}
	if _, err := s.GetComplaint(c.ID); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected complaint gone, got %v", err)
	}
}

func TestSipStatisticsOrdering(t *testing.T) {
	s, _, _ := newTestStore(t, 900)
	ctx := context.Background()
	mustUser(t, s, 900, "root")
	mustLine(t, s, "42", "Support")
	mustLine(t, s, "41", "Billing")

	file := func(line, sip string) string {
		c, err := s.CreateComplaint(ctx, ComplaintInput{UserID: 900, LineID: line, Sip: sip, Message: "x"})
		if err != nil {
			t.Fatalf("CreateComplaint: %v", err)
		}
		return c.ID
	}
	a := file("42", "11")
	file("42", "11")
	b := file("42", "11")
	file("41", "12")
	file("42", "10")
	file("41", "10")
	s.UpdateComplaintStatus(ctx, a, domain.ComplaintStatusResolved, 900)
	s.UpdateComplaintStatus(ctx, b, domain.ComplaintStatusCancelled, 900)

	stats := s.GetSipStatistics()
	want := []SipStat{
		{LineID: "42", Sip: "11", Total: 3, Resolved: 1, Cancelled: 1},
		{LineID: "41", Sip: "10", Total: 1},
		{LineID: "41", Sip: "12", Total: 1},
		{LineID: "42", Sip: "10", Total: 1},
	}
	if len(stats) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(stats), len(want), stats)
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, stats[i], want[i])
		}
	}
}

func TestFailedSaveLeavesStateUntouched(t *testing.T) {
	backend := &failingBackend{MemoryBackend: persistence.NewMemoryBackend()}
	s, err := Open(context.Background(), backend, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	mustUser(t, s, 1, "alice")
	mustLine(t, s, "42", "Support")

	backend.fail = true
	err = s.AttachUserToLine(ctx, 1, "42")
	if !apperrors.Is(err, apperrors.KindUnexpected) {
		t.Fatalf("expected Unexpected, got %v", err)
	}
	u, _ := s.GetUser(1)
	l, _ := s.GetLine("42")
	if len(u.LineIDs) != 0 || len(l.UserIDs) != 0 {
		t.Fatalf("failed save leaked a partial mutation: user=%v line=%v", u.LineIDs, l.UserIDs)
	}
}

func TestConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	mustLine(t, s, "42", "Support")

	var wg sync.WaitGroup
	for i := 1; i <= 40; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := s.UpsertUser(ctx, domain.Identity{ID: id}); err != nil {
				t.Errorf("UpsertUser: %v", err)
				return
			}
			if err := s.AttachUserToLine(ctx, id, "42"); err != nil {
				t.Errorf("attach: %v", err)
			}
		}(int64(i))
	}
	wg.Wait()

	if got := len(s.ListUsers()); got != 40 {
		t.Fatalf("expected 40 users, got %d", got)
	}
	l, _ := s.GetLine("42")
	if len(l.UserIDs) != 40 {
		t.Fatalf("expected 40 members, got %d", len(l.UserIDs))
	}
	assertDuality(t, s)
}

func TestStopWorkSettings(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	until := clock.Now().Add(time.Hour)
	sw, err := s.SetStopWork(ctx, true, &until, " maintenance ")
	if err != nil {
		t.Fatalf("SetStopWork: %v", err)
	}
	if !sw.Active || *sw.Message != "maintenance" {
		t.Fatalf("unexpected stop-work: %+v", sw)
	}
	if err := s.SetDefaultStopWorkMessage(ctx, "back soon"); err != nil {
		t.Fatalf("SetDefaultStopWorkMessage: %v", err)
	}
	if got := s.GetSettings(); *got.DefaultStopWorkMessage != "back soon" || !got.StopWork.Active {
		t.Fatalf("unexpected settings: %+v", got)
	}
}
