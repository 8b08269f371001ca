package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/persistence"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
)

const (
	operatorID = int64(1)
	logChatID  = int64(-100)
)

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type recordingGateway struct {
	mu        sync.Mutex
	intents   []Intent
	failChats map[int64]bool
	nextID    int64
}

func (g *recordingGateway) Deliver(_ context.Context, intent Intent) (MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents = append(g.intents, intent)
	if g.failChats[intent.ChatID] {
		return MessageRef{}, errors.New("chat unavailable")
	}
	g.nextID++
	return MessageRef{ChatID: intent.ChatID, MessageID: g.nextID}, nil
}

func (g *recordingGateway) forChat(chatID int64) []Intent {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []Intent{}
	for _, in := range g.intents {
		if in.ChatID == chatID {
			out = append(out, in)
		}
	}
	return out
}

func (g *recordingGateway) last(t *testing.T, chatID int64) Intent {
	t.Helper()
	all := g.forChat(chatID)
	if len(all) == 0 {
		t.Fatalf("no intents delivered to %d", chatID)
	}
	return all[len(all)-1]
}

type harness struct {
	orch    *Orchestrator
	store   *repository.Store
	gateway *recordingGateway
	clock   *fakeClock
	catalog Catalog
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &fakeClock{now: baseTime}
	store, err := repository.Open(context.Background(), persistence.NewMemoryBackend(), repository.Options{
		Now:        clock.Now,
		IsOperator: func(id int64) bool { return id == operatorID },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	gw := &recordingGateway{failChats: map[int64]bool{}}
	catalog := DefaultCatalog()
	orch := New(Deps{
		Store:                   store,
		Gateway:                 gw,
		Catalog:                 catalog,
		OperatorIDs:             []int64{operatorID},
		FallbackStopWorkMessage: "back soon",
		Now:                     clock.Now,
		Location:                time.UTC,
		Logger:                  zap.NewNop(),
	})
	return &harness{orch: orch, store: store, gateway: gw, clock: clock, catalog: catalog}
}

func (h *harness) text(t *testing.T, actor int64, text string) {
	t.Helper()
	ev := TextMessage{ActorID: actor, Text: text, From: Sender{Username: "user" + strings.Repeat("x", int(actor%3))}}
	if err := h.orch.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle(%q): %v", text, err)
	}
}

func (h *harness) press(t *testing.T, actor int64, segments ...string) {
	t.Helper()
	ev := ButtonPress{ActorID: actor, ActionID: EncodeAction(segments...), From: Sender{FirstName: "Op"}}
	if err := h.orch.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle(%v): %v", segments, err)
	}
}

// activeUser registers id as an active member of lineID with a language set.
func (h *harness) activeUser(t *testing.T, id int64, username, lineID, lang string) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.store.UpsertUser(ctx, domain.Identity{ID: id, Username: username}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if _, _, err := h.store.AttachAndActivate(ctx, id, lineID); err != nil {
		t.Fatalf("AttachAndActivate: %v", err)
	}
	if _, err := h.store.SetUserLanguage(ctx, id, lang); err != nil {
		t.Fatalf("SetUserLanguage: %v", err)
	}
}

func (h *harness) line(t *testing.T, id, title string, group *int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.store.CreateLine(ctx, id, title); err != nil {
		t.Fatalf("CreateLine: %v", err)
	}
	if group != nil {
		if _, err := h.store.SetLineGroup(ctx, id, group); err != nil {
			t.Fatalf("SetLineGroup: %v", err)
		}
	}
}

func actionOf(t *testing.T, kb *Keyboard, rowIdx, col int) Action {
	t.Helper()
	if kb == nil || len(kb.Rows) <= rowIdx || len(kb.Rows[rowIdx]) <= col {
		t.Fatalf("keyboard has no button at %d/%d: %+v", rowIdx, col, kb)
	}
	a, err := ParseAction(kb.Rows[rowIdx][col].Action)
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	return a
}

func TestFirstContactApprovalFlow(t *testing.T) {
	h := newHarness(t)
	const userID = int64(100)

	h.text(t, userID, "/start")
	u, err := h.store.GetUser(userID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Status != domain.UserStatusPending {
		t.Fatalf("expected pending, got %s", u.Status)
	}
	pending := h.store.ListPendingApplications()
	if len(pending) != 1 {
		t.Fatalf("expected one pending application, got %d", len(pending))
	}

	notice := h.gateway.last(t, operatorID)
	if notice.Kind != IntentNotify {
		t.Fatalf("expected operator notification, got %s", notice.Kind)
	}
	confirm := actionOf(t, notice.Keyboard, 0, 1)
	if args, ok := confirm.Match(2, "application"); !ok || args[0] != "confirm" || args[1] != pending[0].ID {
		t.Fatalf("unexpected confirm action %v", confirm.Segments)
	}

	h.text(t, userID, "/start")
	if got := h.gateway.last(t, userID).Text; got != h.catalog.T("ru", "alreadyPending") {
		t.Fatalf("second /start replied %q", got)
	}
	if n := len(h.store.ListPendingApplications()); n != 1 {
		t.Fatalf("expected still one pending application, got %d", n)
	}

	h.press(t, operatorID, "admin", "lines", "create")
	h.text(t, operatorID, "42;Support")
	h.press(t, operatorID, confirm.Segments...)
	if _, ok := h.orch.Slots().Get(OperatorNamespace, operatorID).(AwaitingLineAssignment); !ok {
		t.Fatal("operator should await a line id")
	}
	h.text(t, operatorID, "42")

	u, _ = h.store.GetUser(userID)
	if u.Status != domain.UserStatusActive || len(u.LineIDs) != 1 || u.LineIDs[0] != "42" {
		t.Fatalf("unexpected user after approval: %+v", u)
	}
	line, _ := h.store.GetLine("42")
	if !line.HasUser(userID) {
		t.Fatalf("line should contain the user: %+v", line.UserIDs)
	}
	if h.orch.Slots().Get(OperatorNamespace, operatorID) != nil {
		t.Fatal("operator slot should be cleared")
	}
	if _, ok := h.orch.Slots().Get(UserNamespace, userID).(AwaitingLanguageChoice); !ok {
		t.Fatal("approved user without language should be asked for one")
	}
}

func TestApprovalWithUnknownLineKeepsState(t *testing.T) {
	h := newHarness(t)
	h.text(t, 100, "/start")
	app := h.store.ListPendingApplications()[0]

	h.press(t, operatorID, "application", "confirm", app.ID)
	h.text(t, operatorID, "404")

	if got := h.gateway.last(t, operatorID).Text; got != h.catalog.T("ru", "lineMissing") {
		t.Fatalf("unexpected reply %q", got)
	}
	if _, ok := h.orch.Slots().Get(OperatorNamespace, operatorID).(AwaitingLineAssignment); !ok {
		t.Fatal("operator should still await a line id")
	}
	u, _ := h.store.GetUser(100)
	if u.Status != domain.UserStatusPending {
		t.Fatalf("user should stay pending, got %s", u.Status)
	}
}

func TestComplaintWithSubNumber(t *testing.T) {
	h := newHarness(t)
	group := logChatID
	h.line(t, "42", "Support 10-12", &group)
	const userID = int64(200)
	h.activeUser(t, userID, "alice", "42", "en")

	h.text(t, userID, h.catalog.T("en", "complaintButton"))
	if _, ok := h.orch.Slots().Get(UserNamespace, userID).(AwaitingComplaintLineChoice); !ok {
		t.Fatal("expected line choice state")
	}

	h.press(t, userID, "complaint", "42")
	st, ok := h.orch.Slots().Get(UserNamespace, userID).(AwaitingComplaintSipChoice)
	if !ok {
		t.Fatal("expected sip choice state")
	}
	if strings.Join(st.Options, ",") != "10,11,12" {
		t.Fatalf("unexpected options %v", st.Options)
	}
	prompt := h.gateway.last(t, userID)
	if len(prompt.Keyboard.Rows[0]) != 3 {
		t.Fatalf("expected three sip buttons in the first row, got %+v", prompt.Keyboard.Rows[0])
	}

	h.text(t, userID, "just typing")
	if _, ok := h.orch.Slots().Get(UserNamespace, userID).(AwaitingComplaintSipChoice); !ok {
		t.Fatal("free text must not leave the sip choice")
	}

	h.press(t, userID, "complaintSip", "42", "11")
	h.text(t, userID, "Phone is down")

	logged := h.gateway.last(t, logChatID)
	if !strings.Contains(logged.Text, "Phone is down") {
		t.Fatalf("log message lacks the complaint text: %q", logged.Text)
	}
	resolve := actionOf(t, logged.Keyboard, 0, 0)
	complaint, err := h.store.GetComplaint(resolve.Segments[2])
	if err != nil {
		t.Fatalf("GetComplaint: %v", err)
	}
	if complaint.Sip == nil || *complaint.Sip != "11" || complaint.Status != domain.ComplaintStatusNew {
		t.Fatalf("unexpected complaint %+v", complaint)
	}
	if complaint.Log == nil || complaint.Log.ChatID != logChatID {
		t.Fatalf("log location not recorded: %+v", complaint.Log)
	}
	if h.orch.Slots().Get(UserNamespace, userID) != nil {
		t.Fatal("slot should be idle after filing")
	}
	if got := h.gateway.last(t, userID).Text; got != h.catalog.T("en", "complaintSent") {
		t.Fatalf("unexpected confirmation %q", got)
	}
}

func TestComplaintLogDeliveryFailureRemovesComplaint(t *testing.T) {
	h := newHarness(t)
	group := logChatID
	h.line(t, "7", "Billing", &group)
	h.activeUser(t, 300, "bob", "7", "ru")
	h.gateway.failChats[logChatID] = true

	h.press(t, 300, "complaint", "7")
	h.text(t, 300, "Invoice missing")

	if got := h.gateway.last(t, 300).Text; got != h.catalog.T("ru", "complaintError") {
		t.Fatalf("unexpected reply %q", got)
	}
	if stats := h.store.GetSipStatistics(); len(stats) != 0 {
		t.Fatalf("complaint should have been removed, stats=%+v", stats)
	}
}

func TestComplaintWithoutLogGroup(t *testing.T) {
	h := newHarness(t)
	h.line(t, "7", "Billing", nil)
	h.activeUser(t, 300, "bob", "7", "ru")

	h.press(t, 300, "complaint", "7")
	h.text(t, 300, "Invoice missing")

	if got := h.gateway.last(t, 300).Text; got != h.catalog.T("ru", "lineNotConfigured") {
		t.Fatalf("unexpected reply %q", got)
	}
	if h.orch.Slots().Get(UserNamespace, 300) != nil {
		t.Fatal("slot should be cleared")
	}
}

func TestStopWorkPrecedesMute(t *testing.T) {
	h := newHarness(t)
	h.line(t, "42", "Support", nil)
	h.activeUser(t, 200, "alice", "42", "ru")
	until := baseTime.Add(time.Hour)
	if _, err := h.store.SetUserMute(context.Background(), 200, &until); err != nil {
		t.Fatalf("SetUserMute: %v", err)
	}

	h.press(t, operatorID, "admin", "stopwork", "enable")
	h.text(t, operatorID, "maintenance")

	h.text(t, 200, "hello")
	got := h.gateway.last(t, 200).Text
	if got != h.catalog.T("ru", "stopWork", "maintenance") {
		t.Fatalf("expected stop-work notice, got %q", got)
	}

	h.press(t, operatorID, "admin", "stopwork", "disable")
	h.text(t, 200, "hello")
	if got := h.gateway.last(t, 200).Text; !strings.HasPrefix(got, "🔇") {
		t.Fatalf("expected mute notice once stop-work is off, got %q", got)
	}
}

func TestLanguageGate(t *testing.T) {
	h := newHarness(t)
	h.line(t, "42", "Support", nil)
	ctx := context.Background()
	if _, err := h.store.UpsertUser(ctx, domain.Identity{ID: 200}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := h.store.AttachAndActivate(ctx, 200, "42"); err != nil {
		t.Fatal(err)
	}

	h.text(t, 200, "hi")
	if _, ok := h.orch.Slots().Get(UserNamespace, 200).(AwaitingLanguageChoice); !ok {
		t.Fatal("expected language prompt")
	}
	h.text(t, 200, "still hi")
	if got := h.gateway.last(t, 200).Text; got != h.catalog.T("ru", "languageReminder") {
		t.Fatalf("expected reminder, got %q", got)
	}

	h.press(t, 200, "language", "en")
	u, _ := h.store.GetUser(200)
	if u.LanguageCode() != "en" {
		t.Fatalf("language not stored: %q", u.LanguageCode())
	}
	if h.orch.Slots().Get(UserNamespace, 200) != nil {
		t.Fatal("slot should be cleared after choosing a language")
	}
	if got := h.gateway.last(t, 200).Text; got != h.catalog.T("en", "mainMenuPrompt") {
		t.Fatalf("expected main menu, got %q", got)
	}
}

func TestOperatorFormatHints(t *testing.T) {
	h := newHarness(t)

	h.press(t, operatorID, "admin", "lines", "attachUser")
	h.text(t, operatorID, "garbage")
	if got := h.gateway.last(t, operatorID).Text; got != h.catalog.T("ru", "attachUserFormat") {
		t.Fatalf("expected format hint, got %q", got)
	}
	if _, ok := h.orch.Slots().Get(OperatorNamespace, operatorID).(AwaitingUserLineAttach); !ok {
		t.Fatal("parse failure must keep the state")
	}

	h.text(t, operatorID, "555;42")
	if got := h.gateway.last(t, operatorID).Text; got != h.catalog.T("ru", "notFound") {
		t.Fatalf("expected not found, got %q", got)
	}
	if h.orch.Slots().Get(OperatorNamespace, operatorID) != nil {
		t.Fatal("missing target should reset the slot")
	}
}

func TestOperatorLineCreationConflict(t *testing.T) {
	h := newHarness(t)
	h.line(t, "42", "Support", nil)

	h.press(t, operatorID, "admin", "lines", "create")
	h.text(t, operatorID, "42;Again")
	if got := h.gateway.last(t, operatorID).Text; !strings.HasPrefix(got, "⚠️ Конфликт") {
		t.Fatalf("expected conflict notice, got %q", got)
	}
	if _, ok := h.orch.Slots().Get(OperatorNamespace, operatorID).(AwaitingLineCreation); !ok {
		t.Fatal("conflict should leave the form open")
	}
}

func TestComplaintLogResolvesOnce(t *testing.T) {
	h := newHarness(t)
	group := logChatID
	h.line(t, "7", "Billing", &group)
	h.activeUser(t, 300, "bob", "7", "ru")
	h.press(t, 300, "complaint", "7")
	h.text(t, 300, "Invoice missing")
	id := actionOf(t, h.gateway.last(t, logChatID).Keyboard, 0, 0).Segments[2]

	h.press(t, operatorID, "complaintLog", "resolve", id)
	edit := h.gateway.last(t, logChatID)
	if edit.Kind != IntentEditLast || edit.MessageID == 0 || edit.Keyboard != nil {
		t.Fatalf("expected an edit of the log message without buttons, got %+v", edit)
	}

	h.press(t, operatorID, "complaintLog", "cancel", id)
	if got := h.gateway.last(t, operatorID).Text; got != h.catalog.T("ru", "complaintLogStatusAlreadySet") {
		t.Fatalf("expected already-set notice, got %q", got)
	}
	c, _ := h.store.GetComplaint(id)
	if c.Status != domain.ComplaintStatusResolved || c.ResolvedBy == nil || *c.ResolvedBy != operatorID {
		t.Fatalf("unexpected complaint %+v", c)
	}
}

func TestRegularUserCannotUseOperatorButtons(t *testing.T) {
	h := newHarness(t)
	h.text(t, 100, "/start")
	app := h.store.ListPendingApplications()[0]

	h.press(t, 100, "application", "confirm", app.ID)
	if got := h.gateway.last(t, 100).Text; got != h.catalog.T("ru", "complaintLogNoAccess") {
		t.Fatalf("unexpected reply %q", got)
	}
	if h.orch.Slots().Get(OperatorNamespace, 100) != nil {
		t.Fatal("no operator state may be created for a regular user")
	}
}

func TestBannedUserIsStopped(t *testing.T) {
	h := newHarness(t)
	h.line(t, "42", "Support", nil)
	h.activeUser(t, 200, "alice", "42", "ru")
	h.text(t, 200, h.catalog.T("ru", "complaintButton"))

	h.press(t, operatorID, "admin", "users", "ban")
	h.text(t, operatorID, "200")

	h.press(t, 200, "complaint", "42")
	if got := h.gateway.last(t, 200).Text; got != h.catalog.T("ru", "banned") {
		t.Fatalf("expected banned notice, got %q", got)
	}
	if h.orch.Slots().Get(UserNamespace, 200) != nil {
		t.Fatal("banned user's slot should be cleared")
	}
}

func TestOperatorMuteAndUserDetails(t *testing.T) {
	h := newHarness(t)
	h.line(t, "42", "Support", nil)
	h.activeUser(t, 200, "alice", "42", "ru")

	h.press(t, operatorID, "admin", "users", "mute", "4", "200", "0")
	u, _ := h.store.GetUser(200)
	if u.MutedUntil == nil || !u.MutedUntil.Equal(baseTime.Add(4*time.Hour)) {
		t.Fatalf("unexpected mute deadline %v", u.MutedUntil)
	}
	details := h.gateway.last(t, operatorID)
	back := actionOf(t, details.Keyboard, len(details.Keyboard.Rows)-1, 0)
	if !back.Is("admin", "users", "page", "0") {
		t.Fatalf("unexpected back action %v", back.Segments)
	}

	h.press(t, operatorID, "admin", "users", "mute")
	h.text(t, operatorID, "200;0")
	u, _ = h.store.GetUser(200)
	if u.MutedUntil != nil {
		t.Fatalf("mute should be lifted, got %v", u.MutedUntil)
	}

	h.press(t, operatorID, "admin", "users", "mute")
	h.text(t, operatorID, "200;1e9")
	if got := h.gateway.last(t, operatorID).Text; got != h.catalog.T("ru", "mutePrompt") {
		t.Fatalf("expected the mute format hint, got %q", got)
	}
	if _, ok := h.orch.Slots().Get(OperatorNamespace, operatorID).(AwaitingMuteTarget); !ok {
		t.Fatal("rejected duration must keep the mute prompt open")
	}
	h.press(t, operatorID, "admin", "users", "mute", "100000000", "200", "0")
	if u, _ = h.store.GetUser(200); u.MutedUntil != nil {
		t.Fatalf("out-of-range durations must not mute, got %v", u.MutedUntil)
	}
}

func TestColdProfileCreatedAndClaimed(t *testing.T) {
	h := newHarness(t)
	h.line(t, "42", "Support 10-12", nil)
	h.activeUser(t, 200, "alice", "42", "ru")

	h.text(t, 200, "/cold")
	h.press(t, 200, "cold", "new")
	h.press(t, 200, "cold", "lineSelect", newProfileKey, "42")
	if _, ok := h.orch.Slots().Get(UserNamespace, 200).(AwaitingColdSipChoice); !ok {
		t.Fatal("expected sip choice for a ranged line")
	}
	h.press(t, 200, "cold", "sipSelect", newProfileKey, "42", "10")
	h.text(t, 200, "not valid!")
	if _, ok := h.orch.Slots().Get(UserNamespace, 200).(AwaitingColdUsernameInput); !ok {
		t.Fatal("invalid username must keep the state")
	}
	h.text(t, 200, "@Bot_One")

	profiles := h.store.ListColdProfilesByOwner(200)
	if len(profiles) != 1 || profiles[0].Username != "bot_one" || profiles[0].Sip != "10" {
		t.Fatalf("unexpected profiles %+v", profiles)
	}

	if err := h.orch.Handle(context.Background(), TextMessage{ActorID: 900, Text: "/start", From: Sender{Username: "bot_one"}}); err != nil {
		t.Fatal(err)
	}
	claimed, _ := h.store.GetUser(900)
	if claimed.Status != domain.UserStatusPending || !claimed.HasLine("42") {
		t.Fatalf("claimed account should be linked to line 42 and still pending: %+v", claimed)
	}
	if n := len(h.store.ListPendingApplications()); n != 1 {
		t.Fatalf("claimed account still needs operator approval, got %d applications", n)
	}
}

func TestUnknownOperatorActionGetsInvalidInputNotice(t *testing.T) {
	h := newHarness(t)
	h.press(t, operatorID, "admin", "nonsense")
	if got := h.gateway.last(t, operatorID).Text; got != h.catalog.T("ru", "invalidInput") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestHandleReportsUndeliverableFailure(t *testing.T) {
	h := newHarness(t)
	h.gateway.failChats[operatorID] = true
	err := h.orch.Handle(context.Background(), ButtonPress{ActorID: operatorID, ActionID: "admin:nonsense"})
	if err == nil {
		t.Fatal("expected an error when even the failure notice cannot be delivered")
	}
}

func TestUserCancelReturnsToIdle(t *testing.T) {
	h := newHarness(t)
	h.line(t, "42", "Support", nil)
	h.activeUser(t, 200, "alice", "42", "en")
	slots := h.orch.Slots()
	want := h.catalog.T("en", "complaintCancelled")

	slots.Set(UserNamespace, 200, AwaitingComplaintDescription{LineID: "42", Sip: "11"})
	h.press(t, 200, "complaintCancel")
	if got := h.gateway.last(t, 200).Text; got != want {
		t.Fatalf("button cancel replied %q", got)
	}
	if slots.Get(UserNamespace, 200) != nil {
		t.Fatal("cancel button should leave the user idle")
	}

	slots.Set(UserNamespace, 200, AwaitingColdUsernameInput{LineID: "42", Sip: "11"})
	h.text(t, 200, "/cancel")
	if got := h.gateway.last(t, 200).Text; got != want {
		t.Fatalf("/cancel replied %q", got)
	}
	if slots.Get(UserNamespace, 200) != nil {
		t.Fatal("/cancel should leave the user idle")
	}
	if n := len(h.gateway.forChat(200)); n != 2 {
		t.Fatalf("expected only the two cancel notices, got %d intents", n)
	}
}

func TestMutedUserKeepsPendingStep(t *testing.T) {
	h := newHarness(t)
	h.line(t, "42", "Support", nil)
	h.activeUser(t, 200, "alice", "42", "en")
	until := baseTime.Add(2 * time.Hour)
	if _, err := h.store.SetUserMute(context.Background(), 200, &until); err != nil {
		t.Fatalf("SetUserMute: %v", err)
	}
	step := AwaitingComplaintDescription{LineID: "42", Sip: "11"}
	h.orch.Slots().Set(UserNamespace, 200, step)

	h.text(t, 200, "the phone is dead")
	want := h.catalog.T("en", "muteActive", "2024-05-01 12:00")
	if got := h.gateway.last(t, 200).Text; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got, ok := h.orch.Slots().Get(UserNamespace, 200).(AwaitingComplaintDescription); !ok || got != step {
		t.Fatalf("mute must not touch the pending step, got %#v", h.orch.Slots().Get(UserNamespace, 200))
	}
	if n := len(h.gateway.forChat(200)); n != 1 {
		t.Fatalf("a muted user must only see the notice, got %d intents", n)
	}
}

func TestMutedUserStartShowsMuteNotice(t *testing.T) {
	h := newHarness(t)
	h.line(t, "42", "Support", nil)
	h.activeUser(t, 200, "alice", "42", "en")
	until := baseTime.Add(30 * time.Minute)
	if _, err := h.store.SetUserMute(context.Background(), 200, &until); err != nil {
		t.Fatalf("SetUserMute: %v", err)
	}

	h.text(t, 200, "/start")
	got := h.gateway.last(t, 200)
	if got.Text != h.catalog.T("en", "muteActive", "2024-05-01 10:30") {
		t.Fatalf("expected the mute notice, got %q", got.Text)
	}
	for _, in := range h.gateway.forChat(200) {
		if in.Text == h.catalog.T("en", "mainMenuPrompt") {
			t.Fatal("a muted user must not get the main menu")
		}
	}
}
