package conversation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

const usersPageSize = 8

var muteHourOptions = []int{1, 4, 24}

func (o *Orchestrator) handleOperator(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case ButtonPress:
		a, err := ParseAction(e.ActionID)
		if err != nil {
			return err
		}
		return o.operatorButton(ctx, e, a)
	case TextMessage:
		return o.operatorText(ctx, e)
	}
	return apperrors.NewInvalidInput("event")
}

func (o *Orchestrator) t(key string, args ...any) string {
	return o.catalog.T(operatorLanguage, key, args...)
}

func (o *Orchestrator) say(ctx context.Context, chatID int64, key string, args ...any) error {
	_, err := o.reply(ctx, chatID, o.t(key, args...), nil)
	return err
}

// prompt enters a single-step operator form.
func (o *Orchestrator) prompt(ctx context.Context, actor int64, st State, key string, args ...any) error {
	o.slots.Set(OperatorNamespace, actor, st)
	return o.say(ctx, actor, key, args...)
}

func (o *Orchestrator) operatorText(ctx context.Context, e TextMessage) error {
	actor := e.ActorID
	text := strings.TrimSpace(e.Text)
	switch {
	case isCommand(text, "/start"), isCommand(text, "/admin"):
		o.slots.Clear(OperatorNamespace, actor)
		_, err := o.reply(ctx, actor, o.t("adminPanel"), o.adminMenu())
		return err
	case isCommand(text, "/cancel"):
		o.slots.Clear(OperatorNamespace, actor)
		return o.say(ctx, actor, "cancelled")
	}

	switch s := o.slots.Get(OperatorNamespace, actor).(type) {
	case AwaitingLineAssignment:
		return o.assignLine(ctx, actor, s, text)
	case AwaitingLineCreation:
		return o.createLine(ctx, actor, text)
	case AwaitingUserLineAttach:
		return o.attachUser(ctx, actor, text)
	case AwaitingUserLineDetach:
		return o.detachUser(ctx, actor, text)
	case AwaitingLineGroupBinding:
		return o.bindLineGroup(ctx, actor, text, e.ForwardedFromChatID)
	case AwaitingBanTarget:
		return o.banUser(ctx, actor, text)
	case AwaitingMuteTarget:
		return o.muteUser(ctx, actor, text)
	case AwaitingStopWorkActivation:
		return o.activateStopWork(ctx, actor, text)
	case AwaitingDefaultStopWorkMessage:
		return o.setDefaultStopWorkMessage(ctx, actor, text)
	case AwaitingColdBulkUpload:
		return o.importColdProfiles(ctx, actor, s.LineID, text)
	}
	return o.say(ctx, actor, "adminUseMenu")
}

func (o *Orchestrator) operatorButton(ctx context.Context, e ButtonPress, a Action) error {
	actor := e.ActorID
	if args, ok := a.Match(2, "application"); ok {
		switch args[0] {
		case "confirm":
			return o.confirmApplication(ctx, actor, args[1])
		case "decline":
			return o.declineApplication(ctx, actor, args[1])
		}
		return apperrors.NewInvalidInput("action")
	}
	if args, ok := a.Match(2, "complaintLog"); ok {
		switch args[0] {
		case "resolve":
			return o.closeComplaint(ctx, e, args[1], domain.ComplaintStatusResolved)
		case "cancel":
			return o.closeComplaint(ctx, e, args[1], domain.ComplaintStatusCancelled)
		}
		return apperrors.NewInvalidInput("action")
	}
	if len(a.Segments) == 0 || a.Segments[0] != "admin" {
		return o.say(ctx, actor, "adminUseMenu")
	}
	if handled, err := o.usersButton(ctx, actor, a); handled {
		return err
	}
	if args, ok := a.Match(1, "admin", "cold", "bulk"); ok {
		line, err := o.store.GetLine(args[0])
		if err != nil {
			return err
		}
		return o.prompt(ctx, actor, AwaitingColdBulkUpload{LineID: line.ID}, "coldBulkPrompt", lineButtonLabel(line))
	}

	switch {
	case a.Is("admin", "back"):
		o.slots.Clear(OperatorNamespace, actor)
		return o.editLast(ctx, actor, o.t("adminPanel"), o.adminMenu())
	case a.Is("admin", "applications", "list"):
		return o.listApplications(ctx, actor)
	case a.Is("admin", "lines", "menu"):
		return o.editLast(ctx, actor, o.t("linesMenu"), o.linesMenu())
	case a.Is("admin", "lines", "list"):
		return o.listLines(ctx, actor)
	case a.Is("admin", "lines", "create"):
		return o.prompt(ctx, actor, AwaitingLineCreation{}, "waitingForLineIdFormat")
	case a.Is("admin", "lines", "attachUser"):
		return o.prompt(ctx, actor, AwaitingUserLineAttach{}, "attachUserFormat")
	case a.Is("admin", "lines", "detachUser"):
		return o.prompt(ctx, actor, AwaitingUserLineDetach{}, "attachUserFormat")
	case a.Is("admin", "lines", "setGroup"):
		return o.prompt(ctx, actor, AwaitingLineGroupBinding{}, "setGroupFormat")
	case a.Is("admin", "stats"):
		return o.sendStats(ctx, actor)
	case a.Is("admin", "sipstats"):
		return o.sendSipStats(ctx, actor)
	case a.Is("admin", "stopwork", "menu"):
		return o.editLast(ctx, actor, o.stopWorkStatusText(), o.stopWorkMenu())
	case a.Is("admin", "stopwork", "enable"):
		return o.prompt(ctx, actor, AwaitingStopWorkActivation{}, "stopWorkPrompt")
	case a.Is("admin", "stopwork", "disable"):
		if _, err := o.store.SetStopWork(ctx, false, nil, ""); err != nil {
			return err
		}
		o.publish(ctx, events.EventStopWorkChanged, actor, "settings", events.StopWorkChangedPayload{Active: false})
		return o.say(ctx, actor, "stopWorkDisabled")
	case a.Is("admin", "settings"):
		return o.editLast(ctx, actor, o.t("adminSettingsTitle"), o.adminSettingsMenu())
	case a.Is("admin", "settings", "stopworkMessage"):
		return o.prompt(ctx, actor, AwaitingDefaultStopWorkMessage{}, "adminSettingsStopWorkMessagePrompt")
	case a.Is("admin", "settings", "show"):
		return o.showSettings(ctx, actor)
	case a.Is("admin", "cold", "menu"):
		return o.sendColdBulkMenu(ctx, actor)
	}
	return apperrors.NewInvalidInput("action")
}

// Applications.

func (o *Orchestrator) confirmApplication(ctx context.Context, actor int64, appID string) error {
	app, err := o.store.GetApplication(appID)
	if err != nil {
		return err
	}
	if app.Status != domain.ApplicationStatusPending {
		return apperrors.NewConflict(fmt.Sprintf("application %s is %s", app.ID, app.Status), nil)
	}
	user, err := o.store.GetUser(app.UserID)
	if err != nil {
		return err
	}
	return o.prompt(ctx, actor, AwaitingLineAssignment{ApplicationID: app.ID, UserID: user.ID}, "adminAwaitLineId", userLabel(user))
}

func (o *Orchestrator) declineApplication(ctx context.Context, actor int64, appID string) error {
	app, user, err := o.store.DeclineApplication(ctx, appID)
	if err != nil {
		return err
	}
	o.publish(ctx, events.EventApplicationDeclined, actor, app.ID, nil)
	o.notifyBestEffort(ctx, user.ID, o.catalog.T(userLanguage(user), "declined"), nil)
	return o.editLast(ctx, actor, o.t("applicationDeclinedAdmin", userLabel(user)), nil)
}

func (o *Orchestrator) assignLine(ctx context.Context, actor int64, st AwaitingLineAssignment, text string) error {
	lineID := strings.TrimSpace(text)
	if lineID == "" {
		return apperrors.NewInvalidInput("lineId")
	}
	line, err := o.store.GetLine(lineID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return o.say(ctx, actor, "lineMissing")
	}
	if err != nil {
		return err
	}

	app, user, err := o.store.ApproveApplication(ctx, st.ApplicationID, line.ID)
	if err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	o.publish(ctx, events.EventApplicationApproved, actor, app.ID, events.ApplicationApprovedPayload{
		UserID: user.ID,
		LineID: line.ID,
	})
	o.welcomeToLine(ctx, user, line)
	return o.say(ctx, actor, "applicationApprovedAdmin", lineButtonLabel(line))
}

// welcomeToLine tells a user they were attached and asks for a language
// when none is set yet.
func (o *Orchestrator) welcomeToLine(ctx context.Context, user *domain.User, line *domain.Line) {
	lang := userLanguage(user)
	o.notifyBestEffort(ctx, user.ID, o.catalog.T(lang, "applicationApprovedUser", lineButtonLabel(line)), nil)
	if user.LanguageCode() != "" {
		return
	}
	o.slots.Set(UserNamespace, user.ID, AwaitingLanguageChoice{})
	o.notifyBestEffort(ctx, user.ID, o.catalog.T(lang, "languagePrompt"), languageKeyboard())
}

func (o *Orchestrator) listApplications(ctx context.Context, actor int64) error {
	pending := o.store.ListPendingApplications()
	if len(pending) == 0 {
		return o.say(ctx, actor, "pendingApplicationsEmpty")
	}
	lines := []string{o.t("pendingApplicationsList")}
	rows := make([][]Button, 0, len(pending))
	for _, app := range pending {
		label := fmt.Sprintf("ID: %d", app.UserID)
		if u := o.store.FindUser(app.UserID); u != nil {
			label = userLabel(u)
		}
		lines = append(lines, fmt.Sprintf("• %s: %s", app.ID, label))
		rows = append(rows, row(
			btn(o.t("applicationDecline"), "application", "decline", app.ID),
			btn(o.t("applicationConfirm"), "application", "confirm", app.ID),
		))
	}
	_, err := o.reply(ctx, actor, strings.Join(lines, "\n"), inline(rows...))
	return err
}

// Lines.

func (o *Orchestrator) listLines(ctx context.Context, actor int64) error {
	lines := o.store.ListLines()
	if len(lines) == 0 {
		return o.say(ctx, actor, "linesListEmpty")
	}
	items := make([]string, 0, len(lines))
	for _, l := range lines {
		group := "—"
		if l.GroupID != nil {
			group = strconv.FormatInt(*l.GroupID, 10)
		}
		items = append(items, o.t("lineListItem", l.DisplayName(), l.ID, len(l.UserIDs), group))
	}
	_, err := o.reply(ctx, actor, strings.Join(items, "\n"), nil)
	return err
}

func (o *Orchestrator) createLine(ctx context.Context, actor int64, text string) error {
	id, title, err := parseLineCreation(text)
	if err != nil {
		return err
	}
	line, err := o.store.CreateLine(ctx, id, title)
	if err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	o.publish(ctx, events.EventLineCreated, actor, line.ID, nil)
	return o.say(ctx, actor, "lineCreated", lineButtonLabel(line))
}

func (o *Orchestrator) attachUser(ctx context.Context, actor int64, text string) error {
	userID, lineID, err := parseUserLine(text)
	if err != nil {
		return err
	}
	user, line, err := o.store.AttachAndActivate(ctx, userID, lineID)
	if err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	o.publish(ctx, events.EventUserLineChanged, actor, line.ID, events.UserLineChangedPayload{
		UserID:   user.ID,
		LineID:   line.ID,
		Attached: true,
	})
	o.welcomeToLine(ctx, user, line)
	return o.say(ctx, actor, "attachedUser", userLabel(user), lineButtonLabel(line))
}

func (o *Orchestrator) detachUser(ctx context.Context, actor int64, text string) error {
	userID, lineID, err := parseUserLine(text)
	if err != nil {
		return err
	}
	if err := o.store.DetachUserFromLine(ctx, userID, lineID); err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	o.publish(ctx, events.EventUserLineChanged, actor, lineID, events.UserLineChangedPayload{
		UserID: userID,
		LineID: lineID,
	})
	return o.say(ctx, actor, "detachedUser", userID, lineID)
}

func (o *Orchestrator) bindLineGroup(ctx context.Context, actor int64, text string, forwarded *int64) error {
	lineID, chatID, err := parseLineGroup(text, forwarded)
	if err != nil {
		return err
	}
	line, err := o.store.SetLineGroup(ctx, lineID, &chatID)
	if err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	o.publish(ctx, events.EventLineGroupChanged, actor, line.ID, nil)
	return o.say(ctx, actor, "lineGroupSet", lineButtonLabel(line), chatID)
}

// Users.

// usersButton handles the admin:users:* subtree.
func (o *Orchestrator) usersButton(ctx context.Context, actor int64, a Action) (bool, error) {
	if len(a.Segments) < 2 || a.Segments[1] != "users" {
		return false, nil
	}
	switch {
	case a.Is("admin", "users", "menu"):
		return true, o.editLast(ctx, actor, o.t("usersMenu"), o.usersMenu())
	case a.Is("admin", "users", "list"):
		return true, o.renderUsersPage(ctx, actor, 0)
	case a.Is("admin", "users", "ban"):
		return true, o.prompt(ctx, actor, AwaitingBanTarget{}, "banPrompt")
	case a.Is("admin", "users", "mute"):
		return true, o.prompt(ctx, actor, AwaitingMuteTarget{}, "mutePrompt")
	case a.Is("admin", "users", "unmute"):
		return true, o.prompt(ctx, actor, AwaitingMuteTarget{}, "unmutePrompt")
	}

	if args, ok := a.Match(1, "admin", "users", "page"); ok {
		page, err := parsePage(args[0])
		if err != nil {
			return true, err
		}
		return true, o.renderUsersPage(ctx, actor, page)
	}
	if args, ok := a.Match(2, "admin", "users", "view"); ok {
		userID, page, err := parseUserPage(args[0], args[1])
		if err != nil {
			return true, err
		}
		return true, o.renderUserDetails(ctx, actor, userID, page, "")
	}
	if args, ok := a.Match(3, "admin", "users", "status"); ok {
		status := domain.UserStatus(args[0])
		if status != domain.UserStatusActive && status != domain.UserStatusBanned {
			return true, apperrors.NewInvalidInput("status")
		}
		userID, page, err := parseUserPage(args[1], args[2])
		if err != nil {
			return true, err
		}
		return true, o.changeUserStatus(ctx, actor, userID, status, page)
	}
	if args, ok := a.Match(3, "admin", "users", "mute"); ok {
		hours, err := strconv.Atoi(args[0])
		if err != nil || hours <= 0 || !validMuteHours(float64(hours)) {
			return true, apperrors.NewInvalidInput("hours")
		}
		userID, page, err := parseUserPage(args[1], args[2])
		if err != nil {
			return true, err
		}
		return true, o.applyMute(ctx, actor, userID, float64(hours), page)
	}
	if args, ok := a.Match(2, "admin", "users", "unmute"); ok {
		userID, page, err := parseUserPage(args[0], args[1])
		if err != nil {
			return true, err
		}
		return true, o.applyMute(ctx, actor, userID, 0, page)
	}
	return true, apperrors.NewInvalidInput("action")
}

func parsePage(raw string) (int, error) {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0, apperrors.NewInvalidInput("page")
	}
	return page, nil
}

func parseUserPage(rawUser, rawPage string) (int64, int, error) {
	userID, err := parseUserID(rawUser)
	if err != nil {
		return 0, 0, err
	}
	page, err := parsePage(rawPage)
	if err != nil {
		return 0, 0, err
	}
	return userID, page, nil
}

// sortedUsers orders users by most recent activity.
func (o *Orchestrator) sortedUsers() []domain.User {
	users := o.store.ListUsers()
	sort.SliceStable(users, func(i, j int) bool {
		if !users[i].UpdatedAt.Equal(users[j].UpdatedAt) {
			return users[i].UpdatedAt.After(users[j].UpdatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users
}

func (o *Orchestrator) renderUsersPage(ctx context.Context, actor int64, page int) error {
	users := o.sortedUsers()
	if len(users) == 0 {
		return o.say(ctx, actor, "usersListEmpty")
	}
	totalPages := (len(users) + usersPageSize - 1) / usersPageSize
	if page >= totalPages {
		page = totalPages - 1
	}
	start := page * usersPageSize
	end := start + usersPageSize
	if end > len(users) {
		end = len(users)
	}

	counts := map[domain.UserStatus]int{}
	for _, u := range users {
		counts[u.Status]++
	}

	rows := make([][]Button, 0, usersPageSize+2)
	for i := start; i < end; i++ {
		u := &users[i]
		rows = append(rows, row(btn(fmt.Sprintf("%s • %d", userButtonLabel(u), u.ID),
			"admin", "users", "view", strconv.FormatInt(u.ID, 10), strconv.Itoa(page))))
	}
	nav := []Button{}
	if page > 0 {
		nav = append(nav, btn(o.t("usersPrev"), "admin", "users", "page", strconv.Itoa(page-1)))
	}
	if page < totalPages-1 {
		nav = append(nav, btn(o.t("usersNext"), "admin", "users", "page", strconv.Itoa(page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, row(btn(o.t("backButton"), "admin", "users", "menu")))

	text := o.t("usersPage", page+1, totalPages, len(users),
		counts[domain.UserStatusActive], counts[domain.UserStatusPending], counts[domain.UserStatusBanned])
	return o.editLast(ctx, actor, text, inline(rows...))
}

func (o *Orchestrator) renderUserDetails(ctx context.Context, actor int64, userID int64, page int, note string) error {
	user, err := o.store.GetUser(userID)
	if err != nil {
		return err
	}
	mute, err := o.store.EnsureMuteExpiry(ctx, userID)
	if err != nil {
		return err
	}

	lang := "—"
	if code := user.LanguageCode(); code != "" {
		lang = languageNames[code]
	}
	lineNames := make([]string, 0, len(user.LineIDs))
	for _, id := range user.LineIDs {
		if l, err := o.store.GetLine(id); err == nil {
			lineNames = append(lineNames, l.DisplayName())
		} else {
			lineNames = append(lineNames, id)
		}
	}
	linesText := "—"
	if len(lineNames) > 0 {
		linesText = strings.Join(lineNames, ", ")
	}
	muteText := "—"
	if mute.Muted {
		muteText = o.formatTime(mute.Until)
	}

	text := o.t("userDetails", userLabel(user), o.statusLabel(user.Status), lang, muteText, linesText)
	if note != "" {
		text = note + "\n\n" + text
	}
	return o.editLast(ctx, actor, text, o.userDetailsKeyboard(user, page))
}

func (o *Orchestrator) userDetailsKeyboard(u *domain.User, page int) *Keyboard {
	id := strconv.FormatInt(u.ID, 10)
	p := strconv.Itoa(page)
	activate := o.t("userActivate")
	if u.Status == domain.UserStatusActive {
		activate = "✅ " + o.t("statusActive")
	}
	ban := o.t("userBanButton")
	if u.Status == domain.UserStatusBanned {
		ban = "⛔️ " + o.t("statusBanned")
	}
	muteRow := make([]Button, 0, len(muteHourOptions))
	for _, h := range muteHourOptions {
		muteRow = append(muteRow, btn(o.t("userMuteHours", h), "admin", "users", "mute", strconv.Itoa(h), id, p))
	}
	return inline(
		row(
			btn(activate, "admin", "users", "status", string(domain.UserStatusActive), id, p),
			btn(ban, "admin", "users", "status", string(domain.UserStatusBanned), id, p),
		),
		muteRow,
		row(btn(o.t("usersUnmute"), "admin", "users", "unmute", id, p)),
		row(btn(o.t("usersToList"), "admin", "users", "page", p)),
	)
}

func (o *Orchestrator) changeUserStatus(ctx context.Context, actor, userID int64, status domain.UserStatus, page int) error {
	user, err := o.store.GetUser(userID)
	if err != nil {
		return err
	}
	if user.Status == status {
		return o.renderUserDetails(ctx, actor, userID, page, o.t("adminUsersStatusUnchanged"))
	}
	if _, err := o.store.SetUserStatus(ctx, userID, status); err != nil {
		return err
	}
	o.publish(ctx, events.EventUserStatusChanged, actor, strconv.FormatInt(userID, 10), events.UserStatusChangedPayload{
		UserID:    userID,
		NewStatus: string(status),
	})
	return o.renderUserDetails(ctx, actor, userID, page, o.t("adminUsersStatusUpdated"))
}

func (o *Orchestrator) applyMute(ctx context.Context, actor, userID int64, hours float64, page int) error {
	user, err := o.setMute(ctx, actor, userID, hours)
	if err != nil {
		return err
	}
	return o.renderUserDetails(ctx, actor, user.ID, page, o.t("adminUsersStatusUpdated"))
}

// setMute mutes for hours from now; zero hours lifts the mute.
func (o *Orchestrator) setMute(ctx context.Context, actor, userID int64, hours float64) (*domain.User, error) {
	var until *time.Time
	if hours > 0 {
		t := o.now().Add(time.Duration(hours * float64(time.Hour)))
		until = &t
	}
	user, err := o.store.SetUserMute(ctx, userID, until)
	if err != nil {
		return nil, err
	}
	o.publish(ctx, events.EventUserMuteChanged, actor, strconv.FormatInt(userID, 10), events.UserMuteChangedPayload{
		UserID:     userID,
		MutedUntil: user.MutedUntil,
	})
	return user, nil
}

func (o *Orchestrator) banUser(ctx context.Context, actor int64, text string) error {
	userID, err := parseUserID(text)
	if err != nil {
		return err
	}
	if _, err := o.store.SetUserStatus(ctx, userID, domain.UserStatusBanned); err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	o.publish(ctx, events.EventUserStatusChanged, actor, strconv.FormatInt(userID, 10), events.UserStatusChangedPayload{
		UserID:    userID,
		NewStatus: string(domain.UserStatusBanned),
	})
	return o.say(ctx, actor, "bannedUser", userID)
}

func (o *Orchestrator) muteUser(ctx context.Context, actor int64, text string) error {
	userID, hours, err := parseMute(text)
	if err != nil {
		return err
	}
	if _, err := o.setMute(ctx, actor, userID, hours); err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	if hours == 0 {
		return o.say(ctx, actor, "muteRemoved", userID)
	}
	return o.say(ctx, actor, "muted", userID, strconv.FormatFloat(hours, 'f', -1, 64))
}

func (o *Orchestrator) statusLabel(status domain.UserStatus) string {
	switch status {
	case domain.UserStatusActive:
		return o.t("statusActive")
	case domain.UserStatusPending:
		return o.t("statusPending")
	case domain.UserStatusBanned:
		return o.t("statusBanned")
	case domain.UserStatusDeclined:
		return o.t("statusDeclined")
	}
	return string(status)
}

func userButtonLabel(u *domain.User) string {
	if name := u.UsernameValue(); name != "" {
		return "@" + name
	}
	if full := strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName)); full != "" {
		return full
	}
	return "ID"
}

// Reports.

func (o *Orchestrator) sendStats(ctx context.Context, actor int64) error {
	st := o.store.Stats()
	totalUsers := 0
	for _, n := range st.Users {
		totalUsers += n
	}
	totalComplaints := 0
	for _, n := range st.Complaints {
		totalComplaints += n
	}
	return o.say(ctx, actor, "stats",
		totalUsers,
		st.Users[domain.UserStatusActive],
		st.Users[domain.UserStatusBanned],
		st.Lines,
		st.PendingApplications,
		totalComplaints,
		st.Complaints[domain.ComplaintStatusNew],
		st.ColdProfiles,
	)
}

func (o *Orchestrator) sendSipStats(ctx context.Context, actor int64) error {
	stats := o.store.GetSipStatistics()
	if len(stats) == 0 {
		return o.say(ctx, actor, "sipStatsEmpty")
	}
	lines := []string{o.t("sipStatsHeader")}
	for _, s := range stats {
		sip := s.Sip
		if sip == "" {
			sip = "—"
		}
		lines = append(lines, o.t("sipStatsRow", s.LineID, sip, s.Total, s.Resolved, s.Cancelled))
	}
	_, err := o.reply(ctx, actor, strings.Join(lines, "\n"), nil)
	return err
}

// Stop-work and settings.

// currentDefaultStopWorkMessage is the stored default, else the configured one.
func (o *Orchestrator) currentDefaultStopWorkMessage() string {
	if m := o.store.GetSettings().DefaultStopWorkMessage; m != nil && *m != "" {
		return *m
	}
	return o.fallback
}

func (o *Orchestrator) stopWorkStatusText() string {
	settings := o.store.GetSettings()
	sw := settings.StopWork
	state := o.t("stopWorkOff")
	if sw.Active {
		state = o.t("stopWorkOn")
	}
	text := o.t("stopWorkStatus", state)
	if sw.Until != nil {
		text += o.t("stopWorkStatusUntil", o.formatTime(sw.Until))
	}
	message := o.currentDefaultStopWorkMessage()
	if sw.Message != nil && *sw.Message != "" {
		message = *sw.Message
	}
	return text + o.t("stopWorkStatusMessage", message)
}

func (o *Orchestrator) activateStopWork(ctx context.Context, actor int64, text string) error {
	until, message := parseStopWork(text, o.location)
	if until != nil && !until.After(o.now()) {
		return apperrors.NewInvalidInput("until")
	}
	if message == "" {
		message = o.currentDefaultStopWorkMessage()
	}
	sw, err := o.store.SetStopWork(ctx, true, until, message)
	if err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	o.publish(ctx, events.EventStopWorkChanged, actor, "settings", events.StopWorkChangedPayload{Active: true, Until: sw.Until})
	return o.say(ctx, actor, "stopWorkActivated")
}

func (o *Orchestrator) setDefaultStopWorkMessage(ctx context.Context, actor int64, text string) error {
	if text == "-" {
		text = ""
	}
	if err := o.store.SetDefaultStopWorkMessage(ctx, text); err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	return o.say(ctx, actor, "adminSettingsStopWorkMessageUpdated", o.currentDefaultStopWorkMessage())
}

func (o *Orchestrator) showSettings(ctx context.Context, actor int64) error {
	settings := o.store.GetSettings()
	sw := settings.StopWork
	state := o.t("stopWorkOff")
	if sw.Active {
		state = o.t("stopWorkOn")
	}
	return o.say(ctx, actor, "adminSettingsConfig",
		state,
		o.formatTime(sw.Until),
		orDash(sw.Message),
		o.currentDefaultStopWorkMessage(),
	)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "—"
	}
	return *s
}

// Cold profile bulk upload.

func (o *Orchestrator) sendColdBulkMenu(ctx context.Context, actor int64) error {
	lines := o.store.ListLines()
	if len(lines) == 0 {
		return o.say(ctx, actor, "linesListEmpty")
	}
	rows := make([][]Button, 0, len(lines)+1)
	for i := range lines {
		rows = append(rows, row(btn(lineButtonLabel(&lines[i]), "admin", "cold", "bulk", lines[i].ID)))
	}
	rows = append(rows, row(btn(o.t("backButton"), "admin", "back")))
	return o.editLast(ctx, actor, o.t("coldBulkChooseLine"), inline(rows...))
}

func (o *Orchestrator) importColdProfiles(ctx context.Context, actor int64, lineID, text string) error {
	result, err := o.store.UpsertColdProfiles(ctx, actor, lineID, parseColdBulk(text))
	if err != nil {
		return err
	}
	o.slots.Clear(OperatorNamespace, actor)
	o.publish(ctx, events.EventColdProfilesImported, actor, lineID, events.ColdProfilesImportedPayload{
		LineID:    lineID,
		Processed: result.Processed,
		Created:   result.Created,
		Updated:   result.Updated,
		Skipped:   result.Skipped,
	})
	return o.say(ctx, actor, "coldBulkResult", result.Processed, result.Created, result.Updated, result.Skipped)
}

// Complaint log.

// closeComplaint moves a complaint out of "new" once and annotates its log
// message with who did it.
func (o *Orchestrator) closeComplaint(ctx context.Context, e ButtonPress, id string, status domain.ComplaintStatus) error {
	actor := e.ActorID
	complaint, changed, err := o.store.UpdateComplaintStatus(ctx, id, status, actor)
	if err != nil {
		return err
	}
	if !changed {
		return o.say(ctx, actor, "complaintLogStatusAlreadySet")
	}
	o.publish(ctx, events.EventComplaintStatusChanged, actor, complaint.ID, events.ComplaintStatusChangedPayload{
		NewStatus: string(complaint.Status),
	})

	if complaint.Log != nil {
		user := o.store.FindUser(complaint.UserID)
		if user == nil {
			user = &domain.User{ID: complaint.UserID}
		}
		line, err := o.store.GetLine(complaint.LineID)
		if err != nil {
			line = &domain.Line{ID: complaint.LineID}
		}
		noteKey := "complaintLogResolvedNote"
		if status == domain.ComplaintStatusCancelled {
			noteKey = "complaintLogCancelledNote"
		}
		text := o.complaintLogText(user, line, complaint) + "\n\n" + o.t(noteKey, senderLabel(actor, e.From))
		if _, err := o.deliver(ctx, Intent{
			Kind:      IntentEditLast,
			ChatID:    complaint.Log.ChatID,
			MessageID: complaint.Log.MessageID,
			Text:      text,
		}); err != nil {
			o.logger.Warn("complaint log edit failed", zap.String("complaint_id", complaint.ID), zap.Error(err))
		}
	}
	return o.say(ctx, actor, "complaintLogStatusUpdated")
}

// Menus.

func (o *Orchestrator) adminMenu() *Keyboard {
	return inline(
		row(btn(o.t("adminApplications"), "admin", "applications", "list")),
		row(btn(o.t("adminLines"), "admin", "lines", "menu")),
		row(btn(o.t("adminUsers"), "admin", "users", "menu")),
		row(btn(o.t("adminStats"), "admin", "stats"), btn(o.t("adminSipStats"), "admin", "sipstats")),
		row(btn(o.t("adminStopWork"), "admin", "stopwork", "menu")),
		row(btn(o.t("adminSettings"), "admin", "settings")),
		row(btn(o.t("adminCold"), "admin", "cold", "menu")),
	)
}

func (o *Orchestrator) linesMenu() *Keyboard {
	return inline(
		row(btn(o.t("linesCreate"), "admin", "lines", "create")),
		row(btn(o.t("linesList"), "admin", "lines", "list")),
		row(btn(o.t("linesAttach"), "admin", "lines", "attachUser")),
		row(btn(o.t("linesDetach"), "admin", "lines", "detachUser")),
		row(btn(o.t("linesSetGroup"), "admin", "lines", "setGroup")),
		row(btn(o.t("backButton"), "admin", "back")),
	)
}

func (o *Orchestrator) usersMenu() *Keyboard {
	return inline(
		row(btn(o.t("usersList"), "admin", "users", "list")),
		row(btn(o.t("usersBan"), "admin", "users", "ban")),
		row(btn(o.t("usersMute"), "admin", "users", "mute"), btn(o.t("usersUnmute"), "admin", "users", "unmute")),
		row(btn(o.t("backButton"), "admin", "back")),
	)
}

func (o *Orchestrator) stopWorkMenu() *Keyboard {
	return inline(
		row(btn(o.t("stopWorkEnable"), "admin", "stopwork", "enable"), btn(o.t("stopWorkDisable"), "admin", "stopwork", "disable")),
		row(btn(o.t("backButton"), "admin", "back")),
	)
}

func (o *Orchestrator) adminSettingsMenu() *Keyboard {
	return inline(
		row(btn(o.t("adminSettingsStopWorkMessageButton"), "admin", "settings", "stopworkMessage")),
		row(btn(o.t("adminSettingsShowConfigButton"), "admin", "settings", "show")),
		row(btn(o.t("backButton"), "admin", "back")),
	)
}
