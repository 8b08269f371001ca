package conversation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/numbering"
	"github.com/spec-kit/helpdesk-bot/internal/policy"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

const sipRowSize = 3

type menuEntry int

const (
	menuNone menuEntry = iota
	menuComplaint
	menuSettings
	menuCold
)

func (o *Orchestrator) handleUser(ctx context.Context, ev Event) error {
	var (
		action Action
		text   string
		from   Sender
	)
	switch e := ev.(type) {
	case ButtonPress:
		a, err := ParseAction(e.ActionID)
		if err != nil {
			return err
		}
		action, from = a, e.From
		if operatorOnly(action) {
			_, err := o.reply(ctx, e.ActorID, o.catalog.T(operatorLanguage, "complaintLogNoAccess"), nil)
			return err
		}
	case TextMessage:
		text, from = strings.TrimSpace(e.Text), e.From
		if isCommand(text, "/start") {
			return o.handleStart(ctx, e.ActorID, from)
		}
	default:
		return apperrors.NewInvalidInput("event")
	}

	actor := ev.Actor()
	user := o.store.FindUser(actor)
	if user == nil {
		o.slots.Clear(UserNamespace, actor)
		_, err := o.reply(ctx, actor, o.catalog.T(operatorLanguage, "userNotFound"), nil)
		return err
	}

	decision, err := o.evaluateGates(ctx, user)
	if err != nil {
		return err
	}
	if !decision.Allowed() {
		o.metrics.RecordGate(string(decision.Gate))
	}
	switch decision.Gate {
	case policy.GateBanned, policy.GateStopWork:
		return o.replyGate(ctx, user, decision)
	}
	if args, ok := action.Match(1, "language"); ok {
		return o.chooseLanguage(ctx, user, args[0])
	}
	if !decision.Allowed() {
		return o.replyGate(ctx, user, decision)
	}

	lang := userLanguage(user)
	if ev.Kind() == "button" {
		return o.userButton(ctx, user, lang, action)
	}
	return o.userText(ctx, user, lang, text)
}

func operatorOnly(a Action) bool {
	if len(a.Segments) == 0 {
		return false
	}
	switch a.Segments[0] {
	case "admin", "application", "complaintLog":
		return true
	}
	return false
}

// replyGate renders the notice for the gate that stopped the event.
func (o *Orchestrator) replyGate(ctx context.Context, user *domain.User, d policy.Decision) error {
	lang := userLanguage(user)
	var err error
	switch d.Gate {
	case policy.GateBanned:
		o.slots.Clear(UserNamespace, user.ID)
		_, err = o.reply(ctx, user.ID, o.catalog.T(lang, "banned"), nil)
	case policy.GateStopWork:
		o.slots.Clear(UserNamespace, user.ID)
		_, err = o.reply(ctx, user.ID, o.stopWorkText(lang, d.StopWork), nil)
	case policy.GateNotActive:
		key := "notActive"
		if d.Status == domain.UserStatusDeclined {
			key = "declined"
		}
		_, err = o.reply(ctx, user.ID, o.catalog.T(lang, key), nil)
	case policy.GateLanguage:
		if _, waiting := o.slots.Get(UserNamespace, user.ID).(AwaitingLanguageChoice); waiting {
			return o.promptLanguageReminder(ctx, user.ID, lang)
		}
		err = o.promptLanguage(ctx, user.ID, lang)
	case policy.GateMuted:
		_, err = o.reply(ctx, user.ID, o.catalog.T(lang, "muteActive", o.formatTime(d.MutedUntil)), nil)
	}
	return err
}

func (o *Orchestrator) stopWorkText(lang string, notice policy.StopWorkNotice) string {
	text := o.catalog.T(lang, "stopWork", notice.Message)
	if notice.Until != nil {
		text += o.catalog.T(lang, "stopWorkUntil", o.formatTime(notice.Until))
	}
	return text
}

// handleStart is first contact: it registers the account, files an
// application for inactive users and shows the main menu otherwise.
func (o *Orchestrator) handleStart(ctx context.Context, actor int64, from Sender) error {
	o.slots.Clear(UserNamespace, actor)
	known := o.store.FindUser(actor) != nil

	user, err := o.store.UpsertUser(ctx, identityOf(actor, from))
	if err != nil {
		return err
	}
	if !known {
		o.publish(ctx, events.EventUserRegistered, actor, user.UsernameValue(), nil)
	}

	decision, err := o.evaluateGates(ctx, user)
	if err != nil {
		return err
	}
	lang := userLanguage(user)
	switch decision.Gate {
	case policy.GateBanned, policy.GateStopWork, policy.GateLanguage, policy.GateMuted:
		o.metrics.RecordGate(string(decision.Gate))
		return o.replyGate(ctx, user, decision)
	case policy.GateNotActive:
		o.metrics.RecordGate(string(decision.Gate))
		return o.apply(ctx, user, lang)
	}
	return o.sendMainMenu(ctx, user.ID, lang)
}

func (o *Orchestrator) apply(ctx context.Context, user *domain.User, lang string) error {
	app, created, err := o.store.CreateApplication(ctx, user.ID)
	if err != nil {
		return err
	}
	if !created {
		_, err = o.reply(ctx, user.ID, o.catalog.T(lang, "alreadyPending"), nil)
		return err
	}
	o.publish(ctx, events.EventApplicationCreated, user.ID, app.ID, nil)
	if _, err := o.reply(ctx, user.ID, o.catalog.T(lang, "pendingApplied"), nil); err != nil {
		return err
	}

	text := o.catalog.T(operatorLanguage, "newApplication", userLabel(user), app.ID)
	kb := inline(row(
		btn(o.catalog.T(operatorLanguage, "applicationDecline"), "application", "decline", app.ID),
		btn(o.catalog.T(operatorLanguage, "applicationConfirm"), "application", "confirm", app.ID),
	))
	for _, op := range o.operatorIDs {
		o.notifyBestEffort(ctx, op, text, kb)
	}
	return nil
}

func (o *Orchestrator) userButton(ctx context.Context, user *domain.User, lang string, a Action) error {
	if _, waiting := o.slots.Get(UserNamespace, user.ID).(AwaitingLanguageChoice); waiting {
		return o.promptLanguageReminder(ctx, user.ID, lang)
	}
	if args, ok := a.Match(1, "complaint"); ok {
		return o.chooseComplaintLine(ctx, user, lang, args[0])
	}
	if args, ok := a.Match(2, "complaintSip"); ok {
		return o.chooseComplaintSip(ctx, user, lang, args[0], args[1])
	}
	if _, ok := a.Match(1, "complaintBack"); ok {
		o.slots.Clear(UserNamespace, user.ID)
		return o.sendComplaintLines(ctx, user, lang, true)
	}
	if len(a.Segments) > 0 && a.Segments[0] == "cold" {
		return o.coldButton(ctx, user, lang, a)
	}

	switch {
	case a.Is("complaintCancel"):
		return o.cancelComplaint(ctx, user.ID, lang)
	case a.Is("settings", "menu"):
		return o.editLast(ctx, user.ID, o.catalog.T(lang, "settingsPrompt"), o.settingsKeyboard(lang))
	case a.Is("settings", "language"):
		o.slots.Set(UserNamespace, user.ID, AwaitingLanguageChoice{})
		return o.editLast(ctx, user.ID, o.catalog.T(lang, "languagePrompt"), languageKeyboard())
	case a.Is("settings", "instructions"):
		return o.editLast(ctx, user.ID, o.catalog.T(lang, "settingsInstructions"),
			inline(row(btn(o.catalog.T(lang, "backButton"), "settings", "menu"))))
	}
	return apperrors.NewInvalidInput("action")
}

func (o *Orchestrator) userText(ctx context.Context, user *domain.User, lang, text string) error {
	st := o.slots.Get(UserNamespace, user.ID)
	if _, waiting := st.(AwaitingLanguageChoice); waiting {
		return o.promptLanguageReminder(ctx, user.ID, lang)
	}
	if isCommand(text, "/cancel") {
		return o.cancelComplaint(ctx, user.ID, lang)
	}
	if isCommand(text, "/cold") {
		o.slots.Clear(UserNamespace, user.ID)
		return o.sendColdMenu(ctx, user, lang, false)
	}

	switch o.matchMenu(text) {
	case menuComplaint:
		o.slots.Clear(UserNamespace, user.ID)
		return o.sendComplaintLines(ctx, user, lang, false)
	case menuSettings:
		o.slots.Clear(UserNamespace, user.ID)
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "settingsPrompt"), o.settingsKeyboard(lang))
		return err
	case menuCold:
		o.slots.Clear(UserNamespace, user.ID)
		return o.sendColdMenu(ctx, user, lang, false)
	}

	switch s := st.(type) {
	case AwaitingComplaintLineChoice:
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "lineReminder"), nil)
		return err
	case AwaitingComplaintSipChoice:
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "complaintSipReminder"), o.sipKeyboard(lang, s.LineID, s.Options))
		return err
	case AwaitingComplaintDescription:
		if strings.EqualFold(text, o.catalog.T(lang, "complaintCancelButton")) {
			return o.cancelComplaint(ctx, user.ID, lang)
		}
		return o.fileComplaint(ctx, user, lang, s, text)
	case AwaitingColdLineChoice, AwaitingColdSipChoice, AwaitingColdSipManualInput, AwaitingColdUsernameInput:
		return o.coldText(ctx, user, lang, st, text)
	}
	_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "menuReminder"), o.mainKeyboard(lang))
	return err
}

// matchMenu recognizes the persistent keyboard labels in any supported language.
func (o *Orchestrator) matchMenu(text string) menuEntry {
	for code := range languageNames {
		switch text {
		case o.catalog.T(code, "complaintButton"):
			return menuComplaint
		case o.catalog.T(code, "settingsButton"):
			return menuSettings
		case o.catalog.T(code, "coldButton"):
			return menuCold
		}
	}
	return menuNone
}

func (o *Orchestrator) chooseLanguage(ctx context.Context, user *domain.User, code string) error {
	code = strings.ToLower(code)
	if !domain.SupportedLanguage(code) {
		return apperrors.NewInvalidInput("language")
	}
	updated, err := o.store.SetUserLanguage(ctx, user.ID, code)
	if err != nil {
		return err
	}
	o.slots.Clear(UserNamespace, user.ID)
	if err := o.editLast(ctx, user.ID, o.catalog.T(code, "languageConfirmed", languageNames[code]), nil); err != nil {
		return err
	}
	if updated.Status != domain.UserStatusActive {
		return nil
	}
	return o.sendMainMenu(ctx, user.ID, code)
}

func (o *Orchestrator) promptLanguage(ctx context.Context, userID int64, lang string) error {
	o.slots.Set(UserNamespace, userID, AwaitingLanguageChoice{})
	_, err := o.reply(ctx, userID, o.catalog.T(lang, "languagePrompt"), languageKeyboard())
	return err
}

func (o *Orchestrator) promptLanguageReminder(ctx context.Context, userID int64, lang string) error {
	_, err := o.reply(ctx, userID, o.catalog.T(lang, "languageReminder"), languageKeyboard())
	return err
}

func (o *Orchestrator) sendMainMenu(ctx context.Context, userID int64, lang string) error {
	_, err := o.reply(ctx, userID, o.catalog.T(lang, "mainMenuPrompt"), o.mainKeyboard(lang))
	return err
}

func (o *Orchestrator) cancelComplaint(ctx context.Context, userID int64, lang string) error {
	o.slots.Clear(UserNamespace, userID)
	_, err := o.reply(ctx, userID, o.catalog.T(lang, "complaintCancelled"), o.mainKeyboard(lang))
	return err
}

func (o *Orchestrator) sendComplaintLines(ctx context.Context, user *domain.User, lang string, edit bool) error {
	lines := o.store.LinesForUser(user.ID)
	if len(lines) == 0 {
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "notLinked"), nil)
		return err
	}
	rows := make([][]Button, 0, len(lines)+1)
	for i := range lines {
		rows = append(rows, row(btn(lineButtonLabel(&lines[i]), "complaint", lines[i].ID)))
	}
	rows = append(rows, row(btn(o.catalog.T(lang, "complaintCancelButton"), "complaintCancel")))

	o.slots.Set(UserNamespace, user.ID, AwaitingComplaintLineChoice{})
	text := o.catalog.T(lang, "complaintPrompt")
	if edit {
		return o.editLast(ctx, user.ID, text, inline(rows...))
	}
	_, err := o.reply(ctx, user.ID, text, inline(rows...))
	return err
}

// complaintLine resolves a line the user is allowed to complain about.
// A vanished line clears the flow and is reported as missing.
func (o *Orchestrator) complaintLine(ctx context.Context, user *domain.User, lang, lineID string) (*domain.Line, error) {
	if !policy.HasLineAccess(user, lineID, false) {
		return nil, apperrors.NewForbidden("no access to line " + lineID)
	}
	line, err := o.store.GetLine(lineID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		o.slots.Clear(UserNamespace, user.ID)
		_, rerr := o.reply(ctx, user.ID, o.catalog.T(lang, "lineMissing"), nil)
		return nil, rerr
	}
	return line, err
}

func (o *Orchestrator) chooseComplaintLine(ctx context.Context, user *domain.User, lang, lineID string) error {
	line, err := o.complaintLine(ctx, user, lang, lineID)
	if err != nil || line == nil {
		return err
	}

	if profile := o.store.BoundColdProfile(user.ID, line.ID); profile != nil {
		o.slots.Set(UserNamespace, user.ID, AwaitingComplaintDescription{
			LineID:        line.ID,
			Sip:           profile.Sip,
			ColdProfileID: profile.ID,
		})
		return o.editLast(ctx, user.ID, o.catalog.T(lang, "complaintSipChosen", profile.Sip, lineLabel(line)), nil)
	}

	if options := numbering.LineOptions(line); len(options) > 0 {
		o.slots.Set(UserNamespace, user.ID, AwaitingComplaintSipChoice{LineID: line.ID, Options: options})
		return o.editLast(ctx, user.ID, o.catalog.T(lang, "complaintChooseSip", lineLabel(line)), o.sipKeyboard(lang, line.ID, options))
	}

	o.slots.Set(UserNamespace, user.ID, AwaitingComplaintDescription{LineID: line.ID})
	return o.editLast(ctx, user.ID, o.catalog.T(lang, "complaintLineChosen", lineLabel(line)), nil)
}

func (o *Orchestrator) chooseComplaintSip(ctx context.Context, user *domain.User, lang, lineID, sip string) error {
	line, err := o.complaintLine(ctx, user, lang, lineID)
	if err != nil || line == nil {
		return err
	}
	if !numbering.Contains(line, sip) {
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "complaintSipInvalid"), nil)
		return err
	}
	o.slots.Set(UserNamespace, user.ID, AwaitingComplaintDescription{LineID: line.ID, Sip: sip})
	return o.editLast(ctx, user.ID, o.catalog.T(lang, "complaintSipChosen", sip, lineLabel(line)), nil)
}

// fileComplaint stores the complaint and posts it to the line's log chat.
// When the post fails the stored complaint is removed again.
func (o *Orchestrator) fileComplaint(ctx context.Context, user *domain.User, lang string, st AwaitingComplaintDescription, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.NewInvalidInput("message")
	}
	line, err := o.store.GetLine(st.LineID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		o.slots.Clear(UserNamespace, user.ID)
		_, rerr := o.reply(ctx, user.ID, o.catalog.T(lang, "lineMissing"), nil)
		return rerr
	}
	if err != nil {
		return err
	}
	if line.GroupID == nil {
		o.slots.Clear(UserNamespace, user.ID)
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "lineNotConfigured"), nil)
		return err
	}

	complaint, err := o.store.CreateComplaint(ctx, repository.ComplaintInput{
		UserID:        user.ID,
		LineID:        line.ID,
		Sip:           st.Sip,
		Message:       text,
		ColdProfileID: st.ColdProfileID,
	})
	if err != nil {
		return err
	}

	ref, err := o.notify(ctx, *line.GroupID, o.complaintLogText(user, line, complaint), o.complaintLogKeyboard(complaint.ID))
	if err != nil {
		o.logger.Warn("complaint log delivery failed",
			zap.String("complaint_id", complaint.ID),
			zap.Int64("group_id", *line.GroupID),
			zap.Error(err),
		)
		if derr := o.store.DeleteComplaint(ctx, complaint.ID); derr != nil {
			o.logger.Error("complaint compensation failed", zap.String("complaint_id", complaint.ID), zap.Error(derr))
		}
		o.slots.Clear(UserNamespace, user.ID)
		_, rerr := o.reply(ctx, user.ID, o.catalog.T(lang, "complaintError"), o.mainKeyboard(lang))
		return rerr
	}

	loc := domain.LogLocation{ChatID: ref.ChatID, MessageID: ref.MessageID}
	if loc.ChatID == 0 {
		loc.ChatID = *line.GroupID
	}
	if err := o.store.SetComplaintLogInfo(ctx, complaint.ID, loc); err != nil {
		o.logger.Warn("complaint log location not stored", zap.String("complaint_id", complaint.ID), zap.Error(err))
	}

	o.slots.Clear(UserNamespace, user.ID)
	o.publish(ctx, events.EventComplaintCreated, user.ID, complaint.ID, events.ComplaintCreatedPayload{
		LineID: line.ID,
		Sip:    st.Sip,
		Cold:   st.ColdProfileID != "",
	})
	_, err = o.reply(ctx, user.ID, o.catalog.T(lang, "complaintSent"), o.mainKeyboard(lang))
	return err
}

func (o *Orchestrator) complaintLogText(user *domain.User, line *domain.Line, c *domain.Complaint) string {
	parts := []string{o.catalog.T(operatorLanguage, "complaintLogTitle", userLabel(user), lineButtonLabel(line))}
	if c.Sip != nil {
		parts = append(parts, o.catalog.T(operatorLanguage, "complaintLogSip", *c.Sip))
	}
	if c.ColdProfileID != nil {
		if profile, err := o.store.GetColdProfile(*c.ColdProfileID); err == nil {
			parts = append(parts, o.catalog.T(operatorLanguage, "complaintLogCold", profile.Username))
		}
	}
	parts = append(parts, "", o.catalog.T(operatorLanguage, "complaintLogMessageLabel"), c.Message)
	return strings.Join(parts, "\n")
}

func (o *Orchestrator) complaintLogKeyboard(complaintID string) *Keyboard {
	return inline(row(
		btn(o.catalog.T(operatorLanguage, "complaintLogResolveButton"), "complaintLog", "resolve", complaintID),
		btn(o.catalog.T(operatorLanguage, "complaintLogCancelButton"), "complaintLog", "cancel", complaintID),
	))
}

func (o *Orchestrator) mainKeyboard(lang string) *Keyboard {
	return &Keyboard{
		Persistent: true,
		Rows: [][]Button{
			{{Text: o.catalog.T(lang, "complaintButton")}},
			{{Text: o.catalog.T(lang, "settingsButton")}},
			{{Text: o.catalog.T(lang, "coldButton")}},
		},
	}
}

func (o *Orchestrator) settingsKeyboard(lang string) *Keyboard {
	return inline(
		row(btn(o.catalog.T(lang, "settingsChangeLanguageOption"), "settings", "language")),
		row(btn(o.catalog.T(lang, "settingsInstructionsOption"), "settings", "instructions")),
	)
}

func (o *Orchestrator) sipKeyboard(lang, lineID string, options []string) *Keyboard {
	rows := [][]Button{}
	for _, chunk := range numbering.Rows(options, sipRowSize) {
		r := make([]Button, 0, len(chunk))
		for _, sip := range chunk {
			r = append(r, btn(sip, "complaintSip", lineID, sip))
		}
		rows = append(rows, r)
	}
	rows = append(rows, row(
		btn(o.catalog.T(lang, "backButton"), "complaintBack", lineID),
		btn(o.catalog.T(lang, "complaintCancelButton"), "complaintCancel"),
	))
	return inline(rows...)
}

func languageKeyboard() *Keyboard {
	return inline(row(
		btn("🇷🇺 "+languageNames[domain.LanguageRU], "language", domain.LanguageRU),
		btn("🇬🇧 "+languageNames[domain.LanguageEN], "language", domain.LanguageEN),
	))
}

func lineButtonLabel(l *domain.Line) string {
	if l.Title == "" {
		return "📞 " + l.ID
	}
	return "📞 " + l.Title + " • #" + l.ID
}
