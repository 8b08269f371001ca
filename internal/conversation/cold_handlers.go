package conversation

import (
	"context"
	"strings"
	"unicode"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/numbering"
	"github.com/spec-kit/helpdesk-bot/internal/policy"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// newProfileKey stands in for the profile id while a profile is being created.
const newProfileKey = "new"

func profileKey(profileID string) string {
	if profileID == "" {
		return newProfileKey
	}
	return profileID
}

func (o *Orchestrator) coldButton(ctx context.Context, user *domain.User, lang string, a Action) error {
	if a.Is("cold", "menu") {
		o.slots.Clear(UserNamespace, user.ID)
		return o.sendColdMenu(ctx, user, lang, true)
	}
	if a.Is("cold", "new") {
		return o.startColdLine(ctx, user, lang, "")
	}
	if a.Is("cold", "cancel") {
		o.slots.Clear(UserNamespace, user.ID)
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "cancelled"), o.mainKeyboard(lang))
		return err
	}
	if args, ok := a.Match(1, "cold", "edit"); ok {
		profile, err := o.ownColdProfile(user.ID, args[0])
		if err != nil {
			return err
		}
		return o.startColdLine(ctx, user, lang, profile.ID)
	}
	if args, ok := a.Match(1, "cold", "delete"); ok {
		if err := o.store.DeleteColdProfile(ctx, args[0], user.ID); err != nil {
			return err
		}
		o.publish(ctx, events.EventColdProfileDeleted, user.ID, args[0], nil)
		if err := o.editLast(ctx, user.ID, o.catalog.T(lang, "coldDeleted"), nil); err != nil {
			return err
		}
		return o.sendColdMenu(ctx, user, lang, false)
	}
	if args, ok := a.Match(2, "cold", "lineSelect"); ok {
		return o.chooseColdLine(ctx, user, lang, args[0], args[1])
	}
	if args, ok := a.Match(3, "cold", "sipSelect"); ok {
		return o.chooseColdSip(ctx, user, lang, args[0], args[1], args[2])
	}
	return apperrors.NewInvalidInput("action")
}

func (o *Orchestrator) coldText(ctx context.Context, user *domain.User, lang string, st State, text string) error {
	switch s := st.(type) {
	case AwaitingColdLineChoice:
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "lineReminder"), nil)
		return err
	case AwaitingColdSipChoice:
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "complaintSipReminder"),
			o.coldSipKeyboard(lang, profileKey(s.ProfileID), s.LineID, s.Options))
		return err
	case AwaitingColdSipManualInput:
		if !isDigits(text) {
			_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "coldSipInvalid"), nil)
			return err
		}
		o.slots.Set(UserNamespace, user.ID, AwaitingColdUsernameInput{ProfileID: s.ProfileID, LineID: s.LineID, Sip: text})
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "coldUsernamePrompt"), nil)
		return err
	case AwaitingColdUsernameInput:
		return o.saveColdProfile(ctx, user, lang, s, text)
	}
	return apperrors.NewInvalidInput("state")
}

func (o *Orchestrator) sendColdMenu(ctx context.Context, user *domain.User, lang string, edit bool) error {
	profiles := o.store.ListColdProfilesByOwner(user.ID)
	text := o.catalog.T(lang, "coldMenuEmpty")
	rows := make([][]Button, 0, len(profiles)+1)
	if len(profiles) > 0 {
		lines := []string{o.catalog.T(lang, "coldMenu")}
		for _, p := range profiles {
			lines = append(lines, o.catalog.T(lang, "coldProfileLabel", p.Username, p.LineID, p.Sip))
			rows = append(rows, row(
				btn(o.catalog.T(lang, "coldEditButton", "@"+p.Username), "cold", "edit", p.ID),
				btn(o.catalog.T(lang, "coldDeleteButton", "@"+p.Username), "cold", "delete", p.ID),
			))
		}
		text = strings.Join(lines, "\n")
	}
	rows = append(rows, row(btn(o.catalog.T(lang, "coldNewButton"), "cold", "new")))

	if edit {
		return o.editLast(ctx, user.ID, text, inline(rows...))
	}
	_, err := o.reply(ctx, user.ID, text, inline(rows...))
	return err
}

// ownColdProfile hides profiles of other owners behind NotFound.
func (o *Orchestrator) ownColdProfile(ownerID int64, id string) (*domain.ColdProfile, error) {
	profile, err := o.store.GetColdProfile(id)
	if err != nil {
		return nil, err
	}
	if profile.OwnerID != ownerID {
		return nil, apperrors.NewNotFound("cold profile", id)
	}
	return profile, nil
}

func (o *Orchestrator) startColdLine(ctx context.Context, user *domain.User, lang, profileID string) error {
	lines := o.store.LinesForUser(user.ID)
	if len(lines) == 0 {
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "notLinked"), nil)
		return err
	}
	key := profileKey(profileID)
	rows := make([][]Button, 0, len(lines)+1)
	for i := range lines {
		rows = append(rows, row(btn(lineButtonLabel(&lines[i]), "cold", "lineSelect", key, lines[i].ID)))
	}
	rows = append(rows, row(btn(o.catalog.T(lang, "complaintCancelButton"), "cold", "cancel")))

	o.slots.Set(UserNamespace, user.ID, AwaitingColdLineChoice{ProfileID: profileID})
	return o.editLast(ctx, user.ID, o.catalog.T(lang, "coldChooseLine"), inline(rows...))
}

// resolveProfileKey turns a button's profile key back into an id, checking
// that an existing profile still belongs to the user.
func (o *Orchestrator) resolveProfileKey(ownerID int64, key string) (string, error) {
	if key == newProfileKey {
		return "", nil
	}
	profile, err := o.ownColdProfile(ownerID, key)
	if err != nil {
		return "", err
	}
	return profile.ID, nil
}

func (o *Orchestrator) coldLine(user *domain.User, lineID string) (*domain.Line, error) {
	if !policy.HasLineAccess(user, lineID, false) {
		return nil, apperrors.NewForbidden("no access to line " + lineID)
	}
	return o.store.GetLine(lineID)
}

func (o *Orchestrator) chooseColdLine(ctx context.Context, user *domain.User, lang, key, lineID string) error {
	profileID, err := o.resolveProfileKey(user.ID, key)
	if err != nil {
		return err
	}
	line, err := o.coldLine(user, lineID)
	if err != nil {
		return err
	}

	if options := numbering.LineOptions(line); len(options) > 0 {
		o.slots.Set(UserNamespace, user.ID, AwaitingColdSipChoice{ProfileID: profileID, LineID: line.ID, Options: options})
		return o.editLast(ctx, user.ID, o.catalog.T(lang, "coldChooseSip", lineLabel(line)),
			o.coldSipKeyboard(lang, key, line.ID, options))
	}
	o.slots.Set(UserNamespace, user.ID, AwaitingColdSipManualInput{ProfileID: profileID, LineID: line.ID})
	return o.editLast(ctx, user.ID, o.catalog.T(lang, "coldSipManual", lineLabel(line)), nil)
}

func (o *Orchestrator) chooseColdSip(ctx context.Context, user *domain.User, lang, key, lineID, sip string) error {
	profileID, err := o.resolveProfileKey(user.ID, key)
	if err != nil {
		return err
	}
	line, err := o.coldLine(user, lineID)
	if err != nil {
		return err
	}
	if !numbering.Contains(line, sip) {
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "complaintSipInvalid"), nil)
		return err
	}
	o.slots.Set(UserNamespace, user.ID, AwaitingColdUsernameInput{ProfileID: profileID, LineID: line.ID, Sip: sip})
	return o.editLast(ctx, user.ID, o.catalog.T(lang, "coldUsernamePrompt"), nil)
}

func (o *Orchestrator) saveColdProfile(ctx context.Context, user *domain.User, lang string, st AwaitingColdUsernameInput, text string) error {
	username := domain.NormalizeUsername(text)
	if !repository.ValidUsername(username) {
		_, err := o.reply(ctx, user.ID, o.catalog.T(lang, "coldUsernameInvalid"), nil)
		return err
	}
	profile, err := o.store.SaveColdProfileForOwner(ctx, user.ID, repository.ColdProfileInput{
		ProfileID: st.ProfileID,
		LineID:    st.LineID,
		Sip:       st.Sip,
		Username:  username,
	})
	if err != nil {
		return err
	}
	o.slots.Clear(UserNamespace, user.ID)
	o.publish(ctx, events.EventColdProfileSaved, user.ID, profile.ID, nil)

	lineName := profile.LineID
	if line, err := o.store.GetLine(profile.LineID); err == nil {
		lineName = lineLabel(line)
	}
	_, err = o.reply(ctx, user.ID, o.catalog.T(lang, "coldSaved", profile.Username, lineName, profile.Sip), o.mainKeyboard(lang))
	return err
}

func (o *Orchestrator) coldSipKeyboard(lang, key, lineID string, options []string) *Keyboard {
	rows := [][]Button{}
	for _, chunk := range numbering.Rows(options, sipRowSize) {
		r := make([]Button, 0, len(chunk))
		for _, sip := range chunk {
			r = append(r, btn(sip, "cold", "sipSelect", key, lineID, sip))
		}
		rows = append(rows, r)
	}
	rows = append(rows, row(btn(o.catalog.T(lang, "complaintCancelButton"), "cold", "cancel")))
	return inline(rows...)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
