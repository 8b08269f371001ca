package conversation

import (
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-bot/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// maxMuteHours caps a single mute at one year.
const maxMuteHours = 24 * 365

// stopWorkLayouts are the accepted "until" formats, in the operator's zone.
var stopWorkLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04"}

// parseUserID reads a positive user id.
func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidInput("userId")
	}
	return id, nil
}

// parseUserLine reads "userId;lineId".
func parseUserLine(text string) (int64, string, error) {
	userPart, linePart, ok := strings.Cut(text, ";")
	if !ok {
		return 0, "", apperrors.NewInvalidInput("userId;lineId")
	}
	userID, err := parseUserID(userPart)
	if err != nil {
		return 0, "", err
	}
	lineID := strings.TrimSpace(linePart)
	if lineID == "" {
		return 0, "", apperrors.NewInvalidInput("lineId")
	}
	return userID, lineID, nil
}

// parseLineCreation reads "id;title"; the title is optional and may itself
// contain semicolons.
func parseLineCreation(text string) (string, string, error) {
	id, title, _ := strings.Cut(text, ";")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", apperrors.NewInvalidInput("lineId")
	}
	return id, strings.TrimSpace(title), nil
}

// parseLineGroup reads "lineId;chatId". Without a chat id the forwarded
// chat, if any, is used.
func parseLineGroup(text string, forwarded *int64) (string, int64, error) {
	lineID, chatPart, hasChat := strings.Cut(text, ";")
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return "", 0, apperrors.NewInvalidInput("lineId")
	}
	if hasChat && strings.TrimSpace(chatPart) != "" {
		chatID, err := strconv.ParseInt(strings.TrimSpace(chatPart), 10, 64)
		if err != nil || chatID == 0 {
			return "", 0, apperrors.NewInvalidInput("chatId")
		}
		return lineID, chatID, nil
	}
	if forwarded == nil || *forwarded == 0 {
		return "", 0, apperrors.NewInvalidInput("chatId")
	}
	return lineID, *forwarded, nil
}

// validMuteHours rejects negatives, NaN and anything past maxMuteHours.
func validMuteHours(hours float64) bool {
	return hours >= 0 && hours <= maxMuteHours
}

// parseMute reads "userId;hours". Zero hours means unmute.
func parseMute(text string) (int64, float64, error) {
	userPart, hoursPart, ok := strings.Cut(text, ";")
	if !ok {
		return 0, 0, apperrors.NewInvalidInput("userId;hours")
	}
	userID, err := parseUserID(userPart)
	if err != nil {
		return 0, 0, err
	}
	hours, err := strconv.ParseFloat(strings.TrimSpace(hoursPart), 64)
	if err != nil || !validMuteHours(hours) {
		return 0, 0, apperrors.NewInvalidInput("hours")
	}
	return userID, hours, nil
}

// parseStopWork reads "YYYY-MM-DD HH:MM;message". A prefix that is not a
// date makes the whole text the message. The message may come back empty.
func parseStopWork(text string, loc *time.Location) (*time.Time, string) {
	datePart, message, ok := strings.Cut(text, ";")
	if ok {
		for _, layout := range stopWorkLayouts {
			if until, err := time.ParseInLocation(layout, strings.TrimSpace(datePart), loc); err == nil {
				return &until, strings.TrimSpace(message)
			}
		}
	}
	return nil, strings.TrimSpace(text)
}

// parseColdBulk reads one "sip;username" pair per line. Blank lines are
// ignored; malformed ones are passed through for the store to drop.
func parseColdBulk(text string) []repository.ColdProfileEntry {
	entries := []repository.ColdProfileEntry{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sip, username, ok := strings.Cut(line, ";")
		if !ok {
			fields := strings.Fields(line)
			if len(fields) != 2 {
				entries = append(entries, repository.ColdProfileEntry{Username: line})
				continue
			}
			sip, username = fields[0], fields[1]
		}
		entries = append(entries, repository.ColdProfileEntry{
			Sip:      strings.TrimSpace(sip),
			Username: strings.TrimSpace(username),
		})
	}
	return entries
}
