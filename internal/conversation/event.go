package conversation

import (
	"net/url"
	"strings"

	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// Sender is what the platform reports about the actor.
type Sender struct {
	Username  string
	FirstName string
	LastName  string
}

// Event is an inbound TextMessage or ButtonPress.
type Event interface {
	Actor() int64
	Kind() string
}

// TextMessage is free text typed by the actor.
type TextMessage struct {
	ActorID             int64
	Text                string
	From                Sender
	ForwardedFromChatID *int64
}

// ButtonPress carries the action id attached to a pressed button.
type ButtonPress struct {
	ActorID  int64
	ActionID string
	From     Sender
}

func (e TextMessage) Actor() int64 { return e.ActorID }
func (e TextMessage) Kind() string { return "text" }
func (e ButtonPress) Actor() int64 { return e.ActorID }
func (e ButtonPress) Kind() string { return "button" }

// Action is a parsed, unescaped action id.
type Action struct {
	Segments []string
}

// ParseAction splits a colon-delimited action id and unescapes each segment.
func ParseAction(id string) (Action, error) {
	if strings.TrimSpace(id) == "" {
		return Action{}, apperrors.NewInvalidInput("action")
	}
	parts := strings.Split(id, ":")
	out := make([]string, len(parts))
	for i, p := range parts {
		v, err := url.QueryUnescape(p)
		if err != nil {
			return Action{}, apperrors.NewInvalidInput("action")
		}
		out[i] = v
	}
	return Action{Segments: out}, nil
}

// Match reports whether the action starts with prefix and has exactly
// nargs further segments, which it returns.
func (a Action) Match(nargs int, prefix ...string) ([]string, bool) {
	if len(a.Segments) != len(prefix)+nargs {
		return nil, false
	}
	for i, p := range prefix {
		if a.Segments[i] != p {
			return nil, false
		}
	}
	return a.Segments[len(prefix):], true
}

// Is reports an exact match with no arguments.
func (a Action) Is(prefix ...string) bool {
	_, ok := a.Match(0, prefix...)
	return ok
}

// EncodeAction joins segments into an action id, escaping each one.
func EncodeAction(segments ...string) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = url.QueryEscape(s)
	}
	return strings.Join(parts, ":")
}
