package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-bot/internal/conversation"
	"github.com/spec-kit/helpdesk-bot/internal/events"
)

// Inbound event types.
const (
	EventTypeText   = "text"
	EventTypeButton = "button"
)

// SenderDTO is the platform profile of the actor.
type SenderDTO struct {
	Username  string `json:"username" validate:"max=64"`
	FirstName string `json:"firstName" validate:"max=256"`
	LastName  string `json:"lastName" validate:"max=256"`
}

// InboundEventRequest payload posted by the messaging gateway.
type InboundEventRequest struct {
	Type                string    `json:"type" validate:"required,oneof=text button"`
	ActorID             int64     `json:"actorId" validate:"required,gt=0"`
	Text                string    `json:"text" validate:"max=4096"`
	Data                string    `json:"data" validate:"required_if=Type button,max=512"`
	From                SenderDTO `json:"from"`
	ForwardedFromChatID *int64    `json:"forwardedFromChatId"`
}

// ToEvent converts the payload into a conversation event.
func (r InboundEventRequest) ToEvent() conversation.Event {
	from := conversation.Sender{
		Username:  strings.TrimPrefix(strings.TrimSpace(r.From.Username), "@"),
		FirstName: strings.TrimSpace(r.From.FirstName),
		LastName:  strings.TrimSpace(r.From.LastName),
	}
	if r.Type == EventTypeButton {
		return conversation.ButtonPress{ActorID: r.ActorID, ActionID: r.Data, From: from}
	}
	return conversation.TextMessage{
		ActorID:             r.ActorID,
		Text:                strings.TrimSpace(r.Text),
		From:                from,
		ForwardedFromChatID: r.ForwardedFromChatID,
	}
}

// AcceptedResponse acknowledges a queued event.
type AcceptedResponse struct {
	Accepted bool `json:"accepted"`
}

// AuditEventResponse is one entry of the audit trail.
type AuditEventResponse struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	ActorID   int64       `json:"actorId"`
	Subject   string      `json:"subject,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewAuditEventResponse maps a domain event.
func NewAuditEventResponse(e events.Event) AuditEventResponse {
	return AuditEventResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		ActorID:   e.ActorID,
		Subject:   e.Subject,
		Timestamp: e.Timestamp,
		Payload:   e.Payload,
	}
}
