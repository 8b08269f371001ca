package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventApplicationCreated     EventType = "application_created"
	EventApplicationApproved    EventType = "application_approved"
	EventApplicationDeclined    EventType = "application_declined"
	EventUserStatusChanged      EventType = "user_status_changed"
	EventUserMuteChanged        EventType = "user_mute_changed"
	EventUserLineChanged        EventType = "user_line_changed"
	EventLineCreated            EventType = "line_created"
	EventLineGroupChanged       EventType = "line_group_changed"
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventStopWorkChanged        EventType = "stop_work_changed"
	EventColdProfileSaved       EventType = "cold_profile_saved"
	EventColdProfileDeleted     EventType = "cold_profile_deleted"
	EventColdProfilesImported   EventType = "cold_profiles_imported"
)

// AllTypes lists every event type, for subscribers that want them all.
var AllTypes = []EventType{
	EventUserRegistered,
	EventApplicationCreated,
	EventApplicationApproved,
	EventApplicationDeclined,
	EventUserStatusChanged,
	EventUserMuteChanged,
	EventUserLineChanged,
	EventLineCreated,
	EventLineGroupChanged,
	EventComplaintCreated,
	EventComplaintStatusChanged,
	EventStopWorkChanged,
	EventColdProfileSaved,
	EventColdProfileDeleted,
	EventColdProfilesImported,
}

// Event represents a domain event emitted by the conversation layer.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   int64       `json:"actor_id"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// ApplicationApprovedPayload payload.
type ApplicationApprovedPayload struct {
	UserID int64  `json:"user_id"`
	LineID string `json:"line_id"`
}

// UserStatusChangedPayload payload.
type UserStatusChangedPayload struct {
	UserID    int64  `json:"user_id"`
	NewStatus string `json:"new_status"`
}

// UserMuteChangedPayload payload.
type UserMuteChangedPayload struct {
	UserID     int64      `json:"user_id"`
	MutedUntil *time.Time `json:"muted_until,omitempty"`
}

// UserLineChangedPayload payload.
type UserLineChangedPayload struct {
	UserID   int64  `json:"user_id"`
	LineID   string `json:"line_id"`
	Attached bool   `json:"attached"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	LineID string `json:"line_id"`
	Sip    string `json:"sip,omitempty"`
	Cold   bool   `json:"cold"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	NewStatus string `json:"new_status"`
}

// StopWorkChangedPayload payload.
type StopWorkChangedPayload struct {
	Active bool       `json:"active"`
	Until  *time.Time `json:"until,omitempty"`
}

// ColdProfilesImportedPayload payload.
type ColdProfilesImportedPayload struct {
	LineID    string `json:"line_id"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
}
