package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusNew       ComplaintStatus = "new"
	ComplaintStatusResolved  ComplaintStatus = "resolved"
	ComplaintStatusCancelled ComplaintStatus = "cancelled"
)

// LogLocation points at the chat message a complaint was logged as.
type LogLocation struct {
	ChatID    int64 `json:"chatId"`
	MessageID int64 `json:"messageId"`
}

// Complaint is a problem report filed by a user against a line.
type Complaint struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"userId"`
	LineID        string          `json:"lineId"`
	Sip           *string         `json:"sip"`
	Message       string          `json:"message"`
	Status        ComplaintStatus `json:"status"`
	ColdProfileID *string         `json:"coldProfileId"`
	Log           *LogLocation    `json:"log"`
	ResolvedBy    *int64          `json:"resolvedBy"`
	ResolvedAt    *time.Time      `json:"resolvedAt"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy.
func (c Complaint) Clone() Complaint {
	c.Sip = cloneString(c.Sip)
	c.ColdProfileID = cloneString(c.ColdProfileID)
	c.ResolvedBy = cloneInt64(c.ResolvedBy)
	c.ResolvedAt = cloneTime(c.ResolvedAt)
	if c.Log != nil {
		loc := *c.Log
		c.Log = &loc
	}
	return c
}
