package domain

import "time"

// ApplicationStatus enumerates moderation outcomes for a signup.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusDeclined ApplicationStatus = "declined"
)

// Application is a signup request awaiting operator moderation.
type Application struct {
	ID        string            `json:"id"`
	UserID    int64             `json:"userId"`
	Status    ApplicationStatus `json:"status"`
	LineID    *string           `json:"lineId"`
	Comment   *string           `json:"comment"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Clone returns a deep copy.
func (a Application) Clone() Application {
	a.LineID = cloneString(a.LineID)
	a.Comment = cloneString(a.Comment)
	return a
}
