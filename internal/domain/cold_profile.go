package domain

import (
	"strings"
	"time"
)

// ColdProfile is a pre-configured complaint identity tied to a line and
// sub-number, claimed later by the account with the matching username.
type ColdProfile struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	LineID    string    `json:"lineId"`
	Sip       string    `json:"sip"`
	Username  string    `json:"username"`
	UserID    *int64    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy.
func (p ColdProfile) Clone() ColdProfile {
	p.UserID = cloneInt64(p.UserID)
	return p
}

// NormalizeUsername lowercases and strips a leading "@".
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}
