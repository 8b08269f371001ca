package domain

import "time"

// UserStatus represents lifecycle states for an end-user.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusActive   UserStatus = "active"
	UserStatusBanned   UserStatus = "banned"
	UserStatusDeclined UserStatus = "declined"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusBanned, UserStatusDeclined:
		return true
	}
	return false
}

// Identity carries the display fields the chat platform reports for an actor.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// User is a chat account known to the bot. Users are never hard-deleted.
type User struct {
	ID         int64      `json:"id"`
	Username   *string    `json:"username"`
	FirstName  *string    `json:"firstName"`
	LastName   *string    `json:"lastName"`
	Status     UserStatus `json:"status"`
	LineIDs    []string   `json:"lineIds"`
	MutedUntil *time.Time `json:"mutedUntil"`
	Language   *string    `json:"language"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// HasLine reports whether the user is a member of lineID.
func (u *User) HasLine(lineID string) bool {
	for _, id := range u.LineIDs {
		if id == lineID {
			return true
		}
	}
	return false
}

// LanguageCode returns the stored language or "" when unset.
func (u *User) LanguageCode() string {
	if u == nil || u.Language == nil {
		return ""
	}
	return *u.Language
}

// UsernameValue returns the username without the pointer.
func (u *User) UsernameValue() string {
	if u == nil || u.Username == nil {
		return ""
	}
	return *u.Username
}

// Clone returns a deep copy.
func (u User) Clone() User {
	u.LineIDs = append([]string{}, u.LineIDs...)
	u.Username = cloneString(u.Username)
	u.FirstName = cloneString(u.FirstName)
	u.LastName = cloneString(u.LastName)
	u.Language = cloneString(u.Language)
	u.MutedUntil = cloneTime(u.MutedUntil)
	return u
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

// Supported interface languages.
const (
	LanguageRU = "ru"
	LanguageEN = "en"
)

// SupportedLanguage reports whether code is a language the bot can speak.
func SupportedLanguage(code string) bool {
	return code == LanguageRU || code == LanguageEN
}
