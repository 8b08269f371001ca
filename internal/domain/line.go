package domain

import "time"

// Line is a support channel complaints are filed against.
type Line struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	GroupID   *int64    `json:"groupId"`
	UserIDs   []int64   `json:"userIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName returns the title, falling back to the id.
func (l *Line) DisplayName() string {
	if l.Title != "" {
		return l.Title
	}
	return l.ID
}

// HasUser reports whether userID is a member of the line.
func (l *Line) HasUser(userID int64) bool {
	for _, id := range l.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (l Line) Clone() Line {
	l.UserIDs = append([]int64{}, l.UserIDs...)
	l.GroupID = cloneInt64(l.GroupID)
	return l
}
