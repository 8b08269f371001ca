package domain

import "time"

// StopWork is the global switch suspending non-operator interaction.
type StopWork struct {
	Active  bool       `json:"active"`
	Until   *time.Time `json:"until"`
	Message *string    `json:"message"`
}

// Settings is the singleton configuration record.
type Settings struct {
	StopWork               StopWork `json:"stopWork"`
	DefaultStopWorkMessage *string  `json:"defaultStopWorkMessage"`
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.StopWork.Until = cloneTime(s.StopWork.Until)
	s.StopWork.Message = cloneString(s.StopWork.Message)
	s.DefaultStopWorkMessage = cloneString(s.DefaultStopWorkMessage)
	return s
}
