package domain

// Snapshot is the whole persisted state, saved and loaded as one record.
type Snapshot struct {
	Settings     Settings      `json:"settings"`
	Lines        []Line        `json:"lines"`
	Users        []User        `json:"users"`
	Applications []Application `json:"applications"`
	ColdProfiles []ColdProfile `json:"coldProfiles"`
	Complaints   []Complaint   `json:"complaints"`
}

// Clone returns a deep copy so a transaction can mutate freely.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{Settings: s.Settings.Clone()}
	out.Lines = make([]Line, len(s.Lines))
	for i := range s.Lines {
		out.Lines[i] = s.Lines[i].Clone()
	}
	out.Users = make([]User, len(s.Users))
	for i := range s.Users {
		out.Users[i] = s.Users[i].Clone()
	}
	out.Applications = make([]Application, len(s.Applications))
	for i := range s.Applications {
		out.Applications[i] = s.Applications[i].Clone()
	}
	out.ColdProfiles = make([]ColdProfile, len(s.ColdProfiles))
	for i := range s.ColdProfiles {
		out.ColdProfiles[i] = s.ColdProfiles[i].Clone()
	}
	out.Complaints = make([]Complaint, len(s.Complaints))
	for i := range s.Complaints {
		out.Complaints[i] = s.Complaints[i].Clone()
	}
	return out
}

// Backfill applies schema defaults to fields an older snapshot may lack.
// It only adds; existing values are never rewritten.
func (s *Snapshot) Backfill() {
	if s.Lines == nil {
		s.Lines = []Line{}
	}
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Applications == nil {
		s.Applications = []Application{}
	}
	if s.ColdProfiles == nil {
		s.ColdProfiles = []ColdProfile{}
	}
	if s.Complaints == nil {
		s.Complaints = []Complaint{}
	}
	for i := range s.Lines {
		if s.Lines[i].UserIDs == nil {
			s.Lines[i].UserIDs = []int64{}
		}
	}
	for i := range s.Users {
		if s.Users[i].LineIDs == nil {
			s.Users[i].LineIDs = []string{}
		}
		if s.Users[i].Status == "" {
			s.Users[i].Status = UserStatusPending
		}
	}
	for i := range s.Applications {
		if s.Applications[i].Status == "" {
			s.Applications[i].Status = ApplicationStatusPending
		}
	}
	for i := range s.Complaints {
		if s.Complaints[i].Status == "" {
			s.Complaints[i].Status = ComplaintStatusNew
		}
	}
}
