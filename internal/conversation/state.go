package conversation

// State is a pending multi-step flow for one actor. The set of states is
// closed: only types in this file implement it. A nil State means idle.
type State interface {
	Name() string
	state()
}

// User namespace.

type AwaitingLanguageChoice struct{}

type AwaitingComplaintLineChoice struct{}

type AwaitingComplaintSipChoice struct {
	LineID  string
	Options []string
}

type AwaitingComplaintDescription struct {
	LineID        string
	Sip           string
	ColdProfileID string
}

// ProfileID is empty while a new cold profile is being created.
type AwaitingColdLineChoice struct {
	ProfileID string
}

type AwaitingColdSipChoice struct {
	ProfileID string
	LineID    string
	Options   []string
}

type AwaitingColdSipManualInput struct {
	ProfileID string
	LineID    string
}

type AwaitingColdUsernameInput struct {
	ProfileID string
	LineID    string
	Sip       string
}

// Operator namespace.

type AwaitingLineAssignment struct {
	ApplicationID string
	UserID        int64
}

type AwaitingLineCreation struct{}

type AwaitingUserLineAttach struct{}

type AwaitingUserLineDetach struct{}

type AwaitingLineGroupBinding struct{}

type AwaitingBanTarget struct{}

type AwaitingMuteTarget struct{}

type AwaitingStopWorkActivation struct{}

type AwaitingDefaultStopWorkMessage struct{}

type AwaitingColdBulkUpload struct {
	LineID string
}

func (AwaitingLanguageChoice) Name() string         { return "awaiting_language_choice" }
func (AwaitingComplaintLineChoice) Name() string    { return "awaiting_complaint_line_choice" }
func (AwaitingComplaintSipChoice) Name() string     { return "awaiting_complaint_sip_choice" }
func (AwaitingComplaintDescription) Name() string   { return "awaiting_complaint_description" }
func (AwaitingColdLineChoice) Name() string         { return "awaiting_cold_line_choice" }
func (AwaitingColdSipChoice) Name() string          { return "awaiting_cold_sip_choice" }
func (AwaitingColdSipManualInput) Name() string     { return "awaiting_cold_sip_manual_input" }
func (AwaitingColdUsernameInput) Name() string      { return "awaiting_cold_username_input" }
func (AwaitingLineAssignment) Name() string         { return "awaiting_line_assignment" }
func (AwaitingLineCreation) Name() string           { return "awaiting_line_creation" }
func (AwaitingUserLineAttach) Name() string         { return "awaiting_user_line_attach" }
func (AwaitingUserLineDetach) Name() string         { return "awaiting_user_line_detach" }
func (AwaitingLineGroupBinding) Name() string       { return "awaiting_line_group_binding" }
func (AwaitingBanTarget) Name() string              { return "awaiting_ban_target" }
func (AwaitingMuteTarget) Name() string             { return "awaiting_mute_target" }
func (AwaitingStopWorkActivation) Name() string     { return "awaiting_stop_work_activation" }
func (AwaitingDefaultStopWorkMessage) Name() string { return "awaiting_default_stop_work_message" }
func (AwaitingColdBulkUpload) Name() string         { return "awaiting_cold_bulk_upload" }

func (AwaitingLanguageChoice) state()         {}
func (AwaitingComplaintLineChoice) state()    {}
func (AwaitingComplaintSipChoice) state()     {}
func (AwaitingComplaintDescription) state()   {}
func (AwaitingColdLineChoice) state()         {}
func (AwaitingColdSipChoice) state()          {}
func (AwaitingColdSipManualInput) state()     {}
func (AwaitingColdUsernameInput) state()      {}
func (AwaitingLineAssignment) state()         {}
func (AwaitingLineCreation) state()           {}
func (AwaitingUserLineAttach) state()         {}
func (AwaitingUserLineDetach) state()         {}
func (AwaitingLineGroupBinding) state()       {}
func (AwaitingBanTarget) state()              {}
func (AwaitingMuteTarget) state()             {}
func (AwaitingStopWorkActivation) state()     {}
func (AwaitingDefaultStopWorkMessage) state() {}
func (AwaitingColdBulkUpload) state()         {}

// StateName returns "idle" for a nil state.
func StateName(s State) string {
	if s == nil {
		return "idle"
	}
	return s.Name()
}
