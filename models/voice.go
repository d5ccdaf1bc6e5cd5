package models

// TurnResult is what one orchestrated voice turn produces. Audio is
// best-effort; ResponseText is authoritative.
type TurnResult struct {
	SessionID       string        `json:"sessionId"`
	Transcript      string        `json:"transcript"`
	Intent          Intent        `json:"intent"`
	ResponseText    string        `json:"response"`
	Audio           []byte        `json:"-"`
	SynthesisFailed bool          `json:"synthesisFailed,omitempty"`
	SessionStatus   SessionStatus `json:"status"`
}

// ReminderPayload is the asynq task payload for appointment emails.
type ReminderPayload struct {
	AppointmentID      string `json:"appointmentId"`
	PatientName        string `json:"patientName"`
	PatientEmail       string `json:"patientEmail"`
	Doctor             string `json:"doctor"`
	Start              string `json:"start"`
	ConfirmationNumber string `json:"confirmationNumber"`
	Kind               string `json:"kind"` // "confirmation" or "reminder"
}
