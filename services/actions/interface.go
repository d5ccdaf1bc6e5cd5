package actions

import (
	"context"
	"fmt"

	"clinicvoice/models"
)

// OutcomeKind discriminates what an Execute call produced.
type OutcomeKind string

const (
	OutcomeConfirmed OutcomeKind = "confirmed"
	OutcomeConflict  OutcomeKind = "conflict"
	OutcomeVerified  OutcomeKind = "verified"
	OutcomeAnswer    OutcomeKind = "answer"
)

// Outcome is the structured result of dispatching a domain action. A conflict
// is an expected outcome, never an error.
type Outcome struct {
	Kind         OutcomeKind
	Appointment  *models.Appointment
	Alternatives []string
	Verification *models.InsuranceVerification
	Answer       string
	// Terminal marks the conversation goal as reached (e.g. booking
	// confirmed), moving the session to COMPLETED.
	Terminal bool
}

// ValidationError reports a malformed or missing slot detected by Validate.
// The orchestrator surfaces it as a clarification, never a crash.
type ValidationError struct {
	Slot    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid slot %s: %s", e.Slot, e.Message)
}

// Handler is the capability set every intent implementation provides.
// Validate is pure; Execute is the only point touching persistent state and
// must be safe to retry under the supplied idempotency key.
type Handler interface {
	Intent() models.Intent
	Validate(slots map[string]string) error
	Execute(ctx context.Context, slots map[string]string, idemKey string) (*Outcome, error)
}
