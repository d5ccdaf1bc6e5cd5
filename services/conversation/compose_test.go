package conversation

import (
	"strings"
	"testing"
	"time"

	"clinicvoice/models"
	"clinicvoice/services/actions"
)

func TestComposeConfirmedSpeaksConfirmationNumber(t *testing.T) {
	out := &actions.Outcome{
		Kind: actions.OutcomeConfirmed,
		Appointment: &models.Appointment{
			PatientName:        "John Smith",
			DoctorID:           "Dr. Smith",
			Start:              time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
			ConfirmationNumber: "A1234567",
		},
	}
	text := composeOutcome(models.IntentBookAppointment, out)
	for _, want := range []string{"John", "Dr. Smith", "A1234567", "10:00 AM"} {
		if !strings.Contains(text, want) {
			t.Errorf("confirmation missing %q: %q", want, text)
		}
	}
}

func TestComposeConflictListsAtMostThreeAlternatives(t *testing.T) {
	out := &actions.Outcome{
		Kind:         actions.OutcomeConflict,
		Alternatives: []string{"08:00", "09:00", "11:00", "13:00", "14:00"},
	}
	text := composeOutcome(models.IntentBookAppointment, out)
	if !strings.Contains(text, "08:00") || strings.Contains(text, "13:00") {
		t.Fatalf("expected first three alternatives only: %q", text)
	}
}

func TestComposeConflictWithoutAlternatives(t *testing.T) {
	text := composeOutcome(models.IntentBookAppointment, &actions.Outcome{Kind: actions.OutcomeConflict})
	if !strings.Contains(text, "another day") {
		t.Fatalf("expected fallback suggestion: %q", text)
	}
}

func TestClarificationQuestionsCoverAllSchemaSlots(t *testing.T) {
	slots := []string{
		"patient_name", "doctor", "date", "time",
		"insurance_provider", "policy_number", "procedure", "topic",
	}
	for _, slot := range slots {
		q := clarificationFor(slot)
		if q == "" || !strings.HasSuffix(q, "?") {
			t.Errorf("slot %s has no usable question: %q", slot, q)
		}
	}
	// Unmapped slots still get a generic question.
	if q := clarificationFor("blood_type"); !strings.Contains(q, "blood type") {
		t.Errorf("generic question malformed: %q", q)
	}
}

func TestJoinSpoken(t *testing.T) {
	if got := joinSpoken([]string{"08:00"}); got != "08:00" {
		t.Errorf("single item: %q", got)
	}
	if got := joinSpoken([]string{"08:00", "09:00"}); got != "08:00 or 09:00" {
		t.Errorf("two items: %q", got)
	}
	if got := joinSpoken([]string{"a", "b", "c"}); got != "a, b, or c" {
		t.Errorf("three items: %q", got)
	}
}
