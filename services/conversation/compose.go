package conversation

import (
	"fmt"
	"strings"

	"clinicvoice/models"
	"clinicvoice/services/actions"
)

// Fixed responses for the failure paths. These are spoken to patients, so
// they stay short and plain.
const (
	transcriptionApology = "I didn't catch that, could you repeat?"
	unknownIntentPrompt  = "I can help with booking appointments, verifying insurance, or answering questions about the clinic. Which would you like?"
	systemApology        = "I'm sorry, I'm having trouble right now. Please try again in a moment."
)

// clarificationQuestions maps a missing slot to the question that fills it.
var clarificationQuestions = map[string]string{
	"patient_name":       "Can I have the patient's full name?",
	"doctor":             "Which doctor would you like to see?",
	"date":               "What date works for you?",
	"time":               "What time would you prefer?",
	"insurance_provider": "Who is your insurance provider?",
	"policy_number":      "Can I have your policy number?",
	"procedure":          "Which procedure or service is this for?",
	"topic":              "What would you like to know about the clinic?",
}

func clarificationFor(slot string) string {
	if q, ok := clarificationQuestions[slot]; ok {
		return q
	}
	return fmt.Sprintf("Can you tell me the %s?", strings.ReplaceAll(slot, "_", " "))
}

// composeOutcome turns a handler outcome into the spoken reply.
func composeOutcome(intent models.Intent, out *actions.Outcome) string {
	switch out.Kind {
	case actions.OutcomeConfirmed:
		return composeConfirmed(out.Appointment)
	case actions.OutcomeConflict:
		return composeConflict(out)
	case actions.OutcomeVerified:
		return composeVerified(out.Verification)
	case actions.OutcomeAnswer:
		return out.Answer
	default:
		return systemApology
	}
}

func composeConfirmed(appt *models.Appointment) string {
	first := firstName(appt.PatientName)
	return fmt.Sprintf(
		"You're all set, %s. Your appointment with %s is booked for %s at %s. Your confirmation number is %s.",
		first, appt.DoctorID, appt.Start.Format("Monday, January 2"), appt.Start.Format("3:04 PM"),
		appt.ConfirmationNumber,
	)
}

func composeConflict(out *actions.Outcome) string {
	if len(out.Alternatives) == 0 {
		return "I'm sorry, that time is already taken and I don't see openings that day. Would another day work?"
	}
	alts := out.Alternatives
	if len(alts) > 3 {
		alts = alts[:3]
	}
	return fmt.Sprintf(
		"I'm sorry, that time is already taken. The closest openings that day are %s. Would one of those work?",
		joinSpoken(alts),
	)
}

func composeVerified(v *models.InsuranceVerification) string {
	switch v.Covered {
	case models.CoverageYes:
		return fmt.Sprintf(
			"Good news, %s is covered under your %s plan. Your estimated copay for %s is $%d.",
			v.Procedure, v.Provider, v.Procedure, v.CopayAmount,
		)
	case models.CoverageNo:
		return fmt.Sprintf(
			"I'm sorry, we don't currently accept %s. I can give you our front desk number if you'd like to discuss payment options.",
			v.Provider,
		)
	default:
		return fmt.Sprintf(
			"I wasn't able to confirm coverage for %s with %s right now. Our front desk can verify it before your visit.",
			v.Procedure, v.Provider,
		)
	}
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}

func joinSpoken(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
	}
}
