package models

// Intent is the classified purpose of a caller utterance.
type Intent string

const (
	IntentBookAppointment Intent = "BOOK_APPOINTMENT"
	IntentVerifyInsurance Intent = "VERIFY_INSURANCE"
	IntentClinicFAQ       Intent = "CLINIC_FAQ"
	IntentUnknown         Intent = "UNKNOWN"
)

// ParseIntent maps a label coming back from the language model to a known
// intent. Anything unrecognized collapses to IntentUnknown.
func ParseIntent(label string) Intent {
	switch Intent(label) {
	case IntentBookAppointment, IntentVerifyInsurance, IntentClinicFAQ:
		return Intent(label)
	default:
		return IntentUnknown
	}
}
