package intent

import "clinicvoice/models"

// slotSchemas fixes, per intent, the slots the router will accept and the
// order clarification questions are asked in. Anything the language model
// returns outside this list is discarded.
var slotSchemas = map[models.Intent][]string{
	models.IntentBookAppointment: {"patient_name", "doctor", "date", "time"},
	models.IntentVerifyInsurance: {"patient_name", "insurance_provider", "policy_number", "procedure"},
	models.IntentClinicFAQ:       {"topic"},
	models.IntentUnknown:         {},
}

// requiredSlots lists the slots that must be filled before dispatch. FAQ's
// topic is optional: an empty topic yields the general clinic summary.
var requiredSlots = map[models.Intent][]string{
	models.IntentBookAppointment: {"patient_name", "doctor", "date", "time"},
	models.IntentVerifyInsurance: {"patient_name", "insurance_provider", "policy_number", "procedure"},
	models.IntentClinicFAQ:       {},
	models.IntentUnknown:         {},
}

// SchemaSlots returns the accepted slot names for an intent, in fixed order.
func SchemaSlots(i models.Intent) []string {
	return slotSchemas[i]
}

// MissingSlots returns required slots not yet filled, in schema order, so
// clarification always asks for the first missing one deterministically.
func MissingSlots(i models.Intent, slots map[string]string) []string {
	var missing []string
	for _, name := range requiredSlots[i] {
		if slots[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
