package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	clinicRepo "clinicvoice/database/repository/clinic"
	"clinicvoice/models"
)

// FAQHandler answers clinic questions from the catalog. No required slots:
// an empty topic yields the general summary.
type FAQHandler struct {
	Clinic clinicRepo.Repository
}

func NewFAQHandler(clinic clinicRepo.Repository) *FAQHandler {
	return &FAQHandler{Clinic: clinic}
}

func (h *FAQHandler) Intent() models.Intent { return models.IntentClinicFAQ }

func (h *FAQHandler) Validate(_ map[string]string) error { return nil }

func (h *FAQHandler) Execute(ctx context.Context, slots map[string]string, _ string) (*Outcome, error) {
	info, err := h.Clinic.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("clinic info lookup failed: %w", err)
	}

	answer := answerFor(info, strings.ToLower(strings.TrimSpace(slots["topic"])))
	return &Outcome{Kind: OutcomeAnswer, Answer: answer}, nil
}

func answerFor(info *models.ClinicInfo, topic string) string {
	switch topic {
	case "hours":
		return "Our hours are: " + formatHours(info.Hours) + "."
	case "location", "address":
		return fmt.Sprintf("We're at %s. You can reach us at %s.", info.Address, info.Phone)
	case "services":
		return "We offer " + joinNatural(info.Services) + "."
	case "doctors":
		var names []string
		for _, d := range info.Doctors {
			names = append(names, fmt.Sprintf("%s (%s)", d.Name, d.Specialty))
		}
		return "Our doctors are " + joinNatural(names) + "."
	default:
		return fmt.Sprintf("%s is at %s, phone %s. Ask me about our hours, services, or doctors.",
			info.Name, info.Address, info.Phone)
	}
}

// formatHours renders weekday hours in calendar order.
func formatHours(hours map[string]string) string {
	order := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	var parts []string
	for _, day := range order {
		if h, ok := hours[day]; ok {
			parts = append(parts, day+" "+h)
		}
	}
	// Any nonstandard keys trail in stable order.
	var extra []string
	for day, h := range hours {
		if !contains(order, day) {
			extra = append(extra, day+" "+h)
		}
	}
	sort.Strings(extra)
	return strings.Join(append(parts, extra...), ", ")
}

func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
