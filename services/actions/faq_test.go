package actions

import (
	"context"
	"strings"
	"testing"

	clinicRepo "clinicvoice/database/repository/clinic"
)

func faqAnswer(t *testing.T, topic string) string {
	t.Helper()
	h := NewFAQHandler(clinicRepo.NewMemoryRepo())
	out, err := h.Execute(context.Background(), map[string]string{"topic": topic}, "")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if out.Kind != OutcomeAnswer {
		t.Fatalf("expected answer outcome, got %s", out.Kind)
	}
	return out.Answer
}

func TestFAQHours(t *testing.T) {
	answer := faqAnswer(t, "hours")
	if !strings.Contains(answer, "Monday 8:00 AM - 6:00 PM") {
		t.Fatalf("hours answer missing Monday: %q", answer)
	}
	if strings.Index(answer, "Monday") > strings.Index(answer, "Friday") {
		t.Fatalf("hours not in calendar order: %q", answer)
	}
}

func TestFAQDoctors(t *testing.T) {
	answer := faqAnswer(t, "doctors")
	if !strings.Contains(answer, "Dr. Emily Smith") || !strings.Contains(answer, "Pediatrics") {
		t.Fatalf("doctors answer incomplete: %q", answer)
	}
}

func TestFAQLocation(t *testing.T) {
	answer := faqAnswer(t, "location")
	if !strings.Contains(answer, "123 Healthcare Ave") {
		t.Fatalf("location answer missing address: %q", answer)
	}
}

func TestFAQEmptyTopicGivesGeneralSummary(t *testing.T) {
	answer := faqAnswer(t, "")
	if !strings.Contains(answer, "Confido Health Clinic") {
		t.Fatalf("general answer missing clinic name: %q", answer)
	}
}

func TestFAQNeverRequiresSlots(t *testing.T) {
	h := NewFAQHandler(clinicRepo.NewMemoryRepo())
	if err := h.Validate(nil); err != nil {
		t.Fatalf("faq validation must accept empty slots: %v", err)
	}
}
