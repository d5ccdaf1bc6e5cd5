package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"clinicvoice/models"
)

// Router classifies a transcribed utterance into an intent plus extracted
// slots. Deterministic given identical generator output.
type Router interface {
	Route(ctx context.Context, text string, pendingIntent models.Intent, pending map[string]string) (models.Intent, map[string]string, error)
}

type DefaultRouter struct {
	Gen    Generator
	Logger *zap.Logger
	// Now is injectable for deterministic relative-date resolution in tests.
	Now func() time.Time
}

func NewDefaultRouter(gen Generator, logger *zap.Logger) *DefaultRouter {
	return &DefaultRouter{Gen: gen, Logger: logger, Now: time.Now}
}

// generatorResult is the structured output contract for the language model.
type generatorResult struct {
	Intent string            `json:"intent"`
	Slots  map[string]string `json:"slots"`
}

func (r *DefaultRouter) Route(ctx context.Context, text string, pendingIntent models.Intent, pending map[string]string) (models.Intent, map[string]string, error) {
	prompt := buildPrompt(text, pendingIntent, pending)

	raw, err := r.Gen.GenerateContent(ctx, prompt)
	if err != nil {
		return models.IntentUnknown, nil, fmt.Errorf("intent generation failed: %w", err)
	}

	parsed, ok := parseGeneratorOutput(raw)
	if !ok {
		// Malformed model output maps to UNKNOWN, never a crash.
		r.Logger.Warn("unparseable generator output", zap.String("raw", raw))
		return models.IntentUnknown, nil, nil
	}

	detected := models.ParseIntent(parsed.Intent)
	// Mid-clarification answers ("John Smith") often classify as UNKNOWN on
	// their own; the pending intent stays authoritative for the exchange.
	if detected == models.IntentUnknown && pendingIntent != "" && pendingIntent != models.IntentUnknown {
		detected = pendingIntent
	}

	slots := r.filterSlots(detected, parsed.Slots)
	return detected, slots, nil
}

// filterSlots keeps only slots in the intent's schema, dropping anything the
// model hallucinated, and normalizes the values it keeps.
func (r *DefaultRouter) filterSlots(i models.Intent, raw map[string]string) map[string]string {
	slots := make(map[string]string)
	for _, name := range SchemaSlots(i) {
		val := strings.TrimSpace(raw[name])
		if val == "" {
			continue
		}
		switch name {
		case "doctor":
			val = NormalizeDoctor(val)
		case "date":
			val = ResolveDate(val, r.Now())
		case "time":
			val = ResolveTime(val)
		}
		slots[name] = val
	}
	for name := range raw {
		if _, accepted := slots[name]; !accepted && strings.TrimSpace(raw[name]) != "" {
			r.Logger.Debug("discarded out-of-schema slot", zap.String("slot", name), zap.String("intent", string(i)))
		}
	}
	return slots
}

func buildPrompt(text string, pendingIntent models.Intent, pending map[string]string) string {
	var sb strings.Builder
	sb.WriteString("You are the intent classifier for a clinic voice receptionist.\n")
	sb.WriteString("Classify the utterance into exactly one intent: BOOK_APPOINTMENT, VERIFY_INSURANCE, CLINIC_FAQ, or UNKNOWN.\n")
	sb.WriteString("Extract only these slots per intent:\n")
	sb.WriteString("  BOOK_APPOINTMENT: patient_name, doctor, date, time\n")
	sb.WriteString("  VERIFY_INSURANCE: patient_name, insurance_provider, policy_number, procedure\n")
	sb.WriteString("  CLINIC_FAQ: topic (one of hours, location, services, doctors, general)\n")
	sb.WriteString("Respond with a single JSON object {\"intent\": \"...\", \"slots\": {...}} and nothing else.\n")
	sb.WriteString("Omit slots the utterance does not mention. Never invent values.\n")

	if pendingIntent != "" && pendingIntent != models.IntentUnknown {
		sb.WriteString(fmt.Sprintf("\nThe conversation is mid-way through %s.", pendingIntent))
		if len(pending) > 0 {
			ctxJSON, _ := json.Marshal(pending)
			sb.WriteString(fmt.Sprintf(" Slots collected so far: %s.", ctxJSON))
		}
		sb.WriteString(" A short answer likely fills the next missing slot.\n")
	}

	sb.WriteString("\nUtterance: ")
	sb.WriteString(text)
	return sb.String()
}

// parseGeneratorOutput tolerates markdown code fences and prose around the
// JSON object.
func parseGeneratorOutput(raw string) (generatorResult, bool) {
	var out generatorResult
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return out, false
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &out); err != nil {
		return out, false
	}
	if out.Slots == nil {
		out.Slots = map[string]string{}
	}
	return out, true
}
