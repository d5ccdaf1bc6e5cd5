package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	clinicRepo "clinicvoice/database/repository/clinic"
	"clinicvoice/models"
)

const verifyCachePrefix = "verify:"

// VerificationCache absorbs duplicate eligibility checks within one
// clarification exchange. Backed by Redis in production.
type VerificationCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
}

// InsuranceHandler answers coverage questions from the clinic's policy table.
type InsuranceHandler struct {
	Clinic   clinicRepo.Repository
	Cache    VerificationCache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

func NewInsuranceHandler(clinic clinicRepo.Repository, cache VerificationCache, ttl time.Duration, logger *zap.Logger) *InsuranceHandler {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InsuranceHandler{Clinic: clinic, Cache: cache, CacheTTL: ttl, Logger: logger}
}

func (h *InsuranceHandler) Intent() models.Intent { return models.IntentVerifyInsurance }

func (h *InsuranceHandler) Validate(slots map[string]string) error {
	for _, name := range []string{"patient_name", "insurance_provider", "policy_number", "procedure"} {
		if slots[name] == "" {
			return &ValidationError{Slot: name, Message: "required"}
		}
	}
	return nil
}

func (h *InsuranceHandler) Execute(ctx context.Context, slots map[string]string, _ string) (*Outcome, error) {
	if err := h.Validate(slots); err != nil {
		return nil, err
	}

	provider := slots["insurance_provider"]
	procedure := slots["procedure"]
	policyNumber := slots["policy_number"]
	cacheKey := verifyCachePrefix + strings.ToLower(provider+"|"+procedure+"|"+policyNumber)

	if h.Cache != nil {
		if raw, ok := h.Cache.Get(ctx, cacheKey); ok {
			var cached models.InsuranceVerification
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &Outcome{Kind: OutcomeVerified, Verification: &cached}, nil
			}
		}
	}

	policy, err := h.Clinic.InsurancePolicy(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("policy lookup failed: %w", err)
	}

	result := buildVerification(policy, provider, procedure, policyNumber)

	if h.Cache != nil {
		if b, err := json.Marshal(result); err == nil {
			h.Cache.Set(ctx, cacheKey, string(b), h.CacheTTL)
		}
	}
	return &Outcome{Kind: OutcomeVerified, Verification: result}, nil
}

func buildVerification(policy *models.InsurancePolicy, provider, procedure, policyNumber string) *models.InsuranceVerification {
	if policy == nil {
		return &models.InsuranceVerification{
			Covered:   models.CoverageUnknown,
			Provider:  provider,
			Procedure: procedure,
			Notes:     fmt.Sprintf("We could not verify %s; please contact the office to confirm coverage for %s.", provider, procedure),
		}
	}
	if !policy.Accepted {
		return &models.InsuranceVerification{
			Covered:   models.CoverageNo,
			Provider:  policy.Provider,
			Procedure: procedure,
			Notes:     fmt.Sprintf("Insurance provider %s is not accepted, so policy %s cannot be used here.", policy.Provider, policyNumber),
		}
	}
	copay := copayFor(policy.CoveragePercent)
	return &models.InsuranceVerification{
		Covered:         models.CoverageYes,
		CoveragePercent: policy.CoveragePercent,
		CopayAmount:     copay,
		Provider:        policy.Provider,
		Procedure:       procedure,
		Notes:           fmt.Sprintf("Policy %s verified with %s. %s", policyNumber, policy.Provider, policy.CoverageNotes),
	}
}

// copayFor derives the standard copay tier from the negotiated coverage rate.
func copayFor(coveragePercent int) int {
	switch {
	case coveragePercent >= 90:
		return 10
	case coveragePercent >= 80:
		return 25
	case coveragePercent >= 50:
		return 50
	default:
		return 100
	}
}
