package clinicRepo

import (
	"context"

	"clinicvoice/models"
)

// Repository is the read-side contract for clinic records consulted during
// FAQ answers and insurance verification.
type Repository interface {
	// Info returns the clinic catalog. Topic filtering happens in the FAQ
	// handler; the repository always returns the full document.
	Info(ctx context.Context) (*models.ClinicInfo, error)

	// InsurancePolicy looks up the clinic's relationship with a provider by
	// (case-insensitive, partial) name. Returns nil when unknown.
	InsurancePolicy(ctx context.Context, provider string) (*models.InsurancePolicy, error)
}
