package clinicRepo

import (
	"context"

	"clinicvoice/models"
)

// MemoryRepo serves the seed catalog without a database. Used by tests and
// demo mode.
type MemoryRepo struct{}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Info(_ context.Context) (*models.ClinicInfo, error) {
	return DefaultClinicInfo(), nil
}

func (r *MemoryRepo) InsurancePolicy(_ context.Context, provider string) (*models.InsurancePolicy, error) {
	for _, p := range DefaultPolicies() {
		if matchProvider(p.Provider, provider) {
			seeded := p
			return &seeded, nil
		}
	}
	return nil, nil
}
