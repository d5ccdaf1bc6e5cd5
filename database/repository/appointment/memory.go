package appointmentRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clinicvoice/models"

	"github.com/google/uuid"
)

// MemoryRepo is an in-process Repository with the same atomicity guarantees
// as the Mongo implementation, guarded by a single mutex. Used by tests and
// the standalone demo mode.
type MemoryRepo struct {
	mu     sync.Mutex
	byKey  map[string]*models.Appointment // idempotencyKey -> appointment
	byID   map[string]*models.Appointment // appointment id -> appointment
	claims map[string]*models.Appointment // doctorID|gridSlot -> appointment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byKey:  make(map[string]*models.Appointment),
		byID:   make(map[string]*models.Appointment),
		claims: make(map[string]*models.Appointment),
	}
}

func slotKey(doctorID string, slot time.Time) string {
	return doctorID + "|" + slot.UTC().Format(time.RFC3339)
}

func (r *MemoryRepo) Reserve(_ context.Context, req models.ReserveRequest) (*models.Appointment, ReserveStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.IdempotencyKey != "" {
		if existing, ok := r.byKey[req.IdempotencyKey]; ok {
			return existing, ReserveConfirmed, nil
		}
	}

	slots := gridSlots(req.Start.UTC(), req.DurationMin)
	for _, slot := range slots {
		if _, ok := r.claims[slotKey(req.DoctorID, slot)]; ok {
			return nil, ReserveConflict, nil
		}
	}

	appt := &models.Appointment{
		ID:                 uuid.New().String(),
		DoctorID:           req.DoctorID,
		PatientName:        req.PatientName,
		PatientEmail:       req.PatientEmail,
		Start:              req.Start.UTC(),
		DurationMin:        req.DurationMin,
		Status:             models.AppointmentConfirmed,
		ConfirmationNumber: newConfirmationNumber(),
		IdempotencyKey:     req.IdempotencyKey,
		CreatedAt:          time.Now().UTC(),
	}
	for _, slot := range slots {
		r.claims[slotKey(req.DoctorID, slot)] = appt
	}
	r.byID[appt.ID] = appt
	if req.IdempotencyKey != "" {
		r.byKey[req.IdempotencyKey] = appt
	}
	return appt, ReserveConfirmed, nil
}

func (r *MemoryRepo) DoctorAvailability(_ context.Context, doctorID string, day string) ([]string, error) {
	dayStart, err := time.Parse("2006-01-02", day)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", day, err)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	r.mu.Lock()
	defer r.mu.Unlock()

	taken := make(map[int]bool)
	for _, appt := range r.byID {
		if appt.DoctorID != doctorID {
			continue
		}
		for _, slot := range gridSlots(appt.Start, appt.DurationMin) {
			if !slot.Before(dayStart) && slot.Before(dayEnd) {
				taken[slot.UTC().Hour()] = true
			}
		}
	}
	return FreeHours(taken), nil
}

// Count reports confirmed appointments, used by tests.
func (r *MemoryRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
