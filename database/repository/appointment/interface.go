package appointmentRepo

import (
	"context"

	"clinicvoice/models"
)

// ReserveStatus is the outcome of an atomic check-and-reserve.
type ReserveStatus string

const (
	// ReserveConfirmed means the slot was taken by this request, or the same
	// idempotency key was already confirmed (safe retry).
	ReserveConfirmed ReserveStatus = "CONFIRMED"
	// ReserveConflict means another booking holds the slot. Not an error.
	ReserveConflict ReserveStatus = "CONFLICT"
)

// Repository is the storage contract for appointments. Reserve must be atomic:
// two concurrent reservations for the same doctor/time cannot both confirm.
type Repository interface {
	// Reserve books the requested slot. On ReserveConflict the returned
	// appointment is nil and the caller should offer alternatives.
	Reserve(ctx context.Context, req models.ReserveRequest) (*models.Appointment, ReserveStatus, error)

	// DoctorAvailability returns the free "HH:MM" start times for a doctor on
	// the given day (clinic working hours minus confirmed bookings).
	DoctorAvailability(ctx context.Context, doctorID string, day string) ([]string, error)
}
