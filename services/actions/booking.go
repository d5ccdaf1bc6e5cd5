package actions

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appointmentRepo "clinicvoice/database/repository/appointment"
	"clinicvoice/models"
	"clinicvoice/services/tasks"
)

const defaultDurationMin = 60

// BookingHandler reserves appointment slots through the storage contract.
type BookingHandler struct {
	Repo   appointmentRepo.Repository
	Queue  tasks.Enqueuer
	Logger *zap.Logger
}

func NewBookingHandler(repo appointmentRepo.Repository, queue tasks.Enqueuer, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Repo: repo, Queue: queue, Logger: logger}
}

func (h *BookingHandler) Intent() models.Intent { return models.IntentBookAppointment }

// Validate is pure: it checks slot shape without touching storage.
func (h *BookingHandler) Validate(slots map[string]string) error {
	for _, name := range []string{"patient_name", "doctor", "date", "time"} {
		if slots[name] == "" {
			return &ValidationError{Slot: name, Message: "required"}
		}
	}
	if _, err := time.Parse("2006-01-02", slots["date"]); err != nil {
		return &ValidationError{Slot: "date", Message: "expected YYYY-MM-DD"}
	}
	if _, err := time.Parse("15:04", slots["time"]); err != nil {
		return &ValidationError{Slot: "time", Message: "expected HH:MM"}
	}
	return nil
}

func (h *BookingHandler) Execute(ctx context.Context, slots map[string]string, idemKey string) (*Outcome, error) {
	if err := h.Validate(slots); err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02 15:04", slots["date"]+" "+slots["time"])
	if err != nil {
		return nil, &ValidationError{Slot: "time", Message: err.Error()}
	}

	req := models.ReserveRequest{
		DoctorID:       slots["doctor"],
		PatientName:    slots["patient_name"],
		PatientEmail:   slots["patient_email"],
		Start:          start.UTC(),
		DurationMin:    defaultDurationMin,
		IdempotencyKey: idemKey,
	}

	appt, status, err := h.Repo.Reserve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reservation failed: %w", err)
	}

	if status == appointmentRepo.ReserveConflict {
		alternatives, altErr := h.Repo.DoctorAvailability(ctx, req.DoctorID, slots["date"])
		if altErr != nil {
			h.Logger.Warn("availability lookup after conflict failed", zap.Error(altErr))
		}
		return &Outcome{Kind: OutcomeConflict, Alternatives: alternatives}, nil
	}

	h.enqueueEmails(appt)
	return &Outcome{Kind: OutcomeConfirmed, Appointment: appt, Terminal: true}, nil
}

// enqueueEmails schedules the confirmation email now and a reminder the day
// before. Best-effort: a queue outage never fails the booking.
func (h *BookingHandler) enqueueEmails(appt *models.Appointment) {
	if h.Queue == nil || appt.PatientEmail == "" {
		return
	}
	payload := models.ReminderPayload{
		AppointmentID:      appt.ID,
		PatientName:        appt.PatientName,
		PatientEmail:       appt.PatientEmail,
		Doctor:             appt.DoctorID,
		Start:              appt.Start.Format(time.RFC3339),
		ConfirmationNumber: appt.ConfirmationNumber,
	}

	payload.Kind = "confirmation"
	if err := h.Queue.EnqueueAppointmentEmail(payload, time.Now()); err != nil {
		h.Logger.Warn("failed to enqueue confirmation email", zap.Error(err))
	}

	if reminderAt := appt.Start.Add(-24 * time.Hour); reminderAt.After(time.Now()) {
		payload.Kind = "reminder"
		if err := h.Queue.EnqueueAppointmentEmail(payload, reminderAt); err != nil {
			h.Logger.Warn("failed to enqueue reminder email", zap.Error(err))
		}
	}
}
