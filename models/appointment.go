package models

import "time"

// AppointmentStatus tracks the booking lifecycle.
type AppointmentStatus string

const (
	AppointmentRequested AppointmentStatus = "REQUESTED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is owned by the storage layer; the conversation core only
// requests reservations and reads the outcome.
type Appointment struct {
	ID                 string            `bson:"id" json:"id"`
	DoctorID           string            `bson:"doctorId" json:"doctorId"`
	PatientName        string            `bson:"patientName" json:"patientName"`
	PatientEmail       string            `bson:"patientEmail,omitempty" json:"patientEmail,omitempty"`
	Start              time.Time         `bson:"start" json:"start"`
	DurationMin        int               `bson:"durationMin" json:"durationMin"`
	Status             AppointmentStatus `bson:"status" json:"status"`
	ConfirmationNumber string            `bson:"confirmationNumber" json:"confirmationNumber"`
	IdempotencyKey     string            `bson:"idempotencyKey" json:"idempotencyKey"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
}

// ReserveRequest carries everything the repository needs for an atomic
// check-and-reserve of one appointment slot.
type ReserveRequest struct {
	DoctorID       string
	PatientName    string
	PatientEmail   string
	Start          time.Time
	DurationMin    int
	IdempotencyKey string
}
