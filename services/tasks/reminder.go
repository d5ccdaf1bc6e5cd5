package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"clinicvoice/models"
)

const TypeAppointmentEmail = "appointment:email"

// Enqueuer is the narrow queue contract the booking handler depends on.
type Enqueuer interface {
	EnqueueAppointmentEmail(payload models.ReminderPayload, fireAt time.Time) error
}

// NewAppointmentEmailTask builds the asynq task for a confirmation or
// reminder email.
func NewAppointmentEmailTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentEmail, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqEnqueuer implements Enqueuer over an asynq client.
type AsynqEnqueuer struct {
	Client *asynq.Client
}

func (e *AsynqEnqueuer) EnqueueAppointmentEmail(payload models.ReminderPayload, fireAt time.Time) error {
	task, opts, err := NewAppointmentEmailTask(payload, fireAt)
	if err != nil {
		return err
	}
	_, err = e.Client.Enqueue(task, opts...)
	return err
}
