package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"clinicvoice/config"
	"clinicvoice/models"
	"clinicvoice/services/notification"
	"clinicvoice/services/tasks"
)

// InitEmailWorker runs the async worker delivering appointment emails in
// the background.
func InitEmailWorker(mailer notification.EmailSender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeAppointmentEmail, handleAppointmentEmail(mailer))

	go func() {
		log.Println("[EmailWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[EmailWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[EmailWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleAppointmentEmail(mailer notification.EmailSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[EmailWorker] invalid payload: %v", err)
			return err
		}
		if p.PatientEmail == "" {
			log.Printf("[EmailWorker] no email on file for appointment %s, skipping", p.AppointmentID)
			return nil
		}

		subject, body := composeEmail(p)
		if err := mailer.Send(ctx, p.PatientEmail, subject, body); err != nil {
			log.Printf("[EmailWorker] failed to send %s email for appointment %s: %v", p.Kind, p.AppointmentID, err)
			return err
		}
		return nil
	}
}

func composeEmail(p models.ReminderPayload) (string, string) {
	start := p.Start
	if t, err := time.Parse(time.RFC3339, p.Start); err == nil {
		start = t.Format("Monday, January 2 at 3:04 PM")
	}

	if p.Kind == "reminder" {
		return "Appointment reminder",
			fmt.Sprintf("Hi %s,\n\nThis is a reminder of your appointment with %s on %s.\nConfirmation number: %s.\n\n%s",
				p.PatientName, p.Doctor, start, p.ConfirmationNumber, config.AppConfig.ClinicName)
	}
	return "Appointment confirmed",
		fmt.Sprintf("Hi %s,\n\nYour appointment with %s on %s is confirmed.\nConfirmation number: %s.\n\n%s",
			p.PatientName, p.Doctor, start, p.ConfirmationNumber, config.AppConfig.ClinicName)
}
