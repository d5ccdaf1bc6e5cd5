package appointmentRepo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"clinicvoice/config"
	"clinicvoice/database"
	"clinicvoice/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// slotClaim is the uniqueness anchor: one document per (doctorId, start)
// hour-grid slot. A unique index on those two fields makes the reservation a
// conditional write.
type slotClaim struct {
	DoctorID      string    `bson:"doctorId"`
	Start         time.Time `bson:"start"`
	AppointmentID string    `bson:"appointmentId"`
}

// gridSlots returns every hour-aligned slot the window [start, start+duration)
// touches. An off-grid start like 10:30 with a 60 minute duration claims both
// the 10:00 and 11:00 slots, so overlapping bookings cannot coexist.
func gridSlots(start time.Time, durationMin int) []time.Time {
	if durationMin <= 0 {
		durationMin = 60
	}
	end := start.Add(time.Duration(durationMin) * time.Minute)
	var slots []time.Time
	for t := start.Truncate(time.Hour); t.Before(end); t = t.Add(time.Hour) {
		slots = append(slots, t)
	}
	return slots
}

type MongoAppointmentRepo struct {
	apptColl *mongo.Collection
	slotColl *mongo.Collection
}

func NewMongoAppointmentRepo() Repository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoAppointmentRepo{
		apptColl: db.Collection("appointments"),
		slotColl: db.Collection("appointment_slots"),
	}
}

// Reserve books the slot inside a transaction: the slot claim insert fails on
// the unique index when another booking got there first, and the whole
// transaction aborts without a partial appointment record.
func (r *MongoAppointmentRepo) Reserve(ctx context.Context, req models.ReserveRequest) (*models.Appointment, ReserveStatus, error) {
	// Safe-retry path: the same idempotency key returns the original booking.
	if existing, err := r.findByIdempotencyKey(ctx, req.IdempotencyKey); err == nil && existing != nil {
		return existing, ReserveConfirmed, nil
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

	client := r.apptColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, "", fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	conflict := false
	txnFn := func(sc mongo.SessionContext) error {
		for _, slot := range gridSlots(appt.Start, appt.DurationMin) {
			claim := slotClaim{DoctorID: req.DoctorID, Start: slot, AppointmentID: appt.ID}
			if _, err := r.slotColl.InsertOne(sc, claim); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					conflict = true
					return fmt.Errorf("slot already reserved")
				}
				return fmt.Errorf("slot claim insert failed: %w", err)
			}
		}
		if _, err := r.apptColl.InsertOne(sc, appt); err != nil {
			return fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if conflict {
			// The loser of a retry race still gets its original booking back.
			if existing, lookupErr := r.findByIdempotencyKey(ctx, req.IdempotencyKey); lookupErr == nil && existing != nil {
				return existing, ReserveConfirmed, nil
			}
			return nil, ReserveConflict, nil
		}
		return nil, "", fmt.Errorf("booking transaction failed: %w", err)
	}

	return appt, ReserveConfirmed, nil
}

func (r *MongoAppointmentRepo) findByIdempotencyKey(ctx context.Context, key string) (*models.Appointment, error) {
	if key == "" {
		return nil, nil
	}
	var appt models.Appointment
	err := r.apptColl.FindOne(ctx, bson.M{"idempotencyKey": key, "status": models.AppointmentConfirmed}).Decode(&appt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// DoctorAvailability lists free hourly start times within clinic hours.
func (r *MongoAppointmentRepo) DoctorAvailability(ctx context.Context, doctorID string, day string) ([]string, error) {
	dayStart, err := time.Parse("2006-01-02", day)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", day, err)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	cur, err := r.slotColl.Find(ctx, bson.M{
		"doctorId": doctorID,
		"start":    bson.M{"$gte": dayStart, "$lt": dayEnd},
	})
	if err != nil {
		return nil, fmt.Errorf("availability lookup failed: %w", err)
	}
	defer cur.Close(ctx)

	taken := make(map[int]bool)
	for cur.Next(ctx) {
		var claim slotClaim
		if err := cur.Decode(&claim); err != nil {
			continue
		}
		taken[claim.Start.UTC().Hour()] = true
	}

	return FreeHours(taken), nil
}

// FreeHours filters the clinic's working hours against taken hour starts.
// Working day runs 08:00 through 17:00, matching the clinic catalog.
func FreeHours(taken map[int]bool) []string {
	var free []string
	for h := 8; h <= 17; h++ {
		if !taken[h] {
			free = append(free, fmt.Sprintf("%02d:00", h))
		}
	}
	return free
}

// newConfirmationNumber formats a confirmation as one letter plus 7 digits,
// e.g. "A1234567".
func newConfirmationNumber() string {
	letter := rune('A' + rand.Intn(26))
	return fmt.Sprintf("%c%07d", letter, rand.Intn(10000000))
}
