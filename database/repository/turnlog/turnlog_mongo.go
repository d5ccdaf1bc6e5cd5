package turnlogRepo

import (
	"context"
	"time"

	"clinicvoice/config"
	"clinicvoice/database"
	"clinicvoice/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Entry is one conversation turn persisted for auditability. Writes are
// best-effort; a failed log never fails the turn.
type Entry struct {
	SessionID  string        `bson:"sessionId"`
	Transcript string        `bson:"transcript"`
	Intent     models.Intent `bson:"intent"`
	Response   string        `bson:"response"`
	Failed     bool          `bson:"failed"`
	Timestamp  time.Time     `bson:"timestamp"`
}

// Repository records committed turns.
type Repository interface {
	LogTurn(ctx context.Context, e Entry) error
}

type MongoTurnLogRepo struct {
	coll *mongo.Collection
}

func NewMongoTurnLogRepo() Repository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoTurnLogRepo{coll: db.Collection("conversation_logs")}
}

func (r *MongoTurnLogRepo) LogTurn(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, e)
	return err
}
