package clinicRepo

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"clinicvoice/config"
	"clinicvoice/database"
	"clinicvoice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoClinicRepo struct {
	infoColl   *mongo.Collection
	policyColl *mongo.Collection
}

func NewMongoClinicRepo() Repository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoClinicRepo{
		infoColl:   db.Collection("clinic_info"),
		policyColl: db.Collection("insurance_policies"),
	}
}

func (r *MongoClinicRepo) Info(ctx context.Context) (*models.ClinicInfo, error) {
	var info models.ClinicInfo
	err := r.infoColl.FindOne(ctx, bson.M{}).Decode(&info)
	if err == mongo.ErrNoDocuments {
		// Fresh deployment: serve the seed catalog rather than failing FAQs.
		return DefaultClinicInfo(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clinic info: %w", err)
	}
	return &info, nil
}

func (r *MongoClinicRepo) InsurancePolicy(ctx context.Context, provider string) (*models.InsurancePolicy, error) {
	if provider == "" {
		return nil, nil
	}
	var policy models.InsurancePolicy
	filter := bson.M{"provider": primitive.Regex{Pattern: regexp.QuoteMeta(provider), Options: "i"}}
	err := r.policyColl.FindOne(ctx, filter).Decode(&policy)
	if err == mongo.ErrNoDocuments {
		for _, p := range DefaultPolicies() {
			if matchProvider(p.Provider, provider) {
				seeded := p
				return &seeded, nil
			}
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch insurance policy for %q: %w", provider, err)
	}
	return &policy, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func matchProvider(a, b string) bool {
	norm := func(s string) string { return nonAlnum.ReplaceAllString(strings.ToLower(s), "") }
	return norm(a) == norm(b)
}
