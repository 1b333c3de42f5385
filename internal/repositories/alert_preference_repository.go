package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/lightstrail/aurora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AlertPreferenceRepository defines the interface for alert preference operations
type AlertPreferenceRepository interface {
	// Upsert writes the user's single preference record. Updates reset
	// last_notification_sent to null so a save re-arms eligibility.
	Upsert(ctx context.Context, userID string, pref *models.AlertPreference) (*models.AlertPreference, error)
	GetByUserID(ctx context.Context, userID string) (*models.AlertPreference, error)
	FindEnabled(ctx context.Context) ([]models.AlertPreference, error)
	// MarkNotified stamps last_notification_sent without touching other fields.
	MarkNotified(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// MongoAlertPreferenceRepository implements AlertPreferenceRepository for MongoDB
type MongoAlertPreferenceRepository struct {
	collection *mongo.Collection
}

// NewMongoAlertPreferenceRepository creates a new MongoAlertPreferenceRepository
func NewMongoAlertPreferenceRepository(db *mongo.Database) *MongoAlertPreferenceRepository {
	return &MongoAlertPreferenceRepository{collection: db.Collection("alertpreferences")}
}

func (r *MongoAlertPreferenceRepository) Upsert(ctx context.Context, userID string, pref *models.AlertPreference) (*models.AlertPreference, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"kp_threshold":           pref.KpThreshold,
			"email":                  pref.Email,
			"location":               pref.Location,
			"is_enabled":             pref.IsEnabled,
			"last_notification_sent": nil,
			"updated_at":             now,
		},
		"$setOnInsert": bson.M{
			"user_id":    objID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.AlertPreference
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": objID}, update, opts).Decode(&saved)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *MongoAlertPreferenceRepository) GetByUserID(ctx context.Context, userID string) (*models.AlertPreference, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	var pref models.AlertPreference
	err = r.collection.FindOne(ctx, bson.M{"user_id": objID}).Decode(&pref)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pref, nil
}

func (r *MongoAlertPreferenceRepository) FindEnabled(ctx context.Context) ([]models.AlertPreference, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_enabled": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prefs []models.AlertPreference
	if err = cursor.All(ctx, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *MongoAlertPreferenceRepository) MarkNotified(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_notification_sent": at, "updated_at": at},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
