package repositories

import (
	"context"
	"regexp"
	"strings"

	"github.com/lightstrail/aurora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CityRepository defines the interface for city coordinate lookups
type CityRepository interface {
	// FetchSuggestions returns up to limit cities whose name starts with
	// the given prefix, case-insensitive.
	FetchSuggestions(ctx context.Context, prefix string, limit int64) ([]models.City, error)
}

// MongoCityRepository implements CityRepository for MongoDB
type MongoCityRepository struct {
	collection *mongo.Collection
}

// NewMongoCityRepository creates a new MongoCityRepository.
// The backing collection is named "cities" in the database.
func NewMongoCityRepository(db *mongo.Database) *MongoCityRepository {
	return &MongoCityRepository{collection: db.Collection("cities")}
}

func (r *MongoCityRepository) FetchSuggestions(ctx context.Context, prefix string, limit int64) ([]models.City, error) {
	filter := bson.M{"city_country": bson.M{
		"$regex":   "^" + regexp.QuoteMeta(strings.TrimSpace(prefix)),
		"$options": "i",
	}}

	findOptions := options.Find().
		SetLimit(limit).
		SetProjection(bson.M{"city_country": 1, "latitude": 1, "longitude": 1})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cities []models.City
	if err = cursor.All(ctx, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}
