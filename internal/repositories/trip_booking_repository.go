package repositories

import (
	"context"

	"github.com/lightstrail/aurora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TripBookingRepository defines the interface for trip booking records
type TripBookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.TripBooking) error
}

// MongoTripBookingRepository implements TripBookingRepository for MongoDB
type MongoTripBookingRepository struct {
	collection *mongo.Collection
}

// NewMongoTripBookingRepository creates a new MongoTripBookingRepository
func NewMongoTripBookingRepository(db *mongo.Database) *MongoTripBookingRepository {
	return &MongoTripBookingRepository{collection: db.Collection("tripbookings")}
}

func (r *MongoTripBookingRepository) CreateBooking(ctx context.Context, booking *models.TripBooking) error {
	booking.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, booking)
	return err
}
