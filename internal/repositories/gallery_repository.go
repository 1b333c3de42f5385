package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/lightstrail/aurora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GalleryRepository defines the interface for gallery photo operations
type GalleryRepository interface {
	CreatePhoto(ctx context.Context, photo *models.GalleryPhoto) error
	GetPhotoByID(ctx context.Context, id string) (*models.GalleryPhoto, error)
	GetPhotos(ctx context.Context, skip, limit int64) ([]models.GalleryPhoto, error)
	SearchByLocation(ctx context.Context, locationPrefix string, skip, limit int64) ([]models.GalleryPhoto, error)
	UpdatePhoto(ctx context.Context, id string, update models.UpdatePhotoRequest) (*models.GalleryPhoto, error)
	DeletePhoto(ctx context.Context, id string) error
}

// MongoGalleryRepository implements GalleryRepository for MongoDB
type MongoGalleryRepository struct {
	collection *mongo.Collection
}

// NewMongoGalleryRepository creates a new MongoGalleryRepository
func NewMongoGalleryRepository(db *mongo.Database) *MongoGalleryRepository {
	return &MongoGalleryRepository{collection: db.Collection("galleries")}
}

func (r *MongoGalleryRepository) CreatePhoto(ctx context.Context, photo *models.GalleryPhoto) error {
	photo.ID = primitive.NewObjectID()
	photo.CreatedAt = time.Now()
	photo.UpdatedAt = time.Now()
	if photo.Visibility == "" {
		photo.Visibility = models.VisibilityPublic
	}
	_, err := r.collection.InsertOne(ctx, photo)
	return err
}

func (r *MongoGalleryRepository) GetPhotoByID(ctx context.Context, id string) (*models.GalleryPhoto, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid photo ID format: %w", err)
	}

	var photo models.GalleryPhoto
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&photo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &photo, nil
}

func (r *MongoGalleryRepository) GetPhotos(ctx context.Context, skip, limit int64) ([]models.GalleryPhoto, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var photos []models.GalleryPhoto
	if err = cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *MongoGalleryRepository) SearchByLocation(ctx context.Context, locationPrefix string, skip, limit int64) ([]models.GalleryPhoto, error) {
	filter := bson.D{}
	if locationPrefix != "" {
		filter = bson.D{{Key: "location", Value: bson.M{
			"$regex":   "^" + regexp.QuoteMeta(locationPrefix),
			"$options": "i",
		}}}
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var photos []models.GalleryPhoto
	if err = cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *MongoGalleryRepository) UpdatePhoto(ctx context.Context, id string, update models.UpdatePhotoRequest) (*models.GalleryPhoto, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid photo ID format: %w", err)
	}

	set := bson.M{"updated_at": time.Now()}
	if update.Location != "" {
		set["location"] = update.Location
	}
	if update.Visibility != "" {
		set["visibility"] = update.Visibility
	}
	if update.Likes != nil {
		set["likes"] = *update.Likes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var photo models.GalleryPhoto
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&photo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &photo, nil
}

func (r *MongoGalleryRepository) DeletePhoto(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid photo ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
