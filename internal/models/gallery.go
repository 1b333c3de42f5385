package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GalleryPhoto represents a user-submitted aurora photo stored in MongoDB;
// the image file itself lives in the uploads directory.
type GalleryPhoto struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FileName   string             `json:"fileName" bson:"file_name"`
	URL        string             `json:"url" bson:"url"`
	UserName   string             `json:"userName" bson:"user_name"`
	Location   string             `json:"location" bson:"location"`
	Visibility string             `json:"visibility" bson:"visibility"`
	Likes      int                `json:"likes" bson:"likes"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updated_at"`
}

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// UpdatePhotoRequest defines the mutable photo metadata.
type UpdatePhotoRequest struct {
	Location   string `json:"location,omitempty" validate:"omitempty,min=1,max=100"`
	Visibility string `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
	Likes      *int   `json:"likes,omitempty" validate:"omitempty,min=0"`
}

// PhotoListItem is the trimmed photo shape returned by list and search.
type PhotoListItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	UserName  string    `json:"userName"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}
