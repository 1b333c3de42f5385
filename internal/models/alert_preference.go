package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertLocation is the place a preference watches, embedded in the document.
type AlertLocation struct {
	CityName  string   `json:"cityName" bson:"city_name"`
	Latitude  *float64 `json:"latitude" bson:"latitude"`
	Longitude *float64 `json:"longitude" bson:"longitude"`
}

// Valid reports whether the location carries usable coordinates.
// Records written by older clients can miss either field.
func (l *AlertLocation) Valid() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// AlertPreference is a user's aurora notification configuration.
// The application keeps at most one record per user via upsert.
type AlertPreference struct {
	ID                   primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID               primitive.ObjectID `json:"userId" bson:"user_id"`
	KpThreshold          float64            `json:"kpThreshold" bson:"kp_threshold"`
	Email                string             `json:"email" bson:"email"`
	Location             *AlertLocation     `json:"location" bson:"location"`
	IsEnabled            bool               `json:"isEnabled" bson:"is_enabled"`
	LastNotificationSent *time.Time         `json:"lastNotificationSent" bson:"last_notification_sent"`
	CreatedAt            time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updated_at"`
}

// AlertLocationRequest mirrors AlertLocation for request payloads.
type AlertLocationRequest struct {
	CityName  string   `json:"cityName" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// SaveAlertPreferenceRequest is the body for both create and update;
// kpThreshold is bounded to the Kp scale.
type SaveAlertPreferenceRequest struct {
	KpThreshold float64              `json:"kpThreshold" validate:"min=0,max=9"`
	Email       string               `json:"email" validate:"required,email"`
	Location    AlertLocationRequest `json:"location" validate:"required"`
	IsEnabled   *bool                `json:"isEnabled"`
}
