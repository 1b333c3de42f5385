package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripBooking records an aurora trip enquiry after the confirmation email
// is sent.
type TripBooking struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	Name        string             `json:"name" bson:"name"`
	Destination string             `json:"destination" bson:"destination"`
	Date        time.Time          `json:"date" bson:"date"`
}

// BookingRequest is the body for the trip booking email endpoint.
type BookingRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Destination string `json:"destination" validate:"required,min=2,max=100"`
	Date        string `json:"date" validate:"required"`
}
