package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// City is one row of the city/coordinate lookup collection.
type City struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	CityCountry string             `json:"city_country" bson:"city_country"`
	Latitude    float64            `json:"latitude" bson:"latitude"`
	Longitude   float64            `json:"longitude" bson:"longitude"`
}
