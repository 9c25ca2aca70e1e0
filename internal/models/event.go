package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a GeoJSON-style point. Coordinates are stored as
// [latitude, longitude].
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a point from latitude and longitude.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lat, lon}}
}

// Event represents an event tied to an organization. OrgID is a soft
// reference: the organization may no longer exist and queries must
// tolerate that.
type Event struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Owner            primitive.ObjectID   `bson:"owner" json:"owner"`
	Name             string               `bson:"name" json:"name"`
	Description      string               `bson:"description" json:"description"`
	StartTime        time.Time            `bson:"start_time" json:"start_time"`
	EndTime          time.Time            `bson:"end_time" json:"end_time"`
	Location         GeoPoint             `bson:"location" json:"location"`
	OrgID            primitive.ObjectID   `bson:"org_id" json:"org_id"`
	AttendingMembers []primitive.ObjectID `bson:"attending_members,omitempty" json:"attending_members,omitempty"`
	CreatedAt        time.Time            `bson:"created_at" json:"created_at"`
}

// EventView is an event denormalized with its organization's name for
// listing. OrganizationName is nil when the referenced organization is
// missing.
type EventView struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description" json:"description"`
	StartTime        time.Time          `bson:"start_time" json:"start_time"`
	EndTime          time.Time          `bson:"end_time" json:"end_time"`
	Location         GeoPoint           `bson:"location" json:"location"`
	OrganizationName *string            `bson:"organizationName" json:"organizationName"`
}
