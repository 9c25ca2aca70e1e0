package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a platform user. AttendingEvents mirrors the
// attending_members sets on events; the two are kept consistent by
// the attendance update path.
type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username        string               `bson:"username" json:"username"`
	PasswordHash    string               `bson:"password_hash" json:"-"`
	AttendingEvents []primitive.ObjectID `bson:"attending_events,omitempty" json:"attending_events,omitempty"`
	CreatedAt       time.Time            `bson:"created_at" json:"created_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        primitive.ObjectID `json:"id"`
	Username  string             `json:"username"`
	CreatedAt time.Time          `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
