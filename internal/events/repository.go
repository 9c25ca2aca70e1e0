package events

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gatherly/backend/internal/models"
)

var (
	// ErrUserNotFound is returned when the user document is missing.
	ErrUserNotFound = errors.New("user not found")
	// ErrEventNotFound is returned when the event document is missing.
	ErrEventNotFound = errors.New("event not found")
)

// Repository handles event persistence and the attendance sets that
// span the events and users collections.
type Repository struct {
	events *mongo.Collection
	users  *mongo.Collection
}

// NewRepository creates an events repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		events: db.Collection("events"),
		users:  db.Collection("users"),
	}
}

// Create inserts an event referencing an organization. The reference
// is soft: the organization is not required to exist.
func (r *Repository) Create(ctx context.Context, ownerID primitive.ObjectID, name, description string, startTime, endTime time.Time, lat, lon float64, orgID primitive.ObjectID) (*models.Event, error) {
	e := &models.Event{
		Owner:       ownerID,
		Name:        name,
		Description: description,
		StartTime:   startTime,
		EndTime:     endTime,
		Location:    models.NewGeoPoint(lat, lon),
		OrgID:       orgID,
		CreatedAt:   time.Now().UTC(),
	}
	res, err := r.events.InsertOne(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return e, nil
}

// GetByID returns an event by ID, or ErrEventNotFound.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	err := r.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListAll returns every event left-joined with its organization,
// ascending by start time. Events whose org_id matches nothing are
// kept with a nil organization name. The _id tiebreaker makes the
// ordering stable across equal start times (ObjectIDs grow with
// insertion order).
func (r *Repository) ListAll(ctx context.Context) ([]models.EventView, error) {
	pipeline := []bson.M{
		{"$lookup": bson.M{
			"from":         "organizations",
			"localField":   "org_id",
			"foreignField": "_id",
			"as":           "organizationInfo",
		}},
		{"$unwind": bson.M{
			"path":                       "$organizationInfo",
			"preserveNullAndEmptyArrays": true,
		}},
		{"$project": bson.M{
			"name":             1,
			"description":      1,
			"start_time":       1,
			"end_time":         1,
			"location":         1,
			"organizationName": "$organizationInfo.name",
		}},
		{"$sort": bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}}},
	}
	cur, err := r.events.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	views := []models.EventView{}
	if err := cur.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// SetAttendance joins or leaves an event for the user.
//
// Joining fails (false, nil) without mutation when the event is
// already in the user's attending set or the user is already in the
// event's member set; the two checks are deliberately independent so
// either stale side blocks a duplicate join. Leaving is idempotent.
//
// The two set updates are document-level atomic but not a single
// transaction: a crash between them can leave the sets inconsistent.
func (r *Repository) SetAttendance(ctx context.Context, userID, eventID primitive.ObjectID, attending bool) (bool, error) {
	user, err := r.findUser(ctx, userID)
	if err != nil {
		return false, err
	}
	event, err := r.GetByID(ctx, eventID)
	if err != nil {
		return false, err
	}

	if attending {
		if containsID(user.AttendingEvents, eventID) {
			return false, nil
		}
		if containsID(event.AttendingMembers, userID) {
			return false, nil
		}
		_, err = r.users.UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$addToSet": bson.M{"attending_events": eventID}},
		)
		if err != nil {
			return false, err
		}
		_, err = r.events.UpdateOne(ctx,
			bson.M{"_id": eventID},
			bson.M{"$addToSet": bson.M{"attending_members": userID}},
		)
		if err != nil {
			return false, err
		}
		return true, nil
	}

	_, err = r.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"attending_events": eventID}},
	)
	if err != nil {
		return false, err
	}
	_, err = r.events.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$pull": bson.M{"attending_members": userID}},
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetAttendingEvents resolves the user's attending-event IDs into full
// event documents. An empty attending set yields an empty slice; an
// unknown user yields ErrUserNotFound.
func (r *Repository) GetAttendingEvents(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"_id": userID}},
		{"$lookup": bson.M{
			"from":         "events",
			"localField":   "attending_events",
			"foreignField": "_id",
			"as":           "attendedEvents",
		}},
		{"$project": bson.M{
			"_id":    0,
			"events": "$attendedEvents",
		}},
	}
	cur, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []struct {
		Events []models.Event `bson:"events"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrUserNotFound
	}
	if results[0].Events == nil {
		return []models.Event{}, nil
	}
	return results[0].Events, nil
}

// GetAttendingStatus reports whether the user is in the event's member
// set. Unknown events and absent members both read as false.
func (r *Repository) GetAttendingStatus(ctx context.Context, userID, eventID primitive.ObjectID) (bool, error) {
	event, err := r.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return false, nil
		}
		return false, err
	}
	return containsID(event.AttendingMembers, userID), nil
}

func (r *Repository) findUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
