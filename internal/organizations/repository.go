package organizations

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gatherly/backend/internal/models"
)

// ErrNotFound is returned when no organization matches the query.
var ErrNotFound = errors.New("organization not found")

// Repository handles organization persistence in the organizations
// collection.
type Repository struct {
	orgs *mongo.Collection
}

// NewRepository creates an organizations repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{orgs: db.Collection("organizations")}
}

// Create inserts an organization owned by the given user.
func (r *Repository) Create(ctx context.Context, ownerID primitive.ObjectID, name, description string) (*models.Organization, error) {
	org := &models.Organization{
		Owner:       ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	res, err := r.orgs.InsertOne(ctx, org)
	if err != nil {
		return nil, err
	}
	org.ID = res.InsertedID.(primitive.ObjectID)
	return org, nil
}

// ListAll returns every organization.
func (r *Repository) ListAll(ctx context.Context) ([]models.Organization, error) {
	cur, err := r.orgs.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	list := []models.Organization{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListByOwner returns organizations owned by the given user.
func (r *Repository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Organization, error) {
	cur, err := r.orgs.Find(ctx, bson.M{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	list := []models.Organization{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID returns an organization by ID, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	var org models.Organization
	err := r.orgs.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}
