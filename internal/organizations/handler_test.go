package organizations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
)

type memStore struct {
	orgs []models.Organization
}

func (s *memStore) Create(_ context.Context, ownerID primitive.ObjectID, name, description string) (*models.Organization, error) {
	org := models.Organization{
		ID:          primitive.NewObjectID(),
		Owner:       ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	s.orgs = append(s.orgs, org)
	return &org, nil
}

func (s *memStore) ListAll(_ context.Context) ([]models.Organization, error) {
	return append([]models.Organization{}, s.orgs...), nil
}

func (s *memStore) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Organization, error) {
	list := []models.Organization{}
	for _, org := range s.orgs {
		if org.Owner == ownerID {
			list = append(list, org)
		}
	}
	return list, nil
}

func newOrgRouter(t *testing.T, store Store, userID primitive.ObjectID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, userID) })
	r.GET("/org/", h.List)
	r.GET("/org/user", h.ListMine)
	r.POST("/org/create", h.Create)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeOrgs(t *testing.T, w *httptest.ResponseRecorder) []models.Organization {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Organizations []models.Organization `json:"organizations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body.Data.Organizations
}

func TestCreateAndListOrganizations(t *testing.T) {
	store := &memStore{}
	owner := primitive.NewObjectID()
	r := newOrgRouter(t, store, owner)

	w := doJSON(t, r, http.MethodPost, "/org/create", gin.H{"name": "Chess Club", "description": "weekly games"})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Organization models.Organization `json:"organization"`
	}
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.Equal(t, owner, created.Organization.Owner)
	require.Equal(t, "Chess Club", created.Organization.Name)

	w = doJSON(t, r, http.MethodGet, "/org/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeOrgs(t, w), 1)
}

func TestListMineFiltersByOwner(t *testing.T) {
	store := &memStore{}
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	_, err := store.Create(context.Background(), alice, "Alice's Org", "")
	require.NoError(t, err)
	_, err = store.Create(context.Background(), bob, "Bob's Org", "")
	require.NoError(t, err)

	r := newOrgRouter(t, store, alice)
	w := doJSON(t, r, http.MethodGet, "/org/user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	orgs := decodeOrgs(t, w)
	require.Len(t, orgs, 1)
	require.Equal(t, "Alice's Org", orgs[0].Name)

	w = doJSON(t, r, http.MethodGet, "/org/", nil)
	require.Len(t, decodeOrgs(t, w), 2)
}

func TestCreateOrganizationRequiresName(t *testing.T) {
	r := newOrgRouter(t, &memStore{}, primitive.NewObjectID())
	w := doJSON(t, r, http.MethodPost, "/org/create", gin.H{"description": "no name"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
