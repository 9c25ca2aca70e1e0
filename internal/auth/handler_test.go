package auth

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

	"github.com/gatherly/backend/internal/models"
)

type memUserStore struct {
	byName map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byName: make(map[string]*models.User)}
}

func (s *memUserStore) Create(_ context.Context, username, passwordHash string) (*models.User, error) {
	if _, ok := s.byName[username]; ok {
		return nil, ErrDuplicateUsername
	}
	u := &models.User{ID: primitive.NewObjectID(), Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	s.byName[username] = u
	return u, nil
}

func (s *memUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := s.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type memRefreshStore struct {
	jtis map[string]string
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{jtis: make(map[string]string)}
}

func (s *memRefreshStore) Save(_ context.Context, jti, userID string, _ time.Duration) error {
	s.jtis[jti] = userID
	return nil
}

func (s *memRefreshStore) Exists(_ context.Context, jti string) (bool, error) {
	_, ok := s.jtis[jti]
	return ok, nil
}

func (s *memRefreshStore) Delete(_ context.Context, jti string) error {
	delete(s.jtis, jti)
	return nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, *JWTService, *memUserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtService := NewJWTService("test-secret", time.Hour, 24*time.Hour)
	users := newMemUserStore()
	h := NewHandler(users, jwtService, newMemRefreshStore(), zap.NewNop())

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	return r, jwtService, users
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

func tokensFrom(t *testing.T, w *httptest.ResponseRecorder) TokenResponse {
	t.Helper()
	var body struct {
		Success bool          `json:"success"`
		Data    TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.Data.AccessToken)
	require.NotEmpty(t, body.Data.RefreshToken)
	return body.Data
}

func TestRegisterIssuesTokensForNewUser(t *testing.T) {
	r, jwtService, users := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)

	tokens := tokensFrom(t, w)
	claims, err := jwtService.Validate(tokens.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, users.byName["alice"].ID, userID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"username": "alice", "password": "other"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"username": "alice"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginVerifiesCredentials(t *testing.T) {
	r, jwtService, users := newAuthRouter(t)
	doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"username": "bob", "password": "secret"})

	w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"username": "bob", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	tokens := tokensFrom(t, w)
	claims, err := jwtService.Validate(tokens.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, users.byName["bob"].ID.Hex(), claims.Subject)

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"username": "bob", "password": "wrong"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"username": "nobody", "password": "secret"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"username": "bob"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	r, _, _ := newAuthRouter(t)
	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"username": "carol", "password": "secret"})
	tokens := tokensFrom(t, w)

	w = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	rotated := tokensFrom(t, w)
	require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The presented token was revoked by rotation.
	w = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": rotated.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshRejectsGarbageAndAccessTokens(t *testing.T) {
	r, _, _ := newAuthRouter(t)
	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"username": "dave", "password": "secret"})
	tokens := tokensFrom(t, w)

	w = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": "garbage"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": tokens.AccessToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	r, _, _ := newAuthRouter(t)
	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"username": "erin", "password": "secret"})
	tokens := tokensFrom(t, w)

	w = doJSON(t, r, http.MethodPost, "/auth/logout", gin.H{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
