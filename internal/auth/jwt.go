package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Token types carried in the token_type claim. Only access tokens
// authenticate API requests; refresh tokens are accepted solely by the
// refresh and logout endpoints.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims holds JWT claims. Subject is the user's ObjectID hex.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim into an ObjectID.
func (c *Claims) UserID() (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return id, nil
}

// JWTService issues and validates access/refresh token pairs.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService creates a JWT service with independent access and
// refresh expirations.
func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// RefreshTTL returns the refresh token lifetime, used to expire
// allowlist entries alongside the token itself.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// GenerateAccess creates an access token for the user.
func (s *JWTService) GenerateAccess(userID primitive.ObjectID) (string, error) {
	token, _, err := s.generate(userID, TokenTypeAccess, s.accessTTL)
	return token, err
}

// GenerateRefresh creates a refresh token for the user and returns its
// JWT ID so callers can track it in the refresh allowlist.
func (s *JWTService) GenerateRefresh(userID primitive.ObjectID) (token, jti string, err error) {
	return s.generate(userID, TokenTypeRefresh, s.refreshTTL)
}

func (s *JWTService) generate(userID primitive.ObjectID, tokenType string, ttl time.Duration) (token, jti string, err error) {
	jti = uuid.New().String()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// Validate parses and validates a token of the given type, returning
// claims or ErrInvalidToken (malformed, expired, bad signature, or
// wrong token type).
func (s *JWTService) Validate(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
