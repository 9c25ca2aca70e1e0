package auth

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJWTGenerateValidateAccess(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 24*time.Hour)
	userID := primitive.NewObjectID()

	token, err := svc.GenerateAccess(userID)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	claims, err := svc.Validate(token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	got, err := claims.UserID()
	if err != nil {
		t.Fatalf("parse subject: %v", err)
	}
	if got != userID {
		t.Fatalf("subject = %s, want %s", got.Hex(), userID.Hex())
	}
}

func TestJWTRefreshCarriesJTI(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 24*time.Hour)

	token, jti, err := svc.GenerateRefresh(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	if jti == "" {
		t.Fatal("expected non-empty jti")
	}

	claims, err := svc.Validate(token, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if claims.ID != jti {
		t.Fatalf("claims.ID = %s, want %s", claims.ID, jti)
	}
}

func TestJWTRejectsWrongTokenType(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 24*time.Hour)
	userID := primitive.NewObjectID()

	access, err := svc.GenerateAccess(userID)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	if _, err := svc.Validate(access, TokenTypeRefresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error for access-as-refresh, got %v", err)
	}

	refresh, _, err := svc.GenerateRefresh(userID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	if _, err := svc.Validate(refresh, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error for refresh-as-access, got %v", err)
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", -time.Minute, 24*time.Hour)
	token, err := svc.GenerateAccess(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	if _, err := svc.Validate(token, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestJWTRejectsBadSignature(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 24*time.Hour)
	other := NewJWTService("other-secret", time.Hour, 24*time.Hour)

	token, err := svc.GenerateAccess(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	if _, err := other.Validate(token, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if _, err := svc.Validate("not-a-token", TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}
