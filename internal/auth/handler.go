package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
	"github.com/gatherly/backend/pkg/utils"
)

// UserStore is the user persistence surface the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body for POST /auth/refresh and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries an access/refresh token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	users   UserStore
	jwt     *JWTService
	refresh RefreshStore
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(users UserStore, jwt *JWTService, refresh RefreshStore, logger *zap.Logger) *Handler {
	return &Handler{users: users, jwt: jwt, refresh: refresh, logger: logger}
}

// Register handles POST /auth/register.
// Status codes are kept as existing clients expect them: 404 for
// missing fields, 401 for a duplicate username.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NotFound(c, "username or password missing")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, hash)
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			response.Unauthorized(c, "user with username already exists")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to register user")
		return
	}

	tokens, err := h.issuePair(c, user)
	if err != nil {
		response.Internal(c, "failed to generate tokens")
		return
	}
	response.OK(c, tokens)
}

// Login handles POST /auth/login.
// Status codes kept for existing clients: 404 for missing fields, 400
// for bad credentials.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NotFound(c, "username or password missing")
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.BadRequest(c, "incorrect username or password")
			return
		}
		h.logger.Error("get user", zap.Error(err))
		response.Internal(c, "failed to log in")
		return
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		response.BadRequest(c, "incorrect username or password")
		return
	}

	tokens, err := h.issuePair(c, user)
	if err != nil {
		response.Internal(c, "failed to generate tokens")
		return
	}
	response.OK(c, tokens)
}

// Refresh handles POST /auth/refresh. The presented refresh token is
// rotated: its jti is revoked and a fresh pair issued.
func (h *Handler) Refresh(c *gin.Context) {
	claims, ok := h.bindRefresh(c)
	if !ok {
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Unauthorized(c, "invalid refresh token")
		return
	}
	if err := h.refresh.Delete(c.Request.Context(), claims.ID); err != nil {
		h.logger.Error("revoke refresh token", zap.Error(err))
		response.Internal(c, "failed to refresh tokens")
		return
	}

	tokens, err := h.issuePair(c, &models.User{ID: userID})
	if err != nil {
		response.Internal(c, "failed to generate tokens")
		return
	}
	response.OK(c, tokens)
}

// Logout handles POST /auth/logout. Revokes the refresh token; the
// access token simply ages out.
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := h.bindRefresh(c)
	if !ok {
		return
	}
	if err := h.refresh.Delete(c.Request.Context(), claims.ID); err != nil {
		h.logger.Error("revoke refresh token", zap.Error(err))
		response.Internal(c, "failed to log out")
		return
	}
	response.OK(c, gin.H{"message": "logged out"})
}

// bindRefresh validates the refresh token in the request body against
// signature, type, and the allowlist.
func (h *Handler) bindRefresh(c *gin.Context) (*Claims, bool) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "refresh_token required")
		return nil, false
	}
	claims, err := h.jwt.Validate(req.RefreshToken, TokenTypeRefresh)
	if err != nil {
		response.Unauthorized(c, "invalid refresh token")
		return nil, false
	}
	live, err := h.refresh.Exists(c.Request.Context(), claims.ID)
	if err != nil {
		h.logger.Error("check refresh token", zap.Error(err))
		response.Internal(c, "failed to verify refresh token")
		return nil, false
	}
	if !live {
		response.Unauthorized(c, "refresh token revoked")
		return nil, false
	}
	return claims, true
}

func (h *Handler) issuePair(c *gin.Context, user *models.User) (TokenResponse, error) {
	access, err := h.jwt.GenerateAccess(user.ID)
	if err != nil {
		return TokenResponse{}, err
	}
	refreshToken, jti, err := h.jwt.GenerateRefresh(user.ID)
	if err != nil {
		return TokenResponse{}, err
	}
	if err := h.refresh.Save(c.Request.Context(), jti, user.ID.Hex(), h.jwt.RefreshTTL()); err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{AccessToken: access, RefreshToken: refreshToken}, nil
}
