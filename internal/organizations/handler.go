package organizations

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// Store is the organization persistence surface the handlers need.
type Store interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, name, description string) (*models.Organization, error)
	ListAll(ctx context.Context) ([]models.Organization, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Organization, error)
}

// CreateRequest is the body for POST /org/create.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Handler handles organization HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /org/. Public; returns every organization.
func (h *Handler) List(c *gin.Context) {
	orgs, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list organizations", zap.Error(err))
		response.Internal(c, "failed to fetch organizations")
		return
	}
	response.OK(c, gin.H{"organizations": orgs})
}

// ListMine handles GET /org/user. Returns organizations owned by the
// authenticated user.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(primitive.ObjectID)
	orgs, err := h.store.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list organizations by owner", zap.Error(err))
		response.Internal(c, "failed to fetch organizations")
		return
	}
	response.OK(c, gin.H{"organizations": orgs})
}

// Create handles POST /org/create.
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(primitive.ObjectID)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	org, err := h.store.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		h.logger.Error("create organization", zap.Error(err))
		response.Internal(c, "failed to create organization")
		return
	}
	response.OK(c, gin.H{"organization": org})
}
