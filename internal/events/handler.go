package events

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// Store is the event persistence surface the handlers need.
type Store interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, name, description string, startTime, endTime time.Time, lat, lon float64, orgID primitive.ObjectID) (*models.Event, error)
	ListAll(ctx context.Context) ([]models.EventView, error)
	SetAttendance(ctx context.Context, userID, eventID primitive.ObjectID, attending bool) (bool, error)
	GetAttendingEvents(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error)
	GetAttendingStatus(ctx context.Context, userID, eventID primitive.ObjectID) (bool, error)
}

// CreateRequest is the body for POST /event/create.
type CreateRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	StartTime      string   `json:"startTime" binding:"required"`
	EndTime        string   `json:"endTime" binding:"required"`
	Latitude       *float64 `json:"latitude" binding:"required"`
	Longitude      *float64 `json:"longitude" binding:"required"`
	OrganizationID string   `json:"organizationId" binding:"required"`
}

// AttendRequest is the body for POST /event/attend. Action true joins
// the event, false leaves it.
type AttendRequest struct {
	Event  string `json:"event" binding:"required"`
	Action *bool  `json:"action" binding:"required"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /event/. Public; returns events joined with their
// organization, ascending by start time.
func (h *Handler) List(c *gin.Context) {
	views, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list events", zap.Error(err))
		response.Internal(c, "failed to fetch events")
		return
	}
	response.OK(c, gin.H{"events": views})
}

// Create handles POST /event/create.
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(primitive.ObjectID)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	startTime, err := parseTime(req.StartTime)
	if err != nil {
		response.BadRequest(c, "invalid startTime")
		return
	}
	endTime, err := parseTime(req.EndTime)
	if err != nil {
		response.BadRequest(c, "invalid endTime")
		return
	}
	orgID, err := primitive.ObjectIDFromHex(req.OrganizationID)
	if err != nil {
		response.BadRequest(c, "invalid organizationId")
		return
	}

	event, err := h.store.Create(c.Request.Context(), userID, req.Title, req.Description, startTime, endTime, *req.Latitude, *req.Longitude, orgID)
	if err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.OK(c, gin.H{"event": event})
}

// Attend handles POST /event/attend. Responds with updated=false when
// the join was a no-op because the user is already attending.
func (h *Handler) Attend(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(primitive.ObjectID)
	var req AttendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "event and action required")
		return
	}
	eventID, err := primitive.ObjectIDFromHex(req.Event)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	updated, err := h.store.SetAttendance(c.Request.Context(), userID, eventID, *req.Action)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrEventNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.logger.Error("set attendance", zap.Error(err))
		response.Internal(c, "failed to update attendance")
		return
	}
	response.OK(c, gin.H{"updated": updated})
}

// Attending handles GET /event/attending and GET /user/events.
func (h *Handler) Attending(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(primitive.ObjectID)
	list, err := h.store.GetAttendingEvents(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("get attending events", zap.Error(err))
		response.Internal(c, "failed to fetch attending events")
		return
	}
	response.OK(c, gin.H{"events": list})
}

// Status handles GET /event/status/:eventId.
func (h *Handler) Status(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(primitive.ObjectID)
	eventID, err := primitive.ObjectIDFromHex(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	status, err := h.store.GetAttendingStatus(c.Request.Context(), userID, eventID)
	if err != nil {
		h.logger.Error("get attending status", zap.Error(err))
		response.Internal(c, "failed to fetch status")
		return
	}
	response.OK(c, gin.H{"status": status})
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
