package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	notificationapp "github.com/pos/backend/internal/application/notification"
	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/pos/backend/internal/interfaces/http/middleware"
)

// NotificationHandler exposes the operator notification queue
type NotificationHandler struct {
	BaseHandler
	service *notificationapp.Service
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *notificationapp.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RegisterRoutes registers notification routes
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/:id", h.Get)
		notifications.POST("/:id/resend", h.Resend)
	}
}

// listQuery holds query parameters for listing notifications
type listQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=QUEUED SENDING SENT FAILED DEAD"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}
	status := notification.Status(query.Status)
	if query.Status == "" {
		status = notification.StatusDead
	}

	responses, err := h.service.ListByStatus(c.Request.Context(), status, query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// Get handles GET /api/v1/notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}
	id := uuid.MustParse(uri.ID)

	response, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// Resend handles POST /api/v1/notifications/:id/resend
func (h *NotificationHandler) Resend(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}
	id := uuid.MustParse(uri.ID)

	response, err := h.service.Resend(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}
