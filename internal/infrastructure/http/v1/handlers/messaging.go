package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/messaging"
	"pharmaledger/internal/domain/notification"
	"pharmaledger/internal/infrastructure/http/v1/dto"
)

// MessageService schedules SMS messages and serves the gateway devices.
type MessageService interface {
	Create(ctx context.Context, owner id.ID, in messaging.Input) (*messaging.Message, error)
	Get(ctx context.Context, owner, messageID id.ID) (*messaging.Message, error)
	List(ctx context.Context, owner id.ID, filter messaging.Filter) (domain.ListResult[*messaging.Message], error)
	Update(ctx context.Context, owner, messageID id.ID, in messaging.Input) (*messaging.Message, error)
	Delete(ctx context.Context, owner, messageID id.ID) error
	DeviceList(ctx context.Context, status messaging.Status) (domain.ListResult[*messaging.Message], error)
	MarkStatus(ctx context.Context, messageID id.ID, status messaging.Status) (*messaging.Message, error)
}

// NotificationService manages per-user notifications.
type NotificationService interface {
	Create(ctx context.Context, userID id.ID, in notification.Input) (*notification.Notification, error)
	List(ctx context.Context, userID id.ID, unreadOnly bool, limit, offset int) ([]*notification.Notification, int64, error)
	MarkRead(ctx context.Context, userID, notificationID id.ID) error
	Delete(ctx context.Context, userID, notificationID id.ID) error
}

// MessageHandler serves scheduled messages.
type MessageHandler struct {
	*BaseHandler
	service MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(base *BaseHandler, service MessageService) *MessageHandler {
	return &MessageHandler{BaseHandler: base, service: service}
}

// Create handles POST /messages
func (h *MessageHandler) Create(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var in messaging.Input
	if !h.BindJSON(c, &in) {
		return
	}

	m, err := h.service.Create(c.Request.Context(), owner, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// List handles GET /messages
func (h *MessageHandler) List(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var q dto.MessageListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), owner, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	messageID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.Get(c.Request.Context(), owner, messageID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Update handles PUT /messages/:id
func (h *MessageHandler) Update(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	messageID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var in messaging.Input
	if !h.BindJSON(c, &in) {
		return
	}

	m, err := h.service.Update(c.Request.Context(), owner, messageID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Delete handles DELETE /messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	messageID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), owner, messageID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// DeviceList handles GET /device/messages?status=
func (h *MessageHandler) DeviceList(c *gin.Context) {
	var status messaging.Status
	if raw := c.Query("status"); raw != "" {
		parsed, err := messaging.ParseStatus(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		status = parsed
	}

	result, err := h.service.DeviceList(c.Request.Context(), status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// DeviceMarkStatus handles PATCH /device/messages/:id
func (h *MessageHandler) DeviceMarkStatus(c *gin.Context) {
	messageID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.MessageStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	status, err := messaging.ParseStatus(req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	m, err := h.service.MarkStatus(c.Request.Context(), messageID, status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// NotificationHandler serves the caller's notifications.
type NotificationHandler struct {
	*BaseHandler
	service NotificationService
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(base *BaseHandler, service NotificationService) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, service: service}
}

// Create handles POST /notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	userID, ok := h.Owner(c)
	if !ok {
		return
	}

	var in notification.Input
	if !h.BindJSON(c, &in) {
		return
	}

	n, err := h.service.Create(c.Request.Context(), userID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, n)
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.Owner(c)
	if !ok {
		return
	}

	var q dto.NotificationListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	items, total, err := h.service.List(c.Request.Context(), userID, q.UnreadOnly, q.Limit, q.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(domain.ListResult[*notification.Notification]{
		Items:      items,
		TotalCount: total,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}))
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.Owner(c)
	if !ok {
		return
	}
	notificationID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "notification marked as read")
}

// Delete handles DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := h.Owner(c)
	if !ok {
		return
	}
	notificationID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, notificationID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
