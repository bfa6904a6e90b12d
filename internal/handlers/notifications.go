package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

type NotificationsHandler struct {
	base
}

func NewNotificationsHandler(service *workflow.Service, logger *slog.Logger) *NotificationsHandler {
	return &NotificationsHandler{base: newBase(service, logger)}
}

// ListNotifications godoc
// @Summary     List notifications
// @Description Returns the caller's notifications, newest first
// @Tags        notifications
// @Produce     json
// @Security    Bearer
// @Param       unread query bool false "Only unread notifications"
// @Success     200 {object} models.NotificationListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /notifications [get]
func (h *NotificationsHandler) ListNotifications(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	unreadOnly := false
	if raw := c.Query("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid unread flag", Message: err.Error()})
			return
		}
		unreadOnly = v
	}

	notifications, err := h.service.ListNotifications(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, models.NotificationListResponse{Notifications: nonNil(notifications), Unread: unread})
}

// MarkRead godoc
// @Summary     Mark notification read
// @Tags        notifications
// @Produce     json
// @Security    Bearer
// @Param       notification_id path string true "Notification ID (UUID)"
// @Success     200 {object} models.StatusResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /notifications/{notification_id}/read [post]
func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	notificationID, ok := pathID(c, "notification_id")
	if !ok {
		return
	}

	if err := h.service.MarkNotificationRead(c.Request.Context(), userID, notificationID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "read"})
}

// Dashboard godoc
// @Summary     Startup dashboard
// @Description Per-status counts of the startup's projects, proposals, funding rounds and mentorship sessions
// @Tags        dashboard
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Dashboard
// @Failure     403 {object} models.ErrorResponse
// @Router      /dashboard [get]
func (h *NotificationsHandler) Dashboard(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
