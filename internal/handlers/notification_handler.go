package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.POST("/notifications", h.CreateNotification)
	g.GET("/notifications/user/:recipientId", h.ListNotifications)
	g.GET("/notifications/user/:recipientId/unread-count", h.GetUnreadCount)
	g.GET("/notifications/user/:recipientId/grouped", h.GetGroupedNotifications)
	g.PATCH("/notifications/user/:recipientId/read-all", h.MarkAllAsRead)
	g.PATCH("/notifications/:id/read", h.MarkAsRead)
	g.PATCH("/notifications/:id", h.UpdateNotification)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// ownRecipient checks that the :recipientId path parameter is the caller.
func (h *NotificationHandler) ownRecipient(c echo.Context) (uint, error) {
	currentUserID, err := requireUser(c)
	if err != nil {
		return 0, err
	}
	recipientID, err := parseIDParam(c, "recipientId")
	if err != nil {
		return 0, err
	}
	if recipientID != currentUserID {
		return 0, echo.NewHTTPError(http.StatusForbidden, "Cannot access another user's notifications")
	}
	return recipientID, nil
}

// ownNotification checks that the :id notification exists and belongs to the caller.
func (h *NotificationHandler) ownNotification(c echo.Context) (uint, error) {
	currentUserID, err := requireUser(c)
	if err != nil {
		return 0, err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return 0, err
	}
	n, err := h.notificationService.Get(c.Request().Context(), id)
	if err != nil {
		return 0, httpError(err)
	}
	if n.RecipientID != currentUserID {
		return 0, echo.NewHTTPError(http.StatusForbidden, "Cannot modify another user's notification")
	}
	return id, nil
}

// CreateNotification raises a notification for any recipient
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}

	var req models.CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.notificationService.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, n)
}

// ListNotifications returns one page of the caller's notifications
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	recipientID, err := h.ownRecipient(c)
	if err != nil {
		return err
	}

	// unparsable values fall back to the defaults like absent ones
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))

	result, err := h.notificationService.ListByUser(c.Request().Context(), recipientID, page, pageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	recipientID, err := h.ownRecipient(c)
	if err != nil {
		return err
	}

	count, err := h.notificationService.UnreadCount(c.Request().Context(), recipientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	recipientID, err := h.ownRecipient(c)
	if err != nil {
		return err
	}

	grouped, err := h.notificationService.Grouped(c.Request().Context(), recipientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, grouped)
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := h.ownNotification(c)
	if err != nil {
		return err
	}

	n, err := h.notificationService.MarkRead(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, n)
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	recipientID, err := h.ownRecipient(c)
	if err != nil {
		return err
	}

	count, err := h.notificationService.MarkAllRead(c.Request().Context(), recipientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// UpdateNotification applies a partial update
func (h *NotificationHandler) UpdateNotification(c echo.Context) error {
	id, err := h.ownNotification(c)
	if err != nil {
		return err
	}

	var req models.UpdateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.notificationService.Update(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, n)
}

// DeleteNotification removes a notification
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := h.ownNotification(c)
	if err != nil {
		return err
	}

	if err := h.notificationService.Remove(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
