package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anonto42/sparkmatch/backend/internal/models"
)

// Notification endpoints, always for the session's own user

func (c *APIClient) GetNotifications(ctx context.Context, page, pageSize int) (*models.NotificationPage, error) {
	var result models.NotificationPage
	path := fmt.Sprintf("/notifications/user/%d?page=%d&pageSize=%d", c.session.UserID, page, pageSize)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) UnreadCount(ctx context.Context) (int64, error) {
	var result struct {
		Count int64 `json:"count"`
	}
	if err := c.get(ctx, fmt.Sprintf("/notifications/user/%d/unread-count", c.session.UserID), &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

func (c *APIClient) MarkNotificationRead(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", id), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *APIClient) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var result struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/notifications/user/%d/read-all", c.session.UserID), nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}
