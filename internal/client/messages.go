package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anonto42/sparkmatch/backend/internal/models"
)

// Message endpoints

func (c *APIClient) GetMessages(ctx context.Context, otherUserID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := c.get(ctx, fmt.Sprintf("/chat/%d/messages", otherUserID), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *APIClient) SendMessage(ctx context.Context, otherUserID uint, content string) (*models.Message, error) {
	var message models.Message
	req := models.SendMessageRequest{Content: content}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/chat/%d/messages", otherUserID), req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}
