package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
)

// ChatService serves direct conversations between two users.
type ChatService struct {
	messages      repositories.MessageRepository
	users         repositories.UserRepository
	notifications *NotificationService
	log           *zap.Logger
}

func NewChatService(messages repositories.MessageRepository, users repositories.UserRepository, notifications *NotificationService, log *zap.Logger) *ChatService {
	return &ChatService{messages: messages, users: users, notifications: notifications, log: log}
}

func (s *ChatService) counterpart(ctx context.Context, me, other uint) error {
	if other == 0 {
		return apperrors.Validation("otherUserId", "must be a positive integer")
	}
	if other == me {
		return apperrors.Validation("otherUserId", "cannot open a conversation with yourself")
	}
	_, err := s.users.GetUserByID(ctx, other)
	return err
}

// Conversation returns the messages between me and other, oldest first.
func (s *ChatService) Conversation(ctx context.Context, me, other uint) ([]models.Message, error) {
	if err := s.counterpart(ctx, me, other); err != nil {
		return nil, err
	}
	messages, err := s.messages.GetConversation(ctx, me, other)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return messages, nil
}

// Send stores a message from me to other and notifies the recipient.
func (s *ChatService) Send(ctx context.Context, me, other uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validation("content", "must not be empty")
	}
	if err := s.counterpart(ctx, me, other); err != nil {
		return nil, err
	}

	msg := &models.Message{SenderID: me, RecipientID: other, Content: content}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	s.notifications.Notify(ctx, other, "You have a new message", fmt.Sprintf("/chat/%d", me), NotificationTypeMessage)
	s.log.Debug("message sent", zap.Uint("from", me), zap.Uint("to", other))
	return msg, nil
}
