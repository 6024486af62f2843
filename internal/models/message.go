package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message between two users (MongoDB)
type Message struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderID    uint               `json:"senderId" bson:"sender_id"`
	RecipientID uint               `json:"recipientId" bson:"recipient_id"`
	Content     string             `json:"content" bson:"content"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
}

// SendMessageRequest defines the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}
