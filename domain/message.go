// Package domain contains core concepts of the telemedicine chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentTypeText is the default content type when a client omits one.
const ContentTypeText = "text"

// ChatMessage represents an immutable chat event written through to the
// message store and fanned out to conversation members. The Read flag is the
// only field that differs between recipients: the sender's echo carries
// read=true so its own view marks the message as already seen.
type ChatMessage struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderRole     Role      `json:"senderRole"`
	Content        string    `json:"content"`
	ContentType    string    `json:"contentType"`
	CreatedAt      time.Time `json:"createdAt"`
	Read           bool      `json:"read"`
}
