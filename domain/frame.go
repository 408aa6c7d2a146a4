package domain

// Frame types accepted from clients.
const (
	FrameJoin      = "join"
	FrameLeave     = "leave"
	FrameMessage   = "message"
	FrameTyping    = "typing"
	FrameMarkRead  = "markRead"
	FrameHeartbeat = "heartbeat"
)

// Frame types pushed to clients.
const (
	FrameSystem             = "system"
	FrameConsultationUpdate = "consultation_update"
)

// InboundFrame is the envelope every client payload must fit.
// Type and ConversationID are the minimum shape; anything else rides in Data.
type InboundFrame struct {
	Type           string      `json:"type" validate:"required,oneof=join leave message typing markRead heartbeat"`
	ConversationID string      `json:"conversationId" validate:"required"`
	Data           InboundData `json:"data,omitempty"`
}

// InboundData carries the type-specific part of a client payload.
type InboundData struct {
	Content     string   `json:"content,omitempty"`
	ContentType string   `json:"contentType,omitempty"`
	MessageIDs  []string `json:"messageIds,omitempty"`
}

// OutboundFrame is the envelope for everything pushed to a client. Exactly
// one of Message, Data, or Consultation is set, depending on Type.
type OutboundFrame struct {
	Type           string                `json:"type"`
	ConversationID string                `json:"conversationId,omitempty"`
	Message        *ChatMessage          `json:"message,omitempty"`
	Data           *NoticeData           `json:"data,omitempty"`
	Consultation   *ConsultationSnapshot `json:"consultation,omitempty"`
}

// NoticeData is the payload of transient system and typing frames.
type NoticeData struct {
	Text   string `json:"text,omitempty"`
	UserID string `json:"userId,omitempty"`
}
