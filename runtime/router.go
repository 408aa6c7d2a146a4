package runtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"telechat/contract"
	"telechat/domain"
	"telechat/moderation"
)

// Router validates, persists, and fans out everything a connection sends.
//
// Every per-message failure is handled locally and converted into a system
// notice on the offending connection only; nothing propagates back to the
// transport layer and nothing destabilizes other connections. Inbound order
// for a single connection is preserved through dispatch and fan-out; across
// senders, arrival order at the router wins.
type Router struct {
	log           *slog.Logger
	registry      *Registry
	membership    *Membership
	limiter       *RateLimiter
	messages      contract.MessageStore
	consultations contract.ConsultationStore
	status        *StatusBroadcaster
	moderator     moderation.Moderator
	maxPayload    int
	validate      *validator.Validate
	clock         func() time.Time
}

func NewRouter(
	log *slog.Logger,
	registry *Registry,
	membership *Membership,
	limiter *RateLimiter,
	messages contract.MessageStore,
	consultations contract.ConsultationStore,
	status *StatusBroadcaster,
	moderator moderation.Moderator,
	maxPayload int,
) *Router {
	return &Router{
		log:           log,
		registry:      registry,
		membership:    membership,
		limiter:       limiter,
		messages:      messages,
		consultations: consultations,
		status:        status,
		moderator:     moderator,
		maxPayload:    maxPayload,
		validate:      validator.New(),
		clock:         time.Now,
	}
}

// Connect admits an authenticated connection into the registry. The
// transport layer calls this once per successful handshake.
func (ro *Router) Connect(userID string, role domain.Role, t contract.Transport) *Connection {
	conn := ro.registry.Register(userID, role, t)
	ro.log.Info("Connection registered",
		"user_id", userID, "role", role, "generation", conn.Generation)
	return conn
}

// Touch refreshes a connection's liveness timestamp, used by the transport
// pong handler.
func (ro *Router) Touch(userID string) {
	ro.registry.Touch(userID)
}

// HandleInbound runs the full inbound pipeline for one raw client payload.
// Each step short-circuits to a system notice on failure; the payload is
// then dropped.
func (ro *Router) HandleInbound(userID string, raw []byte) {
	// Liveness is refreshed on any inbound traffic, valid or not.
	ro.registry.Touch(userID)

	if len(raw) > ro.maxPayload {
		ro.notice(userID, "", "message too large")
		return
	}

	var frame domain.InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		ro.notice(userID, "", "invalid message format")
		return
	}
	if err := ro.validate.Struct(frame); err != nil {
		ro.notice(userID, frame.ConversationID, "invalid message format")
		return
	}

	if !ro.limiter.CheckAndConsume(userID) {
		ro.notice(userID, frame.ConversationID, "rate limit exceeded")
		return
	}

	switch frame.Type {
	case domain.FrameJoin:
		ro.handleJoin(userID, frame.ConversationID)
	case domain.FrameLeave:
		ro.handleLeave(userID, frame.ConversationID)
	case domain.FrameMessage:
		ro.handleChat(userID, frame)
	case domain.FrameTyping:
		ro.handleTyping(userID, frame.ConversationID)
	case domain.FrameMarkRead:
		ro.handleMarkRead(userID, frame)
	case domain.FrameHeartbeat:
		// Nothing to do: liveness was already refreshed above.
	default:
		ro.log.Warn("Unknown frame type dropped", "user_id", userID, "type", frame.Type)
	}
}

func (ro *Router) handleJoin(userID, conversationID string) {
	if !ro.membership.Join(userID, conversationID) {
		return
	}
	ro.fanoutNotice(conversationID, userID, domain.NoticeData{
		Text:   fmt.Sprintf("user %s joined", userID),
		UserID: userID,
	})
}

func (ro *Router) handleLeave(userID, conversationID string) {
	if !ro.membership.Leave(userID, conversationID) {
		return
	}
	ro.fanoutNotice(conversationID, userID, domain.NoticeData{
		Text:   fmt.Sprintf("user %s left", userID),
		UserID: userID,
	})
}

func (ro *Router) handleChat(userID string, frame domain.InboundFrame) {
	conversationID := frame.ConversationID
	if !ro.membership.IsMember(userID, conversationID) {
		ro.notice(userID, conversationID, "not in this conversation")
		return
	}

	conn, ok := ro.registry.GetActive(userID)
	if !ok {
		// The sender disconnected while this frame was in flight.
		return
	}

	content, censored := ro.moderator.Censor(frame.Data.Content)
	if len(censored) > 0 {
		ro.log.Warn("Message content censored",
			"user_id", userID,
			"conversation_id", conversationID,
			"lang", moderation.DetectLanguage(frame.Data.Content),
			"words", len(censored))
	}

	contentType := frame.Data.ContentType
	if contentType == "" {
		contentType = domain.ContentTypeText
	}

	msg := domain.ChatMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       userID,
		SenderRole:     conn.Role,
		Content:        content,
		ContentType:    contentType,
		CreatedAt:      ro.clock().UTC(),
		Read:           false,
	}

	// Persistence failures are logged and the broadcast proceeds anyway:
	// peers may then see a message absent from history. Accepted trade-off,
	// the store defines no compensation.
	if err := ro.messages.Add(msg); err != nil {
		ro.log.Error("Message persistence failed",
			"message_id", msg.ID, "conversation_id", conversationID, "error", err)
	}
	if err := ro.consultations.UpdateLastMessage(conversationID, msg.Content, msg.CreatedAt); err != nil {
		ro.log.Error("Last-message update failed",
			"conversation_id", conversationID, "error", err)
	}

	ro.status.Broadcast(conversationID)

	frameOut := domain.OutboundFrame{
		Type:           domain.FrameMessage,
		ConversationID: conversationID,
	}
	for _, member := range ro.membership.Members(conversationID) {
		if member == userID {
			continue
		}
		peerCopy := msg
		frameOut.Message = &peerCopy
		if !ro.registry.Send(member, frameOut) {
			ro.log.Debug("Recipient offline, message skipped",
				"recipient", member, "message_id", msg.ID)
		}
	}

	// The sender's echo carries read=true so its own view marks the message
	// as seen without a round trip.
	echo := msg
	echo.Read = true
	ro.registry.Send(userID, domain.OutboundFrame{
		Type:           domain.FrameMessage,
		ConversationID: conversationID,
		Message:        &echo,
	})
}

func (ro *Router) handleTyping(userID, conversationID string) {
	frame := domain.OutboundFrame{
		Type:           domain.FrameTyping,
		ConversationID: conversationID,
		Data:           &domain.NoticeData{UserID: userID},
	}
	for _, member := range ro.membership.Members(conversationID) {
		if member == userID {
			continue
		}
		ro.registry.Send(member, frame)
	}
}

func (ro *Router) handleMarkRead(userID string, frame domain.InboundFrame) {
	conversationID := frame.ConversationID
	if !ro.membership.IsMember(userID, conversationID) {
		ro.notice(userID, conversationID, "not in this conversation")
		return
	}

	ids := lo.FilterMap(frame.Data.MessageIDs, func(raw string, _ int) (uuid.UUID, bool) {
		id, err := uuid.Parse(raw)
		if err != nil {
			ro.log.Debug("Discarding unparseable message id", "user_id", userID, "id", raw)
			return uuid.UUID{}, false
		}
		return id, true
	})
	if len(ids) == 0 {
		return
	}

	// Read receipts are persistence-only: no live fan-out to peers.
	if err := ro.messages.MarkRead(conversationID, ids); err != nil {
		ro.log.Error("Read-flag persistence failed",
			"conversation_id", conversationID, "error", err)
	}
}

// Disconnect is the single cleanup path for graceful closes, timeouts, and
// replacements. The generation check is decisive: a stale close belonging to
// an already-replaced connection is silently ignored, leaving the
// replacement and its room memberships untouched.
func (ro *Router) Disconnect(userID string, generation uint64) {
	if !ro.registry.Remove(userID, generation) {
		ro.log.Debug("Stale close event ignored",
			"user_id", userID, "generation", generation)
		return
	}

	ro.limiter.Forget(userID)

	for _, conversationID := range ro.membership.LeaveAll(userID) {
		ro.fanoutNotice(conversationID, userID, domain.NoticeData{
			Text:   fmt.Sprintf("user %s disconnected", userID),
			UserID: userID,
		})
	}

	ro.log.Info("Connection removed", "user_id", userID, "generation", generation)
}

// notice delivers a system notice to the originating connection only.
func (ro *Router) notice(userID, conversationID, text string) {
	ro.registry.Send(userID, domain.OutboundFrame{
		Type:           domain.FrameSystem,
		ConversationID: conversationID,
		Data:           &domain.NoticeData{Text: text},
	})
}

// fanoutNotice delivers a transient system notice to every member of the
// conversation except the user it concerns.
func (ro *Router) fanoutNotice(conversationID, aboutUserID string, data domain.NoticeData) {
	frame := domain.OutboundFrame{
		Type:           domain.FrameSystem,
		ConversationID: conversationID,
		Data:           &data,
	}
	for _, member := range ro.membership.Members(conversationID) {
		if member == aboutUserID {
			continue
		}
		ro.registry.Send(member, frame)
	}
}
