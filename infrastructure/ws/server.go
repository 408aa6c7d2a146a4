// Package ws is the WebSocket edge of the chat layer: it authenticates the
// handshake, adapts gorilla connections to the router's transport contract,
// and pumps frames both ways.
package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"telechat/contract"
	"telechat/runtime"
)

const (
	readBufferSize  = 4096
	writeBufferSize = 4096
)

// Handler upgrades HTTP requests to chat connections.
type Handler struct {
	log        *slog.Logger
	router     *runtime.Router
	verifier   contract.TokenVerifier
	upgrader   websocket.Upgrader
	readLimit  int64
	pongWait   time.Duration
	bufferSize int
}

// NewHandler builds the WebSocket entry point. maxPayload is the router's
// payload ceiling: the socket read limit sits above it so an oversized frame
// still reaches the router and earns a notice instead of killing the
// connection outright.
func NewHandler(log *slog.Logger, router *runtime.Router, verifier contract.TokenVerifier,
	maxPayload int, pongWait time.Duration, bufferSize int) *Handler {
	return &Handler{
		log:      log,
		router:   router,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		readLimit:  int64(maxPayload) * 2,
		pongWait:   pongWait,
		bufferSize: bufferSize,
	}
}

// Serve is the gin handler for GET /ws?token=...
//
// Authentication happens after the upgrade so the client gets a proper close
// frame (policy violation) rather than a failed handshake it cannot
// distinguish from a network error.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Info("Upgrade failed", "error", err)
		return
	}

	userID, role, err := h.verifier.Verify(c.Query("token"))
	if err != nil {
		h.log.Info("Rejecting unauthenticated connection", "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication required"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	conn.SetReadLimit(h.readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		h.router.Touch(userID)
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	t := newTransport(h.log, conn, h.bufferSize)
	registered := h.router.Connect(userID, role, t)
	go t.writePump()

	h.readLoop(userID, registered.Generation, conn, t)
}

// readLoop drains inbound frames until the socket dies, then runs the shared
// cleanup path with this connection's generation. If a newer connection
// already replaced this one, that cleanup is a no-op.
func (h *Handler) readLoop(userID string, generation uint64, conn *websocket.Conn, t *transport) {
	defer func() {
		_ = t.Close()
		h.router.Disconnect(userID, generation)
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				h.log.Info("Peer closed connection", "user_id", userID)
			} else {
				h.log.Debug("Read failed", "user_id", userID, "error", err)
			}
			return
		}
		// Any inbound traffic counts as liveness, not just pongs.
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		h.router.HandleInbound(userID, data)
	}
}
