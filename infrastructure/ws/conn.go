package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"telechat/domain"
	"telechat/errors"
)

const (
	writeWait = 10 * time.Second
	pingWait  = 5 * time.Second
)

// transport wraps one gorilla connection behind contract.Transport. Outbound
// frames go through a buffered channel drained by a single write pump, so
// frames from any goroutine are serialized and delivered in enqueue order.
// Send never blocks: a full buffer means the peer is too slow and the frame
// is dropped with an error.
type transport struct {
	log  *slog.Logger
	conn *websocket.Conn
	send chan domain.OutboundFrame
	done chan struct{}
	once sync.Once
}

func newTransport(log *slog.Logger, conn *websocket.Conn, bufferSize int) *transport {
	return &transport{
		log:  log,
		conn: conn,
		send: make(chan domain.OutboundFrame, bufferSize),
		done: make(chan struct{}),
	}
}

func (t *transport) Send(frame domain.OutboundFrame) error {
	select {
	case <-t.done:
		return errors.ErrNotConnected
	default:
	}

	select {
	case t.send <- frame:
		return nil
	default:
		return errors.ErrSendBufferFull
	}
}

func (t *transport) Ping() error {
	return t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingWait))
}

// Close is idempotent; the first call stops the write pump and closes the
// underlying socket.
func (t *transport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		err = t.conn.Close()
	})
	return err
}

// writePump is the connection's only writer. It runs until Close or a write
// failure, then tears the socket down so the read loop unblocks too.
func (t *transport) writePump() {
	defer func() { _ = t.Close() }()

	for {
		select {
		case <-t.done:
			deadline := time.Now().Add(writeWait)
			_ = t.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		case frame := <-t.send:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteJSON(frame); err != nil {
				t.log.Debug("Write failed, dropping connection", "error", err)
				return
			}
		}
	}
}
