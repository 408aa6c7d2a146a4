//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"

	"telechat/domain"
)

// Transport is one live bidirectional session as the routing layer sees it.
// Send must not block: implementations enqueue into a per-connection buffer
// drained by a write pump, which is what keeps fan-out FIFO per connection.
type Transport interface {
	Send(frame domain.OutboundFrame) error
	Ping() error
	Close() error
}

// MessageStore is the external persistence collaborator for chat messages.
type MessageStore interface {
	Add(msg domain.ChatMessage) error
	MarkRead(conversationID string, ids []uuid.UUID) error
	History(conversationID string, cursor *string) ([]domain.ChatMessage, *string, error)
}

// ConsultationStore is the external collaborator holding consultation
// lifecycle snapshots.
type ConsultationStore interface {
	GetByID(id string) (domain.ConsultationSnapshot, error)
	UpdateLastMessage(id, text string, at time.Time) error
}

// TokenVerifier validates a bearer credential presented at handshake.
type TokenVerifier interface {
	Verify(token string) (userID string, role domain.Role, err error)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming in
// the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
