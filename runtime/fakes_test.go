package runtime

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"telechat/domain"
	"telechat/errors"
)

// fakeTransport records outbound frames in memory for assertions.
type fakeTransport struct {
	mu      sync.Mutex
	frames  []domain.OutboundFrame
	closed  bool
	pings   int
	sendErr error
}

func (f *fakeTransport) Send(frame domain.OutboundFrame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	if f.closed {
		return errors.ErrNotConnected
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeTransport) Ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) Frames() []domain.OutboundFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.OutboundFrame, len(f.frames))
	copy(out, f.frames)
	return out
}

func (f *fakeTransport) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeMessageStore struct {
	mu     sync.Mutex
	added  []domain.ChatMessage
	read   map[string][]uuid.UUID
	addErr error
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{read: make(map[string][]uuid.UUID)}
}

func (f *fakeMessageStore) Add(msg domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, msg)
	return nil
}

func (f *fakeMessageStore) MarkRead(conversationID string, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read[conversationID] = append(f.read[conversationID], ids...)
	return nil
}

func (f *fakeMessageStore) History(conversationID string, cursor *string) ([]domain.ChatMessage, *string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ChatMessage
	for _, msg := range f.added {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil, nil
}

func (f *fakeMessageStore) Added() []domain.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ChatMessage, len(f.added))
	copy(out, f.added)
	return out
}

func (f *fakeMessageStore) Read(conversationID string) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read[conversationID]
}

type fakeConsultationStore struct {
	mu        sync.Mutex
	snapshots map[string]domain.ConsultationSnapshot
	getErr    error
}

func newFakeConsultationStore(snapshots ...domain.ConsultationSnapshot) *fakeConsultationStore {
	store := &fakeConsultationStore{snapshots: make(map[string]domain.ConsultationSnapshot)}
	for _, snapshot := range snapshots {
		store.snapshots[snapshot.ID] = snapshot
	}
	return store
}

func (f *fakeConsultationStore) GetByID(id string) (domain.ConsultationSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.ConsultationSnapshot{}, f.getErr
	}
	snapshot, ok := f.snapshots[id]
	if !ok {
		return domain.ConsultationSnapshot{}, errors.ErrConsultationNotFound
	}
	return snapshot, nil
}

func (f *fakeConsultationStore) UpdateLastMessage(id, text string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot, ok := f.snapshots[id]
	if !ok {
		return errors.ErrConsultationNotFound
	}
	snapshot.LastMessage = text
	snapshot.LastMessageAt = at
	f.snapshots[id] = snapshot
	return nil
}
