// Package runtime owns the in-memory routing tables of the live chat layer:
// the connection registry, conversation membership, the per-user rate
// limiter, and the message router that ties them together. All tables are
// process-local; multi-instance deployment would move them behind a shared
// session directory while keeping the generation semantics.
package runtime

import (
	"sync"
	"time"

	"telechat/contract"
	"telechat/domain"
)

// Connection is one live authenticated session. It is owned exclusively by
// the Registry; its mutable fields (state, heartbeat) are only touched while
// holding the registry lock.
type Connection struct {
	UserID      string
	Role        domain.Role
	Transport   contract.Transport
	Generation  uint64
	ConnectedAt time.Time

	state           domain.ConnState
	lastHeartbeatAt time.Time
}

// ConnInfo is a point-in-time copy of a connection's lifecycle fields,
// handed out to the liveness sweep so it never iterates live state.
type ConnInfo struct {
	UserID          string
	Role            domain.Role
	Generation      uint64
	State           domain.ConnState
	LastHeartbeatAt time.Time
	Transport       contract.Transport
}

// Registry is the authoritative map of user to single active connection.
//
// Every connection carries a generation number, strictly increasing per user
// across all reconnects. Lifecycle events (close callbacks, timeout
// evictions) carry the generation they belong to and are discarded when it
// no longer matches, which is the guard against a stale close from a
// replaced connection evicting its replacement.
type Registry struct {
	mu          sync.Mutex
	conns       map[string]*Connection
	generations map[string]uint64
	clock       func() time.Time
}

func NewRegistry() *Registry {
	return NewRegistryWithClock(time.Now)
}

// NewRegistryWithClock injects the time source, for tests.
func NewRegistryWithClock(clock func() time.Time) *Registry {
	return &Registry{
		conns:       make(map[string]*Connection),
		generations: make(map[string]uint64),
		clock:       clock,
	}
}

// Register admits a new authenticated connection for userID. If the user
// already has a connection that is not already closing, it is marked
// closing, removed from the table, and its transport closed before the new
// one is inserted. The returned connection carries the next generation.
func (r *Registry) Register(userID string, role domain.Role, t contract.Transport) *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[userID]; ok && prev.state != domain.StateClosing {
		prev.state = domain.StateClosing
		delete(r.conns, userID)
		_ = prev.Transport.Close()
	}

	gen := r.generations[userID] + 1
	r.generations[userID] = gen

	now := r.clock()
	c := &Connection{
		UserID:          userID,
		Role:            role,
		Transport:       t,
		Generation:      gen,
		ConnectedAt:     now,
		state:           domain.StateActive,
		lastHeartbeatAt: now,
	}
	r.conns[userID] = c
	return c
}

// GetActive returns the user's connection if one is live and not closing.
func (r *Registry) GetActive(userID string) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[userID]
	if !ok || c.state != domain.StateActive {
		return nil, false
	}
	return c, true
}

// Touch refreshes the liveness timestamp. Called on every inbound frame and
// on every pong.
func (r *Registry) Touch(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[userID]; ok {
		c.lastHeartbeatAt = r.clock()
	}
}

// MarkClosing flags a connection whose teardown has started, so the registry
// stops treating it as active while its close event is in flight. The
// generation must match the live connection or nothing happens.
func (r *Registry) MarkClosing(userID string, generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[userID]
	if !ok || c.Generation != generation {
		return false
	}
	c.state = domain.StateClosing
	return true
}

// Remove evicts the user's connection only when generation matches the one
// currently registered. A delayed close event belonging to a connection that
// was already replaced must never evict the replacement; callers treat a
// false return as a stale event and stop.
func (r *Registry) Remove(userID string, generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[userID]
	if !ok || c.Generation != generation {
		return false
	}
	c.state = domain.StateClosed
	delete(r.conns, userID)
	return true
}

// Send enqueues a frame on the user's active connection. It reports false
// when the user is offline or the transport refused the frame; callers
// skip offline recipients silently.
func (r *Registry) Send(userID string, frame domain.OutboundFrame) bool {
	r.mu.Lock()
	c, ok := r.conns[userID]
	var t contract.Transport
	if ok && c.state == domain.StateActive {
		t = c.Transport
	}
	r.mu.Unlock()

	if t == nil {
		return false
	}
	return t.Send(frame) == nil
}

// Snapshot copies the lifecycle fields of every registered connection.
func (r *Registry) Snapshot() []ConnInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]ConnInfo, 0, len(r.conns))
	for _, c := range r.conns {
		infos = append(infos, ConnInfo{
			UserID:          c.UserID,
			Role:            c.Role,
			Generation:      c.Generation,
			State:           c.state,
			LastHeartbeatAt: c.lastHeartbeatAt,
			Transport:       c.Transport,
		})
	}
	return infos
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CloseAll tears down every connection, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		c.state = domain.StateClosed
		_ = c.Transport.Close()
	}
	r.conns = make(map[string]*Connection)
}
