package runtime

import "sync"

type set map[string]struct{}

// Membership tracks which users are subscribed to which conversation.
// Rooms are created lazily on first join and removed as soon as the last
// member leaves, so the map never accumulates empty sets.
type Membership struct {
	mu    sync.RWMutex
	rooms map[string]set
}

func NewMembership() *Membership {
	return &Membership{rooms: make(map[string]set)}
}

// Join subscribes the user to a conversation. It reports whether the user
// was newly added; joining an already-joined room is idempotent.
func (m *Membership) Join(userID, conversationID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.rooms[conversationID]
	if !ok {
		members = make(set)
		m.rooms[conversationID] = members
	}
	if _, joined := members[userID]; joined {
		return false
	}
	members[userID] = struct{}{}
	return true
}

// Leave unsubscribes the user. It reports whether the user was a member,
// and deletes the room entry entirely when nobody is left.
func (m *Membership) Leave(userID, conversationID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(userID, conversationID)
}

func (m *Membership) leaveLocked(userID, conversationID string) bool {
	members, ok := m.rooms[conversationID]
	if !ok {
		return false
	}
	if _, joined := members[userID]; !joined {
		return false
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(m.rooms, conversationID)
	}
	return true
}

// LeaveAll removes the user from every conversation they belong to and
// returns those conversation ids, for disconnect cleanup notices.
func (m *Membership) LeaveAll(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var left []string
	for conversationID, members := range m.rooms {
		if _, joined := members[userID]; !joined {
			continue
		}
		left = append(left, conversationID)
		delete(members, userID)
		if len(members) == 0 {
			delete(m.rooms, conversationID)
		}
	}
	return left
}

// Members returns a copy of the conversation's participant set. Nil when the
// room does not exist.
func (m *Membership) Members(conversationID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.rooms[conversationID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(members))
	for userID := range members {
		out = append(out, userID)
	}
	return out
}

// IsMember reports whether the user is currently subscribed.
func (m *Membership) IsMember(userID, conversationID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members, ok := m.rooms[conversationID]
	if !ok {
		return false
	}
	_, joined := members[userID]
	return joined
}

// Len returns the number of live rooms.
func (m *Membership) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
