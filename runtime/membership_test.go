package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMembership_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()

	// When joining twice
	req.True(membership.Join("alice", "consult-1"))
	req.False(membership.Join("alice", "consult-1"))

	// Then the user appears once
	req.Equal([]string{"alice"}, membership.Members("consult-1"))
}

func TestMembership_Leave_Deletes_Empty_Conversation(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	membership.Join("alice", "consult-1")

	req.True(membership.Leave("alice", "consult-1"))

	req.Nil(membership.Members("consult-1"))
	req.Zero(membership.Len())
}

func TestMembership_Leave_Unknown_Member(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	membership.Join("alice", "consult-1")

	req.False(membership.Leave("bob", "consult-1"))
	req.False(membership.Leave("alice", "consult-2"))

	req.Equal([]string{"alice"}, membership.Members("consult-1"))
}

func TestMembership_LeaveAll_Returns_Left_Conversations(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	membership.Join("alice", "consult-1")
	membership.Join("alice", "consult-2")
	membership.Join("bob", "consult-1")

	left := membership.LeaveAll("alice")

	req.ElementsMatch([]string{"consult-1", "consult-2"}, left)
	req.False(membership.IsMember("alice", "consult-1"))
	req.True(membership.IsMember("bob", "consult-1"))
	// consult-2 became empty and disappeared
	req.Nil(membership.Members("consult-2"))
}

func TestMembership_IsMember(t *testing.T) {
	req := require.New(t)
	membership := NewMembership()
	membership.Join("alice", "consult-1")

	req.True(membership.IsMember("alice", "consult-1"))
	req.False(membership.IsMember("alice", "consult-2"))
	req.False(membership.IsMember("bob", "consult-1"))
}
