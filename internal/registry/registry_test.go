package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/registry"
)

func TestRegistry_Presence(t *testing.T) {
	reg := registry.New()

	reg.RegisterPresence("conn-1", "ab12cd", "Alice", true)

	p, ok := reg.GetPresence("conn-1")
	require.True(t, ok)
	assert.Equal(t, "AB12CD", p.RoomCode, "codes normalize on registration")
	assert.True(t, p.IsHost)

	// Re-registering overwrites.
	reg.RegisterPresence("conn-1", "XY99ZZ", "Alice", false)
	p, _ = reg.GetPresence("conn-1")
	assert.Equal(t, "XY99ZZ", p.RoomCode)
	assert.False(t, p.IsHost)

	reg.RemovePresence("conn-1")
	_, ok = reg.GetPresence("conn-1")
	assert.False(t, ok)

	// Removing again is a no-op.
	reg.RemovePresence("conn-1")
}

func TestRegistry_RoomCopiesAreIsolated(t *testing.T) {
	reg := registry.New()

	original := &domain.Room{Code: "ab12cd", Name: "Standup"}
	reg.UpsertRoom(original)

	// Mutating the caller's room after the upsert must not leak in.
	original.Name = "changed"
	original.Participants = append(original.Participants, domain.Participant{ConnID: "conn-x"})

	stored, ok := reg.FindRoomByCode("AB12CD")
	require.True(t, ok)
	assert.Equal(t, "Standup", stored.Name)
	assert.Empty(t, stored.Participants)

	// Mutating a returned copy must not leak back either.
	stored.Name = "also changed"
	again, _ := reg.FindRoomByCode("ab12cd")
	assert.Equal(t, "Standup", again.Name)
}

func TestRegistry_AddRoomParticipant_Dedup(t *testing.T) {
	reg := registry.New()
	reg.UpsertRoom(&domain.Room{Code: "AB12CD"})

	reg.AddRoomParticipant("AB12CD", domain.Participant{ConnID: "conn-bob", Name: "Bob"})
	reg.AddRoomParticipant("ab12cd", domain.Participant{ConnID: "conn-bob", Name: "Bob"})

	room, _ := reg.FindRoomByCode("AB12CD")
	assert.Len(t, room.Participants, 1)

	reg.RemoveRoomParticipant("AB12CD", "conn-bob")
	room, _ = reg.FindRoomByCode("AB12CD")
	assert.Empty(t, room.Participants)

	// Unknown rooms are a no-op, not a panic.
	reg.AddRoomParticipant("NOPE42", domain.Participant{ConnID: "conn-x"})
	reg.RemoveRoomParticipant("NOPE42", "conn-x")
}

func TestRegistry_ActiveCall_LastWriterWins(t *testing.T) {
	reg := registry.New()

	reg.SetActiveCall("AB12CD", &domain.CallSession{CallID: "1", CallerID: "conn-a", CallType: domain.CallTypeVideo})
	reg.SetActiveCall("ab12cd", &domain.CallSession{CallID: "2", CallerID: "conn-b", CallType: domain.CallTypeVoice})

	s, ok := reg.GetActiveCall("AB12CD")
	require.True(t, ok)
	assert.Equal(t, "2", s.CallID)

	reg.ClearActiveCall("AB12CD")
	_, ok = reg.GetActiveCall("AB12CD")
	assert.False(t, ok)
}

func TestRegistry_MessagesFor_OrderAndCap(t *testing.T) {
	reg := registry.New()

	reg.AppendMessage("7", domain.Message{Content: "first"})
	reg.AppendMessage("7", domain.Message{Content: "second"})
	reg.AppendMessage("7", domain.Message{Content: "third"})

	all := reg.MessagesFor("7", 0)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Content)
	assert.Equal(t, "third", all[2].Content)

	capped := reg.MessagesFor("7", 2)
	assert.Len(t, capped, 2)

	assert.Empty(t, reg.MessagesFor("unknown", 10))
}

func TestRegistry_JoinRequestTerminal(t *testing.T) {
	reg := registry.New()

	reg.PutJoinRequest(&domain.JoinRequest{ID: "req-1", Status: domain.JoinStatusPending})

	assert.True(t, reg.SetJoinRequestStatus("req-1", domain.JoinStatusApproved))
	req, ok := reg.GetJoinRequest("req-1")
	require.True(t, ok)
	assert.Equal(t, domain.JoinStatusApproved, req.Status)

	// Approved is terminal; no transition out.
	assert.False(t, reg.SetJoinRequestStatus("req-1", domain.JoinStatusRejected))
	req, _ = reg.GetJoinRequest("req-1")
	assert.Equal(t, domain.JoinStatusApproved, req.Status)

	assert.False(t, reg.SetJoinRequestStatus("unknown", domain.JoinStatusApproved))
}
