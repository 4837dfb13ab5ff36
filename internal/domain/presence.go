package domain

// Presence is a connection's current room/name/host-flag association. Its
// lifecycle is bound exactly to the connection's lifetime and it is never
// persisted.
type Presence struct {
	ConnID   string
	RoomCode string
	UserName string
	IsHost   bool
}
