package model

import "time"

// RoomID uniquely identifies a room
type RoomID string

// RoomCode is the human-shareable code for joining rooms
type RoomCode string

// RoomStatus represents the lifecycle phase of a room
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting" // Lobby, no game in progress
	RoomStatusPlaying RoomStatus = "playing" // Game currently active
	RoomStatusResults RoomStatus = "results" // Game finished, showing results
)

// MaxPlayersPerRoom is the hard cap on room membership
const MaxPlayersPerRoom = 10

// Room represents a joinable game session
type Room struct {
	ID          RoomID
	Code        RoomCode
	HostID      UserID // Always refers to a player currently in the room
	Status      RoomStatus
	CurrentGame *GameInstance  // nil iff Status is waiting
	GameHistory []GameInstance // Completed games, oldest first
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsHost reports whether the given user is the room's host
func (r *Room) IsHost(userID UserID) bool {
	return r.HostID == userID
}

// RecentGameIDs returns the catalog ids of games already played in this room
func (r *Room) RecentGameIDs() []string {
	ids := make([]string, 0, len(r.GameHistory))
	for _, g := range r.GameHistory {
		ids = append(ids, g.CatalogID)
	}
	return ids
}
