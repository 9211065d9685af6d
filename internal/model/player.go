package model

import "time"

// UserID is the opaque identity issued by the auth service
type UserID string

// PlayerID uniquely identifies a player record within a room
type PlayerID string

// User is an identity independent of any room.
// A user has at most one player record per room.
type User struct {
	ID          UserID
	DisplayName string
	IsGuest     bool // true for unregistered users
	CreatedAt   time.Time
}

// RegisteredUser extends User with authentication data.
// Stored separately so the password hash never travels with sessions.
type RegisteredUser struct {
	UserID       UserID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Player is a user's membership in a specific room
type Player struct {
	ID        PlayerID
	RoomID    RoomID
	UserID    UserID
	Name      string
	Alive     bool // false once eliminated in the current game
	Cards     int  // accumulated win currency
	Connected bool
	LastSeen  time.Time
	JoinedAt  time.Time
}

// InGame reports whether the player counts for gameplay purposes
func (p *Player) InGame() bool {
	return p.Alive && p.Connected
}

// FindPlayerByUser returns the player record for a user, or nil
func FindPlayerByUser(players []*Player, userID UserID) *Player {
	for _, p := range players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// FindPlayer returns the player with the given id, or nil
func FindPlayer(players []*Player, id PlayerID) *Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ConnectedPlayers filters to players currently connected
func ConnectedPlayers(players []*Player) []*Player {
	var out []*Player
	for _, p := range players {
		if p.Connected {
			out = append(out, p)
		}
	}
	return out
}

// AlivePlayers filters to players still alive
func AlivePlayers(players []*Player) []*Player {
	var out []*Player
	for _, p := range players {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}
