package storage

import (
	"context"

	"github.com/jmarban/suitparty-go/internal/model"
)

// Storage defines the interface for data persistence.
//
// Implementations must also emit a change notification for the affected room
// on every room/player/game-state mutation, deliverable to any watcher
// registered via Watch. Notifications are at-least-once and unordered;
// watchers are expected to refetch rather than interpret them as deltas.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)

	// Registered user operations
	SaveRegisteredUser(ctx context.Context, ru *model.RegisteredUser) error
	GetRegisteredUser(ctx context.Context, userID model.UserID) (*model.RegisteredUser, error)
	GetRegisteredUserByUsername(ctx context.Context, username string) (*model.RegisteredUser, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomCodeExists(ctx context.Context, code model.RoomCode) (bool, error)
	ListRoomIDs(ctx context.Context) ([]model.RoomID, error)

	// Player operations. ListPlayers returns players in join order.
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, roomID model.RoomID, id model.PlayerID) (*model.Player, error)
	GetPlayerByUser(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Player, error)
	ListPlayers(ctx context.Context, roomID model.RoomID) ([]*model.Player, error)
	DeletePlayer(ctx context.Context, roomID model.RoomID, id model.PlayerID) error
	DeletePlayersForRoom(ctx context.Context, roomID model.RoomID) error

	// Game state operations (one record per room)
	SaveGameState(ctx context.Context, state *model.GameState) error
	GetGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error)
	DeleteGameState(ctx context.Context, roomID model.RoomID) error

	// Watch subscribes to change notifications for a room. The channel is
	// closed when ctx is cancelled. Slow watchers may miss notifications;
	// they never block writers.
	Watch(ctx context.Context, roomID model.RoomID) (<-chan model.Change, error)
}
