package redis

import (
	"fmt"

	"github.com/jmarban/suitparty-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "suitparty"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// registeredUserKey returns the Redis key for a RegisteredUser
func registeredUserKey(userID model.UserID) string {
	return fmt.Sprintf("%s:registered_user:%s", keyPrefix, userID)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomCodeIndexKey returns the Redis key for the code -> room_id index
func roomCodeIndexKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:idx:room_code:%s", keyPrefix, code)
}

// roomsIndexKey returns the Redis key for the SET of all active room ids
func roomsIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// playerKey returns the Redis key for a Player
func playerKey(roomID model.RoomID, id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s:%s", keyPrefix, roomID, id)
}

// playersForRoomIndexKey returns the Redis key for the ZSET of a room's
// players, scored by join time so range reads preserve join order
func playersForRoomIndexKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:idx:players_for_room:%s", keyPrefix, roomID)
}

// roomUsersIndexKey returns the Redis key for the HASH mapping user_id ->
// player_id within a room
func roomUsersIndexKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:idx:room_users:%s", keyPrefix, roomID)
}

// gameStateKey returns the Redis key for a room's GameState
func gameStateKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:game_state:%s", keyPrefix, roomID)
}

// changesChannel returns the pub/sub channel for a room's change feed
func changesChannel(roomID model.RoomID) string {
	return fmt.Sprintf("%s:changes:%s", keyPrefix, roomID)
}
