package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Change notifications ride on Redis pub/sub, one channel per room.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Guest identities expire; registered ones persist
	var ttl time.Duration
	if user.IsGuest {
		ttl = s.cfg.GuestUserTTL
	}

	return s.client.Set(ctx, userKey(user.ID), data, ttl).Err()
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Registered user operations

func (s *Storage) SaveRegisteredUser(ctx context.Context, ru *model.RegisteredUser) error {
	data, err := json.Marshal(ru)
	if err != nil {
		return err
	}

	// Pipeline keeps the record and username index consistent
	pipe := s.client.Pipeline()
	pipe.Set(ctx, registeredUserKey(ru.UserID), data, 0)
	pipe.Set(ctx, usernameIndexKey(ru.Username), string(ru.UserID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredUser(ctx context.Context, userID model.UserID) (*model.RegisteredUser, error) {
	data, err := s.client.Get(ctx, registeredUserKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var ru model.RegisteredUser
	if err := json.Unmarshal(data, &ru); err != nil {
		return nil, err
	}
	return &ru, nil
}

func (s *Storage) GetRegisteredUserByUsername(ctx context.Context, username string) (*model.RegisteredUser, error) {
	userIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetRegisteredUser(ctx, model.UserID(userIDStr))
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.Set(ctx, roomCodeIndexKey(room.Code), string(room.ID), s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomsIndexKey(), string(room.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.publish(ctx, room.ID, model.ChangeRoom)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	roomIDStr, err := s.client.Get(ctx, roomCodeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	return s.GetRoom(ctx, model.RoomID(roomIDStr))
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	// Fetch first so the code index can be removed too
	room, err := s.GetRoom(ctx, id)
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.SRem(ctx, roomsIndexKey(), string(id))
	if room != nil {
		pipe.Del(ctx, roomCodeIndexKey(room.Code))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.publish(ctx, id, model.ChangeRoom)
	return nil
}

func (s *Storage) RoomCodeExists(ctx context.Context, code model.RoomCode) (bool, error) {
	exists, err := s.client.Exists(ctx, roomCodeIndexKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) ListRoomIDs(ctx context.Context) ([]model.RoomID, error) {
	members, err := s.client.SMembers(ctx, roomsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]model.RoomID, 0, len(members))
	for _, m := range members {
		ids = append(ids, model.RoomID(m))
	}
	return ids, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pKey := playerKey(player.RoomID, player.ID)
	zKey := playersForRoomIndexKey(player.RoomID)
	uKey := roomUsersIndexKey(player.RoomID)

	// Score by join time so ZRANGE reads come back in join order
	pipe := s.client.Pipeline()
	pipe.Set(ctx, pKey, data, s.cfg.RoomTTL)
	pipe.ZAdd(ctx, zKey, redis.Z{Score: float64(player.JoinedAt.UnixNano()), Member: pKey})
	pipe.HSet(ctx, uKey, string(player.UserID), string(player.ID))
	pipe.Expire(ctx, zKey, s.cfg.RoomTTL)
	pipe.Expire(ctx, uKey, s.cfg.RoomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.publish(ctx, player.RoomID, model.ChangePlayers)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, roomID model.RoomID, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(roomID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerByUser(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Player, error) {
	playerIDStr, err := s.client.HGet(ctx, roomUsersIndexKey(roomID), string(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetPlayer(ctx, roomID, model.PlayerID(playerIDStr))
}

func (s *Storage) ListPlayers(ctx context.Context, roomID model.RoomID) ([]*model.Player, error) {
	playerKeys, err := s.client.ZRange(ctx, playersForRoomIndexKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(playerKeys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, playerKeys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player record may have expired
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &player)
	}

	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, roomID model.RoomID, id model.PlayerID) error {
	player, err := s.GetPlayer(ctx, roomID, id)
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		return err
	}

	pKey := playerKey(roomID, id)

	pipe := s.client.Pipeline()
	pipe.Del(ctx, pKey)
	pipe.ZRem(ctx, playersForRoomIndexKey(roomID), pKey)
	if player != nil {
		pipe.HDel(ctx, roomUsersIndexKey(roomID), string(player.UserID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.publish(ctx, roomID, model.ChangePlayers)
	return nil
}

func (s *Storage) DeletePlayersForRoom(ctx context.Context, roomID model.RoomID) error {
	zKey := playersForRoomIndexKey(roomID)

	playerKeys, err := s.client.ZRange(ctx, zKey, 0, -1).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, key := range playerKeys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, zKey)
	pipe.Del(ctx, roomUsersIndexKey(roomID))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.publish(ctx, roomID, model.ChangePlayers)
	return nil
}

// Game state operations

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, gameStateKey(state.RoomID), data, s.cfg.RoomTTL).Err(); err != nil {
		return err
	}

	s.publish(ctx, state.RoomID, model.ChangeGameState)
	return nil
}

func (s *Storage) GetGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error) {
	data, err := s.client.Get(ctx, gameStateKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameStateNotFound
		}
		return nil, err
	}

	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Storage) DeleteGameState(ctx context.Context, roomID model.RoomID) error {
	if err := s.client.Del(ctx, gameStateKey(roomID)).Err(); err != nil {
		return err
	}

	s.publish(ctx, roomID, model.ChangeGameState)
	return nil
}
