package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users           map[model.UserID]*model.User
	registeredUsers map[model.UserID]*model.RegisteredUser
	usernameIndex   map[string]model.UserID
	rooms           map[model.RoomID]*model.Room
	codeIndex       map[model.RoomCode]model.RoomID
	players         map[playerKey]*model.Player
	gameStates      map[model.RoomID]*model.GameState

	watchMu  sync.Mutex
	watchers map[model.RoomID]map[chan model.Change]struct{}
}

type playerKey struct {
	roomID   model.RoomID
	playerID model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:           make(map[model.UserID]*model.User),
		registeredUsers: make(map[model.UserID]*model.RegisteredUser),
		usernameIndex:   make(map[string]model.UserID),
		rooms:           make(map[model.RoomID]*model.Room),
		codeIndex:       make(map[model.RoomCode]model.RoomID),
		players:         make(map[playerKey]*model.Player),
		gameStates:      make(map[model.RoomID]*model.GameState),
		watchers:        make(map[model.RoomID]map[chan model.Change]struct{}),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// Registered user operations

func (s *Storage) SaveRegisteredUser(ctx context.Context, ru *model.RegisteredUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredUsers[ru.UserID] = ru
	s.usernameIndex[ru.Username] = ru.UserID
	return nil
}

func (s *Storage) GetRegisteredUser(ctx context.Context, userID model.UserID) (*model.RegisteredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ru, ok := s.registeredUsers[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return ru, nil
}

func (s *Storage) GetRegisteredUserByUsername(ctx context.Context, username string) (*model.RegisteredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	ru, ok := s.registeredUsers[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return ru, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	s.rooms[room.ID] = room
	s.codeIndex[room.Code] = room.ID
	s.mu.Unlock()
	s.notify(room.ID, model.ChangeRoom)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codeIndex[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	if room, ok := s.rooms[id]; ok {
		delete(s.codeIndex, room.Code)
	}
	delete(s.rooms, id)
	s.mu.Unlock()
	s.notify(id, model.ChangeRoom)
	return nil
}

func (s *Storage) RoomCodeExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codeIndex[code]
	return ok, nil
}

func (s *Storage) ListRoomIDs(ctx context.Context) ([]model.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.RoomID, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	s.players[playerKey{roomID: player.RoomID, playerID: player.ID}] = player
	s.mu.Unlock()
	s.notify(player.RoomID, model.ChangePlayers)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, roomID model.RoomID, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[playerKey{roomID: roomID, playerID: id}]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) GetPlayerByUser(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, p := range s.players {
		if key.roomID == roomID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

func (s *Storage) ListPlayers(ctx context.Context, roomID model.RoomID) ([]*model.Player, error) {
	s.mu.RLock()
	var players []*model.Player
	for key, p := range s.players {
		if key.roomID == roomID {
			players = append(players, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, roomID model.RoomID, id model.PlayerID) error {
	s.mu.Lock()
	delete(s.players, playerKey{roomID: roomID, playerID: id})
	s.mu.Unlock()
	s.notify(roomID, model.ChangePlayers)
	return nil
}

func (s *Storage) DeletePlayersForRoom(ctx context.Context, roomID model.RoomID) error {
	s.mu.Lock()
	for key := range s.players {
		if key.roomID == roomID {
			delete(s.players, key)
		}
	}
	s.mu.Unlock()
	s.notify(roomID, model.ChangePlayers)
	return nil
}

// Game state operations

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	s.mu.Lock()
	s.gameStates[state.RoomID] = state
	s.mu.Unlock()
	s.notify(state.RoomID, model.ChangeGameState)
	return nil
}

func (s *Storage) GetGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.gameStates[roomID]
	if !ok {
		return nil, model.ErrGameStateNotFound
	}
	return state, nil
}

func (s *Storage) DeleteGameState(ctx context.Context, roomID model.RoomID) error {
	s.mu.Lock()
	delete(s.gameStates, roomID)
	s.mu.Unlock()
	s.notify(roomID, model.ChangeGameState)
	return nil
}
