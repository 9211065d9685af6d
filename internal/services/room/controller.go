package room

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jmarban/suitparty-go/internal/dependencies/clock"
	"github.com/jmarban/suitparty-go/internal/dependencies/random"
	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/services/generator"
	"github.com/jmarban/suitparty-go/internal/services/rules"
	"github.com/jmarban/suitparty-go/internal/storage"
)

const (
	// RoomCodeLength is the length of generated join codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in join codes
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeGenerationRetries bounds collision retries before giving up
	CodeGenerationRetries = 10

	// MinPlayersToStart is the hard floor to start a game. A single player
	// may start; a warning is logged below RecommendedPlayers.
	MinPlayersToStart  = 1
	RecommendedPlayers = 2
)

// GameSelection optionally pins the game to start instead of a random pick
type GameSelection struct {
	CatalogID string
	Suit      model.GameSuit
}

// Controller owns the room state machine: creation, membership, host
// authority and the waiting -> playing -> results transitions.
type Controller struct {
	storage   storage.Storage
	generator *generator.Service
	rules     *rules.Service
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	generator *generator.Service,
	rules *rules.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		generator: generator,
		rules:     rules,
		clock:     clock,
		random:    random,
		logger:    logger,
	}
}

// CreateRoom creates a room in waiting status with the given user as host.
// The room insert and host-player insert must be consistent from the
// caller's perspective, so a failed player insert deletes the room again.
func (c *Controller) CreateRoom(ctx context.Context, hostUserID model.UserID, displayName string) (*model.Room, *model.Player, error) {
	now := c.clock.Now()

	code, err := c.generateCode(ctx)
	if err != nil {
		return nil, nil, err
	}

	room := &model.Room{
		ID:          model.RoomID(uuid.NewString()),
		Code:        code,
		HostID:      hostUserID,
		Status:      model.RoomStatusWaiting,
		GameHistory: []model.GameInstance{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, nil, err
	}

	host := c.newPlayer(room.ID, hostUserID, displayName, now)
	if err := c.storage.SavePlayer(ctx, host); err != nil {
		// Roll back the room so a half-created room never resolves by code
		if delErr := c.storage.DeleteRoom(ctx, room.ID); delErr != nil {
			c.logger.Error("failed to roll back room after player insert failure",
				slog.String("room_id", string(room.ID)),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, nil, err
	}

	return room, host, nil
}

func (c *Controller) generateCode(ctx context.Context) (model.RoomCode, error) {
	for i := 0; i < CodeGenerationRetries; i++ {
		code := model.RoomCode(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		exists, err := c.storage.RoomCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", model.ErrCodeGenerationExhausted
}

// GetRoomByCode resolves a join code to its room
func (c *Controller) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoomByCode(ctx, code)
}

// GetPlayerByUser resolves a user to their player record in a room
func (c *Controller) GetPlayerByUser(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Player, error) {
	return c.storage.GetPlayerByUser(ctx, roomID, userID)
}

// JoinRoom adds a user to a room by join code. Full and in-progress rooms
// reject joins outright, existing member or not; reconnection goes through
// the heartbeat path instead. In a joinable room a user who already has a
// player record rejoins: the record is marked connected and refreshed,
// never duplicated.
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, userID model.UserID, displayName string) (*model.Room, *model.Player, error) {
	room, err := c.storage.GetRoomByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	players, err := c.storage.ListPlayers(ctx, room.ID)
	if err != nil {
		return nil, nil, err
	}

	if len(players) >= model.MaxPlayersPerRoom {
		return nil, nil, model.ErrRoomFull
	}
	if room.Status == model.RoomStatusPlaying {
		return nil, nil, model.ErrGameAlreadyStarted
	}

	if existing := model.FindPlayerByUser(players, userID); existing != nil {
		existing.Connected = true
		existing.LastSeen = c.clock.Now()
		if err := c.storage.SavePlayer(ctx, existing); err != nil {
			return nil, nil, err
		}
		return room, existing, nil
	}

	player := c.newPlayer(room.ID, userID, displayName, c.clock.Now())
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, nil, err
	}

	return room, player, nil
}

func (c *Controller) newPlayer(roomID model.RoomID, userID model.UserID, displayName string, now time.Time) *model.Player {
	return &model.Player{
		ID:        model.PlayerID(uuid.NewString()),
		RoomID:    roomID,
		UserID:    userID,
		Name:      displayName,
		Alive:     true,
		Cards:     0,
		Connected: true,
		LastSeen:  now,
		JoinedAt:  now,
	}
}

// LeaveRoom removes a user from a room. A host leaving a waiting room
// deletes the room outright; a host leaving otherwise triggers failover.
func (c *Controller) LeaveRoom(ctx context.Context, roomID model.RoomID, userID model.UserID) error {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	players, err := c.storage.ListPlayers(ctx, roomID)
	if err != nil {
		return err
	}

	player := model.FindPlayerByUser(players, userID)
	if player == nil {
		return model.ErrPlayerNotFound
	}

	if room.IsHost(userID) && room.Status == model.RoomStatusWaiting {
		return c.deleteRoom(ctx, roomID)
	}

	if err := c.storage.DeletePlayer(ctx, roomID, player.ID); err != nil {
		return err
	}

	if room.IsHost(userID) {
		return c.PromoteHost(ctx, roomID)
	}
	return nil
}

// PromoteHost assigns host to the earliest-joined connected player. With no
// connected players the room is left hostless for the cleanup sweep.
func (c *Controller) PromoteHost(ctx context.Context, roomID model.RoomID) error {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	players, err := c.storage.ListPlayers(ctx, roomID)
	if err != nil {
		return err
	}

	connected := model.ConnectedPlayers(players)
	if len(connected) == 0 {
		c.logger.Warn("room left hostless, no connected players to promote",
			slog.String("room_id", string(roomID)),
		)
		return nil
	}

	// ListPlayers returns join order, so the first connected player is
	// the earliest joined
	newHost := connected[0]
	if room.HostID == newHost.UserID {
		return nil
	}

	room.HostID = newHost.UserID
	room.UpdatedAt = c.clock.Now()

	c.logger.Info("host promoted",
		slog.String("room_id", string(roomID)),
		slog.String("new_host", string(newHost.UserID)),
	)

	return c.storage.SaveRoom(ctx, room)
}

// StartGame generates a game instance and transitions the room to playing.
// Only the host may start. A nil selection picks a random suit and game,
// excluding recently played catalog ids.
func (c *Controller) StartGame(ctx context.Context, roomID model.RoomID, hostUserID model.UserID, selection *GameSelection) (*model.Room, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.IsHost(hostUserID) {
		return nil, model.ErrNotHost
	}

	players, err := c.storage.ListPlayers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	connected := model.ConnectedPlayers(players)
	if len(connected) < MinPlayersToStart {
		return nil, model.ErrInsufficientPlayers
	}
	if len(connected) < RecommendedPlayers {
		c.logger.Warn("starting game below recommended player count",
			slog.String("room_id", string(roomID)),
			slog.Int("connected", len(connected)),
		)
	}

	var game *model.GameInstance
	if selection != nil {
		game, err = c.generator.Specific(selection.CatalogID, selection.Suit, connected)
		if err != nil {
			return nil, err
		}
	} else {
		game = c.generator.Random(connected, room.RecentGameIDs())
	}

	// Everyone comes back alive for the new game
	for _, p := range players {
		if !p.Alive {
			p.Alive = true
			if err := c.storage.SavePlayer(ctx, p); err != nil {
				return nil, err
			}
		}
	}

	now := c.clock.Now()
	state := &model.GameState{
		RoomID:      roomID,
		Timer:       game.TimeLimit,
		Round:       1,
		Votes:       make(map[model.PlayerID]string),
		Answers:     make(map[model.PlayerID]string),
		CurrentTurn: game.Params.CurrentPlayer,
		UpdatedAt:   now,
	}
	if err := c.storage.SaveGameState(ctx, state); err != nil {
		return nil, err
	}

	room.Status = model.RoomStatusPlaying
	room.CurrentGame = game
	room.UpdatedAt = now

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.String("room_id", string(roomID)),
		slog.String("game", game.CatalogID),
		slog.String("suit", string(game.Suit)),
		slog.Int("difficulty", game.Difficulty),
		slog.Int("players", len(connected)),
	)

	return room, nil
}

// EndGame transitions the room to results and awards cards to the winners.
// The current game stays set so the results remain viewable.
func (c *Controller) EndGame(ctx context.Context, roomID model.RoomID, hostUserID model.UserID) (*rules.GameResults, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsHost(hostUserID) {
		return nil, model.ErrNotHost
	}
	return c.CompleteGame(ctx, roomID)
}

// CompleteGame ends the current game without a host check. The periodic
// completion poll uses this: the server holds host authority when it
// detects completion itself.
func (c *Controller) CompleteGame(ctx context.Context, roomID model.RoomID) (*rules.GameResults, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != model.RoomStatusPlaying || room.CurrentGame == nil {
		return nil, model.ErrNoGameInProgress
	}

	players, err := c.storage.ListPlayers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	results := c.rules.CalculateGameResults(players)
	if err := c.rules.AwardCards(ctx, results.Winners); err != nil {
		return nil, err
	}

	room.GameHistory = append(room.GameHistory, *room.CurrentGame)
	room.Status = model.RoomStatusResults
	room.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	if err := c.storage.DeleteGameState(ctx, roomID); err != nil {
		return nil, err
	}

	c.logger.Info("game ended",
		slog.String("room_id", string(roomID)),
		slog.String("game", room.CurrentGame.CatalogID),
		slog.Bool("game_clear", results.GameClear),
		slog.Int("winners", len(results.Winners)),
	)

	return &results, nil
}

// NextGame starts a fresh game from the results screen
func (c *Controller) NextGame(ctx context.Context, roomID model.RoomID, hostUserID model.UserID, selection *GameSelection) (*model.Room, error) {
	return c.StartGame(ctx, roomID, hostUserID, selection)
}

// DeleteRoom removes a room together with its players and game state
func (c *Controller) DeleteRoom(ctx context.Context, roomID model.RoomID) error {
	return c.deleteRoom(ctx, roomID)
}

func (c *Controller) deleteRoom(ctx context.Context, roomID model.RoomID) error {
	if err := c.storage.DeleteGameState(ctx, roomID); err != nil {
		return err
	}
	if err := c.storage.DeletePlayersForRoom(ctx, roomID); err != nil {
		return err
	}
	return c.storage.DeleteRoom(ctx, roomID)
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, hostUserID model.UserID, displayName string) (*model.Room, *model.Player, error)
	GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error)
	GetPlayerByUser(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Player, error)
	JoinRoom(ctx context.Context, code model.RoomCode, userID model.UserID, displayName string) (*model.Room, *model.Player, error)
	LeaveRoom(ctx context.Context, roomID model.RoomID, userID model.UserID) error
	PromoteHost(ctx context.Context, roomID model.RoomID) error
	StartGame(ctx context.Context, roomID model.RoomID, hostUserID model.UserID, selection *GameSelection) (*model.Room, error)
	EndGame(ctx context.Context, roomID model.RoomID, hostUserID model.UserID) (*rules.GameResults, error)
	CompleteGame(ctx context.Context, roomID model.RoomID) (*rules.GameResults, error)
	NextGame(ctx context.Context, roomID model.RoomID, hostUserID model.UserID, selection *GameSelection) (*model.Room, error)
	DeleteRoom(ctx context.Context, roomID model.RoomID) error
}

var _ ControllerInterface = (*Controller)(nil)
