package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jmarban/suitparty-go/internal/dependencies/clock"
	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/services/presence"
	"github.com/jmarban/suitparty-go/internal/services/room"
	"github.com/jmarban/suitparty-go/internal/services/rules"
	"github.com/jmarban/suitparty-go/internal/storage"
)

// Config holds the sweep policy constants, all tunable
type Config struct {
	// Tick is the sweep interval; it also drives the completion poll and
	// the game timer countdown
	Tick time.Duration
	// EmptyRoomTTL is how long a room with zero connected players lives
	// before reclamation
	EmptyRoomTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Tick:         2 * time.Second,
		EmptyRoomTTL: 5 * time.Minute,
	}
}

// Sweeper is the scheduled re-evaluation task: staleness detection, host
// failover, game timer countdown, completion polling and empty-room
// reclamation. The server holds host authority for ending games it detects
// as complete.
type Sweeper struct {
	storage  storage.Storage
	rooms    room.ControllerInterface
	rules    *rules.Service
	presence *presence.Tracker
	clock    clock.Clock
	config   Config
	logger   *slog.Logger

	mu sync.Mutex
	// lastSweep feeds the timer countdown; emptySince tracks rooms
	// pending TTL reclamation
	lastSweep  time.Time
	emptySince map[model.RoomID]time.Time
}

// New creates a new Sweeper
func New(
	storage storage.Storage,
	rooms room.ControllerInterface,
	rules *rules.Service,
	presence *presence.Tracker,
	clock clock.Clock,
	config Config,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		storage:    storage,
		rooms:      rooms,
		rules:      rules,
		presence:   presence,
		clock:      clock,
		config:     config,
		logger:     logger.With(slog.String("component", "sweeper")),
		emptySince: make(map[model.RoomID]time.Time),
	}
}

// Run sweeps on every tick until the context is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("sweeper started", slog.Duration("tick", s.config.Tick))
	ticker := time.NewTicker(s.config.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		}
	}
}

// Sweep runs one full pass over all rooms
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.clock.Now()

	s.mu.Lock()
	elapsed := time.Duration(0)
	if !s.lastSweep.IsZero() {
		elapsed = now.Sub(s.lastSweep)
	}
	s.lastSweep = now
	s.mu.Unlock()

	roomIDs, err := s.storage.ListRoomIDs(ctx)
	if err != nil {
		return err
	}

	for _, roomID := range roomIDs {
		if err := s.sweepRoom(ctx, roomID, now, elapsed); err != nil {
			// A room deleted mid-sweep is not an error
			if errors.Is(err, model.ErrRoomNotFound) {
				continue
			}
			s.logger.Warn("room sweep failed",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()),
			)
		}
	}

	s.pruneEmptySince(roomIDs)
	return nil
}

func (s *Sweeper) sweepRoom(ctx context.Context, roomID model.RoomID, now time.Time, elapsed time.Duration) error {
	rm, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	players, err := s.storage.ListPlayers(ctx, roomID)
	if err != nil {
		return err
	}

	// Mark players whose heartbeats went quiet as disconnected
	for _, p := range players {
		if p.Connected && s.presence.IsStale(p) {
			p.Connected = false
			if err := s.storage.SavePlayer(ctx, p); err != nil {
				return err
			}
			s.logger.Info("player marked disconnected",
				slog.String("room_id", string(roomID)),
				slog.String("player_id", string(p.ID)),
			)
		}
	}

	if deleted, err := s.reclaimIfEmpty(ctx, rm, players, now); err != nil || deleted {
		return err
	}

	// Host failover when the host's own record went stale
	host := model.FindPlayerByUser(players, rm.HostID)
	if host == nil || !host.Connected {
		if err := s.rooms.PromoteHost(ctx, roomID); err != nil {
			return err
		}
	}

	if rm.Status != model.RoomStatusPlaying || rm.CurrentGame == nil {
		return nil
	}

	state, err := s.storage.GetGameState(ctx, roomID)
	if err != nil {
		return err
	}

	// Countdown by wall time elapsed since the previous sweep
	if seconds := int(elapsed.Seconds()); seconds > 0 && state.Timer > 0 {
		state.Timer -= seconds
		if state.Timer < 0 {
			state.Timer = 0
		}
		state.UpdatedAt = now
		if err := s.storage.SaveGameState(ctx, state); err != nil {
			return err
		}
	}

	completion := s.rules.CheckGameCompletion(rm.CurrentGame, state, players)
	if !completion.Completed {
		return nil
	}

	s.logger.Info("game completion detected",
		slog.String("room_id", string(roomID)),
		slog.Bool("success", completion.Success),
		slog.String("reason", completion.Reason),
	)

	_, err = s.rooms.CompleteGame(ctx, roomID)
	return err
}

// reclaimIfEmpty deletes a room once it has had zero connected players for
// the full TTL. Returns whether the room was deleted.
func (s *Sweeper) reclaimIfEmpty(ctx context.Context, rm *model.Room, players []*model.Player, now time.Time) (bool, error) {
	connected := model.ConnectedPlayers(players)

	s.mu.Lock()
	if len(connected) > 0 {
		delete(s.emptySince, rm.ID)
		s.mu.Unlock()
		return false, nil
	}

	since, ok := s.emptySince[rm.ID]
	if !ok {
		s.emptySince[rm.ID] = now
		s.mu.Unlock()
		return false, nil
	}
	expired := now.Sub(since) >= s.config.EmptyRoomTTL
	s.mu.Unlock()

	if !expired {
		return false, nil
	}

	s.logger.Info("reclaiming empty room",
		slog.String("room_id", string(rm.ID)),
		slog.String("code", string(rm.Code)),
	)

	if err := s.rooms.DeleteRoom(ctx, rm.ID); err != nil {
		return false, err
	}
	s.presence.Forget(rm.ID)

	s.mu.Lock()
	delete(s.emptySince, rm.ID)
	s.mu.Unlock()

	return true, nil
}

// pruneEmptySince drops tracking entries for rooms that no longer exist
func (s *Sweeper) pruneEmptySince(live []model.RoomID) {
	liveSet := make(map[model.RoomID]struct{}, len(live))
	for _, id := range live {
		liveSet[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.emptySince {
		if _, ok := liveSet[id]; !ok {
			delete(s.emptySince, id)
		}
	}
}
