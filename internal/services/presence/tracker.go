package presence

import (
	"context"
	"sync"
	"time"

	"github.com/jmarban/suitparty-go/internal/dependencies/clock"
	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/storage"
)

// Config holds the liveness policy constants. All are tunable; the zero
// value is not usable, use DefaultConfig.
type Config struct {
	// DebounceWindow coalesces heartbeat bursts per (room, user)
	DebounceWindow time.Duration
	// StaleAfter is how long after the last heartbeat a player counts as
	// disconnected. Detection is the sweeper's job, not this tracker's.
	StaleAfter time.Duration
	// HeartbeatInterval is the cadence clients are expected to ping at
	HeartbeatInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		DebounceWindow:    500 * time.Millisecond,
		StaleAfter:        30 * time.Second,
		HeartbeatInterval: 10 * time.Second,
	}
}

type heartbeatKey struct {
	roomID model.RoomID
	userID model.UserID
}

// Tracker maintains per-player connection liveness from client heartbeats.
// Rapid focus/blur cycles can fire several heartbeats in quick succession,
// so writes within the debounce window are coalesced into one.
type Tracker struct {
	storage storage.Storage
	clock   clock.Clock
	config  Config

	mu        sync.Mutex
	lastWrite map[heartbeatKey]time.Time
}

// NewTracker creates a new presence Tracker
func NewTracker(storage storage.Storage, clock clock.Clock, config Config) *Tracker {
	return &Tracker{
		storage:   storage,
		clock:     clock,
		config:    config,
		lastWrite: make(map[heartbeatKey]time.Time),
	}
}

// Heartbeat marks the user's player record connected and refreshes its
// last-seen timestamp. Calls within the debounce window of the previous
// written heartbeat are dropped.
func (t *Tracker) Heartbeat(ctx context.Context, roomID model.RoomID, userID model.UserID) error {
	now := t.clock.Now()
	key := heartbeatKey{roomID: roomID, userID: userID}

	t.mu.Lock()
	if last, ok := t.lastWrite[key]; ok && now.Sub(last) < t.config.DebounceWindow {
		t.mu.Unlock()
		return nil
	}
	t.lastWrite[key] = now
	t.mu.Unlock()

	player, err := t.storage.GetPlayerByUser(ctx, roomID, userID)
	if err != nil {
		return err
	}

	player.Connected = true
	player.LastSeen = now
	return t.storage.SavePlayer(ctx, player)
}

// Disconnect marks the player disconnected immediately, bypassing the
// debounce. Used when a client signals an explicit goodbye.
func (t *Tracker) Disconnect(ctx context.Context, roomID model.RoomID, userID model.UserID) error {
	player, err := t.storage.GetPlayerByUser(ctx, roomID, userID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	delete(t.lastWrite, heartbeatKey{roomID: roomID, userID: userID})
	t.mu.Unlock()

	player.Connected = false
	player.LastSeen = t.clock.Now()
	return t.storage.SavePlayer(ctx, player)
}

// IsStale reports whether a player's last-seen is past the staleness
// threshold
func (t *Tracker) IsStale(player *model.Player) bool {
	return t.clock.Since(player.LastSeen) > t.config.StaleAfter
}

// Forget drops the debounce record for a room, e.g. when it is deleted
func (t *Tracker) Forget(roomID model.RoomID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.lastWrite {
		if key.roomID == roomID {
			delete(t.lastWrite, key)
		}
	}
}

// Interface for dependency injection
type TrackerInterface interface {
	Heartbeat(ctx context.Context, roomID model.RoomID, userID model.UserID) error
	Disconnect(ctx context.Context, roomID model.RoomID, userID model.UserID) error
	IsStale(player *model.Player) bool
	Forget(roomID model.RoomID)
}

var _ TrackerInterface = (*Tracker)(nil)
