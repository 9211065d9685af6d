package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/storage"
)

const subscriberBuffer = 8

// Snapshot is the consistent read-side view of a room: the room record, the
// roster in join order, and the active game state when one exists.
type Snapshot struct {
	Room      *model.Room      `json:"room"`
	Players   []*model.Player  `json:"players"`
	GameState *model.GameState `json:"game_state,omitempty"`
}

// Service is the read path. It turns storage change notifications, which
// arrive at-least-once and unordered, into idempotent latest-state
// snapshots: every notification triggers a refetch, so consumers always key
// off the newest state rather than deltas.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu    sync.Mutex
	feeds map[model.RoomID]*feed
}

// NewService creates a new session Service
func NewService(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "session")),
		feeds:   make(map[model.RoomID]*feed),
	}
}

// Snapshot fetches the current view of a room
func (s *Service) Snapshot(ctx context.Context, roomID model.RoomID) (*Snapshot, error) {
	room, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	players, err := s.storage.ListPlayers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Room: room, Players: players}

	state, err := s.storage.GetGameState(ctx, roomID)
	switch {
	case err == nil:
		snap.GameState = state
	case errors.Is(err, model.ErrGameStateNotFound):
	default:
		return nil, err
	}

	return snap, nil
}

// Watch subscribes to a room's snapshot feed. The returned channel receives
// a fresh snapshot after every underlying change; slow consumers miss
// intermediate snapshots, never the latest. Cancel via the returned
// function; the channel closes when the room is deleted or on unsubscribe.
func (s *Service) Watch(ctx context.Context, roomID model.RoomID) (<-chan *Snapshot, func(), error) {
	s.mu.Lock()
	f, ok := s.feeds[roomID]
	if !ok {
		changes, err := s.storage.Watch(ctx, roomID)
		if err != nil {
			s.mu.Unlock()
			return nil, nil, err
		}
		f = newFeed(roomID, s)
		s.feeds[roomID] = f
		go f.run(ctx, changes)
	}
	ch := f.subscribe()
	s.mu.Unlock()

	cancel := func() {
		f.unsubscribe(ch)
		s.mu.Lock()
		if f.subscriberCount() == 0 {
			delete(s.feeds, roomID)
			f.stop()
		}
		s.mu.Unlock()
	}

	return ch, cancel, nil
}

// feed fans a single room's change stream out to its subscribers
type feed struct {
	roomID  model.RoomID
	service *Service

	mu          sync.Mutex
	subscribers map[chan *Snapshot]struct{}
	done        chan struct{}
	stopOnce    sync.Once
}

func newFeed(roomID model.RoomID, service *Service) *feed {
	return &feed{
		roomID:      roomID,
		service:     service,
		subscribers: make(map[chan *Snapshot]struct{}),
		done:        make(chan struct{}),
	}
}

func (f *feed) run(ctx context.Context, changes <-chan model.Change) {
	logger := f.service.logger.With(slog.String("room_id", string(f.roomID)))
	logger.Debug("snapshot feed started")

	for {
		select {
		case _, ok := <-changes:
			if !ok {
				f.close()
				return
			}
			snap, err := f.service.Snapshot(ctx, f.roomID)
			if err != nil {
				if errors.Is(err, model.ErrRoomNotFound) {
					logger.Debug("room gone, closing snapshot feed")
					f.close()
					return
				}
				logger.Warn("snapshot refetch failed", slog.String("error", err.Error()))
				continue
			}
			f.broadcast(snap)
		case <-f.done:
			return
		case <-ctx.Done():
			f.close()
			return
		}
	}
}

func (f *feed) broadcast(snap *Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		// Drop stale queued snapshots so a slow consumer still converges
		// on the latest state
		for {
			select {
			case ch <- snap:
			default:
				select {
				case <-ch:
					continue
				default:
				}
			}
			break
		}
	}
}

func (f *feed) subscribe() chan *Snapshot {
	ch := make(chan *Snapshot, subscriberBuffer)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *feed) unsubscribe(ch chan *Snapshot) {
	f.mu.Lock()
	if _, ok := f.subscribers[ch]; ok {
		delete(f.subscribers, ch)
		close(ch)
	}
	f.mu.Unlock()
}

func (f *feed) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

func (f *feed) stop() {
	f.stopOnce.Do(func() {
		close(f.done)
	})
}

func (f *feed) close() {
	f.mu.Lock()
	for ch := range f.subscribers {
		close(ch)
		delete(f.subscribers, ch)
	}
	f.mu.Unlock()

	f.service.mu.Lock()
	if f.service.feeds[f.roomID] == f {
		delete(f.service.feeds, f.roomID)
	}
	f.service.mu.Unlock()

	f.stop()
}

// Interface for dependency injection
type ServiceInterface interface {
	Snapshot(ctx context.Context, roomID model.RoomID) (*Snapshot, error)
	Watch(ctx context.Context, roomID model.RoomID) (<-chan *Snapshot, func(), error)
}

var _ ServiceInterface = (*Service)(nil)
