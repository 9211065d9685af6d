package memory

import (
	"context"

	"github.com/jmarban/suitparty-go/internal/model"
)

// watchBuffer bounds each watcher channel. Watchers that fall behind drop
// notifications rather than blocking writers; a dropped notification is safe
// because consumers refetch full snapshots.
const watchBuffer = 16

// Watch subscribes to change notifications for a room
func (s *Storage) Watch(ctx context.Context, roomID model.RoomID) (<-chan model.Change, error) {
	ch := make(chan model.Change, watchBuffer)

	s.watchMu.Lock()
	if s.watchers[roomID] == nil {
		s.watchers[roomID] = make(map[chan model.Change]struct{})
	}
	s.watchers[roomID][ch] = struct{}{}
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		if set, ok := s.watchers[roomID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(s.watchers, roomID)
			}
		}
		s.watchMu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// notify fans a change out to all watchers of the room
func (s *Storage) notify(roomID model.RoomID, entity model.ChangeEntity) {
	change := model.Change{RoomID: roomID, Entity: entity}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for ch := range s.watchers[roomID] {
		select {
		case ch <- change:
		default:
			// Watcher buffer full; it will catch up on its next refetch
		}
	}
}
