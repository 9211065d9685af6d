package redis

import (
	"context"

	"github.com/jmarban/suitparty-go/internal/model"
)

// publish emits a change notification on the room's pub/sub channel.
// Publish failures are swallowed: notifications are best-effort and
// consumers refetch on a timer anyway.
func (s *Storage) publish(ctx context.Context, roomID model.RoomID, entity model.ChangeEntity) {
	_ = s.client.Publish(ctx, changesChannel(roomID), string(entity)).Err()
}

// Watch subscribes to change notifications for a room via Redis pub/sub
func (s *Storage) Watch(ctx context.Context, roomID model.RoomID) (<-chan model.Change, error) {
	sub := s.client.Subscribe(ctx, changesChannel(roomID))

	// Confirm the subscription before returning so callers don't miss
	// changes they cause immediately after subscribing
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan model.Change, 16)

	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				change := model.Change{
					RoomID: roomID,
					Entity: model.ChangeEntity(msg.Payload),
				}
				select {
				case out <- change:
				default:
					// Consumer is behind; it will refetch on its next event
				}
			}
		}
	}()

	return out, nil
}
