package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmarban/suitparty-go/internal/api/response"
	"github.com/jmarban/suitparty-go/internal/services/room"
	"github.com/jmarban/suitparty-go/internal/services/session"
)

const (
	// Time between keepalive pings
	pingPeriod = 15 * time.Second
)

// EventsHandler streams room snapshots over SSE
type EventsHandler struct {
	rooms    room.ControllerInterface
	sessions session.ServiceInterface
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(rooms room.ControllerInterface, sessions session.ServiceInterface) *EventsHandler {
	return &EventsHandler{
		rooms:    rooms,
		sessions: sessions,
	}
}

// Stream handles GET /api/v1/rooms/{code}/events. Every room change pushes
// a fresh full snapshot; clients treat each event as the latest state, not
// a delta.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	snapshots, cancel, err := h.sessions.Watch(r.Context(), rm.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Send the current state immediately so clients don't wait for the
	// first change
	initial, err := h.sessions.Snapshot(r.Context(), rm.ID)
	if err == nil {
		if writeSnapshotEvent(w, initial) != nil {
			return
		}
		flusher.Flush()
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				// Feed closed, room is gone
				_, _ = w.Write([]byte("event: closed\ndata: {}\n\n"))
				flusher.Flush()
				return
			}
			if writeSnapshotEvent(w, snap) != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeSnapshotEvent(w http.ResponseWriter, snap *session.Snapshot) error {
	data, err := json.Marshal(response.SnapshotFromModel(snap))
	if err != nil {
		return err
	}
	_, err = w.Write([]byte("event: snapshot\ndata: " + string(data) + "\n\n"))
	return err
}
