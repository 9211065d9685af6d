package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jmarban/suitparty-go/internal/api/middleware"
	"github.com/jmarban/suitparty-go/internal/api/request"
	"github.com/jmarban/suitparty-go/internal/api/response"
	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/services/presence"
	"github.com/jmarban/suitparty-go/internal/services/room"
	"github.com/jmarban/suitparty-go/internal/services/session"
)

// RoomHandler handles room lifecycle endpoints
type RoomHandler struct {
	rooms    room.ControllerInterface
	sessions session.ServiceInterface
	presence presence.TrackerInterface
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms room.ControllerInterface, sessions session.ServiceInterface, presence presence.TrackerInterface) *RoomHandler {
	return &RoomHandler{
		rooms:    rooms,
		sessions: sessions,
		presence: presence,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body, the user's display name is the default
		req = request.CreateRoomRequest{}
	}
	name := req.DisplayName
	if name == "" {
		name = user.DisplayName
	}

	rm, player, err := h.rooms.CreateRoom(r.Context(), user.ID, name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.JoinResponse{
		Room:   response.RoomFromModel(rm),
		Player: response.PlayerFromModel(player, rm.HostID),
	})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = request.JoinRoomRequest{}
	}
	name := req.DisplayName
	if name == "" {
		name = user.DisplayName
	}

	rm, player, err := h.rooms.JoinRoom(r.Context(), roomCode(r), user.ID, name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponse{
		Room:   response.RoomFromModel(rm),
		Player: response.PlayerFromModel(player, rm.HostID),
	})
}

// Leave handles POST /api/v1/rooms/{code}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.rooms.LeaveRoom(r.Context(), rm.ID, user.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Heartbeat handles POST /api/v1/rooms/{code}/heartbeat
func (h *RoomHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.presence.Heartbeat(r.Context(), rm.ID, user.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Disconnect handles POST /api/v1/rooms/{code}/disconnect
func (h *RoomHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.presence.Disconnect(r.Context(), rm.ID, user.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// State handles GET /api/v1/rooms/{code}/state
func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request) {
	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	snap, err := h.sessions.Snapshot(r.Context(), rm.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SnapshotFromModel(snap))
}

func roomCode(r *http.Request) model.RoomCode {
	return model.RoomCode(mux.Vars(r)["code"])
}
