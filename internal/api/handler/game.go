package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jmarban/suitparty-go/internal/api/middleware"
	"github.com/jmarban/suitparty-go/internal/api/request"
	"github.com/jmarban/suitparty-go/internal/api/response"
	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/services/room"
	"github.com/jmarban/suitparty-go/internal/services/rules"
)

// GameHandler handles in-game endpoints
type GameHandler struct {
	rooms room.ControllerInterface
	rules rules.ServiceInterface
}

// NewGameHandler creates a new game handler
func NewGameHandler(rooms room.ControllerInterface, rules rules.ServiceInterface) *GameHandler {
	return &GameHandler{
		rooms: rooms,
		rules: rules,
	}
}

// Start handles POST /api/v1/rooms/{code}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	selection, err := parseSelection(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	rm, err = h.rooms.StartGame(r.Context(), rm.ID, user.ID, selection)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}

// End handles POST /api/v1/rooms/{code}/end
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	results, err := h.rooms.EndGame(r.Context(), rm.ID, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameResultsFromModel(results))
}

// Next handles POST /api/v1/rooms/{code}/next
func (h *GameHandler) Next(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	selection, err := parseSelection(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	rm, err = h.rooms.NextGame(r.Context(), rm.ID, user.ID, selection)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}

// Vote handles POST /api/v1/rooms/{code}/vote
func (h *GameHandler) Vote(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Target == "" {
		WriteError(w, NewInvalidRequestError("target is required"))
		return
	}

	rm, player, err := h.resolvePlayer(r, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.rules.SubmitVote(r.Context(), rm.ID, player.ID, req.Target); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Answer handles POST /api/v1/rooms/{code}/answer
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	rm, player, err := h.resolvePlayer(r, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.rules.SubmitAnswer(r.Context(), rm.ID, player.ID, req.Answer)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AnswerResponse{
		Valid:   result.Valid,
		Correct: result.Correct,
	})
}

// Resolve handles POST /api/v1/rooms/{code}/resolve. Revealing and applying
// the round's votes is host authority, like start and end.
func (h *GameHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	if !rm.IsHost(user.ID) {
		WriteError(w, model.ErrNotHost)
		return
	}

	result, err := h.rules.ResolveRound(r.Context(), rm.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.VoteResultFromModel(result))
}

// resolvePlayer maps the authenticated user to their player record in the
// room identified by the request path
func (h *GameHandler) resolvePlayer(r *http.Request, userID model.UserID) (*model.Room, *model.Player, error) {
	rm, err := h.rooms.GetRoomByCode(r.Context(), roomCode(r))
	if err != nil {
		return nil, nil, err
	}

	player, err := h.rooms.GetPlayerByUser(r.Context(), rm.ID, userID)
	if err != nil {
		return nil, nil, err
	}
	return rm, player, nil
}

func parseSelection(r *http.Request) (*room.GameSelection, error) {
	var req request.StartGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Empty body means a random pick
		return nil, nil
	}
	if req.GameID == "" {
		return nil, nil
	}
	if req.Suit == "" {
		return nil, NewInvalidRequestError("suit is required when game_id is set")
	}
	return &room.GameSelection{
		CatalogID: req.GameID,
		Suit:      model.GameSuit(req.Suit),
	}, nil
}
