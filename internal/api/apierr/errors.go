package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeNotHost                 = "NOT_HOST"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeRoomNotFound            = "ROOM_NOT_FOUND"
	CodePlayerNotFound          = "PLAYER_NOT_FOUND"
	CodeRoomFull                = "ROOM_FULL"
	CodeGameAlreadyStarted      = "GAME_ALREADY_STARTED"
	CodeNoGameInProgress        = "NO_GAME_IN_PROGRESS"
	CodeInsufficientPlayers     = "INSUFFICIENT_PLAYERS"
	CodeCodeGenerationExhausted = "CODE_GENERATION_EXHAUSTED"
	CodeGameNotInCatalog        = "GAME_NOT_IN_CATALOG"
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeUsernameExists          = "USERNAME_EXISTS"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeInternalError           = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Rules rejections carry a human-readable reason
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusBadRequest, APIError{CodeValidationFailed, ve.Reason}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameStateNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNoGameInProgress, "No game in progress"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrGameAlreadyStarted):
		return &httpError{http.StatusConflict, APIError{CodeGameAlreadyStarted, "Game already in progress"}}
	case errors.Is(err, model.ErrNoGameInProgress):
		return &httpError{http.StatusNotFound, APIError{CodeNoGameInProgress, "No game in progress"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientPlayers, "Not enough players to start"}}
	case errors.Is(err, model.ErrCodeGenerationExhausted):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeCodeGenerationExhausted, "Could not generate a unique room code"}}
	case errors.Is(err, model.ErrGameNotInCatalog):
		return &httpError{http.StatusBadRequest, APIError{CodeGameNotInCatalog, "Unknown game for that suit"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
