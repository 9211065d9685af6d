package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Room errors
	ErrRoomNotFound            = errors.New("room not found")
	ErrRoomFull                = errors.New("room is full")
	ErrGameAlreadyStarted      = errors.New("game has already started")
	ErrNotHost                 = errors.New("user is not the host")
	ErrInsufficientPlayers     = errors.New("insufficient players to start game")
	ErrCodeGenerationExhausted = errors.New("could not generate a unique room code")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found in room")

	// Game errors
	ErrNoGameInProgress  = errors.New("no game in progress")
	ErrGameStateNotFound = errors.New("game state not found")
	ErrGameNotInCatalog  = errors.New("game not found in catalog")
)

// ValidationError is returned when the rules engine rejects a vote or answer.
// The reason is safe to surface to players.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError creates a ValidationError with the given reason
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// IsValidationError reports whether err is a rules-engine rejection
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
