package request

// CreateGuestRequest is the request body for creating a guest session
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	DisplayName string `json:"display_name,omitempty"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	DisplayName string `json:"display_name,omitempty"`
}

// StartGameRequest is the request body for starting a game. Both fields
// empty means a fully random pick.
type StartGameRequest struct {
	GameID string `json:"game_id,omitempty"`
	Suit   string `json:"suit,omitempty"`
}

// VoteRequest is the request body for submitting a vote. Target is a player
// id, or a choice token for the betrayal mechanic.
type VoteRequest struct {
	Target string `json:"target"`
}

// AnswerRequest is the request body for submitting an answer
type AnswerRequest struct {
	Answer string `json:"answer"`
}
