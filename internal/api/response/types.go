package response

import (
	"time"

	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/services/auth"
	"github.com/jmarban/suitparty-go/internal/services/rules"
	"github.com/jmarban/suitparty-go/internal/services/session"
)

// User represents a user identity in API responses
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:          string(u.ID),
		DisplayName: u.DisplayName,
		IsGuest:     u.IsGuest,
	}
}

// AuthResponse is the response for session endpoints
type AuthResponse struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		User:         UserFromModel(&s.User),
		SessionToken: s.Token,
	}
}

// Player represents a room member
type Player struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Alive     bool      `json:"alive"`
	Cards     int       `json:"cards"`
	Connected bool      `json:"connected"`
	IsHost    bool      `json:"is_host"`
	JoinedAt  time.Time `json:"joined_at"`
}

// PlayerFromModel converts model.Player
func PlayerFromModel(p *model.Player, hostID model.UserID) Player {
	return Player{
		ID:        string(p.ID),
		UserID:    string(p.UserID),
		Name:      p.Name,
		Alive:     p.Alive,
		Cards:     p.Cards,
		Connected: p.Connected,
		IsHost:    p.UserID == hostID,
		JoinedAt:  p.JoinedAt,
	}
}

// Game represents a generated game instance
type Game struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Suit        string           `json:"suit"`
	Mechanic    string           `json:"mechanic"`
	Difficulty  int              `json:"difficulty"`
	TimeLimit   int              `json:"time_limit"`
	Card        string           `json:"card"`
	Rounds      int              `json:"rounds,omitempty"`
	VotingType  string           `json:"voting_type,omitempty"`
	Riddles     int              `json:"riddles,omitempty"`
	Problems    int              `json:"problems,omitempty"`
	Challenges  int              `json:"challenges,omitempty"`
	Params      model.GameParams `json:"params"`
}

// GameFromModel converts model.GameInstance
func GameFromModel(g *model.GameInstance) Game {
	return Game{
		ID:          g.CatalogID,
		Name:        g.Name,
		Description: g.Description,
		Suit:        string(g.Suit),
		Mechanic:    string(g.Mechanic),
		Difficulty:  g.Difficulty,
		TimeLimit:   g.TimeLimit,
		Card:        g.Card,
		Rounds:      g.Rounds,
		VotingType:  string(g.VotingType),
		Riddles:     g.Riddles,
		Problems:    g.Problems,
		Challenges:  g.Challenges,
		Params:      g.Params,
	}
}

// GameState represents the round-scoped session state. Votes are secret
// until reveal, so only the voter set is exposed, not the targets.
type GameState struct {
	Timer       int               `json:"timer"`
	Round       int               `json:"round"`
	Voted       []string          `json:"voted"`
	Answers     map[string]string `json:"answers"`
	CurrentTurn string            `json:"current_turn,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// GameStateFromModel converts model.GameState
func GameStateFromModel(gs *model.GameState) GameState {
	voted := make([]string, 0, len(gs.Votes))
	for pid := range gs.Votes {
		voted = append(voted, string(pid))
	}
	answers := make(map[string]string, len(gs.Answers))
	for pid, a := range gs.Answers {
		answers[string(pid)] = a
	}
	return GameState{
		Timer:       gs.Timer,
		Round:       gs.Round,
		Voted:       voted,
		Answers:     answers,
		CurrentTurn: string(gs.CurrentTurn),
		UpdatedAt:   gs.UpdatedAt,
	}
}

// Room represents a room in API responses
type Room struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	HostID      string    `json:"host_id"`
	Status      string    `json:"status"`
	CurrentGame *Game     `json:"current_game"`
	GameHistory []Game    `json:"game_history,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomFromModel converts model.Room
func RoomFromModel(r *model.Room) Room {
	var current *Game
	if r.CurrentGame != nil {
		g := GameFromModel(r.CurrentGame)
		current = &g
	}

	history := make([]Game, len(r.GameHistory))
	for i := range r.GameHistory {
		history[i] = GameFromModel(&r.GameHistory[i])
	}

	return Room{
		ID:          string(r.ID),
		Code:        string(r.Code),
		HostID:      string(r.HostID),
		Status:      string(r.Status),
		CurrentGame: current,
		GameHistory: history,
		CreatedAt:   r.CreatedAt,
	}
}

// Snapshot is the full read-side view of a room
type Snapshot struct {
	Room      Room       `json:"room"`
	Players   []Player   `json:"players"`
	GameState *GameState `json:"game_state,omitempty"`
}

// SnapshotFromModel converts a session.Snapshot
func SnapshotFromModel(s *session.Snapshot) Snapshot {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromModel(p, s.Room.HostID)
	}

	snap := Snapshot{
		Room:    RoomFromModel(s.Room),
		Players: players,
	}
	if s.GameState != nil {
		gs := GameStateFromModel(s.GameState)
		snap.GameState = &gs
	}
	return snap
}

// JoinResponse is the response after creating or joining a room
type JoinResponse struct {
	Room   Room   `json:"room"`
	Player Player `json:"player"`
}

// VoteResult is the response after resolving a round
type VoteResult struct {
	Eliminated []string `json:"eliminated"`
	Survivors  []string `json:"survivors"`
}

// VoteResultFromModel converts rules.VoteResult
func VoteResultFromModel(v rules.VoteResult) VoteResult {
	return VoteResult{
		Eliminated: playerIDStrings(v.Eliminated),
		Survivors:  playerIDStrings(v.Survivors),
	}
}

// GameResults is the response after a game ends
type GameResults struct {
	GameClear  bool     `json:"game_clear"`
	Winners    []string `json:"winners"`
	Survivors  []string `json:"survivors"`
	Eliminated []string `json:"eliminated"`
}

// GameResultsFromModel converts rules.GameResults
func GameResultsFromModel(r *rules.GameResults) GameResults {
	return GameResults{
		GameClear:  r.GameClear,
		Winners:    playerStrings(r.Winners),
		Survivors:  playerStrings(r.Survivors),
		Eliminated: playerStrings(r.Eliminated),
	}
}

// AnswerResponse is the response after submitting an answer
type AnswerResponse struct {
	Valid   bool `json:"valid"`
	Correct bool `json:"correct"`
}

func playerIDStrings(ids []model.PlayerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func playerStrings(players []*model.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = string(p.ID)
	}
	return out
}
