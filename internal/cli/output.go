package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case Room:
		o.printRoom(v)
	case JoinResult:
		o.printJoinResult(v)
	case Snapshot:
		o.printSnapshot(v)
	case VoteResult:
		o.printVoteResult(v)
	case GameResults:
		o.printGameResults(v)
	case AnswerResult:
		o.printAnswerResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines user and token
type AuthResult struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// Player response type
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

// Game response type
type Game struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Suit        string `json:"suit"`
	Mechanic    string `json:"mechanic"`
	Difficulty  int    `json:"difficulty"`
	TimeLimit   int    `json:"time_limit"`
	Card        string `json:"card"`
}

// GameState response type
type GameState struct {
	Timer       int               `json:"timer"`
	Round       int               `json:"round"`
	Voted       []string          `json:"voted"`
	Answers     map[string]string `json:"answers"`
	CurrentTurn string            `json:"current_turn,omitempty"`
}

// Room response type
type Room struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	HostID      string `json:"host_id"`
	Status      string `json:"status"`
	CurrentGame *Game  `json:"current_game"`
	GameHistory []Game `json:"game_history,omitempty"`
}

// JoinResult combines room and player after create/join
type JoinResult struct {
	Room   Room   `json:"room"`
	Player Player `json:"player"`
}

// Snapshot response type
type Snapshot struct {
	Room      Room       `json:"room"`
	Players   []Player   `json:"players"`
	GameState *GameState `json:"game_state,omitempty"`
}

// VoteResult response type
type VoteResult struct {
	Eliminated []string `json:"eliminated"`
	Survivors  []string `json:"survivors"`
}

// GameResults response type
type GameResults struct {
	GameClear  bool     `json:"game_clear"`
	Winners    []string `json:"winners"`
	Survivors  []string `json:"survivors"`
	Eliminated []string `json:"eliminated"`
}

// AnswerResult response type
type AnswerResult struct {
	Valid   bool `json:"valid"`
	Correct bool `json:"correct"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	guestStr := "no"
	if u.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("User: %s (%s)\n", u.DisplayName, u.ID)
	fmt.Printf("Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("Status: %s\n", r.Status)
	if r.CurrentGame != nil {
		fmt.Printf("Current Game: %s [%s] (difficulty %d)\n",
			r.CurrentGame.Name, r.CurrentGame.Suit, r.CurrentGame.Difficulty)
	}
	if len(r.GameHistory) > 0 {
		played := make([]string, len(r.GameHistory))
		for i, g := range r.GameHistory {
			played[i] = g.Name
		}
		fmt.Printf("History: %s\n", strings.Join(played, ", "))
	}
}

func (o *Output) printPlayers(players []Player) {
	fmt.Printf("Players (%d):\n", len(players))
	for _, p := range players {
		tags := []string{}
		if p.IsHost {
			tags = append(tags, "host")
		}
		if !p.Connected {
			tags = append(tags, "disconnected")
		}
		if !p.Alive {
			tags = append(tags, "out")
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Printf("  - %s (%s) - %d cards%s\n", p.Name, p.ID, p.Cards, tagStr)
	}
}

func (o *Output) printJoinResult(j JoinResult) {
	o.printRoom(j.Room)
	fmt.Printf("You: %s (%s)\n", j.Player.Name, j.Player.ID)
}

func (o *Output) printSnapshot(s Snapshot) {
	o.printRoom(s.Room)
	o.printPlayers(s.Players)

	if s.GameState != nil {
		gs := s.GameState
		fmt.Printf("Round: %d\n", gs.Round)
		fmt.Printf("Timer: %ds\n", gs.Timer)
		if gs.CurrentTurn != "" {
			fmt.Printf("Current Turn: %s\n", gs.CurrentTurn)
		}
		if len(gs.Voted) > 0 {
			fmt.Printf("Voted: %s\n", strings.Join(gs.Voted, ", "))
		}
		if len(gs.Answers) > 0 {
			fmt.Println("Answers:")
			for pid, answer := range gs.Answers {
				fmt.Printf("  %s: %s\n", pid, answer)
			}
		}
	}
}

func (o *Output) printVoteResult(v VoteResult) {
	if len(v.Eliminated) > 0 {
		fmt.Printf("Eliminated: %s\n", strings.Join(v.Eliminated, ", "))
	} else {
		fmt.Println("Nobody eliminated this round")
	}
	fmt.Printf("Survivors: %s\n", strings.Join(v.Survivors, ", "))
}

func (o *Output) printGameResults(r GameResults) {
	if r.GameClear {
		fmt.Println("Game clear!")
	} else {
		fmt.Println("Game failed")
	}
	if len(r.Winners) > 0 {
		fmt.Printf("Winners: %s\n", strings.Join(r.Winners, ", "))
	}
	if len(r.Survivors) > 0 {
		fmt.Printf("Survivors: %s\n", strings.Join(r.Survivors, ", "))
	}
	if len(r.Eliminated) > 0 {
		fmt.Printf("Eliminated: %s\n", strings.Join(r.Eliminated, ", "))
	}
}

func (o *Output) printAnswerResult(a AnswerResult) {
	if !a.Valid {
		fmt.Println("Answer rejected")
		return
	}
	if a.Correct {
		fmt.Println("Correct!")
	} else {
		fmt.Println("Incorrect")
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
