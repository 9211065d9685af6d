package model

import "time"

// GameSuit is one of the four game categories
type GameSuit string

const (
	SuitHearts   GameSuit = "hearts"   // social elimination
	SuitClubs    GameSuit = "clubs"    // collaboration
	SuitDiamonds GameSuit = "diamonds" // turn-based logic
	SuitSpades   GameSuit = "spades"   // endurance / physical
)

// Suits lists all suits in canonical order
var Suits = []GameSuit{SuitHearts, SuitClubs, SuitDiamonds, SuitSpades}

// GameMechanic is the specific rule variant within a suit
type GameMechanic string

const (
	MechanicVoteElimination  GameMechanic = "vote_elimination"
	MechanicPrisonersDilemma GameMechanic = "prisoners_dilemma"
	MechanicMajorityRules    GameMechanic = "majority_rules"

	MechanicCollaborativeRiddles GameMechanic = "collaborative_riddles"
	MechanicSequentialCollab     GameMechanic = "sequential_collaboration"
	MechanicDistributedMemory    GameMechanic = "distributed_memory"

	MechanicSpeedMath          GameMechanic = "speed_math"
	MechanicPatternRecognition GameMechanic = "pattern_recognition"
	MechanicBooleanLogic       GameMechanic = "boolean_logic"

	MechanicTimedQuestions     GameMechanic = "timed_questions"
	MechanicPhysicalChallenges GameMechanic = "physical_challenges"
	MechanicLastStanding       GameMechanic = "last_standing"
)

// VotingType distinguishes secret from open ballots
type VotingType string

const (
	VotingSecret VotingType = "secret"
	VotingOpen   VotingType = "open"
)

// GameParams is the mutable suit-specific parameter bag of a game instance.
// Only the fields relevant to the instance's suit are populated.
type GameParams struct {
	// Hearts
	Revealed bool `json:"revealed,omitempty"`

	// Clubs
	CurrentRiddle int      `json:"current_riddle,omitempty"`
	SharedAnswer  string   `json:"shared_answer,omitempty"`
	Sequence      []string `json:"sequence,omitempty"`

	// Diamonds
	CurrentProblem int        `json:"current_problem,omitempty"`
	CurrentPlayer  PlayerID   `json:"current_player,omitempty"`
	TurnOrder      []PlayerID `json:"turn_order,omitempty"`

	// Spades
	CurrentChallenge int               `json:"current_challenge,omitempty"`
	Completions      map[PlayerID]bool `json:"completions,omitempty"`
}

// GameInstance is one concrete generated playthrough. The descriptor fields
// are immutable once created; only Params mutates during play.
type GameInstance struct {
	CatalogID   string
	Name        string
	Description string
	Suit        GameSuit
	Mechanic    GameMechanic
	Difficulty  int // 1-10
	TimeLimit   int // seconds, derived from difficulty
	Card        string

	// Per-suit progression targets, copied from the catalog definition
	Rounds     int
	VotingType VotingType
	Riddles    int
	Problems   int
	Challenges int

	Params GameParams
}

// GameState is the round-scoped mutable session record, distinct from the
// game instance. Exactly one per room while a game is active.
type GameState struct {
	RoomID      RoomID
	Timer       int // seconds remaining
	Round       int
	Votes       map[PlayerID]string // voter -> target player id, or a choice token
	Answers     map[PlayerID]string
	CurrentTurn PlayerID // empty outside turn-based games
	UpdatedAt   time.Time
}

// HasVoted reports whether the player already has a recorded vote this round
func (gs *GameState) HasVoted(id PlayerID) bool {
	_, ok := gs.Votes[id]
	return ok
}

// Choice tokens recorded as votes by the cooperative/betrayal mechanic
const (
	ChoiceBetray    = "betray"
	ChoiceCooperate = "cooperate"
)
