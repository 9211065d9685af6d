// Package catalog holds the static library of game definitions. It is pure
// lookup: definitions carry no per-session state.
package catalog

import "github.com/jmarban/suitparty-go/internal/model"

// Definition describes one game in the library, before per-session
// difficulty and parameters are applied.
type Definition struct {
	ID          string
	Name        string
	Description string
	Suit        model.GameSuit
	Mechanic    model.GameMechanic

	// Per-suit progression targets; zero where not applicable
	Rounds     int
	VotingType model.VotingType
	Riddles    int
	Problems   int
	Challenges int
}

var heartsGames = []Definition{
	{
		ID:          "witch_hunt",
		Name:        "Witch Hunt",
		Description: "Vote for who you think is the witch. Guess right and everyone but the witch survives.",
		Suit:        model.SuitHearts,
		Mechanic:    model.MechanicVoteElimination,
		Rounds:      3,
		VotingType:  model.VotingSecret,
	},
	{
		ID:          "trust_fall",
		Name:        "Trust Fall",
		Description: "Prisoner's dilemma: cooperate or betray?",
		Suit:        model.SuitHearts,
		Mechanic:    model.MechanicPrisonersDilemma,
		Rounds:      2,
		VotingType:  model.VotingSecret,
	},
	{
		ID:          "majority_rules",
		Name:        "Majority Rules",
		Description: "The majority decides who is sacrificed each round.",
		Suit:        model.SuitHearts,
		Mechanic:    model.MechanicMajorityRules,
		Rounds:      3,
		VotingType:  model.VotingOpen,
	},
}

var clubsGames = []Definition{
	{
		ID:          "riddle_room",
		Name:        "Riddle Room",
		Description: "Solve five riddles as a team.",
		Suit:        model.SuitClubs,
		Mechanic:    model.MechanicCollaborativeRiddles,
		Riddles:     5,
	},
	{
		ID:          "word_chain",
		Name:        "Word Chain",
		Description: "Build a chain of words. Each player adds a related word.",
		Suit:        model.SuitClubs,
		Mechanic:    model.MechanicSequentialCollab,
	},
	{
		ID:          "memory_palace",
		Name:        "Memory Palace",
		Description: "Memorize a sequence together. Each player remembers a part.",
		Suit:        model.SuitClubs,
		Mechanic:    model.MechanicDistributedMemory,
	},
}

var diamondsGames = []Definition{
	{
		ID:          "math_race",
		Name:        "Math Race",
		Description: "Solve equations. Fastest answer scores.",
		Suit:        model.SuitDiamonds,
		Mechanic:    model.MechanicSpeedMath,
		Problems:    10,
	},
	{
		ID:          "pattern_break",
		Name:        "Pattern Break",
		Description: "Identify the pattern in the sequence.",
		Suit:        model.SuitDiamonds,
		Mechanic:    model.MechanicPatternRecognition,
		Problems:    3,
	},
	{
		ID:          "logic_gates",
		Name:        "Logic Gates",
		Description: "Work through a logic circuit step by step.",
		Suit:        model.SuitDiamonds,
		Mechanic:    model.MechanicBooleanLogic,
		Problems:    5,
	},
}

var spadesGames = []Definition{
	{
		ID:          "hot_seat",
		Name:        "Hot Seat",
		Description: "Answer personal questions under time pressure.",
		Suit:        model.SuitSpades,
		Mechanic:    model.MechanicTimedQuestions,
		Challenges:  3,
	},
	{
		ID:          "dare_or_dare",
		Name:        "Dare or Dare",
		Description: "Complete physical challenges. Confirm when done.",
		Suit:        model.SuitSpades,
		Mechanic:    model.MechanicPhysicalChallenges,
		Challenges:  5,
	},
	{
		ID:          "endurance_test",
		Name:        "Endurance Test",
		Description: "Hold a position. Last one to give up wins.",
		Suit:        model.SuitSpades,
		Mechanic:    model.MechanicLastStanding,
		Challenges:  1,
	},
}

var library = map[model.GameSuit][]Definition{
	model.SuitHearts:   heartsGames,
	model.SuitClubs:    clubsGames,
	model.SuitDiamonds: diamondsGames,
	model.SuitSpades:   spadesGames,
}

// BySuit returns the definitions for a suit. The returned slice is shared;
// callers must not mutate it.
func BySuit(suit model.GameSuit) []Definition {
	return library[suit]
}

// Lookup finds a definition by suit and id
func Lookup(suit model.GameSuit, id string) (Definition, bool) {
	for _, def := range library[suit] {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// SuitName returns the display name of a suit for card labels
func SuitName(suit model.GameSuit) string {
	switch suit {
	case model.SuitHearts:
		return "Hearts"
	case model.SuitClubs:
		return "Clubs"
	case model.SuitDiamonds:
		return "Diamonds"
	case model.SuitSpades:
		return "Spades"
	default:
		return string(suit)
	}
}
