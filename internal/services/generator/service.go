// Package generator produces fresh game instances from the catalog. It is
// pure selection and parameter setup; persisting the instance is the room
// controller's job.
package generator

import (
	"fmt"

	"github.com/jmarban/suitparty-go/internal/catalog"
	"github.com/jmarban/suitparty-go/internal/dependencies/random"
	"github.com/jmarban/suitparty-go/internal/model"
)

const (
	// Base difficulty is rolled uniformly in [minBaseDifficulty, maxBaseDifficulty],
	// then bumped by one per three players, capped at maxDifficulty.
	minBaseDifficulty = 3
	maxBaseDifficulty = 7
	maxDifficulty     = 10

	// secondsPerDifficulty converts difficulty into the instance time limit
	secondsPerDifficulty = 60
)

// Service selects and parameterizes game instances
type Service struct {
	random random.Random
}

// New creates a new generator Service
func New(random random.Random) *Service {
	return &Service{random: random}
}

// Random picks a suit uniformly at random and generates an instance for it,
// preferring definitions whose catalog id is not in excludeIDs. If every
// definition of the suit is excluded the full pool becomes eligible again.
func (s *Service) Random(players []*model.Player, excludeIDs []string) *model.GameInstance {
	suit := model.Suits[s.random.Intn(len(model.Suits))]
	return s.forSuit(suit, players, excludeIDs)
}

// Specific generates an instance for an explicit catalog id and suit,
// bypassing random selection but applying the same difficulty and
// parameter logic.
func (s *Service) Specific(id string, suit model.GameSuit, players []*model.Player) (*model.GameInstance, error) {
	def, ok := catalog.Lookup(suit, id)
	if !ok {
		return nil, model.ErrGameNotInCatalog
	}
	return s.build(def, players), nil
}

func (s *Service) forSuit(suit model.GameSuit, players []*model.Player, excludeIDs []string) *model.GameInstance {
	pool := catalog.BySuit(suit)

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var available []catalog.Definition
	for _, def := range pool {
		if !excluded[def.ID] {
			available = append(available, def)
		}
	}
	// Everything played recently: the pool resets
	if len(available) == 0 {
		available = pool
	}

	def := available[s.random.Intn(len(available))]
	return s.build(def, players)
}

// build applies difficulty scaling and suit-specific parameter setup
func (s *Service) build(def catalog.Definition, players []*model.Player) *model.GameInstance {
	difficulty := s.random.IntRange(minBaseDifficulty, maxBaseDifficulty) + len(players)/3
	if difficulty > maxDifficulty {
		difficulty = maxDifficulty
	}

	game := &model.GameInstance{
		CatalogID:   def.ID,
		Name:        def.Name,
		Description: def.Description,
		Suit:        def.Suit,
		Mechanic:    def.Mechanic,
		Difficulty:  difficulty,
		TimeLimit:   difficulty * secondsPerDifficulty,
		Card:        fmt.Sprintf("%d of %s", difficulty, catalog.SuitName(def.Suit)),
		Rounds:      def.Rounds,
		VotingType:  def.VotingType,
		Riddles:     def.Riddles,
		Problems:    def.Problems,
		Challenges:  def.Challenges,
	}

	switch def.Suit {
	case model.SuitHearts:
		game.Params = model.GameParams{Revealed: false}

	case model.SuitClubs:
		game.Params = model.GameParams{
			CurrentRiddle: 0,
			SharedAnswer:  "",
			Sequence:      []string{},
		}

	case model.SuitDiamonds:
		turnOrder := make([]model.PlayerID, len(players))
		for i, p := range players {
			turnOrder[i] = p.ID
		}
		s.random.Shuffle(len(turnOrder), func(i, j int) {
			turnOrder[i], turnOrder[j] = turnOrder[j], turnOrder[i]
		})
		var first model.PlayerID
		if len(turnOrder) > 0 {
			first = turnOrder[0]
		}
		game.Params = model.GameParams{
			CurrentProblem: 0,
			CurrentPlayer:  first,
			TurnOrder:      turnOrder,
		}

	case model.SuitSpades:
		completions := make(map[model.PlayerID]bool, len(players))
		for _, p := range players {
			completions[p.ID] = false
		}
		game.Params = model.GameParams{
			CurrentChallenge: 0,
			Completions:      completions,
		}
	}

	return game
}
