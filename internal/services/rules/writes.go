package rules

import (
	"context"
	"log/slog"

	"github.com/jmarban/suitparty-go/internal/model"
)

// Write helpers. All game-state mutation funnels through here so the
// room status / current-game invariant can't be broken by ad-hoc patches.
// Each player only ever writes their own key in the votes/answers maps,
// which keeps concurrent submissions from different players independent.

// SubmitVote validates and records a vote. For player-target mechanics the
// target must be a living player's id; for the cooperative/betrayal
// mechanic it must be a choice token.
func (s *Service) SubmitVote(ctx context.Context, roomID model.RoomID, voterID model.PlayerID, target string) error {
	room, state, players, err := s.loadSession(ctx, roomID)
	if err != nil {
		return err
	}
	game := room.CurrentGame

	if game.Mechanic == model.MechanicPrisonersDilemma {
		if err := s.validateChoice(state, players, voterID, target); err != nil {
			return err
		}
	} else {
		if err := s.ValidateVote(game, state, players, voterID, model.PlayerID(target)); err != nil {
			return err
		}
	}

	if state.Votes == nil {
		state.Votes = make(map[model.PlayerID]string)
	}
	state.Votes[voterID] = target
	state.UpdatedAt = s.clock.Now()

	return s.storage.SaveGameState(ctx, state)
}

// validateChoice checks a betray/cooperate submission
func (s *Service) validateChoice(state *model.GameState, players []*model.Player, voterID model.PlayerID, choice string) error {
	voter := model.FindPlayer(players, voterID)
	if voter == nil || !voter.Alive {
		return model.NewValidationError("player is not alive")
	}
	if state.HasVoted(voterID) {
		return model.NewValidationError("already voted this round")
	}
	if choice != model.ChoiceBetray && choice != model.ChoiceCooperate {
		return model.NewValidationError("invalid choice")
	}
	return nil
}

// SubmitAnswer validates and records an answer under the player's own key
func (s *Service) SubmitAnswer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, answer string) (AnswerResult, error) {
	room, state, players, err := s.loadSession(ctx, roomID)
	if err != nil {
		return AnswerResult{}, err
	}

	player := model.FindPlayer(players, playerID)
	if player == nil || !player.Alive {
		return AnswerResult{}, model.NewValidationError("player is not alive")
	}

	result, err := s.ValidateAnswer(room.CurrentGame, answer)
	if err != nil {
		return AnswerResult{}, err
	}

	if state.Answers == nil {
		state.Answers = make(map[model.PlayerID]string)
	}
	state.Answers[playerID] = answer
	state.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveGameState(ctx, state); err != nil {
		return AnswerResult{}, err
	}

	// Spades confirmations also flip the player's completion flag
	if room.CurrentGame.Suit == model.SuitSpades {
		room.CurrentGame.Params.Completions[playerID] = true
		room.UpdatedAt = s.clock.Now()
		if err := s.storage.SaveRoom(ctx, room); err != nil {
			return AnswerResult{}, err
		}
	}

	return result, nil
}

// ResolveRound applies vote resolution to the roster, then advances the
// round: eliminated players are marked dead, votes and answers are cleared
// and the round counter increments.
func (s *Service) ResolveRound(ctx context.Context, roomID model.RoomID) (VoteResult, error) {
	room, state, players, err := s.loadSession(ctx, roomID)
	if err != nil {
		return VoteResult{}, err
	}

	result := s.CalculateVoteResults(room.CurrentGame, state, players)

	for _, id := range result.Eliminated {
		p := model.FindPlayer(players, id)
		if p == nil {
			continue
		}
		p.Alive = false
		if err := s.storage.SavePlayer(ctx, p); err != nil {
			return VoteResult{}, err
		}
	}

	state.Round++
	state.Votes = make(map[model.PlayerID]string)
	state.Answers = make(map[model.PlayerID]string)
	state.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveGameState(ctx, state); err != nil {
		return VoteResult{}, err
	}

	s.logger.Info("round resolved",
		slog.String("room_id", string(roomID)),
		slog.Int("round", state.Round),
		slog.Int("eliminated", len(result.Eliminated)),
		slog.Int("survivors", len(result.Survivors)),
	)

	return result, nil
}

// loadSession fetches the room, its game state and roster, failing if no
// game is active
func (s *Service) loadSession(ctx context.Context, roomID model.RoomID) (*model.Room, *model.GameState, []*model.Player, error) {
	room, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, nil, err
	}
	if room.Status != model.RoomStatusPlaying || room.CurrentGame == nil {
		return nil, nil, nil, model.ErrNoGameInProgress
	}

	state, err := s.storage.GetGameState(ctx, roomID)
	if err != nil {
		return nil, nil, nil, err
	}

	players, err := s.storage.ListPlayers(ctx, roomID)
	if err != nil {
		return nil, nil, nil, err
	}

	return room, state, players, nil
}

// Interface for dependency injection
type ServiceInterface interface {
	ValidateVote(game *model.GameInstance, state *model.GameState, players []*model.Player, voterID, targetID model.PlayerID) error
	CalculateVoteResults(game *model.GameInstance, state *model.GameState, players []*model.Player) VoteResult
	ValidateAnswer(game *model.GameInstance, answer string) (AnswerResult, error)
	CheckGameCompletion(game *model.GameInstance, state *model.GameState, players []*model.Player) CompletionResult
	CalculateGameResults(players []*model.Player) GameResults
	SubmitVote(ctx context.Context, roomID model.RoomID, voterID model.PlayerID, target string) error
	SubmitAnswer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, answer string) (AnswerResult, error)
	ResolveRound(ctx context.Context, roomID model.RoomID) (VoteResult, error)
}

var _ ServiceInterface = (*Service)(nil)
