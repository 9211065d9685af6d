package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jmarban/suitparty-go/internal/dependencies/mocks"
	"github.com/jmarban/suitparty-go/internal/model"
	"github.com/jmarban/suitparty-go/internal/storage/memory"
	"github.com/jmarban/suitparty-go/internal/testutil"
)

type WritesSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestWritesSuite(t *testing.T) {
	suite.Run(t, new(WritesSuite))
}

func (s *WritesSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// setupPlayingRoom persists a room mid-game with the given instance and
// three living players x, y, z
func (s *WritesSuite) setupPlayingRoom(game *model.GameInstance) model.RoomID {
	roomID := model.RoomID("room-1")
	room := &model.Room{
		ID:          roomID,
		Code:        "ABC123",
		HostID:      "user-x",
		Status:      model.RoomStatusPlaying,
		CurrentGame: game,
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	for i, id := range []model.PlayerID{"x", "y", "z"} {
		player := &model.Player{
			ID:        id,
			RoomID:    roomID,
			UserID:    model.UserID("user-" + string(id)),
			Name:      string(id),
			Alive:     true,
			Connected: true,
			JoinedAt:  s.clock.Now().Add(time.Duration(i) * time.Second),
		}
		s.Require().NoError(s.storage.SavePlayer(s.ctx, player))
	}

	state := &model.GameState{
		RoomID:  roomID,
		Timer:   game.TimeLimit,
		Round:   1,
		Votes:   make(map[model.PlayerID]string),
		Answers: make(map[model.PlayerID]string),
	}
	s.Require().NoError(s.storage.SaveGameState(s.ctx, state))

	return roomID
}

func (s *WritesSuite) voteGame() *model.GameInstance {
	return &model.GameInstance{
		CatalogID:  "witch_hunt",
		Suit:       model.SuitHearts,
		Mechanic:   model.MechanicVoteElimination,
		Difficulty: 5,
		TimeLimit:  300,
		Rounds:     3,
		VotingType: model.VotingSecret,
	}
}

// SubmitVote tests

func (s *WritesSuite) TestSubmitVoteRecordsVote() {
	roomID := s.setupPlayingRoom(s.voteGame())

	err := s.service.SubmitVote(s.ctx, roomID, "x", "y")
	s.Require().NoError(err)

	state, err := s.storage.GetGameState(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal("y", state.Votes["x"])
	s.Equal(s.clock.Now(), state.UpdatedAt)
}

func (s *WritesSuite) TestSubmitVoteFailsWithoutGame() {
	roomID := model.RoomID("room-1")
	room := &model.Room{ID: roomID, Code: "ABC123", Status: model.RoomStatusWaiting}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	err := s.service.SubmitVote(s.ctx, roomID, "x", "y")
	s.ErrorIs(err, model.ErrNoGameInProgress)
}

func (s *WritesSuite) TestSubmitVoteRejectsSecondVote() {
	roomID := s.setupPlayingRoom(s.voteGame())

	s.Require().NoError(s.service.SubmitVote(s.ctx, roomID, "x", "y"))
	err := s.service.SubmitVote(s.ctx, roomID, "x", "z")
	s.True(model.IsValidationError(err))
}

func (s *WritesSuite) TestSubmitVoteDilemmaAcceptsChoiceTokens() {
	game := s.voteGame()
	game.Mechanic = model.MechanicPrisonersDilemma
	roomID := s.setupPlayingRoom(game)

	s.Require().NoError(s.service.SubmitVote(s.ctx, roomID, "x", model.ChoiceBetray))
	s.Require().NoError(s.service.SubmitVote(s.ctx, roomID, "y", model.ChoiceCooperate))

	err := s.service.SubmitVote(s.ctx, roomID, "z", "y")
	s.True(model.IsValidationError(err))
}

// SubmitAnswer tests

func (s *WritesSuite) TestSubmitAnswerRecordsAnswer() {
	game := &model.GameInstance{
		CatalogID: "riddle_room",
		Suit:      model.SuitClubs,
		Mechanic:  model.MechanicCollaborativeRiddles,
		TimeLimit: 300,
		Riddles:   5,
	}
	roomID := s.setupPlayingRoom(game)

	result, err := s.service.SubmitAnswer(s.ctx, roomID, "x", "echo")
	s.Require().NoError(err)
	s.True(result.Valid)

	state, err := s.storage.GetGameState(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal("echo", state.Answers["x"])
}

func (s *WritesSuite) TestSubmitAnswerSpadesFlipsCompletion() {
	game := &model.GameInstance{
		CatalogID:  "dare_or_dare",
		Suit:       model.SuitSpades,
		Mechanic:   model.MechanicPhysicalChallenges,
		TimeLimit:  300,
		Challenges: 5,
		Params: model.GameParams{
			Completions: map[model.PlayerID]bool{"x": false, "y": false, "z": false},
		},
	}
	roomID := s.setupPlayingRoom(game)

	_, err := s.service.SubmitAnswer(s.ctx, roomID, "x", "completed")
	s.Require().NoError(err)

	room, err := s.storage.GetRoom(s.ctx, roomID)
	s.Require().NoError(err)
	s.True(room.CurrentGame.Params.Completions["x"])
	s.False(room.CurrentGame.Params.Completions["y"])
}

func (s *WritesSuite) TestSubmitAnswerRejectsDeadPlayer() {
	roomID := s.setupPlayingRoom(s.voteGame())

	player, err := s.storage.GetPlayer(s.ctx, roomID, "x")
	s.Require().NoError(err)
	player.Alive = false
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	_, err = s.service.SubmitAnswer(s.ctx, roomID, "x", "answer")
	s.True(model.IsValidationError(err))
}

// ResolveRound tests

func (s *WritesSuite) TestResolveRoundEliminatesAndAdvances() {
	roomID := s.setupPlayingRoom(s.voteGame())

	s.Require().NoError(s.service.SubmitVote(s.ctx, roomID, "x", "y"))
	s.Require().NoError(s.service.SubmitVote(s.ctx, roomID, "z", "y"))
	s.Require().NoError(s.service.SubmitVote(s.ctx, roomID, "y", "z"))

	result, err := s.service.ResolveRound(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"y"}, result.Eliminated)
	s.ElementsMatch([]model.PlayerID{"x", "z"}, result.Survivors)

	eliminated, err := s.storage.GetPlayer(s.ctx, roomID, "y")
	s.Require().NoError(err)
	s.False(eliminated.Alive)

	state, err := s.storage.GetGameState(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal(2, state.Round)
	s.Empty(state.Votes)
	s.Empty(state.Answers)
}

func (s *WritesSuite) TestResolveRoundMutualTieEliminatesBoth() {
	roomID := s.setupPlayingRoom(s.voteGame())

	player, err := s.storage.GetPlayer(s.ctx, roomID, "z")
	s.Require().NoError(err)
	player.Alive = false
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	s.Require().NoError(s.service.SubmitVote(s.ctx, roomID, "x", "y"))
	s.Require().NoError(s.service.SubmitVote(s.ctx, roomID, "y", "x"))

	result, err := s.service.ResolveRound(s.ctx, roomID)
	s.Require().NoError(err)
	s.ElementsMatch([]model.PlayerID{"x", "y"}, result.Eliminated)
	s.Empty(result.Survivors)
}

func (s *WritesSuite) TestResolveRoundFailsWithoutGame() {
	roomID := model.RoomID("room-1")
	room := &model.Room{ID: roomID, Code: "ABC123", Status: model.RoomStatusWaiting}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	_, err := s.service.ResolveRound(s.ctx, roomID)
	s.ErrorIs(err, model.ErrNoGameInProgress)
}
