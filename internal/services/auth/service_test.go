package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jmarban/suitparty-go/internal/dependencies/mocks"
	"github.com/jmarban/suitparty-go/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreateGuestUser() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice")
	s.Require().NoError(err)

	s.Equal("Alice", session.User.DisplayName)
	s.True(session.User.IsGuest)
	s.NotEmpty(session.Token)
	s.Equal(session.User.ID, session.UserID)

	user, err := s.storage.GetUser(s.ctx, session.UserID)
	s.Require().NoError(err)
	s.Equal("Alice", user.DisplayName)
}

func (s *ServiceSuite) TestRegisterAndLogin() {
	registered, err := s.service.Register(s.ctx, "alice", "secret123", "Alice")
	s.Require().NoError(err)
	s.False(registered.User.IsGuest)

	loggedIn, err := s.service.Login(s.ctx, "alice", "secret123")
	s.Require().NoError(err)
	s.Equal(registered.UserID, loggedIn.UserID)
	s.NotEqual(registered.Token, loggedIn.Token)
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	_, err := s.service.Register(s.ctx, "alice", "secret123", "Alice")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other456", "Other")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Register(s.ctx, "alice", "secret123", "Alice")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUsername() {
	_, err := s.service.Login(s.ctx, "nobody", "secret123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestPasswordsAreHashed() {
	session, err := s.service.Register(s.ctx, "alice", "secret123", "Alice")
	s.Require().NoError(err)

	ru, err := s.storage.GetRegisteredUser(s.ctx, session.UserID)
	s.Require().NoError(err)
	s.NotEqual("secret123", ru.PasswordHash)
	s.NotEmpty(ru.PasswordHash)
}

func (s *ServiceSuite) TestValidateSession() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice")
	s.Require().NoError(err)

	validated, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.UserID, validated.UserID)
}

func (s *ServiceSuite) TestValidateSessionUnknownToken() {
	_, err := s.service.ValidateSession("sess_bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestSessionExpires() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice")
	s.Require().NoError(err)

	s.clock.Advance(DefaultConfig().SessionDuration + time.Minute)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice")
	s.Require().NoError(err)

	s.service.InvalidateSession(session.Token)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestGetUser() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice")
	s.Require().NoError(err)

	user, err := s.service.GetUser(session.Token)
	s.Require().NoError(err)
	s.Equal("Alice", user.DisplayName)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	expired, err := s.service.CreateGuestUser(s.ctx, "Old")
	s.Require().NoError(err)

	s.clock.Advance(DefaultConfig().SessionDuration + time.Minute)

	fresh, err := s.service.CreateGuestUser(s.ctx, "New")
	s.Require().NoError(err)

	s.service.CleanExpiredSessions()

	_, err = s.service.ValidateSession(expired.Token)
	s.ErrorIs(err, ErrInvalidSession)
	_, err = s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}
