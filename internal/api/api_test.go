package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmarban/suitparty-go/internal/api"
	"github.com/jmarban/suitparty-go/internal/api/response"
	"github.com/jmarban/suitparty-go/internal/factory"
	"github.com/jmarban/suitparty-go/internal/services/auth"
	"github.com/jmarban/suitparty-go/internal/storage/memory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	storage *memory.Storage
	auth    *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		RoomController:  app.RoomController,
		RulesService:    app.RulesService,
		SessionService:  app.SessionService,
		PresenceTracker: app.PresenceTracker,
	})

	return &testServer{
		handler: router,
		storage: app.Storage.(*memory.Storage),
		auth:    app.AuthService,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// guest creates a guest session and returns its token
func (ts *testServer) guest(t *testing.T, name string) string {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/session/guest", map[string]string{"display_name": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.SessionToken
}

// createRoom creates a room and returns its code
func (ts *testServer) createRoom(t *testing.T, token string) string {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/rooms", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.JoinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Room.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGuestSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/session/guest", map[string]string{"display_name": "Alice"}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "Alice", resp.User.DisplayName)
	assert.True(t, resp.User.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateGuestSessionRequiresName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/session/guest", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/session/register", registerBody, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registerResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registerResp))
	assert.False(t, registerResp.User.IsGuest)

	loginBody := map[string]string{
		"username": "alice",
		"password": "secret123",
	}
	rr = ts.request(http.MethodPost, "/api/v1/session/login", loginBody, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var loginResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginResp))
	assert.Equal(t, registerResp.User.ID, loginResp.User.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/session/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/session/register", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/session/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/session/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/session/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var user response.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.Equal(t, "Bob", user.DisplayName)
}

func TestGetMeRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/session/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/session/me", nil, "sess_bogus")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/session/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/session/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateRoom(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")

	rr := ts.request(http.MethodPost, "/api/v1/rooms", nil, token)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.JoinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Regexp(t, `^[A-Z0-9]{6}$`, resp.Room.Code)
	assert.Equal(t, "waiting", resp.Room.Status)
	assert.Equal(t, "Host", resp.Player.Name)
	assert.True(t, resp.Player.IsHost)
	assert.True(t, resp.Player.Alive)
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/"+code, nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	assert.Equal(t, code, room.Code)
	assert.Nil(t, room.CurrentGame)
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")

	rr := ts.request(http.MethodGet, "/api/v1/rooms/NOPE99", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "ROOM_NOT_FOUND")
}

func TestJoinRoom(t *testing.T) {
	ts := newTestServer(t)
	hostToken := ts.guest(t, "Host")
	code := ts.createRoom(t, hostToken)

	joinToken := ts.guest(t, "Alice")
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/join", nil, joinToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.JoinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Alice", resp.Player.Name)
	assert.False(t, resp.Player.IsHost)
}

func TestJoinRoomFull(t *testing.T) {
	ts := newTestServer(t)
	hostToken := ts.guest(t, "Host")
	code := ts.createRoom(t, hostToken)

	for i := 0; i < 9; i++ {
		token := ts.guest(t, fmt.Sprintf("Player%d", i))
		rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/join", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	lateToken := ts.guest(t, "Late")
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/join", nil, lateToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "ROOM_FULL")
}

func TestLeaveRoom(t *testing.T) {
	ts := newTestServer(t)
	hostToken := ts.guest(t, "Host")
	code := ts.createRoom(t, hostToken)

	joinToken := ts.guest(t, "Alice")
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/join", nil, joinToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/leave", nil, joinToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHeartbeat(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/heartbeat", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRoomState(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/"+code+"/state", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var snap response.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, code, snap.Room.Code)
	assert.Len(t, snap.Players, 1)
	assert.Nil(t, snap.GameState)
}

func TestStartGame(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	body := map[string]string{"game_id": "witch_hunt", "suit": "hearts"}
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", body, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	assert.Equal(t, "playing", room.Status)
	require.NotNil(t, room.CurrentGame)
	assert.Equal(t, "witch_hunt", room.CurrentGame.ID)
	assert.Positive(t, room.CurrentGame.TimeLimit)
}

func TestStartGameRandom(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	require.NotNil(t, room.CurrentGame)
	assert.NotEmpty(t, room.CurrentGame.ID)
}

func TestStartGameNotHost(t *testing.T) {
	ts := newTestServer(t)
	hostToken := ts.guest(t, "Host")
	code := ts.createRoom(t, hostToken)

	joinToken := ts.guest(t, "Alice")
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/join", nil, joinToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", nil, joinToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_HOST")
}

func TestJoinRoomDuringGame(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	lateToken := ts.guest(t, "Late")
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/join", nil, lateToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "GAME_ALREADY_STARTED")
}

func TestVoteAndResolve(t *testing.T) {
	ts := newTestServer(t)
	hostToken := ts.guest(t, "Host")
	code := ts.createRoom(t, hostToken)

	aliceToken := ts.guest(t, "Alice")
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/join", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var joinResp response.JoinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &joinResp))
	aliceID := joinResp.Player.ID

	body := map[string]string{"game_id": "witch_hunt", "suit": "hearts"}
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", body, hostToken)
	require.Equal(t, http.StatusOK, rr.Code)

	// Host votes for Alice
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/vote", map[string]string{"target": aliceID}, hostToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// The state exposes who voted, never the targets
	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+code+"/state", nil, hostToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var snap response.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	require.NotNil(t, snap.GameState)
	assert.Len(t, snap.GameState.Voted, 1)
	assert.NotContains(t, rr.Body.String(), `"votes"`)

	// Only the host resolves the round
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/resolve", nil, aliceToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/resolve", nil, hostToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var result response.VoteResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, []string{aliceID}, result.Eliminated)
}

func TestVoteValidationFailure(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	body := map[string]string{"game_id": "witch_hunt", "suit": "hearts"}
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", body, token)
	require.Equal(t, http.StatusOK, rr.Code)

	// Voting for yourself is rejected
	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+code+"/state", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var snap response.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	selfID := snap.Players[0].ID

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/vote", map[string]string{"target": selfID}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_FAILED")
}

func TestVoteWithoutGame(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/vote", map[string]string{"target": "someone"}, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "NO_GAME_IN_PROGRESS")
}

func TestSubmitAnswer(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	body := map[string]string{"game_id": "riddle_room", "suit": "clubs"}
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", body, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/answer", map[string]string{"answer": "echo"}, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var result response.AnswerResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.True(t, result.Valid)
}

func TestEndGame(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	body := map[string]string{"game_id": "witch_hunt", "suit": "hearts"}
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", body, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/end", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var results response.GameResults
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	assert.True(t, results.GameClear)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+code, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	assert.Equal(t, "results", room.Status)
	assert.Len(t, room.GameHistory, 1)
}

func TestEndGameWithoutGame(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/end", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "NO_GAME_IN_PROGRESS")
}

func TestNextGame(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	body := map[string]string{"game_id": "witch_hunt", "suit": "hearts"}
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", body, token)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/end", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/next", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	assert.Equal(t, "playing", room.Status)
	require.NotNil(t, room.CurrentGame)
	assert.NotEqual(t, "witch_hunt", room.CurrentGame.ID)
}

func TestStartGameRequiresSuitWithGameID(t *testing.T) {
	ts := newTestServer(t)
	token := ts.guest(t, "Host")
	code := ts.createRoom(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/start", map[string]string{"game_id": "witch_hunt"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRoomRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/rooms", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/ABC123", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
