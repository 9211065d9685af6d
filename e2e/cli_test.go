package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmarban/suitparty-go/internal/api"
	"github.com/jmarban/suitparty-go/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "suitparty-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cli")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		RoomController:  app.RoomController,
		RulesService:    app.RulesService,
		SessionService:  app.SessionService,
		PresenceTracker: app.PresenceTracker,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type userResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	SessionToken string       `json:"session_token"`
}

type playerResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Alive     bool   `json:"alive"`
	Cards     int    `json:"cards"`
	Connected bool   `json:"connected"`
	IsHost    bool   `json:"is_host"`
}

type gameResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Suit       string `json:"suit"`
	Difficulty int    `json:"difficulty"`
	TimeLimit  int    `json:"time_limit"`
	Card       string `json:"card"`
}

type roomResponse struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Status      string         `json:"status"`
	CurrentGame *gameResponse  `json:"current_game"`
	GameHistory []gameResponse `json:"game_history"`
}

type joinResponse struct {
	Room   roomResponse   `json:"room"`
	Player playerResponse `json:"player"`
}

type snapshotResponse struct {
	Room    roomResponse     `json:"room"`
	Players []playerResponse `json:"players"`
	State   *struct {
		Timer int      `json:"timer"`
		Round int      `json:"round"`
		Voted []string `json:"voted"`
	} `json:"game_state"`
}

type voteResultResponse struct {
	Eliminated []string `json:"eliminated"`
	Survivors  []string `json:"survivors"`
}

type gameResultsResponse struct {
	GameClear  bool     `json:"game_clear"`
	Winners    []string `json:"winners"`
	Survivors  []string `json:"survivors"`
	Eliminated []string `json:"eliminated"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_SessionCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create guest
	output, err := cli.run("session", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.Equal(t, "Alice", authResp.User.DisplayName)
	assert.True(t, authResp.User.IsGuest)
	assert.NotEmpty(t, authResp.SessionToken)

	// Get me (token should be saved in token file)
	output, err = cli.run("session", "me")
	require.NoError(t, err, "output: %s", output)

	var me userResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, "Alice", me.DisplayName)
	assert.Equal(t, authResp.User.ID, me.ID)

	// Logout clears the token file; me should fail afterwards
	output, err = cli.run("session", "logout")
	require.NoError(t, err, "output: %s", output)

	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Equal(t, "Logged out", msgResp.Message)

	output, err = cli.run("session", "me")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")
}

func TestCLI_RoomCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("session", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	token := authResp.SessionToken

	// Create room
	output, err = cli.runWithToken(token, "room", "create")
	require.NoError(t, err, "output: %s", output)

	var created joinResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.Equal(t, "waiting", created.Room.Status)
	assert.Equal(t, "Alice", created.Player.Name)
	assert.True(t, created.Player.IsHost)
	code := created.Room.Code

	// Get room
	output, err = cli.runWithToken(token, "room", "get", code)
	require.NoError(t, err, "output: %s", output)

	var room roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &room))
	assert.Equal(t, code, room.Code)

	// Heartbeat
	output, err = cli.runWithToken(token, "room", "heartbeat", code)
	require.NoError(t, err, "output: %s", output)

	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Equal(t, "Heartbeat sent", msgResp.Message)

	// State snapshot
	output, err = cli.runWithToken(token, "room", "state", code)
	require.NoError(t, err, "output: %s", output)

	var snap snapshotResponse
	require.NoError(t, json.Unmarshal([]byte(output), &snap))
	assert.Len(t, snap.Players, 1)
	assert.Nil(t, snap.State)

	// Leave room (host leaving a waiting room closes it)
	output, err = cli.runWithToken(token, "room", "leave", code)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Contains(t, msgResp.Message, "Left room")

	output, err = cli.runWithToken(token, "room", "get", code)
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	// Create two CLI runners with separate token files
	cli1 := newCLIRunner(t, ts.addr)
	cli2 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token2"),
	}

	// Create two players
	output, err := cli1.run("session", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	var auth1 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth1))
	token1 := auth1.SessionToken

	output, err = cli2.run("session", "guest", "--name", "Bob")
	require.NoError(t, err, "output: %s", output)
	var auth2 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth2))
	token2 := auth2.SessionToken

	// Alice creates a room
	output, err = cli1.runWithToken(token1, "room", "create")
	require.NoError(t, err, "output: %s", output)
	var created joinResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	code := created.Room.Code
	aliceID := created.Player.ID
	t.Logf("Created room: %s", code)

	// Bob joins
	output, err = cli2.runWithToken(token2, "room", "join", code)
	require.NoError(t, err, "output: %s", output)
	var joined joinResponse
	require.NoError(t, json.Unmarshal([]byte(output), &joined))
	bobID := joined.Player.ID
	assert.False(t, joined.Player.IsHost)
	t.Logf("Bob joined room")

	// Alice starts a voting game
	output, err = cli1.runWithToken(token1, "game", "start", code, "--game", "witch_hunt", "--suit", "hearts")
	require.NoError(t, err, "output: %s", output)
	var playing roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &playing))
	assert.Equal(t, "playing", playing.Status)
	require.NotNil(t, playing.CurrentGame)
	assert.Equal(t, "witch_hunt", playing.CurrentGame.ID)
	t.Logf("Game started: %s (%s)", playing.CurrentGame.Name, playing.CurrentGame.Card)

	// Alice votes Bob out; Bob abstains
	output, err = cli1.runWithToken(token1, "game", "vote", code, bobID)
	require.NoError(t, err, "output: %s", output)
	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Equal(t, "Vote recorded", msgResp.Message)

	// The snapshot shows who voted, not the targets
	output, err = cli2.runWithToken(token2, "room", "state", code)
	require.NoError(t, err, "output: %s", output)
	var snap snapshotResponse
	require.NoError(t, json.Unmarshal([]byte(output), &snap))
	require.NotNil(t, snap.State)
	assert.Equal(t, []string{aliceID}, snap.State.Voted)

	// Bob cannot resolve the round
	output, err = cli2.runWithToken(token2, "game", "resolve", code)
	assert.Error(t, err, "non-host should not be able to resolve")
	assert.Contains(t, strings.ToLower(output), "host")

	// Alice resolves: plurality eliminates Bob
	output, err = cli1.runWithToken(token1, "game", "resolve", code)
	require.NoError(t, err, "output: %s", output)
	var votes voteResultResponse
	require.NoError(t, json.Unmarshal([]byte(output), &votes))
	assert.Equal(t, []string{bobID}, votes.Eliminated)
	assert.Equal(t, []string{aliceID}, votes.Survivors)
	t.Logf("Bob eliminated")

	// Alice ends the game and takes the win
	output, err = cli1.runWithToken(token1, "game", "end", code)
	require.NoError(t, err, "output: %s", output)
	var results gameResultsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &results))
	assert.True(t, results.GameClear)
	assert.Equal(t, []string{aliceID}, results.Winners)

	output, err = cli1.runWithToken(token1, "room", "get", code)
	require.NoError(t, err, "output: %s", output)
	var after roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &after))
	assert.Equal(t, "results", after.Status)
	assert.Len(t, after.GameHistory, 1)

	// Next game starts fresh with everyone revived
	output, err = cli1.runWithToken(token1, "game", "next", code, "--game", "trust_fall", "--suit", "hearts")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &playing))
	assert.Equal(t, "playing", playing.Status)
	assert.Equal(t, "trust_fall", playing.CurrentGame.ID)

	output, err = cli1.runWithToken(token1, "room", "state", code)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &snap))
	require.Len(t, snap.Players, 2)
	for _, p := range snap.Players {
		assert.True(t, p.Alive)
	}
	t.Logf("Next game running: %s", playing.CurrentGame.ID)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Get user without auth
	output, err := cli.run("session", "me")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")

	// Get non-existent room
	output, err = cli.run("session", "guest", "--name", "Alice")
	require.NoError(t, err)
	var auth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth))

	output, err = cli.runWithToken(auth.SessionToken, "room", "get", "NOPE99")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")

	// Requesting a specific game without its suit fails client-side
	output, err = cli.runWithToken(auth.SessionToken, "game", "start", "NOPE99", "--game", "witch_hunt")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "suit")
}
