package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jmarban/suitparty-go/internal/api/handler"
	"github.com/jmarban/suitparty-go/internal/api/middleware"
	"github.com/jmarban/suitparty-go/internal/services/auth"
	"github.com/jmarban/suitparty-go/internal/services/presence"
	"github.com/jmarban/suitparty-go/internal/services/room"
	"github.com/jmarban/suitparty-go/internal/services/rules"
	"github.com/jmarban/suitparty-go/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	RoomController  room.ControllerInterface
	RulesService    rules.ServiceInterface
	SessionService  session.ServiceInterface
	PresenceTracker presence.TrackerInterface
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(cfg.AuthService)
	roomHandler := handler.NewRoomHandler(cfg.RoomController, cfg.SessionService, cfg.PresenceTracker)
	gameHandler := handler.NewGameHandler(cfg.RoomController, cfg.RulesService)
	eventsHandler := handler.NewEventsHandler(cfg.RoomController, cfg.SessionService)

	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Session routes (no auth required for session creation/login)
	api.HandleFunc("/session/guest", sessionHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/session/register", sessionHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/session/login", sessionHandler.Login).Methods(http.MethodPost)

	sessionProtected := api.PathPrefix("/session").Subrouter()
	sessionProtected.Use(authMiddleware)
	sessionProtected.HandleFunc("/me", sessionHandler.GetMe).Methods(http.MethodGet)
	sessionProtected.HandleFunc("/logout", sessionHandler.Logout).Methods(http.MethodPost)

	// Room routes (all require auth)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/leave", roomHandler.Leave).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/heartbeat", roomHandler.Heartbeat).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/disconnect", roomHandler.Disconnect).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/state", roomHandler.State).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Game routes
	rooms.HandleFunc("/{code}/start", gameHandler.Start).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/end", gameHandler.End).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/next", gameHandler.Next).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/vote", gameHandler.Vote).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/answer", gameHandler.Answer).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/resolve", gameHandler.Resolve).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
