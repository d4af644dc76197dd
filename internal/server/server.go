package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/flip-seven/internal/config"
	"github.com/palemoky/flip-seven/internal/game/room"
	"github.com/palemoky/flip-seven/internal/game/session"
	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/server/handler"
	"github.com/palemoky/flip-seven/internal/server/storage"
	"github.com/palemoky/flip-seven/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server is the WebSocket game server
type Server struct {
	config      *config.Config
	redis       *redis.Client
	store       *storage.RedisStore
	leaderboard *storage.LeaderboardManager
	roomManager *room.RoomManager
	handler     *handler.Handler

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// one slot per open connection
	semaphore chan struct{}

	httpServer *http.Server
	draining   atomic.Bool
}

// NewServer creates a server. rdb may be nil, in which case results are not persisted and the
// leaderboard endpoints answer 503.
func NewServer(cfg *config.Config, rdb *redis.Client) *Server {
	s := &Server{
		config:    cfg,
		redis:     rdb,
		clients:   make(map[string]*Client),
		semaphore: make(chan struct{}, cfg.Server.MaxConnections),
	}

	var recorder types.ResultRecorder
	if rdb != nil {
		s.store = storage.NewRedisStore(rdb)
		s.leaderboard = storage.NewLeaderboardManager(rdb)
		recorder = storage.NewRecorder(s.store, s.leaderboard)
	}

	rules := session.Rules{TargetScore: cfg.Game.TargetScore, MaxPlayers: cfg.Game.MaxPlayers}
	s.roomManager = room.NewRoomManager(rules, recorder, cfg.Game.RoomIdleTimeoutDuration())
	s.handler = handler.NewHandler(s.roomManager)

	return s
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /rooms", s.handleRooms)
	mux.HandleFunc("GET /rooms/{code}/results", s.handleRoomResults)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /players/{name}", s.handlePlayerStats)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Server.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.monitorStats(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server listening",
			zap.String("ws", "ws://"+addr+"/ws"),
			zap.Bool("redis", s.redis != nil),
			zap.Int("max_connections", cap(s.semaphore)))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}
