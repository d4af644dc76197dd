package server

import (
	"context"
	"errors"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
)

const statsInterval = 30 * time.Second

// monitorStats periodically logs connection, room and memory numbers
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			logger.L().Info("server stats",
				zap.Int("online", s.GetOnlineCount()),
				zap.Int("rooms", s.roomManager.RoomCount()),
				zap.Int("goroutines", runtime.NumGoroutine()),
				zap.Int("active_conns", len(s.semaphore)),
				zap.Int("max_conns", cap(s.semaphore)),
				zap.Float64("alloc_mb", float64(m.Alloc)/1024/1024))
		}
	}
}

// IsDraining reports whether the server has begun shutting down and refuses new connections
func (s *Server) IsDraining() bool {
	return s.draining.Load()
}

// Shutdown stops accepting connections, tells every client, closes all rooms and releases Redis
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.draining.CompareAndSwap(false, true) {
		return nil
	}
	logger.L().Info("shutting down")

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	notice := codec.NewErrorMessage(protocol.ErrCodeServerShutdown)
	s.clientsMu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.RUnlock()

	for _, c := range clients {
		c.SendMessage(notice)
		c.Close()
	}

	// waits for in-flight result writes, so Redis closes after
	s.roomManager.Close()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	logger.L().Info("server stopped")
	return errors.Join(errs...)
}
