package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/palemoky/flip-seven/internal/game/room"
	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/server/storage"
)

const (
	defaultListLimit = 10
	maxListLimit     = 50
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.roomManager.GetRoomList())
}

func (s *Server) handleRoomResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "results storage disabled", http.StatusServiceUnavailable)
		return
	}
	code, ok := room.NormalizeCode(r.PathValue("code"))
	if !ok {
		http.Error(w, "invalid room code", http.StatusBadRequest)
		return
	}

	results, err := s.store.RecentResults(r.Context(), code, parseLimit(r))
	if err != nil {
		logger.L().Error("load results failed", zap.String("room", code), zap.Error(err))
		http.Error(w, "failed to load results", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		http.Error(w, "leaderboard disabled", http.StatusServiceUnavailable)
		return
	}

	entries, err := s.leaderboard.GetLeaderboard(r.Context(), parseLimit(r))
	if err != nil {
		logger.L().Error("load leaderboard failed", zap.Error(err))
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		http.Error(w, "leaderboard disabled", http.StatusServiceUnavailable)
		return
	}

	name := r.PathValue("name")
	stats, err := s.leaderboard.GetPlayerStats(r.Context(), name)
	if err != nil {
		logger.L().Error("load player stats failed", zap.String("player", name), zap.Error(err))
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}

	rank, err := s.leaderboard.GetPlayerRank(r.Context(), name)
	if err != nil {
		logger.L().Error("load player rank failed", zap.String("player", name), zap.Error(err))
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*storage.PlayerStats
		Rank int64 `json:"rank"`
	}{stats, rank})
}

// parseLimit reads ?limit=, clamped to [1, maxListLimit]
func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Debug("write response failed", zap.Error(err))
	}
}
