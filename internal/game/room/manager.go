package room

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/flip-seven/internal/game/session"
	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/types"
)

const (
	maxRoomCodeLength = 32
	cleanupInterval   = time.Minute
)

// RoomSummary is a read-only view of a room for listings
type RoomSummary struct {
	Code        string    `json:"code"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomManager creates rooms on first use and removes them once idle
type RoomManager struct {
	rules       session.Rules
	recorder    types.ResultRecorder
	idleTimeout time.Duration

	rooms map[string]*Room
	mu    sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRoomManager creates a room manager and starts its cleanup loop.
// An idleTimeout of 0 keeps rooms forever.
func NewRoomManager(rules session.Rules, recorder types.ResultRecorder, idleTimeout time.Duration) *RoomManager {
	rm := &RoomManager{
		rules:       rules,
		recorder:    recorder,
		idleTimeout: idleTimeout,
		rooms:       make(map[string]*Room),
		stop:        make(chan struct{}),
	}

	go rm.cleanupLoop()

	return rm
}

// NormalizeCode trims and upper-cases a room code. It reports false for codes that are too long or
// use characters other than letters, digits, '-' and '_'.
func NormalizeCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > maxRoomCodeLength {
		return "", false
	}
	for _, c := range code {
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return "", false
		}
	}
	return code, true
}

// GetOrCreate returns the running room for code, starting a new one if needed
func (rm *RoomManager) GetOrCreate(code string) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if room, exists := rm.rooms[code]; exists {
		return room
	}

	room := NewRoom(code, rm.rules, nil, rm.recorder)
	room.Start()
	rm.rooms[code] = room

	logger.L().Info("room created", zap.String("room", code))
	return room
}

// GetRoom returns nil when the room does not exist
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// RoomCount is the number of live rooms
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// GetRoomList lists live rooms ordered by code
func (rm *RoomManager) GetRoomList() []RoomSummary {
	rm.mu.RLock()
	list := make([]RoomSummary, 0, len(rm.rooms))
	for code, room := range rm.rooms {
		list = append(list, RoomSummary{
			Code:        code,
			Connections: room.ConnectionCount(),
			CreatedAt:   room.CreatedAt,
		})
	}
	rm.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

// Close stops the cleanup loop and every room
func (rm *RoomManager) Close() {
	rm.stopOnce.Do(func() { close(rm.stop) })

	rm.mu.Lock()
	rooms := rm.rooms
	rm.rooms = make(map[string]*Room)
	rm.mu.Unlock()

	for _, room := range rooms {
		room.Stop()
	}
}

func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rm.stop:
			return
		case now := <-ticker.C:
			rm.cleanup(now)
		}
	}
}

// cleanup removes rooms that have had no connections for longer than the idle timeout
func (rm *RoomManager) cleanup(now time.Time) int {
	if rm.idleTimeout <= 0 {
		return 0
	}

	var idle []*Room
	rm.mu.Lock()
	for code, room := range rm.rooms {
		if room.IdleFor(now) > rm.idleTimeout {
			idle = append(idle, room)
			delete(rm.rooms, code)
		}
	}
	rm.mu.Unlock()

	for _, room := range idle {
		room.Stop()
		logger.L().Info("idle room removed", zap.String("room", room.Code))
	}
	return len(idle)
}
