package storage

import (
	"context"
	"errors"

	"github.com/palemoky/flip-seven/internal/types"
)

// Recorder writes a finished game to the room history and the leaderboard
type Recorder struct {
	store       *RedisStore
	leaderboard *LeaderboardManager
}

var _ types.ResultRecorder = (*Recorder)(nil)

// NewRecorder creates a Recorder
func NewRecorder(store *RedisStore, leaderboard *LeaderboardManager) *Recorder {
	return &Recorder{store: store, leaderboard: leaderboard}
}

// RecordResult implements types.ResultRecorder
func (r *Recorder) RecordResult(ctx context.Context, result *types.GameResult) error {
	return errors.Join(
		r.store.SaveResult(ctx, result),
		r.leaderboard.RecordGameResult(ctx, result),
	)
}
