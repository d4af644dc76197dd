package storage

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/flip-seven/internal/types"
)

const (
	statsKeyPrefix = "stats:"
	leaderboardKey = "leaderboard:wins"

	// one win outranks any realistic point total
	winWeight = 1e9
)

// maxBestScoreScript raises best_score to ARGV[1] when it is higher
const maxBestScoreScript = `
local cur = redis.call('HGET', KEYS[1], 'best_score')
if not cur or tonumber(ARGV[1]) > tonumber(cur) then
	redis.call('HSET', KEYS[1], 'best_score', ARGV[1])
end
return 1
`

// PlayerStats are the lifetime numbers of one player name
type PlayerStats struct {
	PlayerName string `json:"player_name"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	TotalScore int    `json:"total_score"`
	BestScore  int    `json:"best_score"`
	FlipSevens int    `json:"flip_sevens"`
}

// LeaderboardEntry is one row of the leaderboard
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	Points     int     `json:"points"`
	Wins       int     `json:"wins"`
	TotalGames int     `json:"total_games"`
	WinRate    float64 `json:"win_rate"`
	BestScore  int     `json:"best_score"`
}

// LeaderboardManager ranks players by games won, then by total points
type LeaderboardManager struct {
	client *redis.Client
}

// NewLeaderboardManager creates a LeaderboardManager
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{client: client}
}

// RecordGameResult adds one finished game to every participant's stats
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, result *types.GameResult) error {
	if result == nil {
		return nil
	}

	for _, p := range result.Players {
		if err := lm.recordPlayer(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (lm *LeaderboardManager) recordPlayer(ctx context.Context, p types.PlayerResult) error {
	key := statsKeyPrefix + p.Name

	wins := 0
	if p.Winner {
		wins = 1
	}

	_, err := lm.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "player_name", p.Name)
		pipe.HIncrBy(ctx, key, "total_games", 1)
		pipe.HIncrBy(ctx, key, "wins", int64(wins))
		pipe.HIncrBy(ctx, key, "total_score", int64(p.Score))
		pipe.HIncrBy(ctx, key, "flip_sevens", int64(p.FlipSevens))
		pipe.Eval(ctx, maxBestScoreScript, []string{key}, p.Score)
		pipe.ZIncrBy(ctx, leaderboardKey, float64(wins)*winWeight+float64(p.Score), p.Name)
		return nil
	})
	return err
}

// GetPlayerStats returns nil when the player has no recorded games
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	data, err := lm.client.HGetAll(ctx, statsKeyPrefix+name).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return parseStats(data), nil
}

// GetPlayerRank returns the 1-based rank, or 0 when the player is not ranked
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lm.client.ZRevRank(ctx, leaderboardKey, name).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rank + 1, nil
}

// GetLeaderboard returns the top players by wins
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	top, err := lm.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return []*LeaderboardEntry{}, nil
	}

	pipe := lm.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(top))
	for i, z := range top {
		cmds[i] = pipe.HGetAll(ctx, statsKeyPrefix+z.Member.(string))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(top))
	for i, z := range top {
		stats := parseStats(cmds[i].Val())
		winRate := 0.0
		if stats.TotalGames > 0 {
			winRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
		}
		entries = append(entries, &LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: z.Member.(string),
			Points:     stats.TotalScore,
			Wins:       stats.Wins,
			TotalGames: stats.TotalGames,
			WinRate:    winRate,
			BestScore:  stats.BestScore,
		})
	}
	return entries, nil
}

func parseStats(data map[string]string) *PlayerStats {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(data[key])
		return n
	}
	return &PlayerStats{
		PlayerName: data["player_name"],
		TotalGames: atoi("total_games"),
		Wins:       atoi("wins"),
		TotalScore: atoi("total_score"),
		BestScore:  atoi("best_score"),
		FlipSevens: atoi("flip_sevens"),
	}
}
