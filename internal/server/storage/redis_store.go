package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/flip-seven/internal/config"
	"github.com/palemoky/flip-seven/internal/types"
)

const (
	resultsKeyPrefix = "results:"

	// recent results kept per room
	maxRoomResults    = 20
	resultsExpiration = 7 * 24 * time.Hour
)

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisStore keeps the recent game results of each room
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveResult prepends a result to the room's list and trims it
func (rs *RedisStore) SaveResult(ctx context.Context, result *types.GameResult) error {
	if result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	key := resultsKeyPrefix + result.RoomCode
	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, maxRoomResults-1)
		pipe.Expire(ctx, key, resultsExpiration)
		return nil
	})
	return err
}

// RecentResults returns up to limit results of a room, newest first
func (rs *RedisStore) RecentResults(ctx context.Context, roomCode string, limit int) ([]*types.GameResult, error) {
	if limit <= 0 || limit > maxRoomResults {
		limit = maxRoomResults
	}

	items, err := rs.client.LRange(ctx, resultsKeyPrefix+roomCode, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*types.GameResult, 0, len(items))
	for _, item := range items {
		var r types.GameResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		results = append(results, &r)
	}
	return results, nil
}

// DeleteResults removes a room's history
func (rs *RedisStore) DeleteResults(ctx context.Context, roomCode string) error {
	return rs.client.Del(ctx, resultsKeyPrefix+roomCode).Err()
}
