package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis adapts a go-redis client to the Store port.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis from a URL ("redis://host:6379/0") and verifies
// the connection with a ping before returning.
func NewRedis(ctx context.Context, redisURL string, logger *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connection established", zap.String("addr", opts.Addr))
	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) Close() error {
	r.logger.Info("closing redis connection")
	return r.client.Close()
}

// Client exposes the underlying go-redis client for capabilities outside the
// Store port, such as pub/sub.
func (r *Redis) Client() *redis.Client {
	return r.client
}

func (r *Redis) HSet(ctx context.Context, key string, fields map[string]string) error {
	return r.client.HSet(ctx, key, fields).Err()
}

func (r *Redis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return r.client.HGetAll(ctx, key).Result()
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return r.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

func (r *Redis) ZRem(ctx context.Context, key string, members ...string) (int64, error) {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return r.client.ZRem(ctx, key, args...).Result()
}

func (r *Redis) ZRangeByRank(ctx context.Context, key string, start, stop int64) ([]Member, error) {
	res, err := r.client.ZRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, err
	}
	return fromZSlice(res), nil
}

func (r *Redis) ZRevRangeByScore(ctx context.Context, key string, max float64, count int64) ([]Member, error) {
	res, err := r.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min:   "0",
		Max:   formatScore(max),
		Count: count,
	}).Result()
	if err != nil {
		return nil, err
	}
	return fromZSlice(res), nil
}

func (r *Redis) ZRemRangeByScore(ctx context.Context, key string, min, max float64) (int64, error) {
	return r.client.ZRemRangeByScore(ctx, key, formatScore(min), formatScore(max)).Result()
}

func (r *Redis) ZScore(ctx context.Context, key, member string) (float64, bool, error) {
	score, err := r.client.ZScore(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (r *Redis) ZCard(ctx context.Context, key string) (int64, error) {
	return r.client.ZCard(ctx, key).Result()
}

func fromZSlice(zs []redis.Z) []Member {
	members := make([]Member, 0, len(zs))
	for _, z := range zs {
		val, _ := z.Member.(string)
		members = append(members, Member{Value: val, Score: z.Score})
	}
	return members
}

// formatScore renders a score without exponent notation so Redis range
// arguments stay exact for millisecond timestamps.
func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
