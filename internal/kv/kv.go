// Package kv defines the key-value store port the repositories are built on:
// hash maps, sorted sets, and scalar strings with expiry. The production
// implementation is Redis; tests substitute the in-memory store.
package kv

import (
	"context"
	"time"
)

// Member is a sorted-set element together with its score.
type Member struct {
	Value string
	Score float64
}

// Store is the full surface the repositories need. All methods are safe for
// concurrent use. Missing keys behave the way Redis behaves: HGetAll returns
// an empty map, Get reports ok=false, sorted-set reads return empty results.
type Store interface {
	// Hash operations.
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// Key operations.
	Del(ctx context.Context, keys ...string) error

	// Scalar operations.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Sorted-set operations. Scores are epoch milliseconds in practice but the
	// store does not care. Equal scores order lexicographically by member.
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRem(ctx context.Context, key string, members ...string) (int64, error)
	ZRangeByRank(ctx context.Context, key string, start, stop int64) ([]Member, error)
	ZRevRangeByScore(ctx context.Context, key string, max float64, count int64) ([]Member, error)
	ZRemRangeByScore(ctx context.Context, key string, min, max float64) (int64, error)
	ZScore(ctx context.Context, key, member string) (score float64, ok bool, err error)
	ZCard(ctx context.Context, key string) (int64, error)
}
