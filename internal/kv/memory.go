package kv

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests. It mirrors the Redis behaviors
// the repositories rely on: empty-map reads for missing hashes, lexicographic
// ordering of equal sorted-set scores, and lazy expiry of scalar keys.
type Memory struct {
	mu      sync.RWMutex
	hashes  map[string]map[string]string
	scalars map[string]scalarEntry
	zsets   map[string]map[string]float64
	now     func() time.Time
}

type scalarEntry struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

func NewMemory() *Memory {
	return &Memory{
		hashes:  make(map[string]map[string]string),
		scalars: make(map[string]scalarEntry),
		zsets:   make(map[string]map[string]float64),
		now:     time.Now,
	}
}

func (m *Memory) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *Memory) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.hashes[key]))
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.hashes, key)
		delete(m.scalars, key)
		delete(m.zsets, key)
	}
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.scalars[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.scalars, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := scalarEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.scalars[key] = e
	return nil
}

func (m *Memory) ZAdd(_ context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zsets[key]
	if !ok {
		z = make(map[string]float64)
		m.zsets[key] = z
	}
	z[member] = score
	return nil
}

func (m *Memory) ZRem(_ context.Context, key string, members ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z := m.zsets[key]
	var removed int64
	for _, member := range members {
		if _, ok := z[member]; ok {
			delete(z, member)
			removed++
		}
	}
	if len(z) == 0 {
		delete(m.zsets, key)
	}
	return removed, nil
}

func (m *Memory) ZRangeByRank(_ context.Context, key string, start, stop int64) ([]Member, error) {
	m.mu.RLock()
	sorted := m.sortedAsc(key)
	m.mu.RUnlock()

	n := int64(len(sorted))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return nil, nil
	}
	return sorted[start : stop+1], nil
}

func (m *Memory) ZRevRangeByScore(_ context.Context, key string, max float64, count int64) ([]Member, error) {
	m.mu.RLock()
	sorted := m.sortedAsc(key)
	m.mu.RUnlock()

	var out []Member
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Score <= max && sorted[i].Score >= 0 {
			out = append(out, sorted[i])
			if count > 0 && int64(len(out)) == count {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) ZRemRangeByScore(_ context.Context, key string, min, max float64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z := m.zsets[key]
	var removed int64
	for member, score := range z {
		if score >= min && score <= max {
			delete(z, member)
			removed++
		}
	}
	if len(z) == 0 {
		delete(m.zsets, key)
	}
	return removed, nil
}

func (m *Memory) ZScore(_ context.Context, key, member string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	score, ok := m.zsets[key][member]
	return score, ok, nil
}

func (m *Memory) ZCard(_ context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.zsets[key])), nil
}

// sortedAsc returns the set ordered by score, ties broken lexicographically by
// member, matching Redis. Callers must hold at least a read lock.
func (m *Memory) sortedAsc(key string) []Member {
	z := m.zsets[key]
	out := make([]Member, 0, len(z))
	for member, score := range z {
		out = append(out, Member{Value: member, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Value < out[j].Value
	})
	return out
}
