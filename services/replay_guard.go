package services

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/go-kit/log/level"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

const replayKeyPrefix = "zynexa:replay:"

// ReplayGuard rejects a signature that was already accepted within the window.
// CheckAndRecord returns true when the signature is new (and records it), false on replay.
type ReplayGuard interface {
	CheckAndRecord(ctx context.Context, signature []byte, observedAt time.Time) (bool, error)
}

// MemoryReplayGuard keeps digests in process memory. Single instance deployments only.
type MemoryReplayGuard struct {
	mu     sync.Mutex
	seen   map[[32]byte]time.Time
	window time.Duration
}

func NewMemoryReplayGuard(window time.Duration) *MemoryReplayGuard {
	return &MemoryReplayGuard{
		seen:   make(map[[32]byte]time.Time),
		window: window,
	}
}

func (g *MemoryReplayGuard) CheckAndRecord(ctx context.Context, signature []byte, observedAt time.Time) (bool, error) {
	digest := util.SignatureDigest(signature)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[digest]; ok {
		return false, nil
	}
	g.seen[digest] = observedAt
	return true, nil
}

// Sweep removes entries first seen more than the window before now. Returns the number removed.
func (g *MemoryReplayGuard) Sweep(now time.Time) int {
	cutoff := now.Add(-g.window)

	g.mu.Lock()
	defer g.mu.Unlock()
	removed := 0
	for digest, firstSeen := range g.seen {
		if firstSeen.Before(cutoff) {
			delete(g.seen, digest)
			removed++
		}
	}
	return removed
}

// RemoveExpired is the cron entrypoint
func (g *MemoryReplayGuard) RemoveExpired() {
	removed := g.Sweep(time.Now().UTC())
	if removed > 0 {
		level.Debug(global.Logger).Log("msg", "replay guard sweep", "removed", removed)
	}
}

func (g *MemoryReplayGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// RedisReplayGuard shares the seen set between instances. Keys expire after the window (no sweep needed).
type RedisReplayGuard struct {
	env    *types.Environment
	window time.Duration
}

func NewRedisReplayGuard(env *types.Environment, window time.Duration) *RedisReplayGuard {
	return &RedisReplayGuard{env: env, window: window}
}

func (g *RedisReplayGuard) CheckAndRecord(ctx context.Context, signature []byte, observedAt time.Time) (bool, error) {
	digest := util.SignatureDigest(signature)
	key := replayKeyPrefix + hex.EncodeToString(digest[:])

	ok, err := g.env.RedisClient.SetNX(ctx, key, observedAt.UnixMilli(), g.window).Result()
	if err != nil {
		level.Error(global.Logger).Log("msg", "replay guard redis error", "err", err)
		return false, err
	}
	return ok, nil
}
