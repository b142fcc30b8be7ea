package main

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/go-kit/log/level"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/ledger"
	"github.com/zynexa/go-zynexa-server/repository"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/types"
)

// loads (or generates) the key that signs session cookies
func loadSessionKey(conf *global.Config) {
	if conf.Session.SigningKeyBase64 == "" {
		_, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			panic(err)
		}
		level.Warn(global.Logger).Log("msg", "no session signing key configured, generated an ephemeral one (sessions will not survive a restart)")
		global.SessionPrivateKey = priv
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(conf.Session.SigningKeyBase64)
	if err != nil {
		panic(fmt.Sprintf("Failed to decode session signing key %s", err.Error()))
	}
	var priv ed25519.PrivateKey
	switch len(decoded) {
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(decoded)
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(decoded)
	default:
		panic(fmt.Sprintf("session signing key must be %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(decoded)))
	}
	global.SessionPrivateKey = priv
}

func redisConfigured(conf *global.Config) bool {
	return conf.Redis.Host != ""
}

func newRedisClient(conf *global.Config, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Host + ":" + strconv.Itoa(conf.Redis.Port),
		Username: conf.Redis.Username,
		Password: conf.Redis.Password,
		DB:       db,
	})
}

func initRedisRateLimiter(conf *global.Config) *redis.Client {
	redisRateLimitClient := newRedisClient(conf, 1)

	// clears all data in the Redis database associated with the 'redisRateLimitClient' ignoring potential errors
	rCtx, rCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer rCancel()

	_ = redisRateLimitClient.FlushDB(rCtx).Err()

	limiter := redis_rate.NewLimiter(redisRateLimitClient)
	global.RateLimiter = limiter

	return redisRateLimitClient
}

// Configure the relational store (postgres when a DSN is configured, in-memory otherwise)
func ConfigStore(conf *global.Config) repository.Store {
	if conf.Postgres.DSN == "" {
		level.Warn(global.Logger).Log("msg", "no postgres dsn configured, using the in-memory store")
		return repository.NewMemoryStore()
	}
	store, err := repository.NewPostgresStore(conf.Postgres.DSN)
	if err != nil {
		global.Logger.Log("error", "Failed to connect to postgres", "error", err.Error())
		panic(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.CreateSchema(ctx); err != nil {
		global.Logger.Log("error", "Failed to create schema", "error", err.Error())
		panic(err)
	}
	return store
}

func ConfigSessionStore(env *types.Environment) services.SessionStore {
	if env.RedisClient != nil {
		return services.NewRedisSessionStore(env)
	}
	level.Warn(global.Logger).Log("msg", "no redis configured, sessions are kept in memory")
	return services.NewMemorySessionStore()
}

// ConfigReplayGuard selects the replay guard backend. The in-memory guard is swept by cron.
func ConfigReplayGuard(conf *global.Config, env *types.Environment) services.ReplayGuard {
	window := time.Duration(conf.Replay.WindowMinutes) * time.Minute
	if conf.Replay.Backend == "redis" {
		if env.RedisClient == nil {
			panic("replay.backend is redis but no redis is configured")
		}
		return services.NewRedisReplayGuard(env, window)
	}

	guard := services.NewMemoryReplayGuard(window)
	// cron jobs
	if _, err := env.Cron.AddFunc(conf.Replay.SweepEvery, guard.RemoveExpired); err != nil {
		panic(fmt.Sprintf("invalid replay.sweepEvery %q: %v", conf.Replay.SweepEvery, err))
	}
	env.Cron.Start()
	go guard.RemoveExpired() // run once on startup
	return guard
}

func ConfigRelay(conf *global.Config) *services.RelayService {
	client := ledger.NewRpcClient(conf.Ledger.RpcEndpoint)
	return services.NewRelayService(client, conf.Ledger)
}
