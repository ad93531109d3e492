package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/weave/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/weave/pkg/adapters/redis"
	"github.com/aretw0/weave/pkg/persistence/middleware"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/session"
)

const (
	lockPrefix = "weave:lock:"

	// envEncryptionKey holds the base64 AES-256 key used to seal stored prompts.
	envEncryptionKey = "WEAVE_ENCRYPTION_KEY"
)

// addStoreFlags declares the prompt store flags. The prompts command shares
// them with all its subcommands.
func addStoreFlags(cmd *cobra.Command, persistent bool, defaultRedis string) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	fs.String("redis", defaultRedis, "Redis address for the prompt store, e.g. localhost:6379 (empty: in memory)")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database number")
	fs.Duration("prompt-ttl", 0, "Expire stored prompts after this long (0 keeps them)")
	fs.String("encryption-key", "", "Base64 AES-256 key sealing stored prompts (default $"+envEncryptionKey+")")
	fs.StringSlice("fallback-key", nil, "Older base64 keys still accepted when loading")
	fs.StringSlice("redact", nil, "Mask literal inputs whose name matches this pattern before storing")
}

// newSessions opens the prompt store named by the flags. A Redis store is
// shared between replicas, so it also gets a distributed lock.
func newSessions(cmd *cobra.Command, logger *slog.Logger) (*session.Manager, func() error, error) {
	mws, err := storeMiddlewares(cmd)
	if err != nil {
		return nil, nil, err
	}

	addr, _ := cmd.Flags().GetString("redis")
	if addr == "" {
		store := middleware.Chain(memory.NewStore(), mws...)
		return session.NewManager(store, session.WithLogger(logger)), func() error { return nil }, nil
	}

	password, _ := cmd.Flags().GetString("redis-password")
	db, _ := cmd.Flags().GetInt("redis-db")
	ttl, _ := cmd.Flags().GetDuration("prompt-ttl")

	rdb := redisAdapter.New(addr, password, db, redisAdapter.WithTTL(ttl))

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := rdb.Client().Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	var store ports.PromptStore = middleware.Chain(rdb, mws...)
	mgr := session.NewManager(store,
		session.WithLocker(redisAdapter.NewLocker(rdb.Client(), lockPrefix)),
		session.WithLogger(logger),
	)
	return mgr, rdb.Close, nil
}

// storeMiddlewares masks before it seals, so redacted values never reach
// the ciphertext.
func storeMiddlewares(cmd *cobra.Command) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware

	if patterns, _ := cmd.Flags().GetStringSlice("redact"); len(patterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(patterns))
	}

	encoded, _ := cmd.Flags().GetString("encryption-key")
	if encoded == "" {
		encoded = os.Getenv(envEncryptionKey)
	}
	if encoded == "" {
		return mws, nil
	}

	active, err := decodeKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}

	fallbacks, _ := cmd.Flags().GetStringSlice("fallback-key")
	for _, f := range fallbacks {
		key, err := decodeKey(f)
		if err != nil {
			return nil, fmt.Errorf("invalid fallback key: %w", err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return append(mws, middleware.NewEncryptionMiddleware(cfg)), nil
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
