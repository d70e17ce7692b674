package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/postmood/postmood/pkg/config"
	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/logging"
)

// RedisStore keeps the model record as a string value and its training
// metadata in a hash next to it
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg *config.RedisStoreConfig) (*RedisStore, error) {
	if cfg == nil {
		cfg = &config.DefaultConfig().Store.Redis
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	opt.DB = cfg.DatabaseNum

	rs := NewRedisStoreFromClient(redis.NewClient(opt), cfg.KeyPrefix)
	if cfg.Timeout > 0 {
		rs.timeout = cfg.Timeout
	}

	ctx, cancel := rs.withTimeout(context.Background())
	defer cancel()
	if err := rs.client.Ping(ctx).Err(); err != nil {
		rs.client.Close()
		return nil, fmt.Errorf("Redis connection failed: %w", err)
	}

	return rs, nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "postmood"
	}
	return &RedisStore{
		client:  client,
		prefix:  prefix,
		timeout: 5 * time.Second,
	}
}

func (rs *RedisStore) modelKey() string {
	return rs.prefix + ":model"
}

func (rs *RedisStore) metaKey() string {
	return rs.prefix + ":meta"
}

func (rs *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if rs.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rs.timeout)
}

// Save writes the record and its metadata in one pipeline
func (rs *RedisStore) Save(ctx context.Context, m *learning.NaiveBayes) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}

	info := m.GetModelInfo()

	ctx, cancel := rs.withTimeout(ctx)
	defer cancel()

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, rs.modelKey(), data, 0)
	pipe.HSet(ctx, rs.metaKey(),
		"trained_at", info.LastTrained.Unix(),
		"documents", info.Documents,
		"vocabulary_size", info.VocabularySize,
		"classes", len(info.Classes),
	)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save model to Redis: %w", err)
	}

	logging.Info().Str("key", rs.modelKey()).Int("bytes", len(data)).Msg("model saved")
	return nil
}

// Load reads the record; a missing key is reported as (nil, nil)
func (rs *RedisStore) Load(ctx context.Context) (*learning.NaiveBayes, error) {
	ctx, cancel := rs.withTimeout(ctx)
	defer cancel()

	data, err := rs.client.Get(ctx, rs.modelKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		logging.Debug().Str("key", rs.modelKey()).Msg("no stored model")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Redis read failed: %v", ErrInvalidRecord, err)
	}

	m, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("Redis key %s: %w", rs.modelKey(), err)
	}
	return m, nil
}

// Meta returns the training metadata stored with the model
func (rs *RedisStore) Meta(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := rs.withTimeout(ctx)
	defer cancel()

	raw, err := rs.client.HGetAll(ctx, rs.metaKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read model metadata: %w", err)
	}

	meta := make(map[string]int64, len(raw))
	for k, v := range raw {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			meta[k] = n
		}
	}
	return meta, nil
}

// Delete removes the stored model and its metadata
func (rs *RedisStore) Delete(ctx context.Context) error {
	ctx, cancel := rs.withTimeout(ctx)
	defer cancel()

	if err := rs.client.Del(ctx, rs.modelKey(), rs.metaKey()).Err(); err != nil {
		return fmt.Errorf("failed to delete model from Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
