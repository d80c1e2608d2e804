package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
)

// RedisClient is the minimal interface Store depends on.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

var _ RedisClient = (*redis.Client)(nil)

// PoolOptions contains Redis connection pool settings.
type PoolOptions struct {
	PoolSize     int           // Maximum number of connections
	MinIdleConns int           // Minimum idle connections to maintain
	PoolTimeout  time.Duration // Time to wait for a connection from the pool
	ReadTimeout  time.Duration // Timeout for read operations
	WriteTimeout time.Duration // Timeout for write operations
}

// Store reads the sensitive field list published in Redis.
type Store struct {
	client RedisClient
}

// New creates a new Store with the given Redis URL and pool options.
func New(ctx context.Context, redisURL string, poolOpts *PoolOptions) (*Store, error) {
	if poolOpts == nil {
		return nil, errors.New(constants.ErrPoolOptionsRequired)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrRedisURLParse, err)
	}

	opts.PoolSize = poolOpts.PoolSize
	opts.MinIdleConns = poolOpts.MinIdleConns
	opts.PoolTimeout = poolOpts.PoolTimeout
	opts.ReadTimeout = poolOpts.ReadTimeout
	opts.WriteTimeout = poolOpts.WriteTimeout

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf(constants.ErrRedisConnect, err)
	}

	return &Store{client: client}, nil
}

func NewWithClient(client RedisClient) (*Store, error) {
	if client == nil {
		return nil, errors.New(constants.ErrRedisClientNil)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return errors.New(constants.ErrStoreNil)
	}
	if s.client == nil {
		return errors.New(constants.ErrRedisClientNil)
	}
	return s.client.Close()
}

// SensitiveFields returns the raw comma-separated field list stored at key.
// found is false when the key does not exist; an existing empty value is
// returned as found so it can clear the list.
func (s *Store) SensitiveFields(ctx context.Context, key string) (raw string, found bool, err error) {
	raw, err = s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf(constants.ErrRedisOperation, err)
	}
	return raw, true, nil
}
