package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brettbedarf/chatfs"
	"github.com/brettbedarf/chatfs/config"
	"github.com/redis/go-redis/v9"
)

var ErrConnectionIssue = errors.New("redis: connection issue")

const redisPingTimeout = 5 * time.Second

// RedisStore keeps values as plain redis strings
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects and pings the server so a bad address fails at
// startup rather than on the first save.
func NewRedisStore(opts config.StoreOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() // nolint:errcheck
		return nil, fmt.Errorf("%w: %s", ErrConnectionIssue, err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis store %q: %w", key, chatfs.ErrKeyNotFound)
	}
	return val, err
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ chatfs.Store = (*RedisStore)(nil)
