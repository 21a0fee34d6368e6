package redis

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

// Storage keeps queue values as plain Redis strings under KeyPrefix+key.
type Storage struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	owned  bool
}

// NewStorage wraps an existing client. Close leaves the client open.
func NewStorage(client redis.UniversalClient, prefix string, ttl time.Duration) (*Storage, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return &Storage{client: client, prefix: prefix, ttl: ttl}, nil
}

// Open connects with cfg and returns a storage that owns the client.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{client: client, prefix: cfg.KeyPrefix, ttl: cfg.TTL, owned: true}, nil
}

// OpenDSN builds a storage from a redis:// or rediss:// DSN. The query
// parameters prefix and ttl override the defaults and are stripped before
// the URL reaches the client.
func OpenDSN(ctx context.Context, dsn string) (storage.Storage, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}
	cfg := DefaultConfig()
	q := u.Query()
	if q.Has("prefix") {
		cfg.KeyPrefix = q.Get("prefix")
		q.Del("prefix")
	}
	if raw := q.Get("ttl"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.Join(ErrFailedToParseRedisConnString, err)
		}
		cfg.TTL = ttl
		q.Del("ttl")
	}
	u.RawQuery = q.Encode()
	cfg.ConnectionURL = u.String()
	cfg.RetryAttempts = 1
	return Open(ctx, cfg)
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", storage.ErrInvalidKey
	}
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	return v, err
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Client returns the underlying client.
func (s *Storage) Client() redis.UniversalClient {
	return s.client
}

func (s *Storage) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
