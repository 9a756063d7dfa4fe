package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	// keySuffix follows the original key layout: store:<merchant>:tokens.
	keySuffix = ":tokens"

	// scanCount is the per-iteration hint for SCAN.
	scanCount = 100
)

// RedisStore persists merchant tokens in Redis, one JSON-encoded record per key.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// Compile-time check to ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int

	// KeyPrefix namespaces merchant keys, "store:" by default.
	KeyPrefix string
}

// NewRedisStore creates a RedisStore. No connection is made until the first operation.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "store:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return &RedisStore{
		client:    client,
		keyPrefix: prefix,
	}, nil
}

// Get returns the merchant's record, or (nil, nil) if no record exists.
func (s *RedisStore) Get(ctx context.Context, merchant string) (*TenantToken, error) {
	data, err := s.client.Get(ctx, s.key(merchant)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tokens for %q: %w: %w", merchant, ErrUnavailable, err)
	}

	var token TenantToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode tokens for %q: %w", merchant, err)
	}
	return &token, nil
}

// Put replaces the merchant's record with a full JSON encode of the token.
func (s *RedisStore) Put(ctx context.Context, merchant string, token *TenantToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode tokens for %q: %w", merchant, err)
	}

	if err := s.client.Set(ctx, s.key(merchant), data, 0).Err(); err != nil {
		return fmt.Errorf("put tokens for %q: %w: %w", merchant, ErrUnavailable, err)
	}
	return nil
}

// Merchants scans for token keys and yields the merchant id embedded in each.
func (s *RedisStore) Merchants(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		it := s.client.Scan(ctx, 0, s.keyPrefix+"*"+keySuffix, scanCount).Iterator()
		for it.Next(ctx) {
			merchant := strings.TrimSuffix(strings.TrimPrefix(it.Val(), s.keyPrefix), keySuffix)
			if merchant == "" {
				continue
			}
			if !yield(merchant, nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield("", fmt.Errorf("scan merchants: %w: %w", ErrUnavailable, err))
		}
	}
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(merchant string) string {
	return s.keyPrefix + merchant + keySuffix
}
