package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the fixed key holding the prediction log.
const DefaultRedisKey = "fwi:predictions"

// RedisStore keeps the log as a Redis list of JSON records under a single key.
// New records are pushed to the head, so LRANGE returns them most-recent-first.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	mu     sync.RWMutex
}

// NewRedisStore creates a Redis-backed store.
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string for no auth)
//   - db: Redis database number (typically 0)
//   - key: list key (empty uses DefaultRedisKey)
//   - ttl: session lifetime, refreshed on every append (0 keeps the log forever)
//
// Returns an error if the connection to Redis fails or if parameters are invalid.
func NewRedisStore(addr, password string, db int, key string, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if db < 0 {
		return nil, errors.New("redis database number must be >= 0")
	}
	if ttl < 0 {
		return nil, errors.New("redis ttl cannot be negative")
	}
	if key == "" {
		key = DefaultRedisKey
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{
		client: client,
		key:    key,
		ttl:    ttl,
	}, nil
}

// Append pushes rec to the head of the list and refreshes the TTL if one is set.
func (r *RedisStore) Append(ctx context.Context, rec Record) error {
	if err := rec.validate(); err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.client == nil {
		return ErrStoreClosed
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, data)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store record in redis: %w", err)
	}

	return nil
}

// List returns every record, most recent first. A missing key is an empty log.
func (r *RedisStore) List(ctx context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.client == nil {
		return nil, ErrStoreClosed
	}

	items, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read records from redis: %w", err)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %d: %w", i, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Close closes the Redis client connection.
// It is safe to call multiple times (idempotent). Later operations return ErrStoreClosed.
func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}

	err := r.client.Close()
	r.client = nil
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}

	return err
}

// Ping checks the Redis connection health.
func (r *RedisStore) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.client == nil {
		return ErrStoreClosed
	}
	return r.client.Ping(ctx).Err()
}
