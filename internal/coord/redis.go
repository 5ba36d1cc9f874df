package coord

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"warehouse-inventory-api/pkg/uid"
)

// Coordination configuration
const (
	DefaultLockTTL   = 10 * time.Second
	DefaultKeyPrefix = "warehouse:inventory"
)

var releaseIfOwnerScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var seedScript = redis.NewScript(`
	local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
	local floor = tonumber(ARGV[1])
	if cur < floor then
		redis.call("SET", KEYS[1], floor)
		return floor
	end
	return cur
`)

// RedisConfig holds configuration for the Redis coordinator.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	LockTTL   time.Duration
	KeyPrefix string
}

// RedisCoordinator implements Locker and Sequencer on one Redis client,
// so several API instances writing to the same event store stay serialized per box.
type RedisCoordinator struct {
	client    *redis.Client
	lockTTL   time.Duration
	keyPrefix string
}

// NewRedisCoordinator connects to Redis and verifies the connection.
func NewRedisCoordinator(cfg RedisConfig) (*RedisCoordinator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisCoordinatorWithClient(client, cfg.LockTTL, cfg.KeyPrefix), nil
}

// NewRedisCoordinatorWithClient wraps an existing client.
func NewRedisCoordinatorWithClient(client *redis.Client, lockTTL time.Duration, keyPrefix string) *RedisCoordinator {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	log.Printf("[RedisCoordinator] Started - prefix:%s, lock_ttl:%v", keyPrefix, lockTTL)
	return &RedisCoordinator{client: client, lockTTL: lockTTL, keyPrefix: keyPrefix}
}

func (c *RedisCoordinator) lockKey(key string) string {
	return c.keyPrefix + ":lock:" + key
}

func (c *RedisCoordinator) seqKey() string {
	return c.keyPrefix + ":seq"
}

// Lock polls SET NX PX until the key is acquired or ctx is done.
// The lock expires after the TTL if the holder dies.
func (c *RedisCoordinator) Lock(ctx context.Context, key string) (func(), error) {
	token := uid.New()
	k := c.lockKey(key)
	wait := lockRetryMin

	for {
		ok, err := c.client.SetNX(ctx, k, token, c.lockTTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrLockTimeout
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(wait):
		}
		if wait *= 2; wait > lockRetryMax {
			wait = lockRetryMax
		}
	}

	return func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseIfOwnerScript.Run(rctx, c.client, []string{k}, token).Err(); err != nil {
			log.Printf("[RedisCoordinator] Error releasing lock %s: %v", key, err)
		}
	}, nil
}

// Next increments the shared sequence counter.
func (c *RedisCoordinator) Next(ctx context.Context) (int64, error) {
	n, err := c.client.Incr(ctx, c.seqKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return n, nil
}

// Seed raises the shared counter to at least floor; it never lowers it.
func (c *RedisCoordinator) Seed(ctx context.Context, floor int64) error {
	if err := seedScript.Run(ctx, c.client, []string{c.seqKey()}, floor).Err(); err != nil {
		return fmt.Errorf("failed to seed sequence: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *RedisCoordinator) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *RedisCoordinator) Close() error {
	return c.client.Close()
}

var (
	_ Locker    = (*RedisCoordinator)(nil)
	_ Sequencer = (*RedisCoordinator)(nil)
)
