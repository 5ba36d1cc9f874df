package coord

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-inventory-api/pkg/uid"
)

// newTestRedisCoordinator needs a live server at REDIS_TEST_ADDR.
func newTestRedisCoordinator(t *testing.T, ttl time.Duration) *RedisCoordinator {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())

	c := NewRedisCoordinatorWithClient(client, ttl, "test:"+uid.New())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCoordinator_Lock(t *testing.T) {
	c := newTestRedisCoordinator(t, 5*time.Second)
	ctx := context.Background()

	unlock, err := c.Lock(ctx, "A1")
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = c.Lock(short, "A1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()

	unlock2, err := c.Lock(ctx, "A1")
	require.NoError(t, err)
	unlock2()
}

func TestRedisCoordinator_LockExpires(t *testing.T) {
	c := newTestRedisCoordinator(t, 100*time.Millisecond)
	ctx := context.Background()

	stale, err := c.Lock(ctx, "A1")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	unlock, err := c.Lock(waitCtx, "A1")
	require.NoError(t, err)

	// Releasing the expired holder must not free the new holder's lock.
	stale()
	short, cancel2 := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel2()
	_, err = c.Lock(short, "A1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
}

func TestRedisCoordinator_Sequencer(t *testing.T) {
	c := newTestRedisCoordinator(t, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Seed(ctx, 41))
	n, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	require.NoError(t, c.Seed(ctx, 5))
	n, err = c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(43), n)

	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := c.Next(ctx)
			if assert.NoError(t, err) {
				_, dup := seen.LoadOrStore(n, true)
				assert.False(t, dup)
			}
		}()
	}
	wg.Wait()
}
