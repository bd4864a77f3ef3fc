package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HatiCode/fwirelay/pkg/fwi"
)

func TestRedisStore_UseAfterClose(t *testing.T) {
	// No server is needed: the client never dials before Close.
	store := &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}),
		key:    DefaultRedisKey,
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ctx := context.Background()
	rec := Record{
		ID:        "after-close",
		Timestamp: time.Now().UTC(),
		Input:     fwi.Input{Region: fwi.RegionBejaia},
		Result:    4.2,
	}

	if err := store.Append(ctx, rec); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Append() after Close error = %v, want ErrStoreClosed", err)
	}
	if _, err := store.List(ctx); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("List() after Close error = %v, want ErrStoreClosed", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Ping() after Close error = %v, want ErrStoreClosed", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
