//go:build integration

package history

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedisContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}
	return strings.TrimPrefix(endpoint, "redis://")
}

func TestNewRedisStore_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		addr string
		db   int
		ttl  time.Duration
		want string
	}{
		{name: "empty addr", addr: "", want: "redis address cannot be empty"},
		{name: "negative db", addr: "localhost:6379", db: -1, want: "redis database number must be >= 0"},
		{name: "negative ttl", addr: "localhost:6379", ttl: -time.Second, want: "redis ttl cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRedisStore(tt.addr, "", tt.db, "", tt.ttl)
			if err == nil || err.Error() != tt.want {
				t.Errorf("NewRedisStore() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestRedisStore_AppendAndList(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, "", 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	empty, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() on missing key error = %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("List() on missing key = %v", empty)
	}

	for i := 1; i <= 3; i++ {
		if err := store.Append(ctx, sampleRecord(fmt.Sprintf("r%d", i), float64(i*10))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(got))
	}
	if got[0].ID != "r3" || got[2].ID != "r1" {
		t.Errorf("List() not most recent first: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].Input != sampleInput() {
		t.Errorf("Input = %+v, want %+v", got[0].Input, sampleInput())
	}
}

func TestRedisStore_TTL(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, "fwi:ttl-test", time.Second)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Append(ctx, sampleRecord("r1", 5)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	time.Sleep(2 * time.Second)

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected expired log, got %d records", len(got))
	}
}

func TestRedisStore_ConcurrentAppend(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, "", 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := store.Append(ctx, sampleRecord(fmt.Sprintf("r%d", i), float64(i))); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != n {
		t.Errorf("len(List()) = %d, want %d", len(got), n)
	}
}

func TestRedisStore_CloseIdempotent(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, "", 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
