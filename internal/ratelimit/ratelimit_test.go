package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreAcquire(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "ip:1", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !ok {
		t.Fatalf("first acquire should succeed")
	}

	ok, _ = store.Acquire(ctx, "ip:1", 100*time.Millisecond)
	if ok {
		t.Errorf("second acquire within TTL should be denied")
	}

	// A different key is independent.
	ok, _ = store.Acquire(ctx, "ip:2", 100*time.Millisecond)
	if !ok {
		t.Errorf("acquire for a different key should succeed")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if ok, _ := store.Acquire(ctx, "ip:1", 30*time.Millisecond); !ok {
		t.Fatalf("first acquire should succeed")
	}

	time.Sleep(50 * time.Millisecond)

	if ok, _ := store.Acquire(ctx, "ip:1", 30*time.Millisecond); !ok {
		t.Errorf("acquire after TTL elapsed should succeed")
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Acquire(ctx, "shared", time.Second)
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
}
