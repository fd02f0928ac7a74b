package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	cache := New[string](Config{})
	defer cache.Stop()

	cache.Set("chat:1", "session", 5*time.Second)

	got, ok := cache.Get("chat:1")
	if !ok {
		t.Error("Get() should return ok=true for existing key")
	}
	if got != "session" {
		t.Errorf("Get() = %v, want session", got)
	}
}

func TestCache_GetNonExistent(t *testing.T) {
	cache := New[*int](Config{})
	defer cache.Stop()

	got, ok := cache.Get("missing")
	if ok {
		t.Error("Get() should return ok=false for non-existent key")
	}
	if got != nil {
		t.Errorf("Get() = %v, want zero value", got)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	cache := New[string](Config{})
	defer cache.Stop()

	cache.Set("expiring", "v", 50*time.Millisecond)

	if _, ok := cache.Get("expiring"); !ok {
		t.Error("Key should exist before TTL expiration")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := cache.Get("expiring"); ok {
		t.Error("Key should be expired after TTL")
	}
}

func TestCache_Touch(t *testing.T) {
	cache := New[string](Config{})
	defer cache.Stop()

	cache.Set("k", "v", 60*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	if !cache.Touch("k", time.Hour) {
		t.Fatal("Touch() = false for live key")
	}
	time.Sleep(40 * time.Millisecond)

	if _, ok := cache.Get("k"); !ok {
		t.Error("Key should survive after Touch")
	}
	if cache.Touch("missing", time.Hour) {
		t.Error("Touch() = true for missing key")
	}
}

func TestCache_Delete(t *testing.T) {
	cache := New[string](Config{})
	defer cache.Stop()

	cache.Set("k", "v", time.Hour)
	cache.Delete("k")

	if _, ok := cache.Get("k"); ok {
		t.Error("Key should not exist after delete")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cache.Len())
	}
}

func TestCache_Overwrite(t *testing.T) {
	cache := New[string](Config{})
	defer cache.Stop()

	cache.Set("k", "value1", time.Hour)
	cache.Set("k", "value2", time.Hour)

	got, _ := cache.Get("k")
	if got != "value2" {
		t.Errorf("Get() = %v, want value2 after overwrite", got)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCache_RemoveExpiredCallsOnEvict(t *testing.T) {
	cache := New[int](Config{})
	defer cache.Stop()

	var mu sync.Mutex
	evicted := map[string]int{}
	cache.OnEvict(func(key string, value int) {
		mu.Lock()
		evicted[key] = value
		mu.Unlock()
	})

	cache.Set("old", 1, time.Millisecond)
	cache.Set("fresh", 2, time.Hour)
	time.Sleep(10 * time.Millisecond)

	if n := cache.RemoveExpired(); n != 1 {
		t.Errorf("RemoveExpired() = %d, want 1", n)
	}

	mu.Lock()
	defer mu.Unlock()
	if evicted["old"] != 1 || len(evicted) != 1 {
		t.Errorf("evicted = %v, want only old", evicted)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCache_BackgroundCleanup(t *testing.T) {
	cache := New[string](Config{CleanupInterval: 10 * time.Millisecond})
	defer cache.Stop()

	done := make(chan string, 1)
	cache.OnEvict(func(key string, _ string) { done <- key })

	cache.Set("k", "v", time.Millisecond)

	select {
	case key := <-done:
		if key != "k" {
			t.Errorf("evicted key = %q", key)
		}
	case <-time.After(time.Second):
		t.Fatal("background cleanup did not evict")
	}
}

func TestCache_Stop(t *testing.T) {
	cache := New[string](Config{})

	cache.Stop()

	cache.Stop()
}

func TestCache_NewWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cache := NewWithContext[string](ctx, Config{})

	cache.Set("k", "v", time.Hour)
	if got, ok := cache.Get("k"); !ok || got != "v" {
		t.Error("Cache should work before context cancel")
	}

	cancel()
	time.Sleep(10 * time.Millisecond)

	cache.Set("another", "value", time.Hour)
	if _, ok := cache.Get("another"); !ok {
		t.Error("Cache should still work after context cancel")
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := New[int](Config{})
	defer cache.Stop()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			cache.Set("concurrent-key", i, time.Hour)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			cache.Get("concurrent-key")
			cache.Touch("concurrent-key", time.Hour)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			cache.Delete("concurrent-key")
			time.Sleep(time.Microsecond)
		}
	}()

	wg.Wait()
}
