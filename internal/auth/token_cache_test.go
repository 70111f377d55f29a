package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// stubRedis 用内存 map 模拟 GET/SETEX/DEL
func stubRedis(store map[string]string) radix.Conn {
	return radix.Stub("tcp", "127.0.0.1:0", func(args []string) interface{} {
		switch args[0] {
		case "GET":
			if v, ok := store[args[1]]; ok {
				return v
			}
			return nil
		case "SETEX":
			store[args[1]] = args[3]
			return "OK"
		case "DEL":
			delete(store, args[1])
			return 1
		}
		return nil
	})
}

func TestTokenCacheRoundTrip(t *testing.T) {
	store := map[string]string{}
	cache := NewTokenCache(stubRedis(store), NewShardRing([]string{"token-shard-1", "token-shard-2"}, 10), time.Minute)

	claims := &Claims{UserID: 7, Username: "hong", Role: "customer"}
	if err := cache.Store(context.Background(), "tok-abc", claims); err != nil {
		t.Fatalf("Store: %v", err)
	}
	for key := range store {
		if !strings.HasPrefix(key, "shopmall:token:") {
			t.Errorf("cache key %q missing project namespace", key)
		}
	}

	got, err := cache.Lookup(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil || got.UserID != 7 || got.Role != "customer" {
		t.Errorf("Lookup returned %+v, want cached claims", got)
	}
}

func TestTokenCacheInvalidate(t *testing.T) {
	store := map[string]string{}
	cache := NewTokenCache(stubRedis(store), nil, time.Minute)

	if err := cache.Store(context.Background(), "tok-abc", &Claims{UserID: 7}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := cache.Invalidate(context.Background(), "tok-abc"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	got, err := cache.Lookup(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Errorf("Lookup after Invalidate = %+v, want miss", got)
	}
	if len(store) != 0 {
		t.Errorf("store still holds %d entries after invalidate", len(store))
	}
}

func TestTokenCacheCorruptEntry(t *testing.T) {
	store := map[string]string{}
	cache := NewTokenCache(stubRedis(store), nil, time.Minute)

	if err := cache.Store(context.Background(), "tok-abc", &Claims{UserID: 7}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	for key := range store {
		store[key] = "not-json"
	}
	got, err := cache.Lookup(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Errorf("corrupt entry should be treated as a miss, got %+v", got)
	}
	if len(store) != 0 {
		t.Errorf("corrupt entry should be deleted, %d left", len(store))
	}
}
