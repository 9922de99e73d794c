package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedOpportunity struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *CacheHelper) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return server, NewCacheHelper(client, OpportunityCacheConfig.Prefix)
}

func TestCacheHelper_SetAndGet(t *testing.T) {
	_, helper := newTestCache(t)
	ctx := context.Background()

	stored := cachedOpportunity{ID: "opp-1", Title: "Backend Internship"}
	if err := helper.Set(ctx, "opp-1", stored, time.Minute); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	var loaded cachedOpportunity
	if err := helper.Get(ctx, "opp-1", &loaded); err != nil {
		t.Fatalf("Failed to get cache: %v", err)
	}
	if loaded != stored {
		t.Errorf("Expected %+v, got %+v", stored, loaded)
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	_, helper := newTestCache(t)

	var dest cachedOpportunity
	err := helper.Get(context.Background(), "missing", &dest)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("Expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	_, helper := newTestCache(t)
	ctx := context.Background()

	helper.Set(ctx, "opp-1", cachedOpportunity{ID: "opp-1"}, time.Minute)
	helper.Set(ctx, "opp-2", cachedOpportunity{ID: "opp-2"}, time.Minute)

	if err := helper.Delete(ctx, "opp-1", "opp-2"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	var dest cachedOpportunity
	if err := helper.Get(ctx, "opp-1", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Expected opp-1 to be gone, got %v", err)
	}
	if err := helper.Get(ctx, "opp-2", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Expected opp-2 to be gone, got %v", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	server, helper := newTestCache(t)
	ctx := context.Background()

	helper.Set(ctx, "list:page1", cachedOpportunity{ID: "opp-1"}, time.Minute)
	helper.Set(ctx, "list:page2", cachedOpportunity{ID: "opp-2"}, time.Minute)
	helper.Set(ctx, "detail:opp-1", cachedOpportunity{ID: "opp-1"}, time.Minute)

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("Failed to invalidate pattern: %v", err)
	}

	if server.Exists(helper.GetCacheKey("list:page1")) {
		t.Error("Expected list:page1 to be invalidated")
	}
	if server.Exists(helper.GetCacheKey("list:page2")) {
		t.Error("Expected list:page2 to be invalidated")
	}
	if !server.Exists(helper.GetCacheKey("detail:opp-1")) {
		t.Error("Expected detail:opp-1 to survive")
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	_, helper := newTestCache(t)
	ctx := context.Background()

	t.Run("miss executes the fetch", func(t *testing.T) {
		calls := 0
		var dest cachedOpportunity
		err := helper.CacheOrExecute(ctx, "fetch-miss", &dest, time.Minute, func() (interface{}, error) {
			calls++
			return cachedOpportunity{ID: "opp-9", Title: "Research Assistant"}, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute failed: %v", err)
		}
		if calls != 1 {
			t.Errorf("Expected 1 fetch call, got %d", calls)
		}
		if dest.ID != "opp-9" {
			t.Errorf("Expected fetched value, got %+v", dest)
		}
	})

	t.Run("hit skips the fetch", func(t *testing.T) {
		if err := helper.Set(ctx, "fetch-hit", cachedOpportunity{ID: "opp-3"}, time.Minute); err != nil {
			t.Fatalf("Failed to seed cache: %v", err)
		}

		var dest cachedOpportunity
		err := helper.CacheOrExecute(ctx, "fetch-hit", &dest, time.Minute, func() (interface{}, error) {
			t.Fatal("Fetch should not run on a cache hit")
			return nil, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute failed: %v", err)
		}
		if dest.ID != "opp-3" {
			t.Errorf("Expected cached value, got %+v", dest)
		}
	})

	t.Run("fetch errors propagate", func(t *testing.T) {
		fetchErr := errors.New("db down")
		var dest cachedOpportunity
		err := helper.CacheOrExecute(ctx, "fetch-err", &dest, time.Minute, func() (interface{}, error) {
			return nil, fetchErr
		})
		if !errors.Is(err, fetchErr) {
			t.Fatalf("Expected fetch error, got %v", err)
		}
	})
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set should be a no-op without a client, got %v", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete should be a no-op without a client, got %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Expected ErrCacheNotAvailable, got %v", err)
	}

	// The cache-aside path must still serve from the fetch function.
	var value string
	err := helper.CacheOrExecute(ctx, "k", &value, time.Minute, func() (interface{}, error) {
		return "fallback", nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if value != "fallback" {
		t.Errorf("Expected fallback value, got %q", value)
	}
}
