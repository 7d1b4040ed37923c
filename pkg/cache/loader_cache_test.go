package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLoaderCache_Get_miss_then_hit(t *testing.T) {
	loads := atomic.Int32{}

	c, err := NewLoaderCache[string, string](10, func(s string) string { return s })
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	load := func(_ context.Context, key string) (string, error) {
		loads.Add(1)

		return "v-" + key, nil
	}

	v, err := c.Get(ctx, "a", load)
	if err != nil {
		t.Fatal(err)
	}

	if v != "v-a" {
		t.Errorf("got %q", v)
	}

	if loads.Load() != 1 {
		t.Errorf("loads = %d", loads.Load())
	}

	v, err = c.Get(ctx, "a", load)
	if err != nil {
		t.Fatal(err)
	}

	if v != "v-a" {
		t.Errorf("got %q", v)
	}

	if loads.Load() != 1 {
		t.Errorf("loads = %d after hit, want 1", loads.Load())
	}
}

func TestLoaderCache_GetWithStats_hit_flag(t *testing.T) {
	c, err := NewLoaderCache[string, string](10, func(s string) string { return s })
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	load := func(_ context.Context, key string) (string, error) {
		return "v-" + key, nil
	}

	_, hit, err := c.GetWithStats(ctx, "a", load)
	if err != nil {
		t.Fatal(err)
	}

	if hit {
		t.Error("first lookup reported a hit, want miss")
	}

	_, hit, err = c.GetWithStats(ctx, "a", load)
	if err != nil {
		t.Fatal(err)
	}

	if !hit {
		t.Error("second lookup reported a miss, want hit")
	}

	c.Invalidate("a")

	_, hit, err = c.GetWithStats(ctx, "a", load)
	if err != nil {
		t.Fatal(err)
	}

	if hit {
		t.Error("lookup after invalidate reported a hit, want miss")
	}
}

func TestLoaderCache_Get_singleflight(t *testing.T) {
	loads := atomic.Int32{}
	gate := make(chan struct{})

	c, err := NewLoaderCache[string, []float32](10, func(s string) string { return s })
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	load := func(_ context.Context, _ string) ([]float32, error) {
		loads.Add(1)
		<-gate

		return []float32{1, 0}, nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if _, err := c.Get(ctx, "x", load); err != nil {
				t.Error(err)
			}
		}()
	}

	close(gate)
	wg.Wait()

	// All 10 concurrent misses for the same key must share one load.
	if got := loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestLoaderCache_Invalidate(t *testing.T) {
	loads := atomic.Int32{}

	c, err := NewLoaderCache[string, string](10, func(s string) string { return s })
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	load := func(_ context.Context, key string) (string, error) {
		loads.Add(1)

		return "v-" + key, nil
	}

	if _, err := c.Get(ctx, "a", load); err != nil {
		t.Fatal(err)
	}

	c.Invalidate("a")

	if _, err := c.Get(ctx, "a", load); err != nil {
		t.Fatal(err)
	}

	if got := loads.Load(); got != 2 {
		t.Errorf("loads = %d after invalidate, want 2", got)
	}
}

func TestLoaderCache_Get_load_error(t *testing.T) {
	loads := atomic.Int32{}
	errLoad := errors.New("load failed")

	c, err := NewLoaderCache[string, string](10, func(s string) string { return s })
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	load := func(_ context.Context, _ string) (string, error) {
		loads.Add(1)

		return "", errLoad
	}

	if _, err := c.Get(ctx, "a", load); !errors.Is(err, errLoad) {
		t.Fatalf("err = %v, want %v", err, errLoad)
	}

	// Failures are not cached; the next miss loads again.
	if _, err := c.Get(ctx, "a", load); !errors.Is(err, errLoad) {
		t.Fatalf("err = %v, want %v", err, errLoad)
	}

	if got := loads.Load(); got != 2 {
		t.Errorf("loads = %d, want 2", got)
	}
}
