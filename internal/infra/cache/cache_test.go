package cache_test

import (
	"testing"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[[]string](5 * time.Minute)

	c.Set("plans:active", []string{"Home 10", "Biz 50"})
	plans, ok := c.Get("plans:active")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if len(plans) != 2 || plans[0] != "Home 10" {
		t.Errorf("unexpected cached value: %v", plans)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[[]string](5 * time.Minute)

	_, ok := c.Get("plans:active")
	if ok {
		t.Fatal("expected a miss on an empty cache")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[[]string](50 * time.Millisecond)

	c.Set("plans:active", []string{"Home 10"})
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("plans:active")
	if ok {
		t.Fatal("expected entry to be expired")
	}
}

func TestCache_DeleteInvalidates(t *testing.T) {
	c := cache.New[[]string](5 * time.Minute)

	c.Set("plans:active", []string{"Home 10"})
	c.Delete("plans:active")

	_, ok := c.Get("plans:active")
	if ok {
		t.Fatal("expected key to be gone after invalidation")
	}
}
