package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/gitrello/github-integration/internal/port/cache"
)

var _ cache.Cache = (*Cache)(nil)

func TestCacheSetGetDelete(t *testing.T) {
	c, err := New(1 << 20)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "perm:7:42", []byte(`{"can_read":true}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	c.c.Wait() // ristretto applies writes asynchronously

	data, ok, err := c.Get(ctx, "perm:7:42")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(data) != `{"can_read":true}` {
		t.Fatalf("unexpected value: %s", data)
	}

	if err := c.Delete(ctx, "perm:7:42"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c.c.Wait()
	if _, ok, _ := c.Get(ctx, "perm:7:42"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestCacheMiss(t *testing.T) {
	c, err := New(1 << 20)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get(context.Background(), "absent"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}
