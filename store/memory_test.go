package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/reviewkit/core"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close()

	if _, err := ms.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want not found", err)
	}

	value := []byte("hello")
	if err := ms.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'j'

	got, err := ms.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get() = %q, want hello", got)
	}
	got[0] = 'x'
	again, _ := ms.Get(ctx, "k")
	if string(again) != "hello" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}

	if err := ms.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := ms.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(after delete) error = %v, want not found", err)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStoreWithInterval(time.Hour)
	defer ms.Close()

	if err := ms.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := ms.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, err := ms.Get(ctx, "short"); !core.IsStoreNotFound(err) {
		t.Errorf("expired key still readable: %v", err)
	}
	if _, err := ms.Get(ctx, "forever"); err != nil {
		t.Errorf("Get(forever) error = %v", err)
	}

	ms.evict(time.Now())
	if got := ms.Len(); got != 1 {
		t.Errorf("Len() after evict = %d, want 1", got)
	}
}

func TestMemoryStore_CloseIdempotent(t *testing.T) {
	ms := NewMemoryStore()
	if err := ms.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ms.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if ms.Name() != "memory" {
		t.Errorf("Name() = %q", ms.Name())
	}
}
