package cache

import (
	"testing"
	"time"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()

	store.Set("k", "v", time.Minute)
	if v, ok := store.Get("k"); !ok || v != "v" {
		t.Fatalf("expected v, got %q (ok=%v)", v, ok)
	}

	store.Delete("k")
	if _, ok := store.Get("k"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set("k", "v", 30*time.Second)
	now = now.Add(29 * time.Second)
	if _, ok := store.Get("k"); !ok {
		t.Fatal("expected key before expiry")
	}

	now = now.Add(time.Second)
	if _, ok := store.Get("k"); ok {
		t.Fatal("expected key to expire")
	}
}

func TestMemoryStore_CloseIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	store.Close()
	store.Close()
}
