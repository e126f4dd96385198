package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/sanjeevani/internal/db"
)

func TestStore_SetGet(t *testing.T) {
	s, err := NewStore(8)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want v", got)
	}

	// returned slice is a copy
	got[0] = 'x'
	again, _ := s.Get(ctx, "k")
	if string(again) != "v" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}

func TestStore_NotFound(t *testing.T) {
	s, _ := NewStore(8)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestStore_TTL(t *testing.T) {
	s, _ := NewStore(8)
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after expiry, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expired entry not removed, Len = %d", s.Len())
	}
}

func TestStore_Eviction(t *testing.T) {
	s, _ := NewStore(2)
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"))
	_ = s.Set(ctx, "b", []byte("2"))
	_, _ = s.Get(ctx, "a") // a becomes most recently used
	_ = s.Set(ctx, "c", []byte("3"))

	if _, err := s.Get(ctx, "b"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected b evicted, got %v", err)
	}
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Errorf("expected a retained, got %v", err)
	}
}

func TestStore_Close(t *testing.T) {
	s, _ := NewStore(0)
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"))

	s.Close()
	s.Close()

	if err := s.Ping(ctx); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Ping after Close = %v, want ErrClosed", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
	if err := s.Set(ctx, "k", nil); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
}
