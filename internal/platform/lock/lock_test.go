package lock

import (
	"context"
	"errors"
	"testing"
)

func TestNoopLockerRunsCriticalSection(t *testing.T) {
	ran := false
	err := NoopLocker{}.WithBookingLock(context.Background(), "clinic:2025-03-11:10:00", func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithBookingLock: %v", err)
	}
	if !ran {
		t.Error("critical section did not run")
	}
}

func TestNoopLockerPropagatesError(t *testing.T) {
	want := errors.New("insert failed")
	err := NoopLocker{}.WithBookingLock(context.Background(), "k", func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("got %v, want %v", err, want)
	}
}

func TestNoopLockerPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	err := NoopLocker{}.WithBookingLock(ctx, "k", func(inner context.Context) error {
		if inner.Value(key{}) != "v" {
			t.Error("context value not propagated")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithBookingLock: %v", err)
	}
}
