package dbpool

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	cfg := Config{MaxReconnectAttempts: 3, Backoff: time.Millisecond}
	rebuilds := 0
	err := withRetry(context.Background(), cfg, func() error { rebuilds++; return nil }, func() error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rebuilds != 0 {
		t.Fatalf("rebuild called %d times on first-try success, want 0", rebuilds)
	}
}

func TestWithRetryRebuildsAndEventuallySucceeds(t *testing.T) {
	cfg := Config{MaxReconnectAttempts: 3, Backoff: time.Millisecond}
	attempts := 0
	rebuilds := 0
	err := withRetry(context.Background(), cfg,
		func() error { rebuilds++; return nil },
		func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transport error")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
	if rebuilds != 2 {
		t.Fatalf("rebuilds = %d, want 2 (one per retry, not the first attempt)", rebuilds)
	}
}

func TestWithRetryExhaustsAndReturnsLastError(t *testing.T) {
	cfg := Config{MaxReconnectAttempts: 2, Backoff: time.Millisecond}
	wantErr := errors.New("still down")
	attempts := 0
	err := withRetry(context.Background(), cfg,
		func() error { return nil },
		func() error { attempts++; return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3 (1 initial + 2 retries)", attempts)
	}
}

func TestWithRetryStopsOnContextCancel(t *testing.T) {
	cfg := Config{MaxReconnectAttempts: 5, Backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	err := withRetry(ctx, cfg,
		func() error { return nil },
		func() error { attempts++; return errors.New("fail") })
	if err == nil {
		t.Fatal("expected context-cancellation error")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (fails once, then the backoff sleep sees ctx.Done)", attempts)
	}
}
