package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLimiter_DisabledRateDoesNotBlock(t *testing.T) {
	l := New(0, zerolog.Nop())

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("10 waits took %v, expected no pacing with rate 0", elapsed)
	}
}

func TestLimiter_PacesRequests(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timing test in short mode")
	}

	// 10 req/s means the third request waits roughly 200ms total.
	l := New(10, zerolog.Nop())

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	if elapsed < 150*time.Millisecond {
		t.Errorf("3 waits took %v, want >= 150ms at 10 req/s", elapsed)
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := New(0.1, zerolog.Nop()) // 1 request per 10s

	// Burn the single burst token.
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := l.Wait(ctx)
	if err == nil {
		t.Fatal("Wait() expected error after context deadline")
	}
	if elapsed := time.Since(start); elapsed > 1*time.Second {
		t.Errorf("Wait() took %v, expected prompt return on deadline", elapsed)
	}
}
