package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStriped_SerializesSameKey(t *testing.T) {
	l := NewStriped(0)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "account-1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected exclusive access, saw %d holders", maxSeen)
	}
	if counter != 50 {
		t.Fatalf("lost updates: counter=%d", counter)
	}
}

func TestStriped_DifferentStripesDoNotBlock(t *testing.T) {
	l := NewStriped(1024)

	a, b := "account-a", "account-b"
	if l.stripeIndex(a) == l.stripeIndex(b) {
		t.Skip("keys collide on this stripe count")
	}

	unlockA, err := l.Lock(context.Background(), a)
	if err != nil {
		t.Fatalf("Lock a: %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, b)
	if err != nil {
		t.Fatalf("Lock b blocked behind a: %v", err)
	}
	unlockB()
}

func TestStriped_ContextCancelled(t *testing.T) {
	l := NewStriped(1)
	unlock, _ := l.Lock(context.Background(), "k")
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestStriped_UnlockIsIdempotent(t *testing.T) {
	l := NewStriped(1)
	unlock, _ := l.Lock(context.Background(), "k")
	unlock()
	unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	again, err := l.Lock(ctx, "k")
	if err != nil {
		t.Fatalf("re-lock after double unlock: %v", err)
	}
	again()
}
