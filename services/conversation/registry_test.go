package conversation

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testRegistry(ttl time.Duration) (*Registry, *time.Time) {
	r := NewRegistry(ttl, zap.NewNop())
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestAcquireReturnsSameSessionAcrossTurns(t *testing.T) {
	r, _ := testRegistry(10 * time.Minute)
	defer r.Shutdown()

	s1, release := r.Acquire("tok")
	s1.PendingSlots["doctor"] = "Dr. Smith"
	release()

	s2, release := r.Acquire("tok")
	defer release()
	if s2.PendingSlots["doctor"] != "Dr. Smith" {
		t.Fatal("session state lost between turns")
	}
	if r.Len() != 1 {
		t.Fatalf("expected one session, got %d", r.Len())
	}
}

func TestAcquireResetsIdleSession(t *testing.T) {
	r, now := testRegistry(10 * time.Minute)
	defer r.Shutdown()

	s, release := r.Acquire("tok")
	s.PendingSlots["doctor"] = "Dr. Smith"
	release()

	*now = now.Add(11 * time.Minute)
	fresh, release := r.Acquire("tok")
	defer release()
	if fresh.PendingSlots["doctor"] != "" {
		t.Fatal("idle session not reset on acquire")
	}
	if len(fresh.Turns) != 0 {
		t.Fatal("fresh session carried old history")
	}
}

func TestExpireStaleEvictsOnlyIdleSessions(t *testing.T) {
	r, now := testRegistry(10 * time.Minute)
	defer r.Shutdown()

	_, release := r.Acquire("idle")
	release()

	_, holdRelease := r.Acquire("busy")

	if evicted := r.ExpireStale(now.Add(11 * time.Minute)); evicted != 1 {
		t.Fatalf("expected one eviction, got %d", evicted)
	}
	if r.Len() != 1 {
		t.Fatalf("in-flight session evicted, %d sessions left", r.Len())
	}
	holdRelease()
}

func TestCloseRemovesSession(t *testing.T) {
	r, _ := testRegistry(10 * time.Minute)
	defer r.Shutdown()

	_, release := r.Acquire("tok")
	release()
	r.Close("tok")
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestAcquireSerializesTurns(t *testing.T) {
	r, _ := testRegistry(10 * time.Minute)
	defer r.Shutdown()

	_, firstRelease := r.Acquire("tok")

	acquired := make(chan struct{})
	go func() {
		_, release := r.Acquire("tok")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire proceeded while first turn held the session")
	case <-time.After(50 * time.Millisecond):
	}

	firstRelease()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never proceeded after release")
	}
}

func TestCloseWaitsForInFlightTurn(t *testing.T) {
	r, _ := testRegistry(10 * time.Minute)
	defer r.Shutdown()

	_, release := r.Acquire("tok")

	closed := make(chan struct{})
	go func() {
		r.Close("tok")
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("close completed while a turn held the session")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close never completed after release")
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestEvictionNeverBreaksSerialization(t *testing.T) {
	r := NewRegistry(time.Minute, zap.NewNop())
	defer r.Shutdown()
	// Every released session is immediately eviction-eligible, maximizing
	// the chance of an eviction landing between a waiter's map read and its
	// lock on the entry.
	r.idleTTL = time.Nanosecond

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				r.ExpireStale(time.Now().Add(time.Hour))
				r.Close("tok")
			}
		}
	}()

	var active int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				_, release := r.Acquire("tok")
				if n := atomic.AddInt32(&active, 1); n != 1 {
					t.Errorf("%d turns active for one session", n)
				}
				atomic.AddInt32(&active, -1)
				release()
			}
		}()
	}
	wg.Wait()
	close(stop)
}

func TestConcurrentAcquireDistinctSessions(t *testing.T) {
	r, _ := testRegistry(10 * time.Minute)
	defer r.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, release := r.Acquire(string(rune('a' + n)))
			release()
		}(i)
	}
	wg.Wait()
	if r.Len() != 20 {
		t.Fatalf("expected 20 sessions, got %d", r.Len())
	}
}
