package ratelimit_test

import (
	"sync"
	"testing"
	"time"

	"github.com/mkrupp/taskcase/internal/ratelimit"
)

func newTestLimiter(maxRequests int, windowSeconds int64) *ratelimit.Limiter {
	return ratelimit.NewLimiter(ratelimit.LimiterConfig{
		MaxRequests:          maxRequests,
		WindowSeconds:        windowSeconds,
		SweepIntervalSeconds: 300,
	})
}

func TestLimiter_AdmitsBurstUpToLimit(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(5, 60)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := range 5 {
		if !limiter.Admit("client", now) {
			t.Fatalf("Admit() rejected request %d of 5", i+1)
		}
	}

	if limiter.Admit("client", now) {
		t.Error("Admit() admitted request beyond the limit")
	}
}

func TestLimiter_RejectionDoesNotConsumeCapacity(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(3, 60)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for range 3 {
		limiter.Admit("client", start)
	}

	// Hammer the full window with rejected requests.
	for i := range 100 {
		if limiter.Admit("client", start.Add(time.Duration(i)*100*time.Millisecond)) {
			t.Fatal("Admit() admitted request while window was full")
		}
	}

	// Once the original three leave the window, capacity is back in full,
	// which would not hold if rejections had been recorded.
	after := start.Add(61 * time.Second)
	for i := range 3 {
		if !limiter.Admit("client", after) {
			t.Fatalf("Admit() rejected request %d after window expiry", i+1)
		}
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(2, 60)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !limiter.Admit("client", start) {
		t.Fatal("Admit() rejected first request")
	}

	if !limiter.Admit("client", start.Add(30*time.Second)) {
		t.Fatal("Admit() rejected second request")
	}

	if limiter.Admit("client", start.Add(59*time.Second)) {
		t.Error("Admit() admitted while both stamps were still in the window")
	}

	// The first stamp leaves the window, freeing one slot.
	if !limiter.Admit("client", start.Add(61*time.Second)) {
		t.Error("Admit() rejected although the oldest stamp had expired")
	}

	// The second stamp is still inside the window.
	if limiter.Admit("client", start.Add(62*time.Second)) {
		t.Error("Admit() admitted although the window was full again")
	}
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(1, 60)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !limiter.Admit("alice", now) {
		t.Fatal("Admit() rejected alice's first request")
	}

	if !limiter.Admit("bob", now) {
		t.Error("Admit() rejected bob although only alice was at her limit")
	}

	if limiter.Admit("alice", now) {
		t.Error("Admit() admitted alice beyond her limit")
	}
}

func TestLimiter_ConcurrentAdmitsNeverExceedLimit(t *testing.T) {
	t.Parallel()

	const (
		limit      = 50
		goroutines = 200
	)

	limiter := newTestLimiter(limit, 60)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var (
		admitted int
		m        sync.Mutex
		wg       sync.WaitGroup
	)

	for range goroutines {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if limiter.Admit("client", now) {
				m.Lock()
				admitted++
				m.Unlock()
			}
		}()
	}

	wg.Wait()

	if admitted != limit {
		t.Errorf("admitted %d requests, want exactly %d", admitted, limit)
	}
}

func TestLimiter_SweepDropsIdleClients(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(10, 60)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	limiter.Admit("idle", start)
	limiter.Admit("busy", start.Add(90*time.Second))

	limiter.Sweep(start.Add(2 * time.Minute))

	// The idle client's bucket is gone, so it gets a full window again.
	for i := range 10 {
		if !limiter.Admit("idle", start.Add(2*time.Minute)) {
			t.Fatalf("Admit() rejected request %d for swept client", i+1)
		}
	}

	// The busy client's most recent stamp was still inside the window at
	// sweep time, so its history survived.
	for range 9 {
		limiter.Admit("busy", start.Add(2*time.Minute))
	}

	if limiter.Admit("busy", start.Add(2*time.Minute)) {
		t.Error("Admit() forgot retained history for a busy client")
	}
}
