package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/mkrupp/taskcase/internal/infra/logging"
)

// LimiterConfig contains configuration parameters for the rate limiter.
type LimiterConfig struct {
	// MaxRequests is the number of requests admitted per client within the window
	MaxRequests int `env:"MAX_REQUESTS" default:"100"`

	// WindowSeconds is the trailing window length in seconds
	WindowSeconds int64 `env:"WINDOW_SECONDS" default:"60"`

	// SweepIntervalSeconds is how often idle client buckets are dropped
	SweepIntervalSeconds int64 `env:"SWEEP_INTERVAL_SECONDS" default:"300"`
}

// Limiter admits requests per client identity using a fixed window by
// pruning: each client keeps an ordered log of admitted-request timestamps,
// trimmed to the trailing window before counting. Bursts up to the maximum
// are admitted instantly at window start.
//
// All buckets share one mutex. Concurrent Admit calls for the same client
// therefore serialize and can never double-admit past the limit.
type Limiter struct {
	cfg LimiterConfig
	log logging.Logger

	lock    sync.Mutex
	clients map[string][]time.Time
}

// NewLimiter creates a rate limiter with the given configuration.
func NewLimiter(cfg LimiterConfig) *Limiter {
	return &Limiter{
		cfg:     cfg,
		log:     logging.GetLogger("ratelimit.limiter"),
		clients: make(map[string][]time.Time),
	}
}

// Window returns the configured trailing window length.
func (l *Limiter) Window() time.Duration {
	return time.Duration(l.cfg.WindowSeconds * int64(time.Second))
}

// Admit decides whether a request from the given client at the given time
// may proceed. Timestamps older than the window are discarded first; if
// fewer than the maximum remain, now is appended and the request admitted.
// Rejected requests do not consume window capacity.
func (l *Limiter) Admit(clientID string, now time.Time) bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	stamps := l.prune(clientID, now)

	if len(stamps) >= l.cfg.MaxRequests {
		l.clients[clientID] = stamps

		return false
	}

	l.clients[clientID] = append(stamps, now)

	return true
}

// prune drops timestamps that have left the trailing window. Caller must
// hold the lock.
func (l *Limiter) prune(clientID string, now time.Time) []time.Time {
	stamps := l.clients[clientID]
	cutoff := now.Add(-l.Window())

	drop := 0
	for drop < len(stamps) && !stamps[drop].After(cutoff) {
		drop++
	}

	return stamps[drop:]
}

// Sweep drops client buckets whose newest timestamp has left the window.
// Without this the map grows with every distinct client identity for the
// process lifetime.
func (l *Limiter) Sweep(now time.Time) {
	l.lock.Lock()
	defer l.lock.Unlock()

	cutoff := now.Add(-l.Window())

	for clientID, stamps := range l.clients {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(l.clients, clientID)
		}
	}
}

// Run sweeps idle client buckets periodically until the context is
// cancelled. Intended to be started once alongside the HTTP server.
func (l *Limiter) Run(ctx context.Context) {
	interval := time.Duration(l.cfg.SweepIntervalSeconds * int64(time.Second))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Sweep(now)
			l.log.DebugContext(ctx, "swept idle clients", "clients", l.size())
		}
	}
}

func (l *Limiter) size() int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return len(l.clients)
}
