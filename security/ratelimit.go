package security

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rate limiter defaults.
const (
	DefaultMaxEntries      = 10000
	DefaultCleanupInterval = 5 * time.Minute
	DefaultIdleTimeout     = 30 * time.Minute
)

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	// RequestsPerSecond is the sustained rate per identifier
	RequestsPerSecond int

	// Burst is the bucket size per identifier
	Burst int

	// MaxEntries bounds the number of tracked identifiers (default: 10000).
	// Negative means unlimited.
	MaxEntries int

	// CleanupInterval is how often idle buckets are swept (default: 5m)
	CleanupInterval time.Duration

	// IdleTimeout is how long a bucket may stay unused (default: 30m)
	IdleTimeout time.Duration
}

type bucket struct {
	identifier string
	limiter    *rate.Limiter
	lastSeen   time.Time
}

// RateLimiter is a per-identifier token bucket limiter with LRU eviction.
type RateLimiter struct {
	cfg    RateLimiterConfig
	logger *slog.Logger

	mu      sync.Mutex
	buckets map[string]*list.Element
	order   *list.List // front = most recently used

	evictions int64
	swept     int64

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
// Call Stop to release it.
func NewRateLimiter(cfg RateLimiterConfig, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerSecond
	}

	rl := &RateLimiter{
		cfg:     cfg,
		logger:  logger,
		buckets: make(map[string]*list.Element),
		order:   list.New(),
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether one more request from identifier is allowed now.
func (rl *RateLimiter) Allow(identifier string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elem, ok := rl.buckets[identifier]; ok {
		rl.order.MoveToFront(elem)
		b := elem.Value.(*bucket)
		b.lastSeen = now
		return b.limiter.AllowN(now, 1)
	}

	if rl.cfg.MaxEntries > 0 && len(rl.buckets) >= rl.cfg.MaxEntries {
		rl.evictOldest()
	}

	b := &bucket{
		identifier: identifier,
		limiter:    rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst),
		lastSeen:   now,
	}
	rl.buckets[identifier] = rl.order.PushFront(b)
	return b.limiter.AllowN(now, 1)
}

// evictOldest drops the least recently used bucket. Caller holds mu.
func (rl *RateLimiter) evictOldest() {
	elem := rl.order.Back()
	if elem == nil {
		return
	}
	b := rl.order.Remove(elem).(*bucket)
	delete(rl.buckets, b.identifier)
	rl.evictions++

	rl.logger.Debug("Rate limiter evicted bucket",
		"total_evictions", rl.evictions,
		"current_entries", len(rl.buckets))
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Sweep(rl.cfg.IdleTimeout)
		case <-rl.stop:
			return
		}
	}
}

// Sweep drops buckets unused for longer than idle. Returns the number dropped.
func (rl *RateLimiter) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	// oldest entries sit at the back
	for elem := rl.order.Back(); elem != nil; {
		b := elem.Value.(*bucket)
		if !b.lastSeen.Before(cutoff) {
			break
		}
		prev := elem.Prev()
		rl.order.Remove(elem)
		delete(rl.buckets, b.identifier)
		removed++
		elem = prev
	}

	if removed > 0 {
		rl.swept++
		rl.logger.Debug("Rate limiter sweep completed",
			"removed", removed,
			"remaining", len(rl.buckets))
	}
	return removed
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Stats is a snapshot of the limiter's bookkeeping.
type Stats struct {
	CurrentEntries int
	MaxEntries     int
	TotalEvictions int64
	TotalSweeps    int64
}

// GetStats returns the current statistics.
func (rl *RateLimiter) GetStats() Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return Stats{
		CurrentEntries: len(rl.buckets),
		MaxEntries:     rl.cfg.MaxEntries,
		TotalEvictions: rl.evictions,
		TotalSweeps:    rl.swept,
	}
}
