package admission

import (
	"context"
	"log"
	"math"
	"sync"
	"time"
)

// Config tunes the token-bucket limiter.
type Config struct {
	RatePerWindow float64       // tokens refilled per window
	BurstCapacity float64       // maximum bucket size
	Window        time.Duration // refill window
	BucketMaxIdle time.Duration // buckets untouched this long are purged
	PurgeInterval time.Duration // how often the purge sweep runs
}

// DefaultConfig returns the standard limiter settings: 60 requests per
// 60-second window with a burst of 10.
func DefaultConfig() Config {
	return Config{
		RatePerWindow: 60,
		BurstCapacity: 10,
		Window:        60 * time.Second,
		BucketMaxIdle: time.Hour,
		PurgeInterval: 5 * time.Minute,
	}
}

// Decision is the outcome of an admission check. Denial is an expected
// result, not an error.
type Decision struct {
	Allowed    bool
	RetryAfter int // seconds until a token is available; set when denied
	Limit      int
	Remaining  int
	ResetAt    time.Time
}

// Stats reports limiter state for the status endpoint.
type Stats struct {
	ActiveBuckets int `json:"active_buckets"`
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// Limiter is a per-client token-bucket admission controller. Buckets are
// created lazily and purged after BucketMaxIdle of inactivity.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	cfg     Config
	now     func() time.Time
}

// New builds a Limiter, filling in defaults for any zero config fields.
func New(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RatePerWindow <= 0 {
		cfg.RatePerWindow = def.RatePerWindow
	}
	if cfg.BurstCapacity <= 0 {
		cfg.BurstCapacity = def.BurstCapacity
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.BucketMaxIdle <= 0 {
		cfg.BucketMaxIdle = def.BucketMaxIdle
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = def.PurgeInterval
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		cfg:     cfg,
		now:     time.Now,
	}
}

// CheckAndConsume refills the client's bucket for elapsed time and consumes
// one token. A missing or empty clientID falls back to a shared "unknown"
// bucket rather than failing.
func (l *Limiter) CheckAndConsume(clientID string) Decision {
	if clientID == "" {
		clientID = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{tokens: l.cfg.BurstCapacity, lastRefill: now}
		l.buckets[clientID] = b
	}

	// Continuous refill. Negative elapsed time (clock skew) never refills;
	// lastRefill only ever moves forward.
	elapsed := now.Sub(b.lastRefill)
	if elapsed > 0 {
		added := elapsed.Seconds() / l.cfg.Window.Seconds() * l.cfg.RatePerWindow
		b.tokens = math.Min(l.cfg.BurstCapacity, b.tokens+added)
		b.lastRefill = now
	}
	b.lastSeen = now

	windowSeconds := l.cfg.Window.Seconds()
	if b.tokens < 1 {
		retry := int(math.Ceil((1 - b.tokens) / l.cfg.RatePerWindow * windowSeconds))
		if retry < 1 {
			retry = 1
		}
		return Decision{
			Allowed:    false,
			RetryAfter: retry,
			Limit:      int(l.cfg.BurstCapacity),
			Remaining:  0,
			ResetAt:    now.Add(time.Duration(retry) * time.Second),
		}
	}

	b.tokens--
	return Decision{
		Allowed:   true,
		Limit:     int(l.cfg.BurstCapacity),
		Remaining: int(b.tokens),
		ResetAt:   b.lastRefill.Add(l.cfg.Window),
	}
}

// Stats returns a snapshot of limiter state.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{ActiveBuckets: len(l.buckets)}
}

// Run periodically purges idle buckets until the context is cancelled.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := l.purge(); removed > 0 {
				log.Printf("[admission] purged %d idle buckets", removed)
			}
		}
	}
}

func (l *Limiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.cfg.BucketMaxIdle {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}
