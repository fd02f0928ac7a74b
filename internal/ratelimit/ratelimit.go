package ratelimit

import (
	"sync"
	"time"
)

// Limiter - sliding window на ключ (в боте это telegram user id).
type Limiter struct {
	mu       sync.Mutex
	requests map[int64][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type Config struct {
	RequestsPerMinute int
	// Window по умолчанию минута
	Window time.Duration
}

func New(cfg Config) *Limiter {
	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 10
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	l := &Limiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *Limiter) Allow(key int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	fresh := l.prune(key, now)

	if len(fresh) >= l.limit {
		return false
	}

	l.requests[key] = append(fresh, now)
	return true
}

func (l *Limiter) RemainingRequests(key int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rem := l.limit - len(l.prune(key, l.now())); rem > 0 {
		return rem
	}
	return 0
}

// RetryAfter - через сколько освободится слот. 0 если можно сейчас.
func (l *Limiter) RetryAfter(key int64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	fresh := l.prune(key, now)
	if len(fresh) < l.limit {
		return 0
	}

	oldest := fresh[0]
	for _, t := range fresh[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	if wait := oldest.Add(l.window).Sub(now); wait > 0 {
		return wait
	}
	return 0
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// prune оставляет только запросы внутри окна. Вызывать под mu.
func (l *Limiter) prune(key int64, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	old := l.requests[key]
	fresh := old[:0]
	for _, t := range old {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) == 0 {
		delete(l.requests, key)
		return nil
	}
	l.requests[key] = fresh
	return fresh
}

func (l *Limiter) cleanup() {
	tick := time.NewTicker(5 * time.Minute)
	defer tick.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-tick.C:
			l.mu.Lock()
			now := l.now()
			for key := range l.requests {
				l.prune(key, now)
			}
			l.mu.Unlock()
		}
	}
}
