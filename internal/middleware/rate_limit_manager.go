package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorIdleTimeout = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitManager keeps one token bucket per client IP and drops idle ones.
type RateLimitManager struct {
	requests int
	window   time.Duration
	burst    int

	mu       sync.Mutex
	visitors map[string]*visitor

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRateLimitManager allows requests per window for each client, with the
// given burst. A non-positive request count disables limiting.
func NewRateLimitManager(ctx context.Context, requests int, window time.Duration, burst int) *RateLimitManager {
	managerCtx, cancel := context.WithCancel(ctx)
	if window <= 0 {
		window = time.Minute
	}
	if burst < 1 {
		burst = requests
	}

	m := &RateLimitManager{
		requests: requests,
		window:   window,
		burst:    burst,
		visitors: make(map[string]*visitor),
		cancel:   cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop(managerCtx)

	return m
}

// Limiter returns the bucket of ip, or nil when limiting is disabled.
func (m *RateLimitManager) Limiter(ip string) *rate.Limiter {
	if m == nil || m.requests <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v, exists := m.visitors[ip]
	if !exists {
		limit := rate.Limit(float64(m.requests) / m.window.Seconds())
		v = &visitor{limiter: rate.NewLimiter(limit, m.burst)}
		m.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (m *RateLimitManager) cleanupLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(time.Now())
		}
	}
}

func (m *RateLimitManager) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ip, v := range m.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTimeout {
			delete(m.visitors, ip)
		}
	}
}

// Shutdown stops the cleanup goroutine and waits for it to finish.
func (m *RateLimitManager) Shutdown() {
	if m == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
}
