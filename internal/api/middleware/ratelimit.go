package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/guestlist/server/internal/config"
)

const (
	bucketSweepEvery = 5 * time.Minute
	bucketIdleTTL    = 15 * time.Minute
)

// Probes and scrapes bypass the limiter.
var unlimitedPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

// RateLimit applies a per-client token bucket to API traffic. A
// PerMinute of zero disables limiting. The client key is the connection
// IP; forwarding headers count only when the connection arrives from a
// trusted proxy CIDR, so callers cannot spoof their way into a fresh
// bucket.
func RateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.PerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	table := newBucketTable(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, exempt := unlimitedPaths[r.URL.Path]; exempt {
				next.ServeHTTP(w, r)
				return
			}

			if !table.take(table.clientKey(r)) {
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bucketTable holds one token bucket per client key. Idle buckets are
// swept so the table stays bounded no matter how many distinct clients
// show up.
type bucketTable struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	fill    rate.Limit
	burst   int
	trusted []*net.IPNet
	done    chan struct{}
}

type clientBucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

func newBucketTable(cfg config.RateLimitConfig) *bucketTable {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.PerMinute
	}
	t := &bucketTable{
		buckets: make(map[string]*clientBucket),
		fill:    rate.Every(time.Minute / time.Duration(cfg.PerMinute)),
		burst:   burst,
		trusted: parseCIDRs(cfg.TrustedProxyCIDRs),
		done:    make(chan struct{}),
	}
	go t.sweepLoop()
	return t
}

// take consumes one token from the key's bucket, creating the bucket
// on first sight.
func (t *bucketTable) take(key string) bool {
	t.mu.Lock()
	b, ok := t.buckets[key]
	if !ok {
		b = &clientBucket{tokens: rate.NewLimiter(t.fill, t.burst)}
		t.buckets[key] = b
	}
	b.lastSeen = time.Now()
	t.mu.Unlock()

	return b.tokens.Allow()
}

func (t *bucketTable) sweepLoop() {
	ticker := time.NewTicker(bucketSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.sweep()
		case <-t.done:
			return
		}
	}
}

func (t *bucketTable) sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-bucketIdleTTL)
	for key, b := range t.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(t.buckets, key)
		}
	}
}

// stop terminates the sweep goroutine.
func (t *bucketTable) stop() {
	close(t.done)
}

// clientKey resolves the caller identity used for bucketing.
// X-Forwarded-For and X-Real-IP are believed only when the immediate
// peer sits in a trusted CIDR.
func (t *bucketTable) clientKey(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}

	if !t.fromTrustedProxy(peer) {
		return peer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	return peer
}

func (t *bucketTable) fromTrustedProxy(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, cidr := range t.trusted {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// parseCIDRs drops entries that do not parse; a typo in the proxy list
// must not widen trust.
func parseCIDRs(specs []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, spec := range specs {
		if _, cidr, err := net.ParseCIDR(strings.TrimSpace(spec)); err == nil {
			nets = append(nets, cidr)
		}
	}
	return nets
}
