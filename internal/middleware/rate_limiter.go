package middleware

import (
	"context"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/router"
	"github.com/questbycycle/backend/pkg/xcontext"
	"golang.org/x/time/rate"
)

const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter keeps a token bucket per user, or per remote ip for anonymous
// requests.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	visitors *xsync.MapOf[string, *visitor]

	trustForwardedFor bool
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		visitors: xsync.NewMapOf[*visitor](),
	}
}

// TrustForwardedFor keys anonymous visitors on the client address reported by
// the reverse proxy. Only enable it when the server is not reachable directly.
func (l *RateLimiter) TrustForwardedFor(trust bool) *RateLimiter {
	l.trustForwardedFor = trust
	return l
}

func (l *RateLimiter) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if !l.allow(l.visitorKey(ctx), time.Now()) {
			return nil, errorx.New(errorx.TooManyRequests, "Too many requests")
		}

		return nil, nil
	}
}

func (l *RateLimiter) allow(key string, now time.Time) bool {
	// LoadOrCompute of xsync v1 returns a different value than the stored one.
	v, ok := l.visitors.Load(key)
	if !ok {
		v, _ = l.visitors.LoadOrStore(key, &visitor{limiter: rate.NewLimiter(l.limit, l.burst)})
	}
	v.lastSeen.Store(now.Unix())

	return v.limiter.AllowN(now, 1)
}

// Cleanup removes the visitors which were idle for a while. It blocks until
// ctx is done.
func (l *RateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.removeIdle(now)
		}
	}
}

func (l *RateLimiter) removeIdle(now time.Time) {
	l.visitors.Range(func(key string, v *visitor) bool {
		if now.Sub(time.Unix(v.lastSeen.Load(), 0)) > visitorTTL {
			l.visitors.Delete(key)
		}
		return true
	})
}

func (l *RateLimiter) visitorKey(ctx context.Context) string {
	if userID := xcontext.RequestUserID(ctx); userID != "" {
		return "user:" + userID
	}

	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return "ip:"
	}

	if l.trustForwardedFor {
		// The first hop is the client, the rest are proxies.
		client, _, _ := strings.Cut(req.Header.Get("X-Forwarded-For"), ",")
		if client = strings.TrimSpace(client); client != "" {
			return "ip:" + client
		}
	}

	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return "ip:" + req.RemoteAddr
	}

	return "ip:" + ip
}
