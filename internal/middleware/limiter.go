package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/transport"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type rateTier struct {
	name  string
	limit rate.Limit
	burst int
}

var (
	// Gateway callbacks and explicit auth actions.
	tierStrict = rateTier{name: "strict", limit: rate.Limit(2), burst: 5}
	// Default for browsing, cart and checkout traffic.
	tierGeneral = rateTier{name: "general", limit: rate.Limit(10), burst: 20}
	// Single-page clients that fan out many requests per view.
	tierFrontend = rateTier{name: "frontend", limit: rate.Limit(20), burst: 40}
	// Trusted services presenting INTERNAL_SECRET_KEY.
	tierInternal = rateTier{name: "internal", limit: rate.Limit(100), burst: 200}
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorStore keeps one token bucket per identity and tier.
type visitorStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	once     sync.Once
}

var defaultStore = &visitorStore{visitors: make(map[string]*visitor)}

func (s *visitorStore) get(key string, tier rateTier) *rate.Limiter {
	s.once.Do(func() { go s.cleanupLoop() })

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(tier.limit, tier.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (s *visitorStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.evict(time.Now())
	}
}

// evict drops buckets idle for longer than visitorTTL.
func (s *visitorStore) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(s.visitors, key)
		}
	}
}

// RateLimitMiddleware throttles per caller identity: the authenticated user,
// else X-Device-ID, else client IP. Each identity gets a separate bucket per
// tier. Rejections carry Retry-After.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier := resolveRateTier(r)
		key := identity(r) + ":" + tier.name

		limiter := defaultStore.get(key, tier)
		if !limiter.Allow() {
			logger.FromCtx(r.Context()).Warn("rate limited",
				zap.String("tier", tier.name),
				zap.String("path", r.URL.Path),
			)
			retry := math.Ceil(1 / float64(tier.limit))
			w.Header().Set("Retry-After", strconv.Itoa(int(retry)))
			transport.WriteStatus(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests, slow down")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func identity(r *http.Request) string {
	if actor, ok := auth.ActorFrom(r.Context()); ok {
		return fmt.Sprintf("user:%d", actor.UserID)
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

func resolveRateTier(r *http.Request) rateTier {
	if key := os.Getenv("INTERNAL_SECRET_KEY"); key != "" && r.Header.Get("X-Service-Auth") == key {
		return tierInternal
	}
	if isPaymentCallback(r.URL.Path) || r.Header.Get("X-Action") == "auth" {
		return tierStrict
	}
	if r.Header.Get("X-Client-Type") == "frontend-heavy" {
		return tierFrontend
	}
	return tierGeneral
}

func isPaymentCallback(path string) bool {
	return strings.HasSuffix(path, "/payment/vnpay-callback") ||
		strings.HasSuffix(path, "/payment/stripe-webhook")
}
