package auth

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"onboard/internal/apperr"
	"onboard/internal/models"
	"onboard/internal/respond"
)

// JWTAuth is the identity guard: it extracts the bearer token, verifies it
// against the session secret and attaches the minimal identity to the request.
func JWTAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				respond.Error(w, r, apperr.Unauthorized("Missing bearer token"))
				return
			}
			claims, err := VerifyToken(secret, strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				respond.Error(w, r, apperr.Unauthorized("Invalid or expired token"))
				return
			}
			id := &Identity{UserID: claims.Subject, Email: claims.Email}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Capture builds the per-request context capsule. Must run after identity
// resolution so the resolved user (or nil, on public routes) is captured.
func Capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := &RequestContext{
			User:      IdentityFrom(r.Context()),
			Method:    r.Method,
			Path:      r.URL.Path,
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
			RequestID: uuid.NewString(),
			Timestamp: time.Now(),
		}
		next.ServeHTTP(w, r.WithContext(WithRequestContext(r.Context(), rc)))
	})
}

// Require is the permission guard. The user is re-fetched with role and
// permissions expanded on every check so live role changes take effect
// immediately; nothing is cached across the identity/permission boundary.
// All listed permissions must be granted.
func Require(db *gorm.DB, perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			id := IdentityFrom(r.Context())
			if id == nil || id.UserID == "" {
				respond.Error(w, r, apperr.Forbidden("Insufficient permissions"))
				return
			}
			var user models.User
			err := db.Preload("Role.Permissions").First(&user, "id = ?", id.UserID).Error
			if err != nil || user.Role == nil || len(user.Role.Permissions) == 0 {
				respond.Error(w, r, apperr.Forbidden("Insufficient permissions"))
				return
			}
			granted := make(map[string]struct{}, len(user.Role.Permissions))
			for _, p := range user.Role.Permissions {
				granted[p.Name] = struct{}{}
			}
			for _, p := range perms {
				if _, ok := granted[p]; !ok {
					respond.Error(w, r, apperr.Forbidden("Insufficient permissions"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter applies a per-client token bucket, keyed by IP. Stale buckets
// are reaped so the map does not grow unbounded.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter allows up to limit requests per window from a single client.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(limit) / window.Seconds()),
		burst:   limit,
	}
	go rl.reap()
	return rl
}

func (rl *RateLimiter) reap() {
	const ttl = 5 * time.Minute
	for range time.Tick(time.Minute) {
		now := time.Now()
		rl.mu.Lock()
		for k, b := range rl.buckets {
			if now.Sub(b.seen) > ttl {
				delete(rl.buckets, k)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.seen = time.Now()
	rl.mu.Unlock()
	return b.lim.Allow()
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		if !rl.allow(ip) {
			respond.Error(w, r, apperr.New(http.StatusTooManyRequests, "Too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware rewrites RemoteAddr from X-Forwarded-For.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
