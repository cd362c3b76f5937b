package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leafcart/nursery-backend/api/responses"
	"github.com/leafcart/nursery-backend/internal/ratelimit"
	pkgerrors "github.com/leafcart/nursery-backend/pkg/errors"
	"github.com/leafcart/nursery-backend/pkg/logger"
)

type limiter interface {
	Check(ctx context.Context, key string, policy ratelimit.Policy) (ratelimit.Result, error)
}

type rejectionCounter interface {
	IncRejected(policy string)
}

// KeyFunc names the bucket a request is counted against. An empty key
// falls back to the peer address.
type KeyFunc func(r *http.Request) string

// UserKey counts authenticated requests per user id.
func UserKey(r *http.Request) string {
	if id, ok := UserUUID(r.Context()); ok {
		return "user:" + id.String()
	}
	return ""
}

// PeerKey counts requests per client address. X-Forwarded-For is only read
// when the direct peer is one of the trusted proxies, and then the nearest
// hop that is not itself a trusted proxy wins.
func PeerKey(trusted []*net.IPNet) KeyFunc {
	return func(r *http.Request) string {
		return "ip:" + peerClientIP(r, trusted)
	}
}

// RateLimit admits at most policy.MaxRequests per window for each key.
// Store failures fail open so a Redis outage cannot take checkout down.
func RateLimit(l limiter, policy ratelimit.Policy, key KeyFunc, metrics rejectionCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	if key == nil {
		key = PeerKey(nil)
	}
	return func(next http.Handler) http.Handler {
		if l == nil || policy.MaxRequests <= 0 || policy.Window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			bucket := key(r)
			if bucket == "" {
				bucket = "ip:" + peerClientIP(r, nil)
			}
			res, err := l.Check(ctx, bucket, policy)
			if err != nil {
				if logg != nil {
					logg.Error(logg.WithField(ctx, "policy", policy.Name), "rate_limit.store_failed", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				retryAfter := res.RetryAfter(time.Now())
				if metrics != nil {
					metrics.IncRejected(policy.Name)
				}
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"policy":         policy.Name,
						"key":            bucket,
						"limit":          policy.MaxRequests,
						"window_seconds": int(policy.Window.Seconds()),
					})
					logg.Warn(logCtx, "rate_limit.blocked")
				}
				seconds := int(retryAfter / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, try again later").
					WithDetails(map[string]any{"retry_after_seconds": seconds}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP, or the peer
// address. The headers are client controlled, so the result is for logs and
// audit rows only; rate limiting keys through PeerKey or UserKey.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func peerClientIP(r *http.Request, trusted []*net.IPNet) string {
	peer := remoteHost(r.RemoteAddr)
	if !isTrusted(peer, trusted) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if net.ParseIP(hop) == nil {
			break
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
	}
	return peer
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}

func isTrusted(addr string, trusted []*net.IPNet) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
