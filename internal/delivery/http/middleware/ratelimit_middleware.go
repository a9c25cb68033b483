package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"okapi-care-network/pkg/response"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	inFlight int
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Only failed attempts
// (status 400 and above) take a token; attempts still in flight hold one
// until they finish. Buckets idle for longer than the window are dropped.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	log       *logrus.Logger
	now       func() time.Time
}

// NewRateLimiter allows attempts failures per window with a burst of attempts.
func NewRateLimiter(attempts int, window time.Duration, log *logrus.Logger) *RateLimiter {
	if attempts < 1 {
		attempts = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(attempts)),
		burst:    attempts,
		window:   window,
		log:      log,
		now:      time.Now,
	}
}

func (l *RateLimiter) admit(key string) (*visitor, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.window {
		for k, v := range l.visitors {
			if v.inFlight == 0 && now.Sub(v.lastSeen) > l.window {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	if v.limiter.TokensAt(now)-float64(v.inFlight) < 1 {
		return nil, false
	}
	v.inFlight++
	return v, true
}

func (l *RateLimiter) settle(v *visitor, failed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v.inFlight--
	if failed {
		v.limiter.AllowN(l.now(), 1)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		v, ok := l.admit(ip)
		if !ok {
			l.log.WithFields(logrus.Fields{"ip": ip, "path": r.URL.Path}).Warn("Rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			response.TooManyRequests(w, "Too many login attempts, please try again later")
			return
		}

		sw := &statusWriter{ResponseWriter: w}
		defer func() { l.settle(v, sw.status >= http.StatusBadRequest) }()
		next.ServeHTTP(sw, r)
	})
}
