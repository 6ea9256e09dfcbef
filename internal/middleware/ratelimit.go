package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type window struct {
	count int
	until time.Time
}

// RateLimit admits at most limit requests per client within each period and
// answers the rest with 429. It keys on RemoteAddr, so mount it after
// chi's RealIP. A non-positive limit disables it.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	var mu sync.Mutex
	windows := make(map[string]*window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			t := time.Now()

			mu.Lock()
			win, ok := windows[key]
			if !ok || t.After(win.until) {
				// expired windows are dropped whenever a new one opens
				for k, old := range windows {
					if t.After(old.until) {
						delete(windows, k)
					}
				}
				win = &window{until: t.Add(per)}
				windows[key] = win
			}
			if win.count >= limit {
				retry := win.until.Sub(t)
				mu.Unlock()
				w.Header().Set("Retry-After", retryAfterSeconds(retry))
				http.Error(w, "Too many requests, please retry later", http.StatusTooManyRequests)
				return
			}
			win.count++
			mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
