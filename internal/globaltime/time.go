// Package globaltime is the process clock. Every time comparison in the
// pipeline goes through here so tests can pin "now" and keep gate and
// dedup decisions deterministic.
package globaltime

import (
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	nowFunc = time.Now
)

func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

func UTC() time.Time {
	return Now().UTC()
}

// DateIn returns the current calendar date (YYYY-MM-DD) in loc.
func DateIn(loc *time.Location) string {
	return Now().In(loc).Format("2006-01-02")
}

func SetMockTime(t time.Time) {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = func() time.Time { return t }
}

func ResetTime() {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = time.Now
}
