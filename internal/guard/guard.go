// Package guard provides the timers that throttle authentication attempts:
// a sliding-window failure guard and a fixed resend cooldown.
package guard

import (
	"math"
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Guard blocks a key after MaxFailures failed attempts within Window.
// The block lasts until the oldest counted failure leaves the window.
type Guard struct {
	MaxFailures int
	Window      time.Duration

	now      Clock
	mu       sync.Mutex
	failures map[string][]time.Time
}

// New returns a Guard. A nil clock means time.Now.
func New(maxFailures int, window time.Duration, clock Clock) *Guard {
	if clock == nil {
		clock = time.Now
	}
	return &Guard{
		MaxFailures: maxFailures,
		Window:      window,
		now:         clock,
		failures:    make(map[string][]time.Time),
	}
}

// NewLoginGuard returns the sign-in guard: 3 failures within 30 seconds.
func NewLoginGuard(clock Clock) *Guard {
	return New(3, 30*time.Second, clock)
}

// Allow reports whether key may attempt now and, if not, how long it must wait.
func (g *Guard) Allow(key string) (bool, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	recent := g.prune(key)
	if len(recent) < g.MaxFailures {
		return true, 0
	}
	wait := recent[0].Add(g.Window).Sub(g.now())
	return false, wait
}

// Begin reserves an attempt for key and reports whether it may proceed.
// The attempt counts as a failure until Reset is called, so concurrent
// callers cannot get more than MaxFailures attempts into one window.
func (g *Guard) Begin(key string) (bool, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	recent := g.prune(key)
	if len(recent) >= g.MaxFailures {
		return false, recent[0].Add(g.Window).Sub(g.now())
	}
	g.failures[key] = append(recent, g.now())
	return true, 0
}

// Fail records a failed attempt for key.
func (g *Guard) Fail(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[key] = append(g.prune(key), g.now())
}

// Reset forgets the failures of key, typically after a success.
func (g *Guard) Reset(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failures, key)
}

func (g *Guard) prune(key string) []time.Time {
	cutoff := g.now().Add(-g.Window)
	kept := g.failures[key][:0]
	for _, t := range g.failures[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(g.failures, key)
		return nil
	}
	g.failures[key] = kept
	return kept
}

// Seconds rounds a wait up to whole seconds for countdown messages.
func Seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
