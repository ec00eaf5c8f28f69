package guard

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
}

func TestGuard_BlocksAfterThreeFailures(t *testing.T) {
	clk := newFakeClock()
	g := NewLoginGuard(clk.now)

	for i := 0; i < 2; i++ {
		ok, _ := g.Allow("p")
		assert.True(t, ok)
		g.Fail("p")
		clk.advance(time.Second)
	}
	ok, _ := g.Allow("p")
	assert.True(t, ok)
	g.Fail("p")

	ok, wait := g.Allow("p")
	assert.False(t, ok)
	assert.Equal(t, 28*time.Second, wait)
	assert.Equal(t, 28, Seconds(wait))

	ok, _ = g.Allow("other")
	assert.True(t, ok, "keys are independent")
}

func TestGuard_WindowExpires(t *testing.T) {
	clk := newFakeClock()
	g := NewLoginGuard(clk.now)
	for i := 0; i < 3; i++ {
		g.Fail("p")
	}
	ok, _ := g.Allow("p")
	assert.False(t, ok)

	clk.advance(30 * time.Second)
	ok, wait := g.Allow("p")
	assert.True(t, ok)
	assert.Zero(t, wait)
}

func TestGuard_Reset(t *testing.T) {
	clk := newFakeClock()
	g := NewLoginGuard(clk.now)
	for i := 0; i < 3; i++ {
		g.Fail("p")
	}
	g.Reset("p")
	ok, _ := g.Allow("p")
	assert.True(t, ok)
}

func TestGuard_BeginReservesAttempts(t *testing.T) {
	clk := newFakeClock()
	g := NewLoginGuard(clk.now)

	for i := 0; i < 3; i++ {
		ok, _ := g.Begin("p")
		assert.True(t, ok)
	}
	ok, wait := g.Begin("p")
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, wait)

	g.Reset("p")
	ok, _ = g.Begin("p")
	assert.True(t, ok, "success clears reserved attempts")
}

func TestGuard_BeginConcurrent(t *testing.T) {
	g := NewLoginGuard(newFakeClock().now)

	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := g.Begin("p"); ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 3, admitted.Load())
}

func TestCooldown_ResendEnabledAfterExactlySixtySeconds(t *testing.T) {
	clk := newFakeClock()
	c := NewCooldown(ResendDelay, clk.now)
	assert.True(t, c.Ready(), "enabled before first send")

	c.Start()
	assert.False(t, c.Ready())
	assert.Equal(t, 60*time.Second, c.Remaining())

	clk.advance(59*time.Second + 999*time.Millisecond)
	assert.False(t, c.Ready())
	assert.Equal(t, 1, Seconds(c.Remaining()))

	clk.advance(time.Millisecond)
	assert.True(t, c.Ready())
	assert.Zero(t, c.Remaining())
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 0, Seconds(-time.Second))
	assert.Equal(t, 1, Seconds(100*time.Millisecond))
	assert.Equal(t, 30, Seconds(30*time.Second))
}
