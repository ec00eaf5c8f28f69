package guard

import (
	"sync"
	"time"
)

// ResendDelay is how long the OTP resend action stays disabled.
const ResendDelay = 60 * time.Second

// Cooldown disables an action for a fixed period after it is triggered.
type Cooldown struct {
	period time.Duration
	now    Clock

	mu      sync.Mutex
	readyAt time.Time
}

// NewCooldown returns a Cooldown that starts enabled.
func NewCooldown(period time.Duration, clock Clock) *Cooldown {
	if clock == nil {
		clock = time.Now
	}
	return &Cooldown{period: period, now: clock}
}

// Start disables the action for the full period from now.
func (c *Cooldown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readyAt = c.now().Add(c.period)
}

// Ready reports whether the action is enabled.
func (c *Cooldown) Ready() bool {
	return c.Remaining() == 0
}

// Remaining is the time left until the action is enabled again.
func (c *Cooldown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	left := c.readyAt.Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}
