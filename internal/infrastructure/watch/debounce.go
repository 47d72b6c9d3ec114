// Package watch reloads workspace configuration when its files change.
package watch

import (
	"sync"
	"time"
)

// coalescer delivers the newest change once no other change arrived for a
// full window. A save usually shows up as a create, a write and a rename.
type coalescer struct {
	window  time.Duration
	deliver func(ChangeEvent)

	mu      sync.Mutex
	pending ChangeEvent
	timer   *time.Timer
	stopped bool
}

func newCoalescer(window time.Duration, deliver func(ChangeEvent)) *coalescer {
	return &coalescer{window: window, deliver: deliver}
}

// Push records ev as the newest change and restarts the window.
func (c *coalescer) Push(ev ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.pending = ev
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, c.flush)
}

func (c *coalescer) flush() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	ev := c.pending
	c.mu.Unlock()
	c.deliver(ev)
}

// Stop drops a pending change; later pushes are ignored.
func (c *coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
	}
}
