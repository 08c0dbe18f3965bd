package search

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period applied to keystroke-driven searches.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer defers work until a quiet period has elapsed. It holds a single
// timer slot: scheduling new work cancels the unfired predecessor, so only
// the most recent request in a burst executes.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Schedule runs fn after the quiet period, replacing any pending call.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
