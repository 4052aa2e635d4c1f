package workspace

import (
	"sync"
	"time"
)

// Debouncer runs fn once a burst of calls has been quiet for the delay given
// to the last call. Only the last argument of a burst is delivered.
type Debouncer struct {
	fn func(string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	stopped bool
}

// NewDebouncer returns a debouncer that delivers to fn.
func NewDebouncer(fn func(arg string)) *Debouncer {
	return &Debouncer{fn: fn}
}

// Call schedules fn(arg) after delay. A delay of zero or less calls fn
// synchronously and cancels anything pending.
func (d *Debouncer) Call(delay time.Duration, arg string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if delay <= 0 {
		if d.timer != nil {
			d.timer.Stop()
		}
		d.mu.Unlock()
		d.fn(arg)
		return
	}
	d.pending = arg
	if d.timer == nil {
		d.timer = time.AfterFunc(delay, d.fire)
	} else {
		d.timer.Reset(delay)
	}
	d.mu.Unlock()
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	arg := d.pending
	d.mu.Unlock()
	d.fn(arg)
}

// Stop cancels any pending call. Later calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
