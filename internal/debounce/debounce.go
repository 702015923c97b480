// Package debounce schedules a single pending call after a quiet period.
// Each new value supersedes the pending one, so only the last value
// pushed before a pause is delivered.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delivers the most recent pushed value once no new value has
// arrived for the quiet period.
type Debouncer[T any] struct {
	mu    sync.Mutex
	quiet time.Duration
	fire  func(T)
	timer *time.Timer
	gen   uint64
}

// New returns a Debouncer calling fire on its own goroutine.
func New[T any](quiet time.Duration, fire func(T)) *Debouncer[T] {
	return &Debouncer[T]{quiet: quiet, fire: fire}
}

// Push (re)schedules delivery of v, cancelling any pass that has not fired yet.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		// a timer that already started can't be stopped; the generation check drops it
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.fire(v)
	})
}

// Cancel drops the pending pass, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
}

// Pending reports whether a pass is scheduled and has not fired.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
