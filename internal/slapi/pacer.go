package slapi

import (
	"sync"
	"time"
)

// Pacer inserts a fixed pause between successive API calls so per-item
// detail loops don't overwhelm the endpoint. Rate limiting is cooperative:
// a fixed sleep, not an adaptive limiter.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewPacer returns a pacer enforcing at least interval between calls. A
// non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until at least the configured interval has passed since the
// previous call.
func (p *Pacer) Wait() {
	if p == nil || p.interval <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		if remaining := p.interval - time.Since(p.last); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	p.last = time.Now()
}
