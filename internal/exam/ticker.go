package exam

import (
	"context"
	"sync"
	"time"
)

// Ticker runs at most one recurring countdown callback at a time. Every Arm
// cancels the previous countdown and bumps the generation; callbacks receive
// the generation they were armed with so late ticks can be recognised and
// dropped by the owner.
type Ticker struct {
	interval time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{interval: interval}
}

// Arm replaces any running countdown with fn and returns its generation.
func (t *Ticker) Arm(ctx context.Context, fn func(gen uint64)) uint64 {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	gen := t.gen
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()

	go func() {
		tk := time.NewTicker(t.interval)
		defer tk.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-tk.C:
				if runCtx.Err() != nil {
					return
				}
				fn(gen)
			}
		}
	}()
	return gen
}

// Stop cancels the running countdown; ticks already in flight see a stale
// generation.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
}

// Live reports whether gen is the currently armed countdown.
func (t *Ticker) Live(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil && gen == t.gen
}
