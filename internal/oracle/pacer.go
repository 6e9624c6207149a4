package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/teamsmell/internal/contract"
)

// DefaultToxicityBudget is the per-minute quota of 60 calls minus a buffer of 5.
const DefaultToxicityBudget = 55

// Paced spends a per-minute call budget of a ToxicityOracle. It waits for the
// next minute boundary at the start of every scoring run and after every
// exhausted budget.
type Paced struct {
	inner  contract.ToxicityOracle
	budget int
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
	onWait func(time.Duration)

	mu      sync.Mutex
	started bool
	used    int
}

var (
	_ contract.ToxicityOracle = &Paced{} // Compile-time check
	_ contract.RunPacer       = &Paced{}
)

// PacedOption customizes a Paced oracle.
type PacedOption func(*Paced)

// WithClock replaces the wall clock and the sleeper.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) PacedOption {
	return func(p *Paced) {
		p.now = now
		p.sleep = sleep
	}
}

// WithWaitHook is called with every wait the pacer performs.
func WithWaitHook(fn func(time.Duration)) PacedOption {
	return func(p *Paced) { p.onWait = fn }
}

// NewPaced wraps inner with a budget per minute; budget <= 0 selects the default.
func NewPaced(inner contract.ToxicityOracle, budget int, opts ...PacedOption) *Paced {
	if budget <= 0 {
		budget = DefaultToxicityBudget
	}
	p := &Paced{inner: inner, budget: budget, now: time.Now, sleep: sleepContext}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Begin starts a scoring run: it waits for the next minute boundary and
// resets the budget.
func (p *Paced) Begin(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.waitNextMinute(ctx); err != nil {
		return err
	}
	p.started = true
	p.used = 0
	return nil
}

// Toxicity implements the ToxicityOracle interface. Calls outside a run
// started with Begin wait for the boundary once.
func (p *Paced) Toxicity(ctx context.Context, text string) (float64, error) {
	p.mu.Lock()
	if !p.started || p.used >= p.budget {
		if err := p.waitNextMinute(ctx); err != nil {
			p.mu.Unlock()
			return 0, err
		}
		p.started = true
		p.used = 0
	}
	p.used++
	p.mu.Unlock()
	return p.inner.Toxicity(ctx, text)
}

func (p *Paced) waitNextMinute(ctx context.Context) error {
	now := p.now()
	d := now.Truncate(time.Minute).Add(time.Minute).Sub(now)
	if p.onWait != nil {
		p.onWait(d)
	}
	return p.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
