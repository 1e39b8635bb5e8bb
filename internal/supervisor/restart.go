package supervisor

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// fastFailureWindow and maxFastFailures bound the repeated-fast-failure
// terminal condition: if the child dies this many times inside this
// window, restarting is abandoned.
const (
	fastFailureWindow = 30 * time.Second
	maxFastFailures   = 5
)

// ErrTooManyFastFailures is returned by RestartPolicy.RecordExit when
// the child has crashed too many times in too short a window.
var ErrTooManyFastFailures = fmt.Errorf("supervisor: %d failures within %s, giving up", maxFastFailures, fastFailureWindow)

// RestartPolicy tracks consecutive failure timestamps and produces the
// capped-exponential backoff delay the Backoff state sleeps for.
type RestartPolicy struct {
	backoff  *backoff.ExponentialBackOff
	failures []time.Time
	now      func() time.Time
}

// NewRestartPolicy returns a policy with the default capped-exponential
// schedule (0.5s initial, x1.5 multiplier, 30s cap, no overall
// deadline -- the manager itself decides when to stop retrying via the
// fast-failure window).
func NewRestartPolicy() *RestartPolicy {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.Multiplier = 1.5
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return &RestartPolicy{backoff: b, now: time.Now}
}

// RecordExit registers a child exit and returns the delay to sleep
// before the next spawn attempt, or ErrTooManyFastFailures if the
// manager should give up entirely.
func (p *RestartPolicy) RecordExit() (time.Duration, error) {
	now := p.now()
	p.failures = append(p.failures, now)
	cutoff := now.Add(-fastFailureWindow)
	kept := p.failures[:0]
	for _, t := range p.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	p.failures = kept
	if len(p.failures) >= maxFastFailures {
		return 0, ErrTooManyFastFailures
	}
	return p.backoff.NextBackOff(), nil
}

// Reset clears the accumulated backoff and failure history, called
// after a clean (exit code 0) termination.
func (p *RestartPolicy) Reset() {
	p.backoff.Reset()
	p.failures = nil
}
