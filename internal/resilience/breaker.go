// Package resilience keeps the embedding pipeline alive when backends fail.
//
// [Breaker] is a consecutive-failure latch: after Threshold failures in a row
// it trips and refuses further calls. With a Cooldown it lets a single probe
// through once the cooldown elapses; without one it stays tripped until
// [Breaker.ReArm], which is the behaviour the matching engine wants for its
// semantic-scoring latch. [FallbackGroup] chains several backends behind
// per-backend breakers so a dead primary is skipped instead of retried.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrTripped is returned by [Breaker.Do] when the breaker refuses the call.
var ErrTripped = errors.New("resilience: breaker tripped")

// BreakerConfig tunes a [Breaker]. The zero value is usable.
type BreakerConfig struct {
	// Name labels the breaker in log output.
	Name string

	// Threshold is how many consecutive failures trip the breaker.
	// Default: 3.
	Threshold int

	// Cooldown is how long a tripped breaker refuses calls before allowing
	// one probe through. A successful probe re-arms the breaker, a failed
	// one re-trips it. Zero means no probes: the breaker stays tripped
	// until [Breaker.ReArm].
	Cooldown time.Duration

	// OnTrip, when set, runs on every transition into the tripped state,
	// receiving the failure that caused it. It runs with the breaker's lock
	// held and must not call back into the breaker.
	OnTrip func(err error)
}

// Breaker counts consecutive failures and latches once the count reaches
// its threshold.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	onTrip    func(error)

	mu        sync.Mutex
	fails     int
	tripped   bool
	trippedAt time.Time
	probing   bool
}

// NewBreaker creates a [Breaker] from cfg, filling in defaults.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 3
	}
	return &Breaker{
		name:      cfg.Name,
		threshold: cfg.Threshold,
		cooldown:  cfg.Cooldown,
		onTrip:    cfg.OnTrip,
	}
}

// Do runs fn unless the breaker is tripped, in which case it returns
// [ErrTripped] without calling fn. A tripped breaker with a cooldown admits
// one probe call per elapsed cooldown; at most one probe is in flight at a
// time.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	probe := false
	if b.tripped {
		if b.cooldown <= 0 || b.probing || time.Since(b.trippedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrTripped
		}
		probe = true
		b.probing = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if probe {
		b.probing = false
	}

	if err == nil {
		if b.tripped {
			b.tripped = false
			slog.Info("breaker re-armed after successful probe", "name", b.name)
		}
		b.fails = 0
		return nil
	}

	if probe {
		// The probe failed. Re-trip and restart the cooldown clock.
		b.trip(err)
		return err
	}
	b.fails++
	if b.fails >= b.threshold && !b.tripped {
		b.trip(err)
	}
	return err
}

// trip latches the breaker. Must be called with b.mu held.
func (b *Breaker) trip(err error) {
	b.tripped = true
	b.trippedAt = time.Now()
	slog.Warn("breaker tripped",
		"name", b.name,
		"consecutive_failures", b.fails,
		"error", err)
	if b.onTrip != nil {
		b.onTrip(err)
	}
}

// Tripped reports whether the breaker is currently refusing calls. A breaker
// in its cooldown window still reports tripped; the probe admission happens
// inside [Breaker.Do].
func (b *Breaker) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped
}

// ReArm clears the latch and the failure count, regardless of cooldown.
func (b *Breaker) ReArm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tripped {
		slog.Info("breaker re-armed", "name", b.name)
	}
	b.tripped = false
	b.probing = false
	b.fails = 0
}
