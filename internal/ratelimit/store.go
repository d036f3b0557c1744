// Package ratelimit implements the fixed-window submission limiter used by
// the contact intake endpoint. A client key (normally an IP) gets at most
// MaxAttempts admissions per Window, with a MinInterval cooldown between
// consecutive attempts. The limiter is keyed on caller-supplied identity and
// is therefore spoofable behind proxies; it is abuse friction, not a
// security boundary.
package ratelimit

import (
	"context"
	"time"
)

// User-facing rejection messages.
const (
	PleaseWaitMessage = "Please wait before submitting again."
	TooManyMessage    = "Too many submission attempts. Please try again later."
)

// Rejection reasons, used as metric labels.
const (
	ReasonInterval = "min_interval"
	ReasonCapped   = "hourly_cap"
)

// Defaults matching the production contact form.
const (
	DefaultWindow      = time.Hour
	DefaultMinInterval = 2 * time.Second
	DefaultMaxAttempts = 5
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	Reason  string // set when not allowed
	Message string // user-facing, set when not allowed
}

// Store decides whether a submission attempt from the given client key is
// admitted right now. Implementations mutate their window state as a side
// effect of the check, except on a min-interval rejection, which leaves the
// counter untouched.
type Store interface {
	Check(ctx context.Context, key string) (Decision, error)
}

// Config holds the shared window parameters for limiter stores.
type Config struct {
	Window      time.Duration
	MinInterval time.Duration
	MaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MinInterval <= 0 {
		c.MinInterval = DefaultMinInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// decide applies the admission ladder to a window record. It returns the
// decision plus the record state to persist; persist is false on a
// min-interval rejection so the counter is not mutated.
func decide(cfg Config, count int, lastAttempt, now time.Time) (d Decision, newCount int, persist bool) {
	if count == 0 {
		return Decision{Allowed: true}, 1, true
	}

	elapsed := now.Sub(lastAttempt)

	// A full window has passed: fresh window, counter resets.
	if elapsed > cfg.Window {
		return Decision{Allowed: true}, 1, true
	}

	if elapsed < cfg.MinInterval {
		return Decision{Reason: ReasonInterval, Message: PleaseWaitMessage}, count, false
	}

	if count >= cfg.MaxAttempts {
		return Decision{Reason: ReasonCapped, Message: TooManyMessage}, count, false
	}

	return Decision{Allowed: true}, count + 1, true
}
