// Package ratelimit provides per-key sliding-window admission control.
package ratelimit

import (
	"fmt"
	"time"
)

type (
	// Limiter caps how many times a key may act within a sliding window.
	// Rejected attempts are not recorded, so a burst of rejections does not
	// extend the lockout.
	Limiter struct {
		hits map[string][]time.Time
		Config
	}

	// Config contains the properties of a Limiter.
	Config struct {
		// Limit is the maximum number of allowed actions per window.
		Limit int
		// Window is the sliding interval the limit applies over.
		Window time.Duration
		// TimeFunc supplies the current time.
		TimeFunc func() time.Time
	}
)

// NewLimiter creates a sliding-window limiter.
func (cfg Config) NewLimiter() (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating limiter: validation: %w", err)
	}
	l := Limiter{
		hits:   make(map[string][]time.Time),
		Config: cfg,
	}
	return &l, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.Limit <= 0:
		return fmt.Errorf("positive limit required")
	case cfg.Window <= 0:
		return fmt.Errorf("positive window required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	}
	return nil
}

// Allow records and admits the action for the key if fewer than Limit actions
// happened within the window, pruning expired entries as it goes.
func (l *Limiter) Allow(key string) bool {
	now := l.TimeFunc()
	cutoff := now.Add(-l.Window)
	recent := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.Limit {
		l.hits[key] = recent
		return false
	}
	l.hits[key] = append(recent, now)
	return true
}

// Forget drops all state for the key, typically when its player leaves.
func (l *Limiter) Forget(key string) {
	delete(l.hits, key)
}
