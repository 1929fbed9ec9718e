// Package presence implements the agent registry and the admission controller
// that guards the shared away-from-work capacity pool.
package presence

import (
	"fmt"

	"github.com/fentz26/breakroom/internal/models"
)

// Capacity defines the away limits.
type Capacity struct {
	// MaxBreak is the maximum number of agents on break at once.
	MaxBreak int `yaml:"max_break" mapstructure:"max_break"`
	// MaxAdhoc is the maximum number of agents doing ad-hoc work at once.
	MaxAdhoc int `yaml:"max_adhoc" mapstructure:"max_adhoc"`
	// MaxOffline is the maximum number of agents offline at once.
	MaxOffline int `yaml:"max_offline" mapstructure:"max_offline"`
	// TotalLimit caps break + adhoc + offline combined.
	TotalLimit int `yaml:"total_limit" mapstructure:"total_limit"`
}

// DefaultCapacity returns the default away limits.
func DefaultCapacity() Capacity {
	return Capacity{
		MaxBreak:   3,
		MaxAdhoc:   3,
		MaxOffline: 3,
		TotalLimit: 5,
	}
}

// Limit returns the per-category maximum for an away state, or 0 for states
// that are not capacity limited.
func (c Capacity) Limit(state models.State) int {
	switch state {
	case models.StateBreak:
		return c.MaxBreak
	case models.StateAdhoc:
		return c.MaxAdhoc
	case models.StateOffline:
		return c.MaxOffline
	}
	return 0
}

// Validate checks that every limit is positive.
func (c Capacity) Validate() error {
	limits := []struct {
		name  string
		value int
	}{
		{"max_break", c.MaxBreak},
		{"max_adhoc", c.MaxAdhoc},
		{"max_offline", c.MaxOffline},
		{"total_limit", c.TotalLimit},
	}
	for _, l := range limits {
		if l.value < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", l.name, l.value)
		}
	}
	return nil
}
