package timectrl

import (
	"fmt"
	"time"
)

// Schedule is a half-open simulation window [Offset, End) stepped by Step.
// Offsets are relative to the constellation epoch.
type Schedule struct {
	Offset time.Duration
	End    time.Duration
	Step   time.Duration
}

// Validate checks the schedule before any computation starts. Step must be
// positive and Offset must land on a step boundary, otherwise resumed runs
// would produce timesteps a full run never visits.
func (s Schedule) Validate() error {
	if s.Step <= 0 {
		return fmt.Errorf("step must be positive, got %s", s.Step)
	}
	if s.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %s", s.Offset)
	}
	if s.Offset%s.Step != 0 {
		return fmt.Errorf("offset %s is not a multiple of step %s", s.Offset, s.Step)
	}
	return nil
}

// Steps returns the number of timesteps in the window.
func (s Schedule) Steps() int {
	if s.End <= s.Offset || s.Step <= 0 {
		return 0
	}
	return int((s.End - s.Offset + s.Step - 1) / s.Step)
}

// At returns the offset of the i-th timestep.
func (s Schedule) At(i int) time.Duration {
	return s.Offset + time.Duration(i)*s.Step
}
