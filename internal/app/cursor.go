package app

import (
	"fmt"
	"time"

	"play_reviews/internal/domain"
)

// CursorTracker holds the incremental watermark. The boundary is fixed for a
// run; the running max moves forward with every emitted record.
type CursorTracker struct {
	boundary time.Time
	max      time.Time
}

// NewCursorTracker starts both values at start (usually start_date 00:00:00).
func NewCursorTracker(start time.Time) *CursorTracker {
	return &CursorTracker{boundary: start, max: start}
}

// NewCursorTrackerFromDate parses a YYYY-MM-DD start date.
func NewCursorTrackerFromDate(date string) (*CursorTracker, error) {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("start_date %q: %w", date, err)
	}
	return NewCursorTracker(t), nil
}

// Restore overrides both values with a persisted state. A state without "at" is ignored.
func (c *CursorTracker) Restore(s domain.State) error {
	if s.At == "" {
		return nil
	}
	t, err := time.Parse(domain.TimeLayout, s.At)
	if err != nil {
		return fmt.Errorf("%w: at=%q: %v", domain.ErrInvalidState, s.At, err)
	}
	c.boundary, c.max = t, t
	return nil
}

func (c *CursorTracker) Boundary() time.Time { return c.boundary }

func (c *CursorTracker) Max() time.Time { return c.max }

// Keep reports whether a record timestamp passes the run-start boundary.
// Records without a timestamp are always kept.
func (c *CursorTracker) Keep(at *string) bool { return keepAfter(at, c.boundary) }

// Observe folds an emitted record into the running max.
func (c *CursorTracker) Observe(r domain.Review) {
	if r.At == nil {
		return
	}
	t, err := time.Parse(domain.TimeLayout, *r.At)
	if err != nil {
		return
	}
	if t.After(c.max) {
		c.max = t
	}
}

// State is the value persisted for the next run.
func (c *CursorTracker) State() domain.State {
	return domain.State{At: c.max.Format(domain.TimeLayout)}
}
