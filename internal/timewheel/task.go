package timewheel

import (
	"context"
	"time"
)

// TaskID identifies a ScheduledTask within a wheel.
type TaskID string

// Kind distinguishes a single-shot task from a recurring one.
type Kind int

const (
	Once Kind = iota
	Repeat
)

// Callable is the unit of work a ScheduledTask executes. It is safe to
// invoke more than once (retries simply call it again).
type Callable func(ctx context.Context) error

// ErrorHandleConfig governs retry behavior when a Callable fails.
type ErrorHandleConfig struct {
	MaxRetries    int
	RetryInterval time.Duration
	OnFailure     func(error)
}

// ScheduledTask is one entry tracked by a SimpleTimeWheel.
type ScheduledTask struct {
	ID           TaskID
	Kind         Kind
	Interval     time.Duration // Repeat only
	MaxExecution int           // Repeat only; 0 means unbounded
	Callable     Callable
	ErrorConfig  *ErrorHandleConfig

	ExecutionCount int
	LastExecutedAt time.Time
	ExpiresAt      time.Time
}

// execute invokes the task's Callable, retrying per ErrorConfig on
// failure. It returns whether the task should be rescheduled (true for a
// Repeat task under its execution budget) and the final error, if any.
func (t *ScheduledTask) execute(ctx context.Context) (reschedule bool, err error) {
	err = t.Callable(ctx)
	if err == nil {
		return t.onSuccess(), nil
	}

	cfg := t.ErrorConfig
	if cfg == nil {
		return false, err
	}

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(cfg.RetryInterval):
		}
		err = t.Callable(ctx)
		if err == nil {
			return t.onSuccess(), nil
		}
	}

	if cfg.OnFailure != nil {
		cfg.OnFailure(err)
	}
	return false, err
}

// onSuccess records a successful execution and reports whether a Repeat
// task should be rescheduled.
func (t *ScheduledTask) onSuccess() bool {
	t.ExecutionCount++
	t.LastExecutedAt = time.Now()
	if t.Kind != Repeat {
		return false
	}
	t.ExpiresAt = t.LastExecutedAt.Add(t.Interval)
	return t.MaxExecution <= 0 || t.ExecutionCount < t.MaxExecution
}
