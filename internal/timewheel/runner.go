package timewheel

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Runner ticks a SimpleTimeWheel on a background goroutine, draining and
// executing ready tasks concurrently, and rescheduling Repeat tasks that
// report they should continue.
type Runner struct {
	wheel *SimpleTimeWheel
	mu    sync.Mutex
	token *CancellationToken
	wg    sync.WaitGroup
	log   zerolog.Logger
}

// NewRunner wraps wheel with a background tick loop.
func NewRunner(wheel *SimpleTimeWheel, logger zerolog.Logger) *Runner {
	return &Runner{wheel: wheel, token: NewCancellationToken(), log: logger}
}

// Start launches the tick loop. Safe to call once per Runner.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.loop()
}

// Stop cancels the tick loop cooperatively and waits for it to exit.
func (r *Runner) Stop() {
	r.token.Cancel()
	r.wg.Wait()
}

func (r *Runner) loop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.wheel.tickDuration)
	defer ticker.Stop()
	for {
		select {
		case <-r.token.Done():
			return
		case now := <-ticker.C:
			r.mu.Lock()
			r.wheel.Tick()
			ready := r.wheel.GetReadyTasks()
			r.mu.Unlock()
			for _, t := range ready {
				go r.runTask(t, now)
			}
		}
	}
}

func (r *Runner) runTask(t *ScheduledTask, now time.Time) {
	reschedule, err := t.execute(context.Background())
	if err != nil {
		r.log.Error().Err(err).Str("task_id", string(t.ID)).Msg("timewheel: task failed after retries")
	}
	if !reschedule {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.wheel.AddTask(t, now); err != nil {
		r.log.Warn().Err(err).Str("task_id", string(t.ID)).Msg("timewheel: reschedule rejected")
	}
}

// AddTask schedules t under the runner's lock.
func (r *Runner) AddTask(t *ScheduledTask, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wheel.AddTask(t, now)
}

// RemoveTask cancels a pending task under the runner's lock.
func (r *Runner) RemoveTask(id TaskID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wheel.RemoveTask(id)
}
