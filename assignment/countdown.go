package assignment

import (
	"sync"
	"time"
)

// Countdown is a one-shot timer supporting the cancel-and-rearm policy the
// scheduler needs: arming replaces any pending fire, and a cancelled or
// superseded timer never runs its callback. The generation counter closes
// the window where time.Timer.Stop returns false because the callback is
// already in flight.
type Countdown struct {
	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
}

// Arm schedules callback after delay, replacing any pending schedule.
func (countdown *Countdown) Arm(delay time.Duration, callback func()) {
	countdown.mu.Lock()
	defer countdown.mu.Unlock()

	countdown.generation++
	armed := countdown.generation

	if countdown.timer != nil {
		countdown.timer.Stop()
	}

	countdown.timer = time.AfterFunc(delay, func() {
		countdown.mu.Lock()
		live := countdown.generation == armed
		countdown.mu.Unlock()

		if live {
			callback()
		}
	})
}

// Cancel drops any pending schedule.
func (countdown *Countdown) Cancel() {
	countdown.mu.Lock()
	defer countdown.mu.Unlock()

	countdown.generation++

	if countdown.timer != nil {
		countdown.timer.Stop()
		countdown.timer = nil
	}
}
