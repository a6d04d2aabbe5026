package nesting

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is the caret quiescence delay before a scope guide is
// recomputed.
const DefaultDebounceDelay = 150 * time.Millisecond

// Cancellable is a handle to a scheduled task.
type Cancellable interface {
	// Cancel discards the task if it has not started yet.
	Cancel()
}

// Scheduler runs tasks after a delay.
type Scheduler interface {
	ScheduleAfter(d time.Duration, task func()) Cancellable
}

// TimerScheduler schedules tasks on time.AfterFunc timers.
type TimerScheduler struct{}

// ScheduleAfter runs task on its own goroutine after d unless cancelled.
func (TimerScheduler) ScheduleAfter(d time.Duration, task func()) Cancellable {
	t := &timerTask{task: task}
	t.timer = time.AfterFunc(d, t.run)
	return t
}

// timerTask guards against a timer that already fired but whose callback
// has not yet taken the lock when Cancel is called.
type timerTask struct {
	mu        sync.Mutex
	timer     *time.Timer
	task      func()
	cancelled bool
}

func (t *timerTask) run() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true // a task runs at most once
	t.mu.Unlock()
	t.task()
}

func (t *timerTask) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	t.timer.Stop()
}

// Debouncer collapses bursts of triggers into one task run after the last
// trigger has been quiet for the delay. A superseded task is cancelled, not
// merely skipped. Safe for concurrent use.
type Debouncer struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	pending Cancellable
}

// NewDebouncer creates a Debouncer on sched. A nil sched uses TimerScheduler.
func NewDebouncer(sched Scheduler, delay time.Duration) *Debouncer {
	if sched == nil {
		sched = TimerScheduler{}
	}
	return &Debouncer{sched: sched, delay: delay}
}

// Trigger cancels any pending task and schedules task after the delay.
func (d *Debouncer) Trigger(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Cancel()
	}
	var handle Cancellable
	handle = d.sched.ScheduleAfter(d.delay, func() {
		d.mu.Lock()
		if d.pending == handle {
			d.pending = nil
		}
		d.mu.Unlock()
		task()
	})
	d.pending = handle
}

// Cancel discards the pending task, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
}

// Pending reports whether a task is scheduled and not yet started.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
