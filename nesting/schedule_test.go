package nesting

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// manualScheduler runs tasks only when the test advances its clock.
type manualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	at        time.Duration
	fn        func()
	cancelled bool
	ran       bool
}

func (t *manualTask) Cancel() { t.cancelled = true }

func (s *manualScheduler) ScheduleAfter(d time.Duration, fn func()) Cancellable {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward and runs every due, live task in
// scheduling order.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*manualTask
	for _, t := range s.tasks {
		if !t.ran && !t.cancelled && t.at <= s.now {
			t.ran = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	t.Parallel()
	var sched manualScheduler
	d := NewDebouncer(&sched, DefaultDebounceDelay)

	var runs []int
	for i := range 10 {
		d.Trigger(func() { runs = append(runs, i) })
		sched.Advance(10 * time.Millisecond)
	}
	assert.Empty(t, runs, "nothing runs while events keep arriving")
	assert.True(t, d.Pending())

	sched.Advance(DefaultDebounceDelay)
	assert.Equal(t, []int{9}, runs, "exactly one run, for the last event")
	assert.False(t, d.Pending())

	sched.Advance(time.Second)
	assert.Len(t, runs, 1)
}

func TestDebouncer_SpacedTriggers(t *testing.T) {
	t.Parallel()
	var sched manualScheduler
	d := NewDebouncer(&sched, 50*time.Millisecond)

	count := 0
	for range 3 {
		d.Trigger(func() { count++ })
		sched.Advance(60 * time.Millisecond)
	}
	assert.Equal(t, 3, count)
}

func TestDebouncer_Cancel(t *testing.T) {
	t.Parallel()
	var sched manualScheduler
	d := NewDebouncer(&sched, 50*time.Millisecond)

	ran := false
	d.Trigger(func() { ran = true })
	d.Cancel()
	sched.Advance(time.Second)
	assert.False(t, ran)
	assert.False(t, d.Pending())
}

func TestTimerScheduler(t *testing.T) {
	t.Parallel()
	d := NewDebouncer(nil, 20*time.Millisecond)

	var count atomic.Int32
	for range 5 {
		d.Trigger(func() { count.Add(1) })
	}
	assert.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}

func TestTimerScheduler_CancelBeforeFire(t *testing.T) {
	t.Parallel()
	var ran atomic.Bool
	h := TimerScheduler{}.ScheduleAfter(20*time.Millisecond, func() { ran.Store(true) })
	h.Cancel()
	time.Sleep(60 * time.Millisecond)
	assert.False(t, ran.Load())
}
