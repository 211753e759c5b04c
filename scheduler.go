package hotcache

import "time"

// SchedHandle is an opaque handle returned by Scheduler.PostDelayed, passed
// back to Scheduler.Cancel to stop a pending task.
type SchedHandle interface{}

// Scheduler posts and cancels delayed, one-shot tasks. It is the spec's
// external "bus" collaborator (§6): the cache only needs a task to run once
// after a delay, and to be cancellable. A task is free to call PostDelayed
// again from within itself to reschedule — that reentrance is required,
// the same way the teacher's janitor re-arms its own ticker loop.
type Scheduler interface {
	PostDelayed(delay time.Duration, task func()) SchedHandle
	Cancel(handle SchedHandle)
}

// timerScheduler is the default Scheduler, built on time.AfterFunc — the
// standard library's own one-shot delayed-task primitive, and a direct
// analog of the teacher's ticker-plus-goroutine janitor for the one-shot
// case. No third-party scheduler library in the retrieval pack offers a
// generic post-delayed/cancel bus (see DESIGN.md), so this stays on the
// standard library by design, not by omission.
type timerScheduler struct{}

func (timerScheduler) PostDelayed(delay time.Duration, task func()) SchedHandle {
	return time.AfterFunc(delay, task)
}

func (timerScheduler) Cancel(handle SchedHandle) {
	if t, ok := handle.(*time.Timer); ok {
		t.Stop()
	}
}
