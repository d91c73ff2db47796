package history

import "time"

// Timer is a pending callback.
type Timer interface {
	// Stop cancels the callback. It returns false if it already ran.
	Stop() bool
}

// Scheduler runs a callback after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, f func()) Timer

// AfterFunc implements Scheduler.
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer {
	return fn(d, f)
}

// RealScheduler uses time.AfterFunc. Its callbacks run on their own
// goroutine, so a history using it needs WithLocker.
var RealScheduler Scheduler = realScheduler{}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
