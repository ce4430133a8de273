package scheduler

import (
	"testing"
	"time"
)

func TestQueueMicrotaskDrainsInOrder(t *testing.T) {
	l := NewLoop()
	var order []int
	l.QueueMicrotask(func() { order = append(order, 1) })
	l.QueueMicrotask(func() { order = append(order, 2) })
	l.DrainMicrotasks()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("got %v, want [1 2]", order)
	}
}

func TestMicrotaskQueuedDuringDrainRunsInSamePass(t *testing.T) {
	l := NewLoop()
	var order []int
	l.QueueMicrotask(func() {
		order = append(order, 1)
		l.QueueMicrotask(func() { order = append(order, 2) })
	})
	l.DrainMicrotasks()
	if len(order) != 2 || order[1] != 2 {
		t.Fatalf("got %v, want [1 2]", order)
	}
	if !l.Idle() {
		t.Fatalf("loop should be idle after drain with no timers")
	}
}

func TestSetTimeoutFiresAfterMicrotasks(t *testing.T) {
	l := NewLoop()
	var order []string
	l.QueueMicrotask(func() { order = append(order, "micro") })
	l.SetTimeout(func() { order = append(order, "timeout") }, 0)
	l.Run()
	if len(order) != 2 || order[0] != "micro" || order[1] != "timeout" {
		t.Fatalf("got %v, want [micro timeout]", order)
	}
}

func TestTimersFireInDueOrderThenInsertionOrder(t *testing.T) {
	l := NewLoop()
	var order []int
	l.SetTimeout(func() { order = append(order, 1) }, 0)
	l.SetTimeout(func() { order = append(order, 2) }, 0)
	l.SetTimeout(func() { order = append(order, 3) }, 10*time.Millisecond)
	l.Run()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", order)
	}
}

func TestClearTimerCancelsPendingTimeout(t *testing.T) {
	l := NewLoop()
	fired := false
	id := l.SetTimeout(func() { fired = true }, 0)
	l.ClearTimer(id)
	l.Run()
	if fired {
		t.Fatalf("canceled timeout should not fire")
	}
}

func TestDrainMicrotasksCheckedStopsAtBudget(t *testing.T) {
	l := NewLoop()
	l.SetMaxMicrotasks(3)
	var ran int
	var requeue func()
	requeue = func() {
		ran++
		l.QueueMicrotask(requeue)
	}
	l.QueueMicrotask(requeue)
	err := l.DrainMicrotasksChecked()
	if err != ErrMicrotaskBudgetExceeded {
		t.Fatalf("got %v, want ErrMicrotaskBudgetExceeded", err)
	}
	if ran != 3 {
		t.Fatalf("got %d runs, want exactly the budget of 3", ran)
	}
}

func TestDrainMicrotasksCheckedUnboundedByDefault(t *testing.T) {
	l := NewLoop()
	var order []int
	l.QueueMicrotask(func() { order = append(order, 1) })
	l.QueueMicrotask(func() { order = append(order, 2) })
	if err := l.DrainMicrotasksChecked(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("got %v, want both microtasks to run", order)
	}
}

func TestSetIntervalStopsWhenClearedFromWithinItself(t *testing.T) {
	l := NewLoop()
	count := 0
	var id int64
	id = l.SetInterval(func() {
		count++
		if count >= 3 {
			l.ClearTimer(id)
		}
	}, 0)
	l.Run()
	if count != 3 {
		t.Fatalf("got %d fires, want 3", count)
	}
}
