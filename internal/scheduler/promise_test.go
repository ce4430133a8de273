package scheduler

import (
	"errors"
	"testing"

	"github.com/jsrt/jsrt/value"
)

func arrayOf(elems []value.Value) value.Value {
	return value.NewArray(nil, elems)
}

func TestChainedPromiseThenRunsAsMicrotask(t *testing.T) {
	l := NewLoop()
	p, resolve, _ := NewChainedPromise(l)
	var got value.Value
	p.Then(func(v value.Value) (value.Value, error) {
		got = v
		return v, nil
	}, nil)
	resolve(value.Number(42))
	if got != nil {
		t.Fatalf("onFulfilled must not run before microtasks drain")
	}
	l.DrainMicrotasks()
	if got != value.Number(42) {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestChainedPromiseThenAfterSettlementStillSchedules(t *testing.T) {
	l := NewLoop()
	p := Resolved(l, value.Number(1))
	l.DrainMicrotasks()
	var got value.Value
	p.Then(func(v value.Value) (value.Value, error) {
		got = v
		return v, nil
	}, nil)
	if got != nil {
		t.Fatalf("already-settled Then must still defer to a microtask")
	}
	l.DrainMicrotasks()
	if got != value.Number(1) {
		t.Fatalf("got %v, want 1", got)
	}
}

func TestChainedPromiseRejectionPropagatesPastMissingHandler(t *testing.T) {
	l := NewLoop()
	p := RejectedPromise(l, value.String("boom"))
	var caught value.Value
	p.Then(func(v value.Value) (value.Value, error) {
		t.Fatalf("onFulfilled should not run on a rejected promise")
		return v, nil
	}, nil).Catch(func(reason value.Value) (value.Value, error) {
		caught = reason
		return value.Undef, nil
	})
	l.DrainMicrotasks()
	if caught != value.String("boom") {
		t.Fatalf("got %v, want boom", caught)
	}
}

func TestChainedPromiseResolveWithThenableAdopts(t *testing.T) {
	l := NewLoop()
	inner, innerResolve, _ := NewChainedPromise(l)
	innerObj := &value.Object{Extensible: true, Class: "Object"}
	innerObj.SetData("then", newCallable(func(_ value.Value, args []value.Value) (value.Value, error) {
		res := args[0].(*value.Object)
		rej := args[1].(*value.Object)
		inner.Then(func(v value.Value) (value.Value, error) {
			_, _ = res.Call(value.Undef, []value.Value{v})
			return value.Undef, nil
		}, func(reason value.Value) (value.Value, error) {
			_, _ = rej.Call(value.Undef, []value.Value{reason})
			return value.Undef, nil
		})
		return value.Undef, nil
	}))

	outer, resolve, _ := NewChainedPromise(l)
	var got value.Value
	outer.Then(func(v value.Value) (value.Value, error) {
		got = v
		return v, nil
	}, nil)

	resolve(innerObj)
	innerResolve(value.Number(7))
	l.DrainMicrotasks()
	l.DrainMicrotasks()

	if got != value.Number(7) {
		t.Fatalf("got %v, want adopted value 7", got)
	}
}

func TestChainedPromiseFinallyPassesValueThrough(t *testing.T) {
	l := NewLoop()
	p := Resolved(l, value.Number(5))
	ran := false
	var got value.Value
	p.Finally(func() error {
		ran = true
		return nil
	}).Then(func(v value.Value) (value.Value, error) {
		got = v
		return v, nil
	}, nil)
	l.DrainMicrotasks()
	l.DrainMicrotasks()
	if !ran {
		t.Fatalf("finally callback did not run")
	}
	if got != value.Number(5) {
		t.Fatalf("got %v, want 5 passed through", got)
	}
}

func TestChainedPromiseFinallyThrowOverridesWithRejection(t *testing.T) {
	l := NewLoop()
	p := Resolved(l, value.Number(5))
	var caught value.Value
	p.Finally(func() error {
		return valueError{value.String("cleanup failed")}
	}).Catch(func(reason value.Value) (value.Value, error) {
		caught = reason
		return value.Undef, nil
	})
	l.DrainMicrotasks()
	l.DrainMicrotasks()
	if caught != value.String("cleanup failed") {
		t.Fatalf("got %v, want cleanup failed", caught)
	}
}

func TestAllFulfillsWithValuesInOrder(t *testing.T) {
	l := NewLoop()
	a, resolveA, _ := NewChainedPromise(l)
	b, resolveB, _ := NewChainedPromise(l)
	out := All(l, []*ChainedPromise{a, b}, arrayOf)
	resolveB(value.Number(2))
	resolveA(value.Number(1))
	l.DrainMicrotasks()
	l.DrainMicrotasks()
	if out.Status() != Fulfilled {
		t.Fatalf("got status %v, want fulfilled", out.Status())
	}
	arr := out.Value().(*value.Object)
	if value.ArrayLength(arr) != 2 || value.ArrayGet(arr, 0) != value.Number(1) || value.ArrayGet(arr, 1) != value.Number(2) {
		t.Fatalf("got %v, want [1 2]", arr)
	}
}

func TestAllRejectsOnFirstRejection(t *testing.T) {
	l := NewLoop()
	a, _, rejectA := NewChainedPromise(l)
	b, resolveB, _ := NewChainedPromise(l)
	out := All(l, []*ChainedPromise{a, b}, arrayOf)
	rejectA(value.String("nope"))
	l.DrainMicrotasks()
	l.DrainMicrotasks()
	if out.Status() != Rejected || out.Value() != value.String("nope") {
		t.Fatalf("got status=%v value=%v, want rejected/nope", out.Status(), out.Value())
	}
	resolveB(value.Number(9)) // late settlement must not alter the already-settled result
}

func TestRaceSettlesWithFirst(t *testing.T) {
	l := NewLoop()
	a, resolveA, _ := NewChainedPromise(l)
	b, resolveB, _ := NewChainedPromise(l)
	out := Race(l, []*ChainedPromise{a, b})
	resolveB(value.Number(2))
	resolveA(value.Number(1))
	l.DrainMicrotasks()
	if out.Status() != Fulfilled || out.Value() != value.Number(2) {
		t.Fatalf("got status=%v value=%v, want fulfilled/2", out.Status(), out.Value())
	}
}

func TestAnyRejectsWithAggregateErrorWhenAllReject(t *testing.T) {
	l := NewLoop()
	a, _, rejectA := NewChainedPromise(l)
	b, _, rejectB := NewChainedPromise(l)
	var agg *AggregateError
	out := Any(l, []*ChainedPromise{a, b}, func(e *AggregateError) value.Value {
		agg = e
		return value.String(e.Message)
	})
	rejectA(value.String("e1"))
	rejectB(value.String("e2"))
	l.DrainMicrotasks()
	l.DrainMicrotasks()
	if out.Status() != Rejected {
		t.Fatalf("got status %v, want rejected", out.Status())
	}
	if agg == nil || len(agg.Errors) != 2 {
		t.Fatalf("got %v, want an AggregateError with 2 reasons", agg)
	}
}

func TestUnhandledRejectionTrackedAfterSettleWithNoReaction(t *testing.T) {
	l := NewLoop()
	p := RejectedPromise(l, value.String("boom"))
	l.DrainMicrotasks()
	got := l.UnhandledRejections()
	if len(got) != 1 || got[0] != p {
		t.Fatalf("got %v, want [%v]", got, p)
	}
}

func TestUnhandledRejectionsDrainedOnlyOnce(t *testing.T) {
	l := NewLoop()
	RejectedPromise(l, value.String("boom"))
	l.DrainMicrotasks()
	if len(l.UnhandledRejections()) != 1 {
		t.Fatalf("first call should report the rejection")
	}
	if got := l.UnhandledRejections(); got != nil {
		t.Fatalf("got %v, want nil on second call", got)
	}
}

func TestCatchMarksRejectionHandled(t *testing.T) {
	l := NewLoop()
	p := RejectedPromise(l, value.String("boom"))
	p.Catch(func(v value.Value) (value.Value, error) { return v, nil })
	l.DrainMicrotasks()
	if got := l.UnhandledRejections(); got != nil {
		t.Fatalf("got %v, want nil — a caught rejection is not unhandled", got)
	}
}

func TestThenWithOnRejectedMarksHandledBeforeSettlement(t *testing.T) {
	l := NewLoop()
	p, _, reject := NewChainedPromise(l)
	p.Then(nil, func(v value.Value) (value.Value, error) { return v, nil })
	reject(value.String("boom"))
	l.DrainMicrotasks()
	if got := l.UnhandledRejections(); got != nil {
		t.Fatalf("got %v, want nil — onRejected attached before settle", got)
	}
}

func TestRaceInputsAreAutomaticallyHandled(t *testing.T) {
	l := NewLoop()
	winner := RejectedPromise(l, value.String("first"))
	loser := RejectedPromise(l, value.String("second"))
	Race(l, []*ChainedPromise{winner, loser})
	l.DrainMicrotasks()
	l.DrainMicrotasks()
	if got := l.UnhandledRejections(); got != nil {
		t.Fatalf("got %v, want nil — combinator inputs are always reacted to", got)
	}
}

func TestValueErrorRoundTrips(t *testing.T) {
	v := errToValue(valueError{value.String("x")})
	if v != value.String("x") {
		t.Fatalf("got %v, want x", v)
	}
	if errToValue(errors.New("plain")) != value.String("plain") {
		t.Fatalf("plain Go error should stringify through")
	}
}
