package libvlc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrWaitFailed means the awaited component reported an error.
	ErrWaitFailed = errors.New("wait failed")
	// ErrWaitFinishedEarly means the component reached a terminal state
	// without the awaited condition becoming true.
	ErrWaitFinishedEarly = errors.New("wait finished before condition was met")
)

// WaitState is the lifecycle of a Waiter. It only moves forward.
type WaitState int32

const (
	WaitNotStarted WaitState = iota
	WaitListening
	WaitFinished
)

func (s WaitState) String() string {
	switch s {
	case WaitNotStarted:
		return "not-started"
	case WaitListening:
		return "listening"
	case WaitFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// FinishReason says how a finished Waiter ended.
type FinishReason int32

const (
	FinishNormal FinishReason = iota
	FinishError
	FinishEarly
)

func (r FinishReason) String() string {
	switch r {
	case FinishNormal:
		return "normal"
	case FinishError:
		return "error"
	case FinishEarly:
		return "finished-early"
	default:
		return "unknown"
	}
}

// WaitError is returned by Wait when the waiter did not finish normally.
// errors.Is matches both the reason sentinel and the cause.
type WaitError struct {
	Reason FinishReason
	Err    error
}

func (e *WaitError) sentinel() error {
	if e.Reason == FinishEarly {
		return ErrWaitFinishedEarly
	}
	return ErrWaitFailed
}

func (e *WaitError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%v: %v", e.sentinel(), e.Err)
}

func (e *WaitError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

// Waiter is a one-shot latch carrying a typed result. Ready, Error and
// Finished may be called from any goroutine; only the first call has any
// effect. A signal that arrives before Wait is not lost.
type Waiter[T any] struct {
	state atomic.Int32
	fired atomic.Bool
	done  chan struct{}

	// written once by the winning signal, read after done is closed
	result T
	reason FinishReason
	err    error
}

// NewWaiter returns a waiter in the WaitNotStarted state.
func NewWaiter[T any]() *Waiter[T] {
	return &Waiter[T]{done: make(chan struct{})}
}

// State returns the current state.
func (w *Waiter[T]) State() WaitState { return WaitState(w.state.Load()) }

// Reason returns how the waiter finished. It is only meaningful once State
// is WaitFinished.
func (w *Waiter[T]) Reason() FinishReason {
	select {
	case <-w.done:
		return w.reason
	default:
		return FinishNormal
	}
}

// listen moves NotStarted to Listening; it is a no-op once finished.
func (w *Waiter[T]) listen() {
	w.state.CompareAndSwap(int32(WaitNotStarted), int32(WaitListening))
}

func (w *Waiter[T]) finish(reason FinishReason, v T, err error) bool {
	if !w.fired.CompareAndSwap(false, true) {
		return false
	}
	w.result, w.reason, w.err = v, reason, err
	w.state.Store(int32(WaitFinished))
	close(w.done)
	return true
}

// Ready finishes normally with v. It reports whether this call won.
func (w *Waiter[T]) Ready(v T) bool {
	return w.finish(FinishNormal, v, nil)
}

// Error finishes with a native-reported error.
func (w *Waiter[T]) Error(err error) bool {
	var zero T
	return w.finish(FinishError, zero, err)
}

// Finished finishes because the component reached a terminal state other
// than the one awaited.
func (w *Waiter[T]) Finished() bool {
	var zero T
	return w.finish(FinishEarly, zero, nil)
}

// Done is closed once the waiter has finished.
func (w *Waiter[T]) Done() <-chan struct{} { return w.done }

// Wait blocks until the waiter finishes or ctx ends. A ctx expiry does not
// finish the waiter.
func (w *Waiter[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-w.done:
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("wait (%s): %w", w.State(), ctx.Err())
	}

	if w.reason == FinishNormal {
		return w.result, nil
	}
	var zero T
	return zero, &WaitError{Reason: w.reason, Err: w.err}
}

// Condition describes one blocking wait over a bridge's events.
type Condition[T any] struct {
	// Bridge delivers the events to inspect.
	Bridge *EventBridge
	// OnEvent is called on the bridge's dispatch goroutine for every event
	// and signals w when the outcome is known.
	OnEvent func(w *Waiter[T], e Event)
	// Before runs once the listener is registered. It may signal w when the
	// condition already holds, or return an error to abort the wait.
	Before func(w *Waiter[T]) error
	// After runs on normal completion, after the listener is removed.
	After func(v T) error
}

// Await registers a listener on c.Bridge, runs c.Before, blocks until the
// waiter finishes or ctx ends, then removes the listener and runs c.After.
func Await[T any](ctx context.Context, c Condition[T]) (T, error) {
	var zero T
	if c.Bridge == nil || c.OnEvent == nil {
		return zero, errors.New("await: condition needs a bridge and an event handler")
	}

	w := NewWaiter[T]()
	id := c.Bridge.AddListener(func(e Event) { c.OnEvent(w, e) })
	w.listen()

	if c.Before != nil {
		if err := c.Before(w); err != nil {
			c.Bridge.RemoveListener(id)
			return zero, err
		}
	}

	v, err := w.Wait(ctx)
	c.Bridge.RemoveListener(id)
	if err != nil {
		return zero, err
	}

	if c.After != nil {
		if err := c.After(v); err != nil {
			return zero, err
		}
	}
	return v, nil
}
