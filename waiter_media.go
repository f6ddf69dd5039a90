package libvlc

import (
	"context"
	"fmt"
	"time"
)

// classifyParsed signals w for a final parse outcome. None is not final.
func classifyParsed(w *Waiter[ParsedStatus], s ParsedStatus) {
	switch s {
	case ParsedStatusDone:
		w.Ready(s)
	case ParsedStatusFailed, ParsedStatusTimeout:
		w.Error(fmt.Errorf("parse %s", s))
	case ParsedStatusSkipped:
		w.Finished()
	}
}

// AwaitParsed parses m and blocks until libvlc reports an outcome. It
// returns ParsedStatusDone on success; a failed or timed out parse yields
// ErrWaitFailed and a skipped one ErrWaitFinishedEarly. Media whose
// earlier parse already finished, other than by being skipped, returns that
// outcome immediately.
func AwaitParsed(ctx context.Context, m *Media, flags ParseFlag, timeout time.Duration) (ParsedStatus, error) {
	return Await(ctx, Condition[ParsedStatus]{
		Bridge: m.Events(),
		OnEvent: func(w *Waiter[ParsedStatus], e Event) {
			if e.Kind == EventMediaParsedChanged {
				classifyParsed(w, e.ParsedStatus)
			}
		},
		Before: func(w *Waiter[ParsedStatus]) error {
			s, err := m.ParsedStatus()
			if err != nil {
				return err
			}
			// libvlc ignores a new parse request once an earlier one
			// ended, unless it was skipped.
			if s != ParsedStatusNone && s != ParsedStatusSkipped {
				classifyParsed(w, s)
				return nil
			}
			return m.Parse(flags, timeout)
		},
	})
}

// AwaitState blocks until m enters want. StateError finishes with
// ErrWaitFailed; reaching StateEnded or StateStopped while waiting for
// something else finishes with ErrWaitFinishedEarly.
func AwaitState(ctx context.Context, m *Media, want MediaState) (MediaState, error) {
	check := func(w *Waiter[MediaState], s MediaState) {
		switch {
		case s == want:
			w.Ready(s)
		case s == StateError:
			w.Error(fmt.Errorf("media state %s", s))
		case s == StateEnded || s == StateStopped:
			w.Finished()
		}
	}
	return Await(ctx, Condition[MediaState]{
		Bridge: m.Events(),
		OnEvent: func(w *Waiter[MediaState], e Event) {
			if e.Kind == EventMediaStateChanged {
				check(w, e.State)
			}
		},
		Before: func(w *Waiter[MediaState]) error {
			s, err := m.State()
			if err != nil {
				return err
			}
			check(w, s)
			return nil
		},
	})
}
