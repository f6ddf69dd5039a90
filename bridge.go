package libvlc

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// DefaultEventQueueSize is the initial per-bridge event buffer used when no
// WithQueueSize option is given.
const DefaultEventQueueSize = 256

// Listener receives events on the bridge's dispatch goroutine, never on a
// native thread, so it may call back into libvlc.
type Listener func(Event)

// ListenerID identifies a registered listener.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

type bridgeConfig struct {
	queueSize int
	log       *logrus.Entry
}

// BridgeOption configures an EventBridge.
type BridgeOption func(*bridgeConfig)

// WithQueueSize sets the initial capacity of the pending event queue. The
// queue grows past it; the native thread never waits for the listeners.
func WithQueueSize(n int) BridgeOption {
	return func(c *bridgeConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithBridgeLogger sets the log entry used by the bridge.
func WithBridgeLogger(entry *logrus.Entry) BridgeOption {
	return func(c *bridgeConfig) { c.log = entry }
}

// EventBridge relays events from one native event manager to Go listeners.
//
// The native callback only copies the event and appends it to an unbounded
// queue; a single dispatch goroutine delivers events to listeners in the
// order libvlc raised them.
type EventBridge struct {
	lib   *Library
	em    uintptr
	id    uintptr
	kinds []EventKind

	qmu     sync.Mutex
	pending []Event
	closed  bool
	wake    chan struct{}

	done     chan struct{}
	detached chan struct{}
	exited   chan struct{}

	mu        sync.RWMutex
	listeners []listenerEntry
	nextID    atomic.Uint64

	releaseOnce sync.Once
	log         *logrus.Entry
}

// newEventBridge subscribes to kinds on em. A zero em yields a bridge that
// never delivers events.
func newEventBridge(lib *Library, em uintptr, kinds []EventKind, opts ...BridgeOption) *EventBridge {
	cfg := bridgeConfig{queueSize: DefaultEventQueueSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logEntry()
	}

	b := &EventBridge{
		lib:      lib,
		em:       em,
		pending:  make([]Event, 0, cfg.queueSize),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		detached: make(chan struct{}),
		exited:   make(chan struct{}),
		log:      cfg.log,
	}
	b.id = registerBridge(b)
	go b.run()

	if em == 0 {
		b.log.Debug("no native event manager, events disabled")
		return b
	}

	cb := eventCallback()
	for _, kind := range kinds {
		if rc := lib.eventAttach(em, int32(kind), cb, b.id); rc != 0 {
			b.log.WithField("event", kind).Warn("failed to attach native event")
			continue
		}
		b.kinds = append(b.kinds, kind)
	}
	return b
}

// AddListener registers fn and returns an id for RemoveListener.
func (b *EventBridge) AddListener(fn Listener) ListenerID {
	id := ListenerID(b.nextID.Add(1))
	b.mu.Lock()
	b.listeners = append(b.listeners, listenerEntry{id: id, fn: fn})
	b.mu.Unlock()
	return id
}

// RemoveListener unregisters a listener. It reports whether id was
// registered.
func (b *EventBridge) RemoveListener(id ListenerID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.listeners, func(e listenerEntry) bool { return e.id == id })
	if i < 0 {
		return false
	}
	b.listeners = slices.Delete(b.listeners, i, i+1)
	return true
}

// Subscribed returns the event kinds attached on the native side.
func (b *EventBridge) Subscribed() []EventKind {
	return slices.Clone(b.kinds)
}

// handle runs on the native callback thread.
func (b *EventBridge) handle(n *nativeEvent) {
	select {
	case <-b.done:
		return
	default:
	}

	e, ok := decodeEvent(b.lib, n)
	if !ok {
		return
	}

	b.qmu.Lock()
	if b.closed {
		b.qmu.Unlock()
		e.release()
		return
	}
	b.pending = append(b.pending, e)
	b.qmu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// take removes and returns every queued event.
func (b *EventBridge) take() []Event {
	b.qmu.Lock()
	defer b.qmu.Unlock()
	if len(b.pending) == 0 {
		return nil
	}
	batch := b.pending
	b.pending = nil
	return batch
}

func (b *EventBridge) run() {
	defer close(b.exited)
	for {
		select {
		case <-b.wake:
		case <-b.done:
			b.drain()
			return
		}

		for batch := b.take(); len(batch) > 0; batch = b.take() {
			for i, e := range batch {
				// Release wins over pending events.
				select {
				case <-b.done:
					releaseEvents(batch[i:])
					b.drain()
					return
				default:
				}
				b.dispatch(e)
			}
		}
	}
}

// drain drops queued events once no callback can enqueue more.
func (b *EventBridge) drain() {
	<-b.detached
	releaseEvents(b.take())
}

func releaseEvents(events []Event) {
	for _, e := range events {
		e.release()
	}
}

func (b *EventBridge) dispatch(e Event) {
	defer e.release()

	b.mu.RLock()
	listeners := slices.Clone(b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		b.call(l, e)
	}
}

func (b *EventBridge) call(l listenerEntry, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{
				"event":    e.Kind,
				"listener": l.id,
			}).Error(fmt.Sprintf("listener panic: %v", r))
		}
	}()
	l.fn(e)
}

// Release detaches every native subscription exactly once and stops
// dispatch. Events still queued are dropped. Release may be called from a
// listener.
func (b *EventBridge) Release() {
	b.releaseOnce.Do(func() {
		close(b.done)
		for _, kind := range b.kinds {
			b.lib.eventDetach(b.em, int32(kind), eventCallback(), b.id)
		}
		unregisterBridge(b.id)
		b.qmu.Lock()
		b.closed = true
		b.qmu.Unlock()
		close(b.detached)
	})
}

// Done is closed when the dispatch goroutine has exited after Release.
func (b *EventBridge) Done() <-chan struct{} {
	return b.exited
}
