package libvlc

import (
	"time"
	"unsafe"
)

// EventKind identifies a native event type. Values match libvlc_event_e.
type EventKind int32

const (
	EventMediaMetaChanged      EventKind = 0
	EventMediaSubItemAdded     EventKind = 1
	EventMediaDurationChanged  EventKind = 2
	EventMediaParsedChanged    EventKind = 3
	EventMediaFreed            EventKind = 4
	EventMediaStateChanged     EventKind = 5
	EventMediaSubItemTreeAdded EventKind = 6

	EventMediaListItemAdded      EventKind = 0x200
	EventMediaListWillAddItem    EventKind = 0x201
	EventMediaListItemDeleted    EventKind = 0x202
	EventMediaListWillDeleteItem EventKind = 0x203
	EventMediaListEndReached     EventKind = 0x204

	EventRendererDiscovererItemAdded   EventKind = 0x502
	EventRendererDiscovererItemDeleted EventKind = 0x503
)

func (k EventKind) String() string {
	switch k {
	case EventMediaMetaChanged:
		return "MediaMetaChanged"
	case EventMediaSubItemAdded:
		return "MediaSubItemAdded"
	case EventMediaDurationChanged:
		return "MediaDurationChanged"
	case EventMediaParsedChanged:
		return "MediaParsedChanged"
	case EventMediaFreed:
		return "MediaFreed"
	case EventMediaStateChanged:
		return "MediaStateChanged"
	case EventMediaSubItemTreeAdded:
		return "MediaSubItemTreeAdded"
	case EventMediaListItemAdded:
		return "MediaListItemAdded"
	case EventMediaListWillAddItem:
		return "MediaListWillAddItem"
	case EventMediaListItemDeleted:
		return "MediaListItemDeleted"
	case EventMediaListWillDeleteItem:
		return "MediaListWillDeleteItem"
	case EventMediaListEndReached:
		return "MediaListEndReached"
	case EventRendererDiscovererItemAdded:
		return "RendererDiscovererItemAdded"
	case EventRendererDiscovererItemDeleted:
		return "RendererDiscovererItemDeleted"
	default:
		return "Unknown"
	}
}

// Event kinds each component subscribes to.
var (
	mediaEventKinds = []EventKind{
		EventMediaMetaChanged,
		EventMediaSubItemAdded,
		EventMediaDurationChanged,
		EventMediaParsedChanged,
		EventMediaFreed,
		EventMediaStateChanged,
		EventMediaSubItemTreeAdded,
	}
	mediaListEventKinds = []EventKind{
		EventMediaListItemAdded,
		EventMediaListWillAddItem,
		EventMediaListItemDeleted,
		EventMediaListWillDeleteItem,
		EventMediaListEndReached,
	}
	rendererDiscovererEventKinds = []EventKind{
		EventRendererDiscovererItemAdded,
		EventRendererDiscovererItemDeleted,
	}
)

// MediaState mirrors libvlc_state_t.
type MediaState int

const (
	StateNothingSpecial MediaState = iota
	StateOpening
	StateBuffering
	StatePlaying
	StatePaused
	StateStopped
	StateEnded
	StateError
)

func (s MediaState) String() string {
	switch s {
	case StateNothingSpecial:
		return "nothing-special"
	case StateOpening:
		return "opening"
	case StateBuffering:
		return "buffering"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ParsedStatus mirrors libvlc_media_parsed_status_t. Zero means parsing has
// not finished.
type ParsedStatus int

const (
	ParsedStatusNone ParsedStatus = iota
	ParsedStatusSkipped
	ParsedStatusFailed
	ParsedStatusTimeout
	ParsedStatusDone
)

func (s ParsedStatus) String() string {
	switch s {
	case ParsedStatusNone:
		return "none"
	case ParsedStatusSkipped:
		return "skipped"
	case ParsedStatusFailed:
		return "failed"
	case ParsedStatusTimeout:
		return "timeout"
	case ParsedStatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is a Go-owned copy of a native event. Media and Item, when set, are
// references owned by the bridge for the duration of dispatch; a listener
// that keeps one must Retain it.
type Event struct {
	Kind         EventKind
	MetaType     Meta
	State        MediaState
	ParsedStatus ParsedStatus
	Duration     time.Duration
	Index        int
	Media        *MediaRef
	Item         *RendererItem
}

// release drops the references held by the event.
func (e *Event) release() {
	if e.Media != nil {
		_ = e.Media.Release()
	}
	if e.Item != nil {
		_ = e.Item.Release()
	}
}

// nativeEvent is the fixed prefix of libvlc_event_t. The union that follows
// starts at the next 8-byte boundary and its largest member used here is a
// pointer followed by an int.
type nativeEvent struct {
	kind int32
	obj  uintptr
	u    [2]uint64
}

func (n *nativeEvent) unionInt32() int32 {
	return *(*int32)(unsafe.Pointer(&n.u))
}

func (n *nativeEvent) unionInt64() int64 {
	return *(*int64)(unsafe.Pointer(&n.u))
}

func (n *nativeEvent) unionPtr() uintptr {
	return *(*uintptr)(unsafe.Pointer(&n.u))
}

// unionPtrInt reads the int that follows a pointer in the union, as in
// media_list_item_added {item; index}.
func (n *nativeEvent) unionPtrInt() int32 {
	return *(*int32)(unsafe.Add(unsafe.Pointer(&n.u), unsafe.Sizeof(uintptr(0))))
}

// decodeEvent copies everything the listener needs out of a native event.
// It runs on the native callback thread: the only native calls made here
// are retain/hold, which do not re-enter libvlc's event machinery.
func decodeEvent(lib *Library, n *nativeEvent) (Event, bool) {
	e := Event{Kind: EventKind(n.kind)}
	switch e.Kind {
	case EventMediaMetaChanged:
		e.MetaType = Meta(n.unionInt32())
	case EventMediaSubItemAdded, EventMediaSubItemTreeAdded:
		if p := n.unionPtr(); p != 0 {
			e.Media = retainMediaRef(lib, p)
		}
	case EventMediaDurationChanged:
		e.Duration = time.Duration(n.unionInt64()) * time.Millisecond
	case EventMediaParsedChanged:
		e.ParsedStatus = ParsedStatus(n.unionInt32())
	case EventMediaFreed:
	case EventMediaStateChanged:
		e.State = MediaState(n.unionInt32())
	case EventMediaListItemAdded, EventMediaListWillAddItem,
		EventMediaListItemDeleted, EventMediaListWillDeleteItem:
		if p := n.unionPtr(); p != 0 {
			e.Media = retainMediaRef(lib, p)
		}
		e.Index = int(n.unionPtrInt())
	case EventMediaListEndReached:
	case EventRendererDiscovererItemAdded, EventRendererDiscovererItemDeleted:
		if p := n.unionPtr(); p != 0 {
			e.Item = holdRendererItem(lib, p)
		}
	default:
		return Event{}, false
	}
	return e, true
}
