package libvlc

import (
	"sync"
	"testing"
	"unsafe"
)

// fakeNative stands in for libvlc. Object handles are opaque integers;
// strings handed to the package are NUL-terminated Go buffers kept alive
// for the lifetime of the fake.
type fakeNative struct {
	mu sync.Mutex

	version string
	errmsg  uintptr
	next    uintptr
	buffers [][]byte

	refs     map[uintptr]int
	media    map[uintptr]*fakeMedia
	lists    map[uintptr]*fakeList
	items    map[uintptr]*fakeRendererItem
	freed    int
	attached map[fakeSub]int
	detached map[fakeSub]int
	started  map[uintptr]bool

	services []RendererDescription

	// onParse runs after a parse request is accepted.
	onParse func(m uintptr)
}

type fakeMedia struct {
	mrl    string
	state  MediaState
	parsed ParsedStatus
	meta   map[Meta]string
	ms     int64
	em     uintptr
	subs   uintptr
}

type fakeList struct {
	items    []uintptr
	readonly bool
	em       uintptr
	locked   int
}

type fakeRendererItem struct {
	name, kind, icon string
	flags            int32
}

type fakeSub struct {
	em   uintptr
	kind EventKind
	data uintptr
}

func newFakeNative(version string) *fakeNative {
	return &fakeNative{
		version:  version,
		next:     0x1000,
		refs:     make(map[uintptr]int),
		media:    make(map[uintptr]*fakeMedia),
		lists:    make(map[uintptr]*fakeList),
		items:    make(map[uintptr]*fakeRendererItem),
		attached: make(map[fakeSub]int),
		detached: make(map[fakeSub]int),
		started:  make(map[uintptr]bool),
	}
}

// alloc returns a fresh handle with one reference. Callers hold f.mu.
func (f *fakeNative) alloc() uintptr {
	f.next += 0x10
	f.refs[f.next] = 1
	return f.next
}

func (f *fakeNative) cstr(s string) uintptr {
	b := append([]byte(s), 0)
	f.buffers = append(f.buffers, b)
	return uintptr(unsafe.Pointer(&b[0]))
}

func (f *fakeNative) retain(p uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[p]++
}

func (f *fakeNative) release(p uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[p]--
}

// refCount returns the outstanding references on p.
func (f *fakeNative) refCount(p uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refs[p]
}

func (f *fakeNative) addMedia(mrl string) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.alloc()
	f.media[p] = &fakeMedia{mrl: mrl, meta: make(map[Meta]string), ms: -1, em: p + 1}
	return p
}

func (f *fakeNative) addList(items ...uintptr) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.alloc()
	f.lists[p] = &fakeList{items: items, em: p + 1}
	for _, m := range items {
		f.refs[m]++
	}
	return p
}

func (f *fakeNative) addRendererItem(name, kind string, flags int32) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.alloc()
	f.items[p] = &fakeRendererItem{name: name, kind: kind, flags: flags}
	return p
}

func (f *fakeNative) mediaOf(p uintptr) *fakeMedia {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.media[p]
}

func (f *fakeNative) attachCount(em uintptr, kind EventKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for sub, c := range f.attached {
		if sub.em == em && sub.kind == kind {
			n += c
		}
	}
	return n
}

func (f *fakeNative) detachCount(em uintptr, kind EventKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for sub, c := range f.detached {
		if sub.em == em && sub.kind == kind {
			n += c
		}
	}
	return n
}

// fire delivers ev to every live subscription of em for its kind, the way
// libvlc invokes the registered callback.
func (f *fakeNative) fire(em uintptr, ev *nativeEvent) {
	f.mu.Lock()
	var targets []uintptr
	for sub, c := range f.attached {
		if sub.em == em && sub.kind == EventKind(ev.kind) && c > f.detached[sub] {
			targets = append(targets, sub.data)
		}
	}
	f.mu.Unlock()
	for _, data := range targets {
		nativeEventCallbackForTest(data, ev)
	}
}

// nativeEventCallbackForTest invokes the callback entry point the way a
// native thread would.
func nativeEventCallbackForTest(userData uintptr, ev *nativeEvent) {
	nativeEventCallback(uintptr(unsafe.Pointer(ev)), userData)
}

func intEvent(kind EventKind, v int32) *nativeEvent {
	ev := &nativeEvent{kind: int32(kind)}
	*(*int32)(unsafe.Pointer(&ev.u)) = v
	return ev
}

func int64Event(kind EventKind, v int64) *nativeEvent {
	ev := &nativeEvent{kind: int32(kind)}
	*(*int64)(unsafe.Pointer(&ev.u)) = v
	return ev
}

func ptrEvent(kind EventKind, p uintptr, index int32) *nativeEvent {
	ev := &nativeEvent{kind: int32(kind)}
	*(*uintptr)(unsafe.Pointer(&ev.u)) = p
	*(*int32)(unsafe.Add(unsafe.Pointer(&ev.u), unsafe.Sizeof(uintptr(0)))) = index
	return ev
}

// library returns a Library whose native functions are backed by f.
func (f *fakeNative) library() *Library {
	l := &Library{path: "fake/libvlc.so"}

	l.libvlcNew = func(argc int32, argv uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.alloc()
	}
	l.libvlcRelease = f.release
	l.libvlcGetVersion = func() uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.cstr(f.version)
	}
	l.libvlcGetChangeset = func() uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.cstr("3.0.21-0-gfake")
	}
	l.libvlcSetUserAgent = func(inst uintptr, name, http string) {}
	l.libvlcSetAppID = func(inst uintptr, id, version, icon string) {}
	l.libvlcErrmsg = func() uintptr { return f.errmsg }
	l.libvlcFree = func(ptr uintptr) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.freed++
	}

	l.mediaNewPath = func(inst uintptr, path string) uintptr {
		if path == "" {
			return 0
		}
		return f.addMedia("file://" + path)
	}
	l.mediaNewLocation = func(inst uintptr, mrl string) uintptr { return f.addMedia(mrl) }
	l.mediaRetain = f.retain
	l.mediaRelease = f.release
	l.mediaGetMrl = func(m uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.cstr(f.media[m].mrl)
	}
	l.mediaGetMeta = func(m uintptr, meta int32) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		v, ok := f.media[m].meta[Meta(meta)]
		if !ok {
			return 0
		}
		return f.cstr(v)
	}
	l.mediaGetState = func(m uintptr) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		return int32(f.media[m].state)
	}
	l.mediaGetDuration = func(m uintptr) int64 {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.media[m].ms
	}
	l.mediaParseWithOptions = func(m uintptr, flags, timeoutMs int32) int32 {
		if f.onParse != nil {
			f.onParse(m)
		}
		return 0
	}
	l.mediaParseStop = func(m uintptr) {}
	l.mediaGetParsedStatus = func(m uintptr) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		return int32(f.media[m].parsed)
	}
	l.mediaSubitems = func(m uintptr) uintptr {
		f.mu.Lock()
		subs := f.media[m].subs
		f.mu.Unlock()
		if subs != 0 {
			f.retain(subs)
		}
		return subs
	}
	l.mediaEventManager = func(m uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.media[m].em
	}

	l.mediaListNew = func(inst uintptr) uintptr { return f.addList() }
	l.mediaListRetain = f.retain
	l.mediaListRelease = f.release
	l.mediaListLock = func(ml uintptr) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lists[ml].locked++
	}
	l.mediaListUnlock = func(ml uintptr) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lists[ml].locked--
	}
	l.mediaListAddMedia = func(ml, m uintptr) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := f.lists[ml]
		if list.readonly {
			return -1
		}
		list.items = append(list.items, m)
		f.refs[m]++
		return 0
	}
	l.mediaListInsertMedia = func(ml, m uintptr, index int32) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := f.lists[ml]
		if list.readonly || index < 0 || int(index) > len(list.items) {
			return -1
		}
		list.items = append(list.items[:index], append([]uintptr{m}, list.items[index:]...)...)
		f.refs[m]++
		return 0
	}
	l.mediaListRemoveIndex = func(ml uintptr, index int32) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := f.lists[ml]
		if list.readonly || index < 0 || int(index) >= len(list.items) {
			return -1
		}
		f.refs[list.items[index]]--
		list.items = append(list.items[:index], list.items[index+1:]...)
		return 0
	}
	l.mediaListCount = func(ml uintptr) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		return int32(len(f.lists[ml].items))
	}
	l.mediaListItemAtIndex = func(ml uintptr, index int32) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := f.lists[ml]
		if index < 0 || int(index) >= len(list.items) {
			return 0
		}
		m := list.items[index]
		f.refs[m]++
		return m
	}
	l.mediaListIsReadonly = func(ml uintptr) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.lists[ml].readonly {
			return 1
		}
		return 0
	}
	l.mediaListEventManager = func(ml uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.lists[ml].em
	}

	l.rendererItemHold = func(item uintptr) uintptr {
		f.retain(item)
		return item
	}
	l.rendererItemRelease = f.release
	l.rendererItemName = func(item uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.cstr(f.items[item].name)
	}
	l.rendererItemType = func(item uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.cstr(f.items[item].kind)
	}
	l.rendererItemIconURI = func(item uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.items[item].icon == "" {
			return 0
		}
		return f.cstr(f.items[item].icon)
	}
	l.rendererItemFlags = func(item uintptr) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.items[item].flags
	}

	l.rendererDiscovererNew = func(inst uintptr, name string) uintptr {
		if name == "" {
			return 0
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.alloc()
	}
	l.rendererDiscovererRelease = f.release
	l.rendererDiscovererStart = func(rd uintptr) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.started[rd] = true
		return 0
	}
	l.rendererDiscovererStop = func(rd uintptr) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.started[rd] = false
	}
	l.rendererDiscovererEventManager = func(rd uintptr) uintptr { return rd + 1 }
	l.rendererDiscovererListGet = func(inst uintptr, services uintptr) int {
		f.mu.Lock()
		defer f.mu.Unlock()
		if len(f.services) == 0 {
			return 0
		}
		ptrs := make([]uintptr, len(f.services))
		for i, s := range f.services {
			desc := &[2]uintptr{f.cstr(s.Name), f.cstr(s.LongName)}
			f.buffers = append(f.buffers, unsafe.Slice((*byte)(unsafe.Pointer(desc)), unsafe.Sizeof(*desc)))
			ptrs[i] = uintptr(unsafe.Pointer(desc))
		}
		f.buffers = append(f.buffers, unsafe.Slice((*byte)(unsafe.Pointer(&ptrs[0])), len(ptrs)*int(unsafe.Sizeof(uintptr(0)))))
		*(*uintptr)(unsafe.Pointer(services)) = uintptr(unsafe.Pointer(&ptrs[0]))
		return len(ptrs)
	}
	l.rendererDiscovererListRelease = func(services uintptr, count int) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.freed++
	}

	l.eventAttach = func(em uintptr, eventType int32, callback, userData uintptr) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.attached[fakeSub{em: em, kind: EventKind(eventType), data: userData}]++
		return 0
	}
	l.eventDetach = func(em uintptr, eventType int32, callback, userData uintptr) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.detached[fakeSub{em: em, kind: EventKind(eventType), data: userData}]++
	}
	return l
}

// newFakeLibrary returns a fake and its Library, reporting version.
func newFakeLibrary(t *testing.T, version string) (*fakeNative, *Library) {
	t.Helper()
	f := newFakeNative(version)
	return f, f.library()
}
