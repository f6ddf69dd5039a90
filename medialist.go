package libvlc

import (
	"fmt"
)

// MediaList is a media list with an attached event bridge.
type MediaList struct {
	ref    *MediaListRef
	events *EventBridge
}

func newMediaList(ref *MediaListRef, opts ...BridgeOption) *MediaList {
	var em uintptr
	if p, err := ref.get(); err == nil {
		em = ref.lib.mediaListEventManager(p)
	}
	return &MediaList{
		ref:    ref,
		events: newEventBridge(ref.lib, em, mediaListEventKinds, opts...),
	}
}

// Ref returns the reference the component owns.
func (l *MediaList) Ref() *MediaListRef { return l.ref }

// Events returns the list's event bridge.
func (l *MediaList) Events() *EventBridge { return l.events }

// withLock runs fn with the native list lock held.
func (l *MediaList) withLock(fn func(p uintptr) error) error {
	p, err := l.ref.get()
	if err != nil {
		return err
	}
	lib := l.ref.lib
	lib.mediaListLock(p)
	defer lib.mediaListUnlock(p)
	return fn(p)
}

// Add appends media. The list takes its own reference; the caller keeps
// theirs.
func (l *MediaList) Add(m *MediaRef) error {
	mp, err := m.get()
	if err != nil {
		return err
	}
	return l.withLock(func(p uintptr) error {
		if rc := l.ref.lib.mediaListAddMedia(p, mp); rc != 0 {
			return fmt.Errorf("add media: %w", l.ref.lib.lastError())
		}
		return nil
	})
}

// Insert places media at index.
func (l *MediaList) Insert(index int, m *MediaRef) error {
	mp, err := m.get()
	if err != nil {
		return err
	}
	return l.withLock(func(p uintptr) error {
		if rc := l.ref.lib.mediaListInsertMedia(p, mp, int32(index)); rc != 0 {
			return fmt.Errorf("insert media at %d: %w", index, l.ref.lib.lastError())
		}
		return nil
	})
}

// Remove deletes the item at index.
func (l *MediaList) Remove(index int) error {
	return l.withLock(func(p uintptr) error {
		if rc := l.ref.lib.mediaListRemoveIndex(p, int32(index)); rc != 0 {
			return fmt.Errorf("remove media at %d: %w", index, l.ref.lib.lastError())
		}
		return nil
	})
}

// Count returns the number of items.
func (l *MediaList) Count() (int, error) {
	var n int
	err := l.withLock(func(p uintptr) error {
		n = int(l.ref.lib.mediaListCount(p))
		return nil
	})
	return n, err
}

// Item returns a new reference to the media at index. The caller must
// release it.
func (l *MediaList) Item(index int) (*MediaRef, error) {
	var ref *MediaRef
	err := l.withLock(func(p uintptr) error {
		m := l.ref.lib.mediaListItemAtIndex(p, int32(index))
		if m == 0 {
			return fmt.Errorf("item %d: %w", index, l.ref.lib.lastError())
		}
		ref = newMediaRef(l.ref.lib, m)
		return nil
	})
	return ref, err
}

// Items returns new references to every item, in order.
func (l *MediaList) Items() ([]*MediaRef, error) {
	var refs []*MediaRef
	err := l.withLock(func(p uintptr) error {
		n := l.ref.lib.mediaListCount(p)
		for i := int32(0); i < n; i++ {
			if m := l.ref.lib.mediaListItemAtIndex(p, i); m != 0 {
				refs = append(refs, newMediaRef(l.ref.lib, m))
			}
		}
		return nil
	})
	return refs, err
}

// ReadOnly reports whether the list rejects modification, as sub item
// lists do.
func (l *MediaList) ReadOnly() (bool, error) {
	p, err := l.ref.get()
	if err != nil {
		return false, err
	}
	return l.ref.lib.mediaListIsReadonly(p) != 0, nil
}

// Release detaches events and drops the component's reference.
func (l *MediaList) Release() error {
	l.events.Release()
	return l.ref.Release()
}
