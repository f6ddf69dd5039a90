package libvlc

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// Instance is a libvlc_instance_t, the root object every media, list and
// discoverer is created from.
type Instance struct {
	lib *Library
	ptr atomic.Uintptr
}

// NewInstance creates a native instance with libVLC command-line style
// arguments, e.g. "--no-video-title-show".
func NewInstance(lib *Library, args ...string) (*Instance, error) {
	argv := newCStrings(args)
	ptr := lib.libvlcNew(argv.argc(), argv.argv())
	runtime.KeepAlive(argv)
	if ptr == 0 {
		return nil, fmt.Errorf("libvlc_new: %w", lib.lastError())
	}

	inst := &Instance{lib: lib}
	inst.ptr.Store(ptr)
	return inst, nil
}

// Library returns the library the instance was created from.
func (i *Instance) Library() *Library { return i.lib }

// Version reports the version of the library backing the instance.
func (i *Instance) Version() (Version, error) { return i.lib.Version() }

func (i *Instance) Changeset() string { return i.lib.Changeset() }

func (i *Instance) get() (uintptr, error) {
	p := i.ptr.Load()
	if p == 0 {
		return 0, ErrReleased
	}
	return p, nil
}

// Release destroys the native instance.
func (i *Instance) Release() error {
	p := i.ptr.Swap(0)
	if p == 0 {
		return ErrReleased
	}
	i.lib.libvlcRelease(p)
	return nil
}

// SetUserAgent sets the application name and the HTTP user agent libVLC
// reports.
func (i *Instance) SetUserAgent(name, http string) error {
	p, err := i.get()
	if err != nil {
		return err
	}
	i.lib.libvlcSetUserAgent(p, name, http)
	return nil
}

// SetAppID sets the application identification used by desktop
// integrations, e.g. "com.example.player".
func (i *Instance) SetAppID(id, version, icon string) error {
	p, err := i.get()
	if err != nil {
		return err
	}
	i.lib.libvlcSetAppID(p, id, version, icon)
	return nil
}

// NewMediaFromPath creates media for a local file path.
func (i *Instance) NewMediaFromPath(path string) (*MediaRef, error) {
	p, err := i.get()
	if err != nil {
		return nil, err
	}
	m := i.lib.mediaNewPath(p, path)
	if m == 0 {
		return nil, fmt.Errorf("media from path %q: %w", path, i.lib.lastError())
	}
	return newMediaRef(i.lib, m), nil
}

// NewMediaFromMRL creates media for a location such as
// "http://example.com/stream.mp4" or "screen://".
func (i *Instance) NewMediaFromMRL(mrl string) (*MediaRef, error) {
	p, err := i.get()
	if err != nil {
		return nil, err
	}
	m := i.lib.mediaNewLocation(p, mrl)
	if m == 0 {
		return nil, fmt.Errorf("media from mrl %q: %w", mrl, i.lib.lastError())
	}
	return newMediaRef(i.lib, m), nil
}

// NewMediaList creates an empty media list.
func (i *Instance) NewMediaList() (*MediaListRef, error) {
	p, err := i.get()
	if err != nil {
		return nil, err
	}
	ml := i.lib.mediaListNew(p)
	if ml == 0 {
		return nil, fmt.Errorf("media list: %w", i.lib.lastError())
	}
	return newMediaListRef(i.lib, ml), nil
}
