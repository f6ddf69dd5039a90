package libvlc

import (
	"errors"
	"sync/atomic"
)

// ErrReleased is returned by any operation on a reference after Release.
var ErrReleased = errors.New("native reference used after release")

// nativeRef owns one count of a native reference-counted object. The
// pointer is cleared exactly once by release.
type nativeRef struct {
	ptr atomic.Uintptr
}

func (r *nativeRef) init(ptr uintptr) { r.ptr.Store(ptr) }

// get returns the native pointer or ErrReleased.
func (r *nativeRef) get() (uintptr, error) {
	p := r.ptr.Load()
	if p == 0 {
		return 0, ErrReleased
	}
	return p, nil
}

// take clears the pointer and returns the previous value; only the first
// caller receives it.
func (r *nativeRef) take() (uintptr, error) {
	p := r.ptr.Swap(0)
	if p == 0 {
		return 0, ErrReleased
	}
	return p, nil
}

// Released reports whether Release has been called.
func (r *nativeRef) Released() bool { return r.ptr.Load() == 0 }

// MediaRef owns one reference to a native libvlc_media_t.
type MediaRef struct {
	lib *Library
	nativeRef
}

// newMediaRef adopts ptr, which must already carry a count for the caller.
func newMediaRef(lib *Library, ptr uintptr) *MediaRef {
	r := &MediaRef{lib: lib}
	r.init(ptr)
	return r
}

// retainMediaRef takes an additional count on ptr.
func retainMediaRef(lib *Library, ptr uintptr) *MediaRef {
	lib.mediaRetain(ptr)
	return newMediaRef(lib, ptr)
}

// Retain returns a new reference to the same native media.
func (r *MediaRef) Retain() (*MediaRef, error) {
	p, err := r.get()
	if err != nil {
		return nil, err
	}
	return retainMediaRef(r.lib, p), nil
}

// Release gives back this reference's count. Calling it twice returns
// ErrReleased and does not touch the native object.
func (r *MediaRef) Release() error {
	p, err := r.take()
	if err != nil {
		return err
	}
	r.lib.mediaRelease(p)
	return nil
}

// NewMedia returns a Media component holding its own reference to the same
// native media; r stays valid and must still be released by its owner.
func (r *MediaRef) NewMedia(opts ...BridgeOption) (*Media, error) {
	ref, err := r.Retain()
	if err != nil {
		return nil, err
	}
	return newMedia(ref, opts...), nil
}

// Library returns the library the media belongs to.
func (r *MediaRef) Library() *Library { return r.lib }

// MRL returns the media resource locator.
func (r *MediaRef) MRL() (string, error) {
	p, err := r.get()
	if err != nil {
		return "", err
	}
	return r.lib.takeString(r.lib.mediaGetMrl(p)), nil
}

// MediaListRef owns one reference to a native libvlc_media_list_t.
type MediaListRef struct {
	lib *Library
	nativeRef
}

func newMediaListRef(lib *Library, ptr uintptr) *MediaListRef {
	r := &MediaListRef{lib: lib}
	r.init(ptr)
	return r
}

func retainMediaListRef(lib *Library, ptr uintptr) *MediaListRef {
	lib.mediaListRetain(ptr)
	return newMediaListRef(lib, ptr)
}

// Retain returns a new reference to the same native list.
func (r *MediaListRef) Retain() (*MediaListRef, error) {
	p, err := r.get()
	if err != nil {
		return nil, err
	}
	return retainMediaListRef(r.lib, p), nil
}

// Release gives back this reference's count.
func (r *MediaListRef) Release() error {
	p, err := r.take()
	if err != nil {
		return err
	}
	r.lib.mediaListRelease(p)
	return nil
}

// NewMediaList returns a MediaList component holding its own reference.
func (r *MediaListRef) NewMediaList(opts ...BridgeOption) (*MediaList, error) {
	ref, err := r.Retain()
	if err != nil {
		return nil, err
	}
	return newMediaList(ref, opts...), nil
}

// Renderer capability flags reported by libvlc_renderer_item_flags.
const (
	RendererCanAudio = 0x0001
	RendererCanVideo = 0x0002
)

// RendererItem owns one hold on a native libvlc_renderer_item_t, such as a
// Chromecast found by a RendererDiscoverer.
type RendererItem struct {
	lib *Library
	nativeRef
}

func holdRendererItem(lib *Library, ptr uintptr) *RendererItem {
	r := &RendererItem{lib: lib}
	r.init(lib.rendererItemHold(ptr))
	return r
}

// Retain returns a new hold on the same renderer item.
func (r *RendererItem) Retain() (*RendererItem, error) {
	p, err := r.get()
	if err != nil {
		return nil, err
	}
	return holdRendererItem(r.lib, p), nil
}

// Release gives back this hold.
func (r *RendererItem) Release() error {
	p, err := r.take()
	if err != nil {
		return err
	}
	r.lib.rendererItemRelease(p)
	return nil
}

// Name returns the human readable renderer name.
func (r *RendererItem) Name() (string, error) {
	p, err := r.get()
	if err != nil {
		return "", err
	}
	return goStringFromPtr(r.lib.rendererItemName(p)), nil
}

// Type returns the renderer type, e.g. "chromecast".
func (r *RendererItem) Type() (string, error) {
	p, err := r.get()
	if err != nil {
		return "", err
	}
	return goStringFromPtr(r.lib.rendererItemType(p)), nil
}

// IconURI returns the renderer icon URI, or "" if it has none.
func (r *RendererItem) IconURI() (string, error) {
	p, err := r.get()
	if err != nil {
		return "", err
	}
	return goStringFromPtr(r.lib.rendererItemIconURI(p)), nil
}

// Flags returns the raw capability flags.
func (r *RendererItem) Flags() (int, error) {
	p, err := r.get()
	if err != nil {
		return 0, err
	}
	return int(r.lib.rendererItemFlags(p)), nil
}

// CanAudio reports whether the renderer accepts audio.
func (r *RendererItem) CanAudio() bool {
	flags, err := r.Flags()
	return err == nil && flags&RendererCanAudio != 0
}

// CanVideo reports whether the renderer accepts video.
func (r *RendererItem) CanVideo() bool {
	flags, err := r.Flags()
	return err == nil && flags&RendererCanVideo != 0
}
