package libvlc

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// RendererDescription names a renderer discoverer service, e.g.
// {"microdns_renderer", "mDNS renderer"}.
type RendererDescription struct {
	Name     string `yaml:"name"`
	LongName string `yaml:"long_name"`
}

// RendererDiscoverers lists the renderer discovery services libVLC offers.
func (i *Instance) RendererDiscoverers() ([]RendererDescription, error) {
	p, err := i.get()
	if err != nil {
		return nil, err
	}

	// libvlc_rd_description_t **services
	var services uintptr
	n := i.lib.rendererDiscovererListGet(p, uintptr(unsafe.Pointer(&services)))
	if n <= 0 || services == 0 {
		return nil, nil
	}
	defer i.lib.rendererDiscovererListRelease(services, n)

	descs := make([]RendererDescription, 0, n)
	for _, d := range unsafe.Slice((**[2]uintptr)(unsafe.Pointer(services)), n) {
		if d == nil {
			continue
		}
		descs = append(descs, RendererDescription{
			Name:     goStringFromPtr(d[0]),
			LongName: goStringFromPtr(d[1]),
		})
	}
	return descs, nil
}

// RendererDiscoverer finds renderers such as Chromecast devices and reports
// them as EventRendererDiscovererItemAdded/Deleted events carrying a
// RendererItem.
type RendererDiscoverer struct {
	lib     *Library
	ptr     atomic.Uintptr
	events  *EventBridge
	running atomic.Bool
}

// NewRendererDiscoverer creates a discoverer for a service name returned by
// RendererDiscoverers.
func (i *Instance) NewRendererDiscoverer(name string, opts ...BridgeOption) (*RendererDiscoverer, error) {
	p, err := i.get()
	if err != nil {
		return nil, err
	}
	rd := i.lib.rendererDiscovererNew(p, name)
	if rd == 0 {
		return nil, fmt.Errorf("renderer discoverer %q: %w", name, i.lib.lastError())
	}

	d := &RendererDiscoverer{lib: i.lib}
	d.ptr.Store(rd)
	d.events = newEventBridge(i.lib, i.lib.rendererDiscovererEventManager(rd), rendererDiscovererEventKinds, opts...)
	return d, nil
}

// Events returns the discoverer's event bridge.
func (d *RendererDiscoverer) Events() *EventBridge { return d.events }

// Start begins discovery.
func (d *RendererDiscoverer) Start() error {
	p := d.ptr.Load()
	if p == 0 {
		return ErrReleased
	}
	if rc := d.lib.rendererDiscovererStart(p); rc != 0 {
		return fmt.Errorf("start renderer discoverer: %w", d.lib.lastError())
	}
	d.running.Store(true)
	return nil
}

// Stop ends discovery. Items already reported stay valid until released.
func (d *RendererDiscoverer) Stop() error {
	p := d.ptr.Load()
	if p == 0 {
		return ErrReleased
	}
	if d.running.CompareAndSwap(true, false) {
		d.lib.rendererDiscovererStop(p)
	}
	return nil
}

// Release stops discovery, detaches events and frees the discoverer.
func (d *RendererDiscoverer) Release() error {
	if err := d.Stop(); err != nil {
		return err
	}
	p := d.ptr.Swap(0)
	if p == 0 {
		return ErrReleased
	}
	d.events.Release()
	d.lib.rendererDiscovererRelease(p)
	return nil
}
