package libvlc

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
)

// purego callbacks are never freed, so one native entry point serves every
// bridge; user_data carries the bridge id.
var (
	eventCallbackOnce sync.Once
	eventCallbackPtr  uintptr

	activeBridges sync.Map // uintptr -> *EventBridge
	nextBridgeID  atomic.Uintptr
)

func eventCallback() uintptr {
	eventCallbackOnce.Do(func() {
		eventCallbackPtr = purego.NewCallback(nativeEventCallback)
	})
	return eventCallbackPtr
}

// nativeEventCallback runs on a libvlc thread.
func nativeEventCallback(event, userData uintptr) uintptr {
	if event == 0 {
		return 0
	}
	b, ok := activeBridges.Load(userData)
	if !ok {
		return 0
	}
	b.(*EventBridge).handle((*nativeEvent)(unsafe.Pointer(event)))
	return 0
}

func registerBridge(b *EventBridge) uintptr {
	id := nextBridgeID.Add(1)
	activeBridges.Store(id, b)
	return id
}

func unregisterBridge(id uintptr) {
	activeBridges.Delete(id)
}
