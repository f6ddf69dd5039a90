//go:build windows

package libvlc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var procPutenvS = windows.NewLazySystemDLL("msvcrt.dll").NewProc("_putenv_s")

// nativeSetenv updates the CRT environment block that libvlc.dll reads
// through getenv; SetEnvironmentVariable alone is not visible to it.
func nativeSetenv(key, value string) error {
	if err := procPutenvS.Find(); err != nil {
		return err
	}
	k, err := windows.BytePtrFromString(key)
	if err != nil {
		return err
	}
	v, err := windows.BytePtrFromString(value)
	if err != nil {
		return err
	}
	rc, _, _ := procPutenvS.Call(uintptr(unsafe.Pointer(k)), uintptr(unsafe.Pointer(v)))
	if rc != 0 {
		return fmt.Errorf("_putenv_s returned %d", rc)
	}
	return nil
}
