//go:build darwin || freebsd || linux

package libvlc

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	libcSetenvOnce sync.Once
	libcSetenv     func(name, value string, overwrite int32) int32
	libcSetenvErr  error
)

// nativeSetenv calls setenv(3) so that getenv from native code observes the
// value; os.Setenv alone does not reach the C environment without cgo.
func nativeSetenv(key, value string) error {
	libcSetenvOnce.Do(func() {
		sym, err := purego.Dlsym(purego.RTLD_DEFAULT, "setenv")
		if err != nil {
			libcSetenvErr = err
			return
		}
		purego.RegisterFunc(&libcSetenv, sym)
	})
	if libcSetenvErr != nil {
		return libcSetenvErr
	}
	if rc := libcSetenv(key, value, 1); rc != 0 {
		return fmt.Errorf("setenv returned %d", rc)
	}
	return nil
}
