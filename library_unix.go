//go:build darwin || freebsd || linux

package libvlc

import (
	"runtime"

	"github.com/ebitengine/purego"
)

func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

// preloadLibrary loads path with global symbol visibility so libraries
// opened later can bind against it.
func preloadLibrary(path string) error {
	_, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	return err
}

func addDllDirectory(string) error { return nil }

func libraryNames() []string {
	if runtime.GOOS == "darwin" {
		return []string{"libvlc.dylib", "libvlc.5.dylib"}
	}
	return []string{"libvlc.so", "libvlc.so.5"}
}
