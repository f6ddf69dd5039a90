//go:build windows

package libvlc

import (
	"golang.org/x/sys/windows"
)

func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibraryEx(path, 0, windows.LOAD_WITH_ALTERED_SEARCH_PATH)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

func preloadLibrary(path string) error {
	_, err := openLibrary(path)
	return err
}

// addDllDirectory lets the loader resolve libvlccore.dll and friends from
// dir when libvlc.dll is opened.
func addDllDirectory(dir string) error {
	return windows.SetDllDirectory(dir)
}

func libraryNames() []string {
	return []string{"libvlc.dll"}
}
