//go:build windows

package libvlc

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// windowsInstallDirectories returns the VLC install directory recorded by
// the installer, followed by the default Program Files locations.
func windowsInstallDirectories() []string {
	var dirs []string
	for _, access := range []uint32{registry.WOW64_64KEY, registry.WOW64_32KEY} {
		if dir := registryInstallDir(access); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	for _, key := range []string{"ProgramFiles", "ProgramFiles(x86)", "ProgramW6432"} {
		if base := os.Getenv(key); base != "" {
			dirs = append(dirs, filepath.Join(base, "VideoLAN", "VLC"))
		}
	}
	return dirs
}

func registryInstallDir(access uint32) string {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\VideoLAN\VLC`, registry.QUERY_VALUE|access)
	if err != nil {
		return ""
	}
	defer k.Close()

	dir, _, err := k.GetStringValue("InstallDir")
	if err != nil {
		return ""
	}
	return dir
}
