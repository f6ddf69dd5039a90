package libvlc

import (
	"path/filepath"
	"runtime"
)

// Strategy names reported in DiscoveredPath.
const (
	StrategyLinux   = "linux"
	StrategyWindows = "windows"
	StrategyOSX     = "osx"
)

// NewLinuxStrategy finds libvlc.so and libvlccore.so on Linux and FreeBSD.
func NewLinuxStrategy(providers *DirectoryProviders) *DirectoryStrategy {
	s := mustDirectoryStrategy(StrategyLinux,
		[]string{`libvlc\.so(?:\.\d+)*`, `libvlccore\.so(?:\.\d+)*`},
		[]string{"%s/plugins", "%s/vlc/plugins"},
		providers,
	)
	s.supported = func() bool {
		switch runtime.GOOS {
		case "linux", "freebsd":
			return true
		}
		return false
	}
	return s
}

// NewWindowsStrategy finds libvlc.dll and libvlccore.dll. The discovered
// directory is also added to the DLL search path so libvlc.dll can resolve
// libvlccore.dll.
func NewWindowsStrategy(providers *DirectoryProviders) *DirectoryStrategy {
	s := mustDirectoryStrategy(StrategyWindows,
		[]string{`libvlc\.dll`, `libvlccore\.dll`},
		[]string{`%s\plugins`},
		providers,
	)
	s.supported = func() bool { return runtime.GOOS == "windows" }
	s.onFound = func(dir string) bool {
		if err := addDllDirectory(dir); err != nil {
			logEntry().WithField("dir", dir).WithError(err).Warn("failed to add DLL directory")
		}
		return true
	}
	return s
}

// NewOSXStrategy finds libvlc.dylib and libvlccore.dylib inside a VLC.app
// bundle or a plain install. libvlccore is loaded globally first because
// libvlc.dylib references it through a loader-relative path.
func NewOSXStrategy(providers *DirectoryProviders) *DirectoryStrategy {
	s := mustDirectoryStrategy(StrategyOSX,
		[]string{`libvlc\.dylib`, `libvlccore\.dylib`},
		[]string{"%s/../plugins"},
		providers,
	)
	s.supported = func() bool { return runtime.GOOS == "darwin" }
	s.onFound = func(dir string) bool {
		core := filepath.Join(dir, "libvlccore.dylib")
		if err := preloadLibrary(core); err != nil {
			logEntry().WithField("path", core).WithError(err).Warn("failed to preload libvlccore")
		}
		return true
	}
	return s
}

// DefaultStrategies returns the Linux, Windows and macOS strategies sharing
// one provider registry. Only the one matching the running OS is supported.
func DefaultStrategies(providers *DirectoryProviders) []DiscoveryStrategy {
	if providers == nil {
		providers = DefaultDirectoryProviders()
	}
	return []DiscoveryStrategy{
		NewLinuxStrategy(providers),
		NewWindowsStrategy(providers),
		NewOSXStrategy(providers),
	}
}
