package libvlc

import (
	"cmp"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// Provider priorities. Lower values are searched first.
const (
	PriorityConfig      = -30
	PriorityLibraryPath = -20
	PriorityUserDir     = -10
	PrioritySystemPath  = 0
	PriorityWellKnown   = 10
)

// EnvLibraryPath names an extra directory to search for libvlc before any
// system location.
const EnvLibraryPath = "LIBVLC_LIB_PATH"

// DirectoryProvider supplies candidate directories to search for the native
// library.
type DirectoryProvider interface {
	// Priority orders providers; lower values are consulted first.
	Priority() int

	// Directories returns candidate directories in the provider's own order.
	Directories() []string

	// Supported reports whether the provider applies to this platform.
	Supported() bool
}

// DirectoryProviders is an ordered registry of DirectoryProvider values.
type DirectoryProviders struct {
	mu        sync.RWMutex
	providers []DirectoryProvider
}

// NewDirectoryProviders returns a registry holding providers in
// registration order.
func NewDirectoryProviders(providers ...DirectoryProvider) *DirectoryProviders {
	return &DirectoryProviders{providers: slices.Clone(providers)}
}

// DefaultDirectoryProviders returns the built-in providers: library path
// environment variable, working directory, PATH, and the platform's
// well-known install locations.
func DefaultDirectoryProviders() *DirectoryProviders {
	return NewDirectoryProviders(
		NewEnvDirectoryProvider(PriorityLibraryPath, EnvLibraryPath),
		UserDirProvider{},
		NewEnvDirectoryProvider(PrioritySystemPath, "PATH"),
		WellKnownDirectoryProvider{},
	)
}

// Register appends a provider. Providers with equal priority keep
// registration order.
func (r *DirectoryProviders) Register(p DirectoryProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// Directories returns the directories of every supported provider, sorted
// by ascending priority. The sort is stable and each provider's own
// directory order is preserved.
func (r *DirectoryProviders) Directories() []string {
	r.mu.RLock()
	supported := make([]DirectoryProvider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Supported() {
			supported = append(supported, p)
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(supported, func(a, b DirectoryProvider) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})

	var dirs []string
	for _, p := range supported {
		for _, d := range p.Directories() {
			if d != "" {
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}

// StaticDirectoryProvider returns a fixed directory list.
type StaticDirectoryProvider struct {
	Prio int
	Dirs []string
}

func (p StaticDirectoryProvider) Priority() int         { return p.Prio }
func (p StaticDirectoryProvider) Directories() []string { return slices.Clone(p.Dirs) }
func (p StaticDirectoryProvider) Supported() bool       { return true }

// EnvDirectoryProvider splits an environment variable on the platform list
// separator.
type EnvDirectoryProvider struct {
	prio int
	key  string
	env  Environment
}

// NewEnvDirectoryProvider reads key from the process environment.
func NewEnvDirectoryProvider(priority int, key string) EnvDirectoryProvider {
	return EnvDirectoryProvider{prio: priority, key: key, env: ProcessEnvironment{}}
}

// WithEnvironment returns a copy reading from env instead of the process.
func (p EnvDirectoryProvider) WithEnvironment(env Environment) EnvDirectoryProvider {
	p.env = env
	return p
}

func (p EnvDirectoryProvider) Priority() int   { return p.prio }
func (p EnvDirectoryProvider) Supported() bool { return true }

func (p EnvDirectoryProvider) Directories() []string {
	env := p.env
	if env == nil {
		env = ProcessEnvironment{}
	}
	value := env.Getenv(p.key)
	if value == "" {
		return nil
	}
	var dirs []string
	for _, d := range filepath.SplitList(value) {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// UserDirProvider searches the current working directory.
type UserDirProvider struct{}

func (UserDirProvider) Priority() int   { return PriorityUserDir }
func (UserDirProvider) Supported() bool { return true }

func (UserDirProvider) Directories() []string {
	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	return []string{wd}
}

// WellKnownDirectoryProvider lists the directories VLC is commonly installed
// to on the running platform.
type WellKnownDirectoryProvider struct{}

func (WellKnownDirectoryProvider) Priority() int   { return PriorityWellKnown }
func (WellKnownDirectoryProvider) Supported() bool { return true }

func (WellKnownDirectoryProvider) Directories() []string {
	switch runtime.GOOS {
	case "linux", "freebsd":
		return []string{
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/lib64",
			"/usr/local/lib64",
			"/usr/lib/i386-linux-gnu",
			"/usr/lib",
			"/usr/local/lib",
		}
	case "darwin":
		dirs := []string{
			"/Applications/VLC.app/Contents/Frameworks",
			"/Applications/VLC.app/Contents/MacOS/lib",
		}
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs,
				filepath.Join(home, "Applications", "VLC.app", "Contents", "Frameworks"),
				filepath.Join(home, "Applications", "VLC.app", "Contents", "MacOS", "lib"),
			)
		}
		return dirs
	case "windows":
		return windowsInstallDirectories()
	}
	return nil
}
