package libvlc

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// DiscoveryStrategy locates the directory holding the native libraries on
// one family of platforms.
type DiscoveryStrategy interface {
	// Name identifies the strategy in DiscoveredPath and log output.
	Name() string

	// Supported reports whether the strategy applies to the running OS.
	Supported() bool

	// Discover returns the first candidate directory containing every
	// required library file.
	Discover() (string, bool)

	// OnFound runs once a directory is found and reports whether the
	// directory should be added to the library search path.
	OnFound(dir string) bool

	// OnSetPluginPath sets VLC_PLUGIN_PATH from the discovered directory
	// and reports whether a plugin directory was found and set.
	OnSetPluginPath(env Environment, dir string) bool
}

// DirectoryStrategy is the shared discovery algorithm: a directory matches
// when the union of its file names covers every required pattern.
type DirectoryStrategy struct {
	name              string
	supported         func() bool
	patterns          []*regexp.Regexp
	pluginPathFormats []string
	providers         *DirectoryProviders
	onFound           func(dir string) bool
}

// NewDirectoryStrategy builds a strategy from filename patterns and plugin
// path formats. Patterns are anchored to the whole file name. Each plugin
// path format receives the discovered directory as its single %s verb.
func NewDirectoryStrategy(name string, patterns, pluginPathFormats []string, providers *DirectoryProviders) (*DirectoryStrategy, error) {
	s := &DirectoryStrategy{
		name:              name,
		supported:         func() bool { return true },
		pluginPathFormats: pluginPathFormats,
		providers:         providers,
	}
	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)$`)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: invalid pattern %q: %w", name, p, err)
		}
		s.patterns = append(s.patterns, re)
	}
	if s.providers == nil {
		s.providers = DefaultDirectoryProviders()
	}
	return s, nil
}

func mustDirectoryStrategy(name string, patterns, pluginPathFormats []string, providers *DirectoryProviders) *DirectoryStrategy {
	s, err := NewDirectoryStrategy(name, patterns, pluginPathFormats, providers)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *DirectoryStrategy) Name() string { return s.name }

func (s *DirectoryStrategy) Supported() bool { return s.supported() }

// Discover walks the provider directories in priority order.
func (s *DirectoryStrategy) Discover() (string, bool) {
	for _, dir := range s.providers.Directories() {
		if s.matches(dir) {
			abs, err := filepath.Abs(dir)
			if err != nil {
				abs = dir
			}
			return abs, true
		}
	}
	return "", false
}

// matches lists dir without recursing. A listing error counts as a miss.
func (s *DirectoryStrategy) matches(dir string) bool {
	if len(s.patterns) == 0 {
		return false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		logEntry().WithField("dir", dir).WithError(err).Trace("skip unreadable directory")
		return false
	}

	matched := make([]bool, len(s.patterns))
	remaining := len(s.patterns)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for i, re := range s.patterns {
			if !matched[i] && re.MatchString(e.Name()) {
				matched[i] = true
				remaining--
			}
		}
		if remaining == 0 {
			return true
		}
	}
	return false
}

func (s *DirectoryStrategy) OnFound(dir string) bool {
	if s.onFound != nil {
		return s.onFound(dir)
	}
	return true
}

// OnSetPluginPath tries each plugin path format and sets VLC_PLUGIN_PATH to
// the first one naming an existing directory.
func (s *DirectoryStrategy) OnSetPluginPath(env Environment, dir string) bool {
	for _, format := range s.pluginPathFormats {
		candidate := filepath.Clean(fmt.Sprintf(format, dir))
		info, err := os.Stat(candidate)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := env.Setenv(EnvPluginPath, candidate); err != nil {
			logEntry().WithField("path", candidate).WithError(err).Warn("failed to set plugin path")
			return false
		}
		logEntry().WithField("path", candidate).Debug("set plugin path")
		return true
	}
	return false
}
