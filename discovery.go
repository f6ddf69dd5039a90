package libvlc

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is reported when no strategy located the native library.
	ErrNotFound = errors.New("native library not discovered")

	// ErrIncompatibleVersion is wrapped by LoadError when the loaded
	// library is older than the required minimum.
	ErrIncompatibleVersion = errors.New("incompatible libvlc version")
)

// LoadError reports a library that was found but could not be used.
type LoadError struct {
	Path     string
	Strategy string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load libvlc from %s (%s): %v", e.Path, e.Strategy, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DiscoveredPath records where the native library was found and by which
// strategy.
type DiscoveredPath struct {
	Path     string `yaml:"path"`
	Strategy string `yaml:"strategy"`
}

// Loader opens the native library given the current search path.
type Loader func(searchPath []string) (*Library, error)

// DiscoveryObserver receives discovery progress. Embed NopObserver to
// implement only some of the methods.
type DiscoveryObserver interface {
	Attempted(strategy DiscoveryStrategy)
	Found(path DiscoveredPath)
	LoadFailed(path DiscoveredPath, err error)
	NotFound()
}

// NopObserver implements DiscoveryObserver with no-ops.
type NopObserver struct{}

func (NopObserver) Attempted(DiscoveryStrategy)      {}
func (NopObserver) Found(DiscoveredPath)             {}
func (NopObserver) LoadFailed(DiscoveredPath, error) {}
func (NopObserver) NotFound()                        {}

// DiscoveryState holds the process-wide effects of discovery: the library
// search path, the loaded library and the outcome. Tests use a fresh state
// per case; applications keep one for the life of the process.
type DiscoveryState struct {
	// run serializes whole discovery runs; mu guards the fields.
	run sync.Mutex

	mu         sync.Mutex
	env        Environment
	searchPath []string
	found      bool
	path       DiscoveredPath
	lib        *Library
	err        error
}

// NewDiscoveryState returns an empty state bound to env. A nil env means
// the real process environment.
func NewDiscoveryState(env Environment) *DiscoveryState {
	if env == nil {
		env = ProcessEnvironment{}
	}
	return &DiscoveryState{env: env}
}

// AddSearchPath appends dir to the library search path. Entries are never
// removed.
func (s *DiscoveryState) AddSearchPath(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchPath = append(s.searchPath, dir)
}

// SearchPath returns a copy of the library search path.
func (s *DiscoveryState) SearchPath() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.searchPath)
}

// Environment returns the environment discovery reads and writes.
func (s *DiscoveryState) Environment() Environment { return s.env }

// Found returns the discovered path once discovery succeeded.
func (s *DiscoveryState) Found() (DiscoveredPath, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path, s.found
}

// Library returns the loaded library, or nil.
func (s *DiscoveryState) Library() *Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lib
}

// Err returns why the last discovery did not succeed: ErrNotFound or a
// *LoadError.
func (s *DiscoveryState) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *DiscoveryState) succeed(path DiscoveredPath, lib *Library) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.found = true
	s.path = path
	s.lib = lib
	s.err = nil
}

func (s *DiscoveryState) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// NativeDiscovery runs discovery strategies in order until one locates and
// loads a compatible libvlc.
type NativeDiscovery struct {
	strategies []DiscoveryStrategy
	loader     Loader
	observer   DiscoveryObserver
	minVersion Version
	log        *logrus.Entry
}

// DiscoveryOption configures a NativeDiscovery.
type DiscoveryOption func(*NativeDiscovery)

// WithStrategies replaces the whole strategy list.
func WithStrategies(strategies ...DiscoveryStrategy) DiscoveryOption {
	return func(d *NativeDiscovery) { d.strategies = slices.Clone(strategies) }
}

// WithLoader replaces LoadLibrary.
func WithLoader(loader Loader) DiscoveryOption {
	return func(d *NativeDiscovery) { d.loader = loader }
}

// WithObserver sets the progress observer.
func WithObserver(observer DiscoveryObserver) DiscoveryOption {
	return func(d *NativeDiscovery) { d.observer = observer }
}

// WithMinimumVersion overrides MinimumVersion.
func WithMinimumVersion(v Version) DiscoveryOption {
	return func(d *NativeDiscovery) { d.minVersion = v }
}

// WithLogger sets the log entry used for diagnostics.
func WithLogger(entry *logrus.Entry) DiscoveryOption {
	return func(d *NativeDiscovery) { d.log = entry }
}

// NewNativeDiscovery returns a coordinator using DefaultStrategies unless
// WithStrategies is given.
func NewNativeDiscovery(opts ...DiscoveryOption) *NativeDiscovery {
	d := &NativeDiscovery{
		loader:     LoadLibrary,
		observer:   NopObserver{},
		minVersion: MinimumVersion,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.strategies == nil {
		d.strategies = DefaultStrategies(nil)
	}
	if d.log == nil {
		d.log = logEntry()
	}
	return d
}

// Discover locates and loads libvlc, recording the outcome in state. Once a
// state has succeeded, further calls return true without side effects.
//
// A library that fails to load after its directory was added to the search
// path ends discovery: later directories would only be searched after the
// failing one, so trying other strategies cannot help.
//
// Concurrent calls on one state run one after another; a caller that waited
// for a successful run returns true without repeating it.
func (d *NativeDiscovery) Discover(state *DiscoveryState) bool {
	state.run.Lock()
	defer state.run.Unlock()
	return d.discover(state)
}

func (d *NativeDiscovery) discover(state *DiscoveryState) bool {
	if _, ok := state.Found(); ok {
		return true
	}
	state.fail(nil)

	var anyFound bool
	for _, strategy := range d.strategies {
		if !strategy.Supported() {
			continue
		}
		d.observer.Attempted(strategy)

		dir, ok := strategy.Discover()
		if !ok {
			d.log.WithField("strategy", strategy.Name()).Debug("no libvlc directory found")
			continue
		}

		anyFound = true
		found := DiscoveredPath{Path: dir, Strategy: strategy.Name()}
		log := d.log.WithFields(logrus.Fields{"strategy": found.Strategy, "path": found.Path})
		log.Debug("discovered libvlc directory")

		registered := strategy.OnFound(dir)
		if registered {
			state.AddSearchPath(dir)
		}

		if state.env.Getenv(EnvPluginPath) == "" {
			if strategy.OnSetPluginPath(state.env, dir) {
				log.WithField("plugin_path", state.env.Getenv(EnvPluginPath)).Debug("configured plugin path")
			}
		}

		lib, err := d.tryLoad(state)
		if err == nil {
			state.succeed(found, lib)
			log.Info("loaded libvlc")
			d.observer.Found(found)
			return true
		}

		loadErr := &LoadError{Path: found.Path, Strategy: found.Strategy, Err: err}
		state.fail(loadErr)
		log.WithError(err).Warn("failed to load discovered libvlc")
		d.observer.LoadFailed(found, err)
		if registered {
			return false
		}
	}

	if !anyFound {
		state.fail(ErrNotFound)
		d.log.Info("libvlc not discovered")
		d.observer.NotFound()
	}
	return false
}

func (d *NativeDiscovery) tryLoad(state *DiscoveryState) (*Library, error) {
	lib, err := d.loader(state.SearchPath())
	if err != nil {
		return nil, err
	}
	return lib, d.checkVersion(lib)
}

func (d *NativeDiscovery) checkVersion(lib *Library) error {
	v, err := lib.Version()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIncompatibleVersion, err)
	}
	if !v.AtLeast(d.minVersion) {
		return fmt.Errorf("%w: have %s, need %s", ErrIncompatibleVersion, v, d.minVersion)
	}
	return nil
}

// Load runs Discover and returns the library it loaded. When discovery does
// not succeed, a default load through the loader is still attempted, since
// the host environment may resolve libvlc on its own.
func (d *NativeDiscovery) Load(state *DiscoveryState) (*Library, error) {
	state.run.Lock()
	defer state.run.Unlock()

	if d.discover(state) {
		return state.Library(), nil
	}

	lib, err := d.tryLoad(state)
	if err == nil {
		d.log.WithField("path", lib.Path()).Info("loaded libvlc from default location")
		state.succeed(DiscoveredPath{Path: lib.Path(), Strategy: "default"}, lib)
		return lib, nil
	}

	var result *multierror.Error
	result = multierror.Append(result, state.Err(), err)
	return nil, result.ErrorOrNil()
}

var (
	defaultOnce  sync.Once
	defaultState *DiscoveryState
	defaultLib   *Library
	defaultErr   error
)

// LoadDefault discovers and loads libvlc once per process using the default
// strategies and the real environment.
func LoadDefault() (*Library, error) {
	defaultOnce.Do(func() {
		defaultState = NewDiscoveryState(nil)
		defaultLib, defaultErr = NewNativeDiscovery().Load(defaultState)
	})
	return defaultLib, defaultErr
}
