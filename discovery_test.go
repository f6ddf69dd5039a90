package libvlc

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
)

type fakeStrategy struct {
	name       string
	supported  bool
	dir        string
	found      bool
	register   bool
	pluginPath string

	discoverCalls int
	onFoundCalls  int
}

func (s *fakeStrategy) Name() string    { return s.name }
func (s *fakeStrategy) Supported() bool { return s.supported }

func (s *fakeStrategy) Discover() (string, bool) {
	s.discoverCalls++
	return s.dir, s.found
}

func (s *fakeStrategy) OnFound(string) bool {
	s.onFoundCalls++
	return s.register
}

func (s *fakeStrategy) OnSetPluginPath(env Environment, dir string) bool {
	if s.pluginPath == "" {
		return false
	}
	return env.Setenv(EnvPluginPath, s.pluginPath) == nil
}

func foundStrategy(name, dir string) *fakeStrategy {
	return &fakeStrategy{name: name, supported: true, dir: dir, found: true, register: true}
}

// recordingLoader returns lib, or the error at index n of errs for the n-th
// call, and records every search path it was given.
type recordingLoader struct {
	lib   *Library
	errs  []error
	calls [][]string
}

func (l *recordingLoader) load(searchPath []string) (*Library, error) {
	n := len(l.calls)
	l.calls = append(l.calls, searchPath)
	if n < len(l.errs) && l.errs[n] != nil {
		return nil, l.errs[n]
	}
	if l.lib == nil {
		return nil, ErrLibraryNotFound
	}
	return l.lib, nil
}

type recordingObserver struct {
	NopObserver
	attempted  []string
	found      []DiscoveredPath
	loadFailed []DiscoveredPath
	notFound   int
}

func (o *recordingObserver) Attempted(s DiscoveryStrategy) { o.attempted = append(o.attempted, s.Name()) }
func (o *recordingObserver) Found(p DiscoveredPath)        { o.found = append(o.found, p) }
func (o *recordingObserver) NotFound()                     { o.notFound++ }

func (o *recordingObserver) LoadFailed(p DiscoveredPath, err error) {
	o.loadFailed = append(o.loadFailed, p)
}

func TestDiscover_Success(t *testing.T) {
	_, lib := newFakeLibrary(t, "3.0.21 Vetinari")
	loader := &recordingLoader{lib: lib}
	obs := &recordingObserver{}
	s := foundStrategy("linux", "/opt/vlc/lib")

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(s), WithLoader(loader.load), WithObserver(obs))

	if !d.Discover(state) {
		t.Fatalf("Discover() = false, err = %v", state.Err())
	}
	path, ok := state.Found()
	if !ok || path.Path != "/opt/vlc/lib" || path.Strategy != "linux" {
		t.Errorf("Found() = %+v, %v", path, ok)
	}
	if state.Library() != lib {
		t.Error("Library() is not the loaded library")
	}
	if !slices.Equal(state.SearchPath(), []string{"/opt/vlc/lib"}) {
		t.Errorf("SearchPath() = %v", state.SearchPath())
	}
	if len(obs.found) != 1 || obs.notFound != 0 {
		t.Errorf("observer found=%v notFound=%d", obs.found, obs.notFound)
	}
}

func TestDiscover_Idempotent(t *testing.T) {
	_, lib := newFakeLibrary(t, "3.0.21")
	loader := &recordingLoader{lib: lib}
	s := foundStrategy("linux", "/opt/vlc/lib")

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(s), WithLoader(loader.load))

	for i := 0; i < 3; i++ {
		if !d.Discover(state) {
			t.Fatalf("Discover() #%d = false", i)
		}
	}
	if s.discoverCalls != 1 || s.onFoundCalls != 1 {
		t.Errorf("strategy ran %d/%d times, want once", s.discoverCalls, s.onFoundCalls)
	}
	if len(loader.calls) != 1 {
		t.Errorf("loader called %d times, want 1", len(loader.calls))
	}
	if got := state.SearchPath(); len(got) != 1 {
		t.Errorf("SearchPath() = %v, want a single entry", got)
	}
}

func TestDiscover_ConcurrentCallersShareOneRun(t *testing.T) {
	_, lib := newFakeLibrary(t, "3.0.21")
	var calls atomic.Int32
	slow := func([]string) (*Library, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return lib, nil
	}
	s := foundStrategy("linux", "/opt/vlc/lib")

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(s), WithLoader(slow))

	const callers = 4
	var wg sync.WaitGroup
	results := make([]bool, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = d.Discover(state)
				return
			}
			got, err := d.Load(state)
			results[i] = err == nil && got == lib
		}()
	}
	wg.Wait()

	for i, ok := range results {
		if !ok {
			t.Errorf("caller %d did not see the loaded library", i)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
	if got := state.SearchPath(); !slices.Equal(got, []string{"/opt/vlc/lib"}) {
		t.Errorf("SearchPath() = %v, want a single entry", got)
	}
}

func TestDiscover_StopsAfterRegisteredLoadFailure(t *testing.T) {
	boom := errors.New("bad ELF header")
	_, lib := newFakeLibrary(t, "3.0.21")
	loader := &recordingLoader{lib: lib, errs: []error{boom}}
	first := foundStrategy("first", "/broken")
	second := foundStrategy("second", "/good")
	obs := &recordingObserver{}

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(first, second), WithLoader(loader.load), WithObserver(obs))

	if d.Discover(state) {
		t.Fatal("Discover() = true after a registered load failure")
	}
	if second.discoverCalls != 0 {
		t.Error("second strategy ran after a registered load failure")
	}

	var loadErr *LoadError
	if !errors.As(state.Err(), &loadErr) {
		t.Fatalf("Err() = %v, want *LoadError", state.Err())
	}
	if loadErr.Strategy != "first" || loadErr.Path != "/broken" || !errors.Is(loadErr, boom) {
		t.Errorf("LoadError = %+v", loadErr)
	}
	if len(obs.loadFailed) != 1 || obs.notFound != 0 {
		t.Errorf("observer loadFailed=%v notFound=%d", obs.loadFailed, obs.notFound)
	}
}

func TestDiscover_ContinuesWhenNotRegistered(t *testing.T) {
	_, lib := newFakeLibrary(t, "3.0.21")
	loader := &recordingLoader{lib: lib, errs: []error{errors.New("not on search path")}}
	first := foundStrategy("first", "/unregistered")
	first.register = false
	second := foundStrategy("second", "/good")

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(first, second), WithLoader(loader.load))

	if !d.Discover(state) {
		t.Fatalf("Discover() = false, err = %v", state.Err())
	}
	if path, _ := state.Found(); path.Strategy != "second" {
		t.Errorf("Found().Strategy = %q, want second", path.Strategy)
	}
	if !slices.Equal(state.SearchPath(), []string{"/good"}) {
		t.Errorf("SearchPath() = %v", state.SearchPath())
	}
	if !slices.Equal(loader.calls[1], []string{"/good"}) {
		t.Errorf("second load used search path %v", loader.calls[1])
	}
}

func TestDiscover_SkipsUnsupported(t *testing.T) {
	_, lib := newFakeLibrary(t, "3.0.21")
	loader := &recordingLoader{lib: lib}
	other := foundStrategy("other-os", "/elsewhere")
	other.supported = false
	native := foundStrategy("native", "/here")
	obs := &recordingObserver{}

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(other, native), WithLoader(loader.load), WithObserver(obs))

	if !d.Discover(state) {
		t.Fatal("Discover() = false")
	}
	if other.discoverCalls != 0 {
		t.Error("unsupported strategy was asked to discover")
	}
	if !slices.Equal(obs.attempted, []string{"native"}) {
		t.Errorf("attempted = %v", obs.attempted)
	}
}

func TestDiscover_RejectsOldVersion(t *testing.T) {
	_, lib := newFakeLibrary(t, "2.2.8 Weatherwax")
	loader := &recordingLoader{lib: lib}
	s := foundStrategy("linux", "/opt/vlc2/lib")

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(s), WithLoader(loader.load))

	if d.Discover(state) {
		t.Fatal("Discover() accepted libvlc 2.2.8")
	}
	if !errors.Is(state.Err(), ErrIncompatibleVersion) {
		t.Errorf("Err() = %v, want ErrIncompatibleVersion", state.Err())
	}
	if state.Library() != nil {
		t.Error("Library() set after version rejection")
	}
}

func TestDiscover_MinimumVersionOption(t *testing.T) {
	_, lib := newFakeLibrary(t, "3.0.8")
	loader := &recordingLoader{lib: lib}

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(
		WithStrategies(foundStrategy("linux", "/lib")),
		WithLoader(loader.load),
		WithMinimumVersion(MustParseVersion("4.0.0")),
	)
	if d.Discover(state) {
		t.Fatal("Discover() accepted 3.0.8 with a 4.0.0 floor")
	}
}

func TestDiscover_PluginPath(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{"unset", "", "/opt/vlc/plugins"},
		{"already set", "/custom/plugins", "/custom/plugins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, lib := newFakeLibrary(t, "3.0.21")
			env := NewMapEnvironment(map[string]string{EnvPluginPath: tt.existing})
			s := foundStrategy("linux", "/opt/vlc/lib")
			s.pluginPath = "/opt/vlc/plugins"

			state := NewDiscoveryState(env)
			d := NewNativeDiscovery(WithStrategies(s), WithLoader((&recordingLoader{lib: lib}).load))
			if !d.Discover(state) {
				t.Fatal("Discover() = false")
			}
			if got := env.Getenv(EnvPluginPath); got != tt.want {
				t.Errorf("%s = %q, want %q", EnvPluginPath, got, tt.want)
			}
		})
	}
}

func TestDiscover_NotFound(t *testing.T) {
	loader := &recordingLoader{}
	miss := &fakeStrategy{name: "linux", supported: true}
	obs := &recordingObserver{}

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(miss), WithLoader(loader.load), WithObserver(obs))

	if d.Discover(state) {
		t.Fatal("Discover() = true with nothing found")
	}
	if !errors.Is(state.Err(), ErrNotFound) {
		t.Errorf("Err() = %v, want ErrNotFound", state.Err())
	}
	if obs.notFound != 1 {
		t.Errorf("NotFound called %d times, want 1", obs.notFound)
	}
	if len(loader.calls) != 0 {
		t.Error("loader called without a discovered directory")
	}
	if len(state.SearchPath()) != 0 {
		t.Errorf("SearchPath() = %v, want empty", state.SearchPath())
	}
}

func TestLoad_FallsBackToDefault(t *testing.T) {
	_, lib := newFakeLibrary(t, "3.0.21")
	loader := &recordingLoader{lib: lib}
	miss := &fakeStrategy{name: "linux", supported: true}

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(miss), WithLoader(loader.load))

	got, err := d.Load(state)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != lib {
		t.Error("Load() returned a different library")
	}
	if path, ok := state.Found(); !ok || path.Strategy != "default" {
		t.Errorf("Found() = %+v, %v", path, ok)
	}
	if len(loader.calls) != 1 || len(loader.calls[0]) != 0 {
		t.Errorf("default load calls = %v, want one with empty search path", loader.calls)
	}
}

func TestLoad_AggregatesErrors(t *testing.T) {
	loader := &recordingLoader{}
	miss := &fakeStrategy{name: "linux", supported: true}

	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(miss), WithLoader(loader.load))

	_, err := d.Load(state)
	if err == nil {
		t.Fatal("Load() succeeded without a library")
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Load() error %T, want *multierror.Error", err)
	}
	if len(merr.Errors) != 2 {
		t.Errorf("aggregated %d errors, want 2: %v", len(merr.Errors), merr.Errors)
	}
	if !errors.Is(merr.Errors[0], ErrNotFound) || !errors.Is(merr.Errors[1], ErrLibraryNotFound) {
		t.Errorf("errors = %v", merr.Errors)
	}
}

func TestLoad_AfterSuccessReturnsSameLibrary(t *testing.T) {
	_, lib := newFakeLibrary(t, "3.0.21")
	loader := &recordingLoader{lib: lib}
	state := NewDiscoveryState(NewMapEnvironment(nil))
	d := NewNativeDiscovery(WithStrategies(foundStrategy("linux", "/lib")), WithLoader(loader.load))

	first, err := d.Load(state)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Load(state)
	if err != nil {
		t.Fatal(err)
	}
	if first != second || len(loader.calls) != 1 {
		t.Errorf("second Load reloaded: calls = %d", len(loader.calls))
	}
}
