package libvlc

import (
	"fmt"
	"os"
	"sync"
)

// EnvPluginPath is the variable libVLC reads to locate its plugin modules.
const EnvPluginPath = "VLC_PLUGIN_PATH"

// Environment is the process environment as seen by discovery. Tests use
// MapEnvironment to avoid mutating the real process.
type Environment interface {
	Getenv(key string) string
	Setenv(key, value string) error
}

// ProcessEnvironment reads and writes the real process environment. Setenv
// updates both the Go runtime's copy and the C runtime's copy, since libVLC
// reads variables through the C library.
type ProcessEnvironment struct{}

func (ProcessEnvironment) Getenv(key string) string {
	return os.Getenv(key)
}

func (ProcessEnvironment) Setenv(key, value string) error {
	if err := os.Setenv(key, value); err != nil {
		return err
	}
	if err := nativeSetenv(key, value); err != nil {
		return fmt.Errorf("set %s in C runtime: %w", key, err)
	}
	return nil
}

// MapEnvironment is an in-memory Environment.
type MapEnvironment struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewMapEnvironment returns a MapEnvironment seeded with vars.
func NewMapEnvironment(vars map[string]string) *MapEnvironment {
	m := &MapEnvironment{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		m.vars[k] = v
	}
	return m
}

func (m *MapEnvironment) Getenv(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vars[key]
}

func (m *MapEnvironment) Setenv(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[key] = value
	return nil
}
