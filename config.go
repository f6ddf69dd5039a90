package libvlc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config file name and environment prefix. LIBVLC_LOG_LEVEL,
// LIBVLC_MINIMUM_VERSION and so on override file values.
const (
	ConfigName      = "libvlc"
	ConfigEnvPrefix = "LIBVLC"
)

// Config holds settings read from libvlc.yaml and the environment.
type Config struct {
	LogLevel       string        `mapstructure:"log_level"`
	Directories    []string      `mapstructure:"directories"`
	MinimumVersion string        `mapstructure:"minimum_version"`
	EventQueueSize int           `mapstructure:"event_queue_size"`
	WaitTimeout    time.Duration `mapstructure:"wait_timeout"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		LogLevel:       LogLevelNone.String(),
		MinimumVersion: MinimumVersion.String(),
		EventQueueSize: DefaultEventQueueSize,
		WaitTimeout:    30 * time.Second,
	}
}

// configFile is the on-disk form; durations are written as strings.
type configFile struct {
	LogLevel       string   `yaml:"log_level"`
	Directories    []string `yaml:"directories,omitempty"`
	MinimumVersion string   `yaml:"minimum_version"`
	EventQueueSize int      `yaml:"event_queue_size"`
	WaitTimeout    string   `yaml:"wait_timeout"`
}

// Validate checks that every value can be used.
func (c Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := ParseVersion(c.MinimumVersion); err != nil {
		return fmt.Errorf("minimum_version: %w", err)
	}
	if c.EventQueueSize <= 0 {
		return fmt.Errorf("event_queue_size must be positive, got %d", c.EventQueueSize)
	}
	if c.WaitTimeout < 0 {
		return fmt.Errorf("wait_timeout must not be negative, got %s", c.WaitTimeout)
	}
	return nil
}

// Level returns the parsed log level, or LogLevelNone when invalid.
func (c Config) Level() LogLevel {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return LogLevelNone
	}
	return level
}

// DiscoveryOptions turns the config into NativeDiscovery options. Configured
// directories are searched before every built-in provider.
func (c Config) DiscoveryOptions() []DiscoveryOption {
	var opts []DiscoveryOption
	if v, err := ParseVersion(c.MinimumVersion); err == nil {
		opts = append(opts, WithMinimumVersion(v))
	}
	if len(c.Directories) > 0 {
		providers := DefaultDirectoryProviders()
		providers.Register(ConfigDirectoryProvider{Dirs: c.Directories})
		opts = append(opts, WithStrategies(DefaultStrategies(providers)...))
	}
	return opts
}

// BridgeOptions turns the config into EventBridge options.
func (c Config) BridgeOptions() []BridgeOption {
	return []BridgeOption{WithQueueSize(c.EventQueueSize)}
}

// ConfigDirectoryProvider supplies the directories listed in the config
// file.
type ConfigDirectoryProvider struct {
	Dirs []string
}

func (p ConfigDirectoryProvider) Priority() int   { return PriorityConfig }
func (p ConfigDirectoryProvider) Supported() bool { return len(p.Dirs) > 0 }

func (p ConfigDirectoryProvider) Directories() []string {
	dirs := make([]string, 0, len(p.Dirs))
	for _, d := range p.Dirs {
		if d = strings.TrimSpace(os.ExpandEnv(d)); d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// ConfigDir returns the directory searched for libvlc.yaml, honouring
// XDG_CONFIG_HOME.
func ConfigDir() string {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, ConfigName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, ConfigName)
	}
	return ""
}

// ConfigStore holds the current Config and reloads it when the file
// changes.
type ConfigStore struct {
	v *viper.Viper

	mu  sync.RWMutex
	cfg Config
}

// NewConfigViper returns a viper instance with every key defaulted and
// LIBVLC_* environment overrides enabled.
func NewConfigViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("directories", []string{})
	v.SetDefault("minimum_version", d.MinimumVersion)
	v.SetDefault("event_queue_size", d.EventQueueSize)
	v.SetDefault("wait_timeout", d.WaitTimeout)

	v.SetEnvPrefix(ConfigEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configuration. An empty path searches ConfigDir and the
// working directory for libvlc.yaml; a missing file is not an error.
func LoadConfig(path string) (*ConfigStore, error) {
	v := NewConfigViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		if dir := ConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return newConfigStore(v)
}

// ConfigStoreFromViper builds a store over v, typically one from
// NewConfigViper with command line flags bound and a config file read.
func ConfigStoreFromViper(v *viper.Viper) (*ConfigStore, error) {
	return newConfigStore(v)
}

func newConfigStore(v *viper.Viper) (*ConfigStore, error) {
	cfg, err := decodeConfig(v)
	if err != nil {
		return nil, err
	}
	return &ConfigStore{v: v, cfg: cfg}, nil
}

func decodeConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Get returns a copy of the current config.
func (s *ConfigStore) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	cfg.Directories = slices.Clone(cfg.Directories)
	return cfg
}

// File returns the config file in use, or "" when none was found.
func (s *ConfigStore) File() string { return s.v.ConfigFileUsed() }

// Apply sets the package log level from the current config.
func (s *ConfigStore) Apply() {
	SetLogLevel(s.Get().Level())
}

// reload re-reads viper's values. An invalid file leaves the previous
// config in place.
func (s *ConfigStore) reload() (Config, error) {
	cfg, err := decodeConfig(s.v)
	if err != nil {
		return Config{}, err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return cfg, nil
}

// Watch reloads the config when its file changes, re-applies the log level
// and calls onChange, which may be nil. Directory and version changes only
// affect discoveries started afterwards.
func (s *ConfigStore) Watch(onChange func(Config)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		log := logEntry().WithField("file", e.Name)
		cfg, err := s.reload()
		if err != nil {
			log.WithError(err).Warn("ignoring config change")
			return
		}
		SetLogLevel(cfg.Level())
		log.Debug("config reloaded")
		if onChange != nil {
			onChange(cfg)
		}
	})
	s.v.WatchConfig()
}

// SaveConfig writes cfg to path as YAML, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(configFile{
		LogLevel:       cfg.LogLevel,
		Directories:    cfg.Directories,
		MinimumVersion: cfg.MinimumVersion,
		EventQueueSize: cfg.EventQueueSize,
		WaitTimeout:    cfg.WaitTimeout.String(),
	})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
