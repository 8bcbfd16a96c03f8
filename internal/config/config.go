package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactive.json"

	// DefaultHost is the default devtools host.
	DefaultHost = "localhost"

	// DefaultPort is the default devtools port.
	DefaultPort = 7070

	// DefaultEventBuffer is the per-subscriber event buffer of the devtools hub.
	DefaultEventBuffer = 256

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactive"

	// EnvLogLevel overrides Log.Level.
	EnvLogLevel = "REACTIVE_LOG_LEVEL"

	// EnvDevtoolsPort overrides Devtools.Port.
	EnvDevtoolsPort = "REACTIVE_DEVTOOLS_PORT"
)

// Config represents the complete reactive.json configuration.
type Config struct {
	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Debug contains runtime debug logging switches.
	Debug DebugConfig `json:"debug,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Devtools contains devtools server configuration.
	Devtools DevtoolsConfig `json:"devtools,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// DebugConfig mirrors reactive.DebugConfig.
type DebugConfig struct {
	LogEffectRuns bool `json:"logEffectRuns,omitempty"`
	LogRecomputes bool `json:"logRecomputes,omitempty"`
	LogFanOuts    bool `json:"logFanOuts,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty"`
	Subsystem string `json:"subsystem,omitempty"`
}

// DevtoolsConfig contains devtools server settings.
type DevtoolsConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// EventBuffer is the number of events queued per websocket subscriber
	// before events are dropped.
	EventBuffer int `json:"eventBuffer,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Devtools: DevtoolsConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			EventBuffer: DefaultEventBuffer,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for reactive.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("C002").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C002").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOrDefault loads dir/reactive.json, falling back to defaults when the
// file does not exist. Environment overrides are applied either way.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.HasCode(err, "C001") {
		cfg, err = New(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C002").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C002").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Devtools.Host == "" {
		c.Devtools.Host = DefaultHost
	}
	if c.Devtools.Port == 0 {
		c.Devtools.Port = DefaultPort
	}
	if c.Devtools.EventBuffer == 0 {
		c.Devtools.EventBuffer = DefaultEventBuffer
	}
}

// ApplyEnv applies environment overrides read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvDevtoolsPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("C003").
				WithDetailf("%s=%q is not a port number", EnvDevtoolsPort, v)
		}
		c.Devtools.Port = port
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("C003").
			WithDetailf("log.format %q must be text or json", c.Log.Format)
	}
	if c.Devtools.Port < 0 || c.Devtools.Port > 65535 {
		return errors.New("C003").
			WithDetail("devtools.port must be between 0 and 65535")
	}
	if c.Devtools.EventBuffer < 0 {
		return errors.New("C003").
			WithDetail("devtools.eventBuffer must not be negative")
	}
	return nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("C003").
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return level, nil
}

// Logger builds a logger writing to w in the configured format and level.
// An invalid level falls back to info.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RuntimeDebug converts the debug switches for reactive.WithDebug.
func (c *Config) RuntimeDebug() reactive.DebugConfig {
	return reactive.DebugConfig{
		LogEffectRuns: c.Debug.LogEffectRuns,
		LogRecomputes: c.Debug.LogRecomputes,
		LogFanOuts:    c.Debug.LogFanOuts,
	}
}

// DevtoolsAddress returns the listen address of the devtools server.
func (c *Config) DevtoolsAddress() string {
	return net.JoinHostPort(c.Devtools.Host, strconv.Itoa(c.Devtools.Port))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
