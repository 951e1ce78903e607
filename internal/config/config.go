package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vango-dev/navguard/internal/errors"
	"golang.org/x/text/language"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "navguard.json"

	// TOMLFileName is the name of the TOML configuration file. It is only
	// read when ConfigFileName does not exist.
	TOMLFileName = "navguard.toml"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultRoutes is the default route manifest path.
	DefaultRoutes = "routes.yaml"

	// DefaultDataKey is the key non-object async data is stored under.
	DefaultDataKey = "data"

	// DefaultMaxRedirects is the default redirect limit per navigation.
	DefaultMaxRedirects = 10

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "navguard"
)

// Config represents the complete navguard configuration.
type Config struct {
	// Name is the application name.
	Name string `json:"name,omitempty" toml:"name,omitempty"`

	// Routes is the path to the YAML route manifest. Empty selects the
	// built-in route table.
	Routes string `json:"routes,omitempty" toml:"routes,omitempty"`

	// Middleware contains middleware configuration.
	Middleware MiddlewareConfig `json:"middleware" toml:"middleware"`

	// Data contains data injection configuration.
	Data DataConfig `json:"data" toml:"data"`

	// Navigation contains navigator configuration.
	Navigation NavigationConfig `json:"navigation" toml:"navigation"`

	// Locale contains locale middleware configuration.
	Locale LocaleConfig `json:"locale" toml:"locale"`

	// Server contains development server configuration.
	Server ServerConfig `json:"server" toml:"server"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics" toml:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing" toml:"tracing"`

	// Log contains logging configuration.
	Log LogConfig `json:"log" toml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MiddlewareConfig contains middleware settings.
type MiddlewareConfig struct {
	// Global lists middleware run before every view's own middleware.
	Global []string `json:"global,omitempty" toml:"global,omitempty"`
}

// DataConfig contains data injection settings.
type DataConfig struct {
	// Key is the key a non-object async data result is stored under.
	Key string `json:"key,omitempty" toml:"key,omitempty"`
}

// NavigationConfig contains navigator settings.
type NavigationConfig struct {
	// MaxRedirects is the number of redirects one navigation may follow.
	MaxRedirects int `json:"maxRedirects,omitempty" toml:"maxRedirects,omitempty"`
}

// LocaleConfig contains locale settings.
type LocaleConfig struct {
	// Default is the fallback locale (default: the first supported one).
	Default string `json:"default,omitempty" toml:"default,omitempty"`

	// Supported are the BCP 47 tags the application is translated into.
	Supported []string `json:"supported,omitempty" toml:"supported,omitempty"`
}

// ServerConfig contains development server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" toml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" toml:"port,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics and records navigation metrics.
	Enabled bool `json:"enabled" toml:"enabled"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" toml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName names the tracer. Empty disables tracing.
	TracerName string `json:"tracerName,omitempty" toml:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" toml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" toml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "navguard-app",
		Middleware: MiddlewareConfig{
			Global: []string{"locale"},
		},
		Data: DataConfig{
			Key: DefaultDataKey,
		},
		Navigation: NavigationConfig{
			MaxRedirects: DefaultMaxRedirects,
		},
		Locale: LocaleConfig{
			Supported: []string{"en"},
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// navguard.json, then navguard.toml.
func Load(dir string) (*Config, error) {
	jsonPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(jsonPath); err == nil {
		return LoadFile(jsonPath)
	}
	tomlPath := filepath.Join(dir, TOMLFileName)
	if _, err := os.Stat(tomlPath); err == nil {
		return LoadFile(tomlPath)
	}
	return LoadFile(jsonPath)
}

// LoadFile reads configuration from the specified file path. Files ending
// in .toml are decoded as TOML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("N050").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("N051").Wrap(err)
	}

	cfg := New()
	if isTOML(path) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("N051").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid TOML")
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("N051").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as TOML when the
// path ends in .toml.
func (c *Config) SaveTo(path string) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.New("N051").Wrap(err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.New("N051").Wrap(err)
		}
		data = append(data, '\n')
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("N051").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Data.Key == "" {
		c.Data.Key = DefaultDataKey
	}
	if c.Navigation.MaxRedirects == 0 {
		c.Navigation.MaxRedirects = DefaultMaxRedirects
	}

	// Locale: the default must be among the supported tags.
	if len(c.Locale.Supported) == 0 {
		if c.Locale.Default != "" {
			c.Locale.Supported = []string{c.Locale.Default}
		} else {
			c.Locale.Supported = []string{"en"}
		}
	}
	if c.Locale.Default == "" {
		c.Locale.Default = c.Locale.Supported[0]
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("N052").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Navigation.MaxRedirects < 0 {
		return errors.New("N052").
			WithDetail("navigation.maxRedirects must not be negative")
	}
	for _, name := range c.Middleware.Global {
		if strings.TrimSpace(name) == "" {
			return errors.New("N052").
				WithDetail("middleware.global contains an empty name")
		}
	}
	if _, err := c.SupportedLocales(); err != nil {
		return err
	}
	if _, err := c.DefaultLocale(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("N052").
			WithDetailf("log.format %q is not text or json", c.Log.Format)
	}
	return nil
}

// SupportedLocales parses locale.supported.
func (c *Config) SupportedLocales() ([]language.Tag, error) {
	tags := make([]language.Tag, 0, len(c.Locale.Supported))
	for _, s := range c.Locale.Supported {
		tag, err := language.Parse(s)
		if err != nil {
			return nil, errors.New("N052").
				WithDetailf("locale.supported: %q is not a language tag", s).
				Wrap(err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// DefaultLocale parses locale.default, falling back to the first supported
// locale.
func (c *Config) DefaultLocale() (language.Tag, error) {
	def := c.Locale.Default
	if def == "" && len(c.Locale.Supported) > 0 {
		def = c.Locale.Supported[0]
	}
	tag, err := language.Parse(def)
	if err != nil {
		return language.Und, errors.New("N052").
			WithDetailf("locale.default: %q is not a language tag", def).
			Wrap(err)
	}
	return tag, nil
}

// SlogLevel returns log.level as a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, errors.New("N052").
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return level, nil
}

// Address returns the address string for the dev server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the full URL for the dev server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// RoutesPath returns the absolute path to the route manifest, or "" when
// the built-in table is used.
func (c *Config) RoutesPath() string {
	if c.Routes == "" {
		return ""
	}
	if filepath.IsAbs(c.Routes) {
		return c.Routes
	}
	return filepath.Join(c.Dir(), c.Routes)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, TOMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("N050").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
