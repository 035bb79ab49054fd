package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/snapshot"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "vdiff.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "vdiff.yaml"

	// DefaultAddr is the default listen address of the server.
	DefaultAddr = ":7070"

	// DefaultMaxMessageBytes caps a single websocket message.
	DefaultMaxMessageBytes = 4 << 20

	// DefaultMetricsPath is where metrics are served.
	DefaultMetricsPath = "/metrics"
)

// Environment variables that override the file.
const (
	EnvAddr     = "VDIFF_ADDR"
	EnvLogLevel = "VDIFF_LOG_LEVEL"
)

// Config is the complete vdiff.json / vdiff.yaml configuration.
type Config struct {
	// Server contains the HTTP and websocket server settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Snapshot selects where session snapshots are kept.
	Snapshot snapshot.Config `json:"snapshot" yaml:"snapshot"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings. Timeouts are Go duration strings.
type ServerConfig struct {
	Addr            string `json:"addr" yaml:"addr" validate:"required,hostname_port"`
	ReadTimeout     string `json:"read_timeout" yaml:"read_timeout" validate:"duration"`
	WriteTimeout    string `json:"write_timeout" yaml:"write_timeout" validate:"duration"`
	ShutdownTimeout string `json:"shutdown_timeout" yaml:"shutdown_timeout" validate:"duration"`
	MaxMessageBytes int    `json:"max_message_bytes" yaml:"max_message_bytes" validate:"gte=1024,lte=16777216"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace" validate:"required,metricname"`
	Path      string `json:"path" yaml:"path" validate:"required,startswith=/"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads the configuration from dir, trying vdiff.json, then
// vdiff.yaml, then vdiff.yml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "vdiff.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigInvalid).
		WithDetail("No vdiff.json or vdiff.yaml found in " + dir).
		WithSuggestion("Create vdiff.json, or run without --config to use defaults")
}

// LoadFile loads the configuration from a JSON or YAML file, applies
// defaults and environment overrides, and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigInvalid).
				WithDetail("No config file at " + path)
		}
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file's syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path, as YAML for .yaml/.yml paths
// and as indented JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Server.MaxMessageBytes == 0 {
		c.Server.MaxMessageBytes = DefaultMaxMessageBytes
	}

	// Snapshot
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = snapshot.BackendMemory
	}
	if c.Snapshot.Backend == snapshot.BackendBolt && c.Snapshot.BoltPath == "" {
		c.Snapshot.BoltPath = "vdiff.db"
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "vdiff"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// ApplyEnv applies VDIFF_ADDR and VDIFF_LOG_LEVEL when set.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their file names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		d, err := time.ParseDuration(s)
		return err == nil && d >= 0
	})
	v.RegisterValidation("metricname", func(fl validator.FieldLevel) bool {
		return metricName.MatchString(fl.Field().String())
	})
	return v
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks the configuration. Every failing field is listed in the
// error detail.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.New(errors.CodeConfigValidation).Wrap(err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	return errors.New(errors.CodeConfigValidation).
		WithDetail(strings.Join(problems, "; ")).
		Wrap(err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "duration":
		return field + " must be a duration such as 10s"
	case "hostname_port":
		return field + " must be host:port"
	case "metricname":
		return field + " must be a Prometheus name"
	}
	if fe.Param() != "" {
		return field + " failed " + fe.Tag() + "=" + fe.Param()
	}
	return field + " failed " + fe.Tag()
}

// ReadTimeout returns the parsed server read timeout.
func (c *Config) ReadTimeout() time.Duration { return mustDuration(c.Server.ReadTimeout) }

// WriteTimeout returns the parsed server write timeout.
func (c *Config) WriteTimeout() time.Duration { return mustDuration(c.Server.WriteTimeout) }

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration { return mustDuration(c.Server.ShutdownTimeout) }

// mustDuration parses a validated duration; invalid input reads as zero.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// LogLevel returns the slog level for Log.Level.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Exists reports whether dir contains a vdiff config file.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "vdiff.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
