package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/vango-dev/navcore/internal/errors"
)

const (
	// ConfigName is the configuration file name without extension. Any
	// format viper reads (navcore.toml, navcore.json, navcore.yaml) works.
	ConfigName = "navcore"

	// EnvPrefix prefixes environment overrides: routes.base is
	// NAVCORE_ROUTES_BASE.
	EnvPrefix = "NAVCORE"

	// DefaultAddress is the default listen address for navcore serve.
	DefaultAddress = ":8080"

	// DefaultNotFoundView is the view shown when no route matches.
	DefaultNotFoundView = "NotFoundPage"
)

// Config is the complete navcore configuration.
type Config struct {
	Routes  RoutesConfig  `mapstructure:"routes"`
	Nav     NavConfig     `mapstructure:"nav"`
	Server  ServerConfig  `mapstructure:"server"`
	Bridge  BridgeConfig  `mapstructure:"bridge"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Auth    AuthConfig    `mapstructure:"auth"`
	I18n    I18nConfig    `mapstructure:"i18n"`
	S3      S3Config      `mapstructure:"s3"`

	// path is the file the config was read from, if any.
	path string
}

// RoutesConfig selects the route table.
type RoutesConfig struct {
	// Manifest is a .json or .toml route manifest, local or s3://bucket/key.
	// Empty uses the built-in application table.
	Manifest string `mapstructure:"manifest"`

	// NotFoundView is committed when no route matches.
	NotFoundView string `mapstructure:"not_found_view"`

	// Base is the path the application is mounted under (e.g. "/console").
	Base string `mapstructure:"base"`
}

// NavConfig tunes the navigation controller.
type NavConfig struct {
	// MaxRedirects bounds consecutive guard redirects.
	MaxRedirects int `mapstructure:"max_redirects"`
}

// ServerConfig configures navcore serve.
type ServerConfig struct {
	Address string `mapstructure:"address"`

	// AllowedOrigins may open the history bridge in addition to the
	// server's own origin. "*" allows any.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BridgeConfig configures the WebSocket history bridge.
type BridgeConfig struct {
	// Rate is the sustained inbound frames per second per connection.
	Rate float64 `mapstructure:"rate"`

	// Burst is the inbound frame burst per connection.
	Burst int `mapstructure:"burst"`

	// HelloTimeout bounds the wait for the client's hello frame.
	HelloTimeout time.Duration `mapstructure:"hello_timeout"`
}

// LogConfig configures slog output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// AuthConfig configures the built-in static authorizer.
type AuthConfig struct {
	// Role is guest, user or admin.
	Role string `mapstructure:"role"`
}

// I18nConfig configures route titles.
type I18nConfig struct {
	// Lang is the default title language.
	Lang string `mapstructure:"lang"`

	// Files are extra go-i18n message files.
	Files []string `mapstructure:"files"`
}

// S3Config configures manifest loading from S3.
type S3Config struct {
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("routes.manifest", "")
	v.SetDefault("routes.not_found_view", DefaultNotFoundView)
	v.SetDefault("routes.base", "")
	v.SetDefault("nav.max_redirects", 8)
	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("bridge.rate", 20.0)
	v.SetDefault("bridge.burst", 40)
	v.SetDefault("bridge.hello_timeout", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "navcore")
	v.SetDefault("auth.role", "guest")
	v.SetDefault("i18n.lang", "en")
	v.SetDefault("i18n.files", []string{})
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.use_path_style", false)
}

// Default returns the configuration with nothing but defaults applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Defaults always decode.
	_ = v.Unmarshal(&c)
	return &c
}

// Load reads configuration from defaults, an optional file and NAVCORE_*
// environment overrides, in increasing priority.
//
// path names the file explicitly; it falls back to $NAVCORE_CONFIG and
// then to a navcore.* file in the working directory. An explicit file that
// cannot be read is an error; a missing implicit one is not.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.New(errors.CodeConfig).
				WithSubject(path).
				WithDetail("The configuration file could not be read or parsed.").
				Wrap(err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.New(errors.CodeConfig).Wrap(fmt.Errorf("unmarshal config: %w", err))
	}
	c.path = v.ConfigFileUsed()
	return &c, nil
}

// Path returns the file the configuration was read from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate checks every value and reports all problems in one N005 error.
func (c *Config) Validate() error {
	var errs []error
	fail := func(key, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %s", key, fmt.Sprintf(format, args...)))
	}

	if c.Routes.NotFoundView == "" {
		fail("routes.not_found_view", "must not be empty")
	}
	if c.Routes.Base != "" && !strings.HasPrefix(c.Routes.Base, "/") {
		fail("routes.base", "must start with \"/\", got %q", c.Routes.Base)
	}
	if c.Nav.MaxRedirects < 0 {
		fail("nav.max_redirects", "must be >= 0, got %d", c.Nav.MaxRedirects)
	}
	if c.Server.Address == "" {
		fail("server.address", "must not be empty")
	}
	if c.Bridge.Rate <= 0 {
		fail("bridge.rate", "must be > 0, got %v", c.Bridge.Rate)
	}
	if c.Bridge.Burst < 1 {
		fail("bridge.burst", "must be >= 1, got %d", c.Bridge.Burst)
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		fail("log.level", "must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		fail("log.format", "must be text or json, got %q", c.Log.Format)
	}
	switch c.Auth.Role {
	case "guest", "user", "admin":
	default:
		fail("auth.role", "must be guest, user or admin, got %q", c.Auth.Role)
	}
	if _, err := language.Parse(c.I18n.Lang); err != nil {
		fail("i18n.lang", "%v", err)
	}
	if strings.HasPrefix(c.Routes.Manifest, "s3://") && c.S3.Region == "" {
		fail("s3.region", "required for s3:// manifests")
	}

	if len(errs) > 0 {
		return errors.New(errors.CodeConfig).
			WithSubject(c.source()).
			Wrap(stderrors.Join(errs...))
	}
	return nil
}

func (c *Config) source() string {
	if c.path != "" {
		return c.path
	}
	return "defaults and " + EnvPrefix + "_* environment"
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Logger builds the slog logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levels[strings.ToLower(c.Log.Level)]}
	var h slog.Handler
	if strings.ToLower(c.Log.Format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}
