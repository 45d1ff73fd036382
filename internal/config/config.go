// Package config loads the grayscale server's startup configuration.
//
// Values come from, in increasing priority: built-in defaults, an optional
// config file, GRAYSCALE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. GRAYSCALE_SERVER_PORT.
const EnvPrefix = "GRAYSCALE"

// ErrInvalid is wrapped by every validation error returned from Load.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting the server reads at startup.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Upload UploadConfig `mapstructure:"upload"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig controls the listening socket and request timeouts.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CORSConfig names the single browser origin allowed to call the API.
type CORSConfig struct {
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

// UploadConfig bounds the work one request may cause.
type UploadConfig struct {
	// MaxBodySize is a size string such as "51MiB" or "512K". Binary units
	// take an "i" (KiB, MiB); K, M and G are decimal. The cap covers the
	// whole multipart body, framing included.
	MaxBodySize string `mapstructure:"max_body_size"`

	// MaxPixels caps decoded width*height. Zero disables the cap.
	MaxPixels int `mapstructure:"max_pixels"`
}

// LogConfig selects zerolog's level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Address returns the host:port pair to listen on.
func (c Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// MaxBodyBytes returns Upload.MaxBodySize in bytes. Load has already
// validated it, so the error is only possible on a hand-built Config.
func (c Config) MaxBodyBytes() (int64, error) {
	return bytes.Parse(c.Upload.MaxBodySize)
}

// LogLevel returns the parsed zerolog level.
func (c Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigin: "http://localhost:3000",
		},
		Upload: UploadConfig{
			// 50 MiB file plus headroom for multipart framing.
			MaxBodySize: "51MiB",
			MaxPixels:   50_000_000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Flags registers the command-line flags Load understands.
func Flags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("config", "", "path to a config file (toml, yaml or json)")
	fs.String("host", d.Server.Host, "address to listen on")
	fs.Int("port", d.Server.Port, "port to listen on")
	fs.String("allowed-origin", d.CORS.AllowedOrigin, "browser origin allowed by CORS")
	fs.String("max-body-size", d.Upload.MaxBodySize, "maximum request body size, e.g. 51MiB")
	fs.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
}

// Load builds a Config from defaults, an optional file, the environment and fs.
//
// fs may be nil. When the "config" flag is empty, Load looks for
// grayscale.{toml,yaml,json} in the working directory and carries on
// without one if none exists.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, flag := range map[string]string{
			"server.host":          "host",
			"server.port":          "port",
			"cors.allowed_origin":  "allowed-origin",
			"upload.max_body_size": "max-body-size",
			"log.level":            "log-level",
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := readConfigFile(v, fs); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	}
	if c.CORS.AllowedOrigin == "" {
		return fmt.Errorf("%w: cors.allowed_origin is empty", ErrInvalid)
	}
	if n, err := bytes.Parse(c.Upload.MaxBodySize); err != nil || n <= 0 {
		return fmt.Errorf("%w: upload.max_body_size %q", ErrInvalid, c.Upload.MaxBodySize)
	}
	if c.Upload.MaxPixels < 0 {
		return fmt.Errorf("%w: upload.max_pixels %d is negative", ErrInvalid, c.Upload.MaxPixels)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server timeouts must be positive", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("cors.allowed_origin", d.CORS.AllowedOrigin)
	v.SetDefault("upload.max_body_size", d.Upload.MaxBodySize)
	v.SetDefault("upload.max_pixels", d.Upload.MaxPixels)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	var path string
	if fs != nil {
		path, _ = fs.GetString("config")
	}
	if path == "" {
		path = v.GetString("config")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("grayscale")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
