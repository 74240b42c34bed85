package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config is the runtime configuration of the API server.
//
// Sources are layered: Default() < TOML file < environment < CLI flags.
type Config struct {
	Addr      string `toml:"addr"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	ReadHeaderTimeout Duration `toml:"read_header_timeout"`
	ShutdownTimeout   Duration `toml:"shutdown_timeout"`

	// IdempotencyTTL bounds how long Idempotency-Key responses are replayable; 0 disables replay.
	IdempotencyTTL Duration `toml:"idempotency_ttl"`
}

// Duration is a time.Duration that decodes from TOML strings like "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

func Default() Config {
	return Config{
		Addr:              ":8080",
		LogLevel:          "info",
		LogFormat:         LogFormatJSON,
		ReadHeaderTimeout: Duration{5 * time.Second},
		ShutdownTimeout:   Duration{10 * time.Second},
		IdempotencyTTL:    Duration{24 * time.Hour},
	}
}

// LoadFile overlays the TOML file at path onto c. Keys absent from the file keep their values.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overlays GREETINGS_* environment variables onto c. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("GREETINGS_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("GREETINGS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("GREETINGS_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := getenv("GREETINGS_READ_HEADER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GREETINGS_READ_HEADER_TIMEOUT must be a duration (e.g. 5s): %w", err)
		}
		c.ReadHeaderTimeout = Duration{d}
	}
	if v := getenv("GREETINGS_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GREETINGS_SHUTDOWN_TIMEOUT must be a duration (e.g. 10s): %w", err)
		}
		c.ShutdownTimeout = Duration{d}
	}
	if v := getenv("GREETINGS_IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GREETINGS_IDEMPOTENCY_TTL must be a duration (e.g. 24h): %w", err)
		}
		c.IdempotencyTTL = Duration{d}
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must be non-empty"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch c.LogFormat {
	case LogFormatJSON, LogFormatConsole:
	default:
		errs = append(errs, fmt.Errorf("log_format must be %q or %q, got %q", LogFormatJSON, LogFormatConsole, c.LogFormat))
	}
	if c.ReadHeaderTimeout.Duration <= 0 {
		errs = append(errs, errors.New("read_header_timeout must be positive"))
	}
	if c.ShutdownTimeout.Duration <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if c.IdempotencyTTL.Duration < 0 {
		errs = append(errs, errors.New("idempotency_ttl must not be negative"))
	}
	return errors.Join(errs...)
}
