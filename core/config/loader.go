package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codewandler/actr-go/core/pool"
)

const DefaultEnvPrefix = "ACTR"

type Loader struct {
	envPrefix string
	getenv    func(string) string
}

func NewLoader() *Loader {
	return &Loader{envPrefix: DefaultEnvPrefix, getenv: os.Getenv}
}

func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load reads filename on top of the defaults, applies environment overrides
// and validates the result. An empty filename skips the file.
func (l *Loader) Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", filename, err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", filename, err)
		}
	}

	return l.finish(cfg)
}

func (l *Loader) LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	return l.finish(cfg)
}

func (l *Loader) finish(cfg *Config) (*Config, error) {
	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// decode overlays data onto cfg so keys missing from the file keep their
// defaults.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	return nil
}

func (l *Loader) env(key string) string {
	return l.getenv(l.envPrefix + "_" + key)
}

func (l *Loader) applyEnv(cfg *Config) (err error) {
	if val := l.env("NAME"); val != "" {
		cfg.Name = val
	}
	if val := l.env("DAEMON"); val != "" {
		if cfg.Daemon, err = strconv.ParseBool(val); err != nil {
			return l.envErr("DAEMON", err)
		}
	}

	if val := l.env("POOL_KIND"); val != "" {
		cfg.Pool.Kind = pool.Kind(val)
	}
	if val := l.env("POOL_SIZE"); val != "" {
		if cfg.Pool.Size, err = strconv.Atoi(val); err != nil {
			return l.envErr("POOL_SIZE", err)
		}
	}
	if val := l.env("POOL_SHUTDOWN_TIMEOUT"); val != "" {
		if cfg.Pool.ShutdownTimeout, err = time.ParseDuration(val); err != nil {
			return l.envErr("POOL_SHUTDOWN_TIMEOUT", err)
		}
	}
	if val := l.env("TERMINATION_PROPAGATION_DELAY"); val != "" {
		if cfg.Termination.PropagationDelay, err = time.ParseDuration(val); err != nil {
			return l.envErr("TERMINATION_PROPAGATION_DELAY", err)
		}
	}

	if val := l.env("CACHE_KIND"); val != "" {
		cfg.Cache.Kind = CacheKind(val)
	}
	if val := l.env("CACHE_SIZE"); val != "" {
		if cfg.Cache.Size, err = strconv.Atoi(val); err != nil {
			return l.envErr("CACHE_SIZE", err)
		}
	}

	if val := l.env("ARCHIVE_KIND"); val != "" {
		cfg.Archive.Kind = ArchiveKind(val)
	}
	if val := l.env("ARCHIVE_NATS_URL"); val != "" {
		cfg.Archive.NatsURL = val
	}
	if val := l.env("ARCHIVE_BUCKET"); val != "" {
		cfg.Archive.Bucket = val
	}

	if val := l.env("METRICS_ADDR"); val != "" {
		cfg.Metrics.Addr = val
	}
	return nil
}

func (l *Loader) envErr(key string, err error) error {
	return fmt.Errorf("%w: %s_%s: %w", ErrEnvironment, l.envPrefix, key, err)
}

// Load is NewLoader().Load(filename).
func Load(filename string) (*Config, error) {
	return NewLoader().Load(filename)
}
