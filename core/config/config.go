// Package config loads the runtime configuration of a cluster from YAML and
// ACTR_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/codewandler/actr-go/core/pool"
)

type CacheKind string

const (
	CacheDelayed CacheKind = "delayed"
	CacheLRU     CacheKind = "lru"
	CacheNop     CacheKind = "nop"
)

type ArchiveKind string

const (
	ArchiveNone   ArchiveKind = "none"
	ArchiveMemory ArchiveKind = "memory"
	ArchiveNATS   ArchiveKind = "nats"
)

type (
	Config struct {
		Name        string            `yaml:"name"`
		Daemon      bool              `yaml:"daemon"`
		Pool        PoolConfig        `yaml:"pool"`
		Termination TerminationConfig `yaml:"termination"`
		Cache       CacheConfig       `yaml:"cache"`
		Archive     ArchiveConfig     `yaml:"archive"`
		Metrics     MetricsConfig     `yaml:"metrics"`
	}

	PoolConfig struct {
		Kind            pool.Kind     `yaml:"kind"`
		Size            int           `yaml:"size"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	}

	TerminationConfig struct {
		PropagationDelay time.Duration `yaml:"propagation_delay"`
	}

	CacheConfig struct {
		Kind CacheKind `yaml:"kind"`
		// Size bounds the lru cache.
		Size int `yaml:"size"`
	}

	ArchiveConfig struct {
		Kind    ArchiveKind `yaml:"kind"`
		NatsURL string      `yaml:"nats_url"`
		Bucket  string      `yaml:"bucket"`
	}

	MetricsConfig struct {
		// Addr serves /metrics when set, e.g. ":9090".
		Addr string `yaml:"addr"`
	}
)

func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			Kind:            pool.KindFixed,
			Size:            pool.DefaultSize(),
			ShutdownTimeout: time.Second,
		},
		Termination: TerminationConfig{PropagationDelay: 5 * time.Millisecond},
		Cache:       CacheConfig{Kind: CacheDelayed, Size: 128},
		Archive:     ArchiveConfig{Kind: ArchiveNone, Bucket: "actr_leftovers"},
	}
}

func (c *Config) Validate() error {
	if _, err := pool.ParseKind(string(c.Pool.Kind)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPoolKind, c.Pool.Kind)
	}
	if c.Pool.Size < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPoolSize, c.Pool.Size)
	}
	if c.Pool.ShutdownTimeout < 0 || c.Termination.PropagationDelay < 0 {
		return ErrInvalidDuration
	}

	switch c.Cache.Kind {
	case "", CacheDelayed, CacheNop:
	case CacheLRU:
		if c.Cache.Size <= 0 {
			return fmt.Errorf("%w: lru size %d", ErrInvalidCache, c.Cache.Size)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCache, c.Cache.Kind)
	}

	switch c.Archive.Kind {
	case "", ArchiveNone, ArchiveMemory:
	case ArchiveNATS:
		if c.Archive.NatsURL == "" || c.Archive.Bucket == "" {
			return fmt.Errorf("%w: nats needs nats_url and bucket", ErrInvalidArchive)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidArchive, c.Archive.Kind)
	}
	return nil
}
