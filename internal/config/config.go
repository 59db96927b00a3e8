// Package config loads depgraph settings from defaults, an optional YAML
// file and DEPGRAPH_* environment variables.
package config

import (
	"errors"
	"fmt"
)

// Error policies.
const (
	OnFileErrorAbort = "abort"
	OnFileErrorSkip  = "skip"
)

// Attribution policies.
const (
	AttributionCoarse = "coarse"
	AttributionFine   = "fine"
)

// Defaults.
const (
	DefaultOnFileError       = OnFileErrorAbort
	DefaultAttribution       = AttributionCoarse
	DefaultParallel          = true
	DefaultWorkers           = 0
	DefaultResolverCacheSize = 4096
	DefaultDB                = ""
)

// Config is the top-level configuration struct.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	OnFileError string         `mapstructure:"on_file_error"`
	Attribution string         `mapstructure:"attribution"`
	Parallel    bool           `mapstructure:"parallel"`
	Workers     int            `mapstructure:"workers"`
	Externals   []string       `mapstructure:"externals"`
	SkipDirs    []string       `mapstructure:"skip_dirs"`
	Resolver    ResolverConfig `mapstructure:"resolver"`
	DB          string         `mapstructure:"db"`
}

// ResolverConfig holds module resolver settings.
type ResolverConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

var (
	errInvalidOnFileError = errors.New("on_file_error must be abort or skip")
	errInvalidAttribution = errors.New("attribution must be coarse or fine")
	errNegativeWorkers    = errors.New("workers must be >= 0")
	errNegativeCacheSize  = errors.New("resolver.cache_size must be >= 0")
)

// Validate checks enum values and sizes.
func (c *Config) Validate() error {
	switch c.OnFileError {
	case OnFileErrorAbort, OnFileErrorSkip:
	default:
		return fmt.Errorf("%w: got %q", errInvalidOnFileError, c.OnFileError)
	}
	switch c.Attribution {
	case AttributionCoarse, AttributionFine:
	default:
		return fmt.Errorf("%w: got %q", errInvalidAttribution, c.Attribution)
	}
	if c.Workers < 0 {
		return errNegativeWorkers
	}
	if c.Resolver.CacheSize < 0 {
		return errNegativeCacheSize
	}
	return nil
}
