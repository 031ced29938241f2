// Package client provides the batching HTTP transport that ships encoded
// line-protocol text to an InfluxDB v1 write endpoint.
//
// The Client handles the single-shot write: newline-joined lines POSTed to
// /write with nanosecond precision, optional gzip bodies, basic auth, and
// capped-exponential retry on retryable failures. The Batcher sits in
// front of it, encoding metric samples as they arrive, flushing on batch
// size or demand, guarding series cardinality, and handing failed payloads
// to an optional spool for later replay.
package client

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/fluxline/compress"
	"github.com/arloliu/fluxline/errs"
)

// Config holds the settings for the write client and its batcher. All
// fields round-trip through YAML; zero values fall back to the defaults
// documented per field when Validate runs.
type Config struct {
	// URL is the base URL of the InfluxDB instance, e.g. "http://localhost:8086".
	URL string `yaml:"url"`

	// Database is the target database name. Required.
	Database string `yaml:"database"`

	// RetentionPolicy selects a retention policy; empty uses the database default.
	RetentionPolicy string `yaml:"retention_policy"`

	// Consistency sets the write consistency level for clustered setups
	// (one of "any", "one", "quorum", "all"); empty omits the parameter.
	Consistency string `yaml:"consistency"`

	// Username and Password enable HTTP basic auth when both are non-empty.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Namespace is prepended to every metric name, joined with a dot.
	Namespace string `yaml:"namespace"`

	// Timeout bounds a single write request. Default 10s.
	Timeout time.Duration `yaml:"timeout"`

	// BatchSize is the line count that triggers an automatic flush.
	// Default 1000.
	BatchSize int `yaml:"batch_size"`

	// FlushInterval is the age at which a non-empty batch flushes even if
	// under BatchSize. Default 10s.
	FlushInterval time.Duration `yaml:"flush_interval"`

	// MaxRetries is the number of additional attempts after a retryable
	// write failure. Default 3.
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the initial backoff between attempts; it doubles per
	// attempt with jitter, capped at 16x. Default 500ms.
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// Compression selects the write-body encoding: none or gzip. InfluxDB
	// accepts no other content encodings on /write. Default none.
	Compression compress.Type `yaml:"compression"`

	// MaxSeries caps the number of distinct series the batcher accepts per
	// process lifetime; samples for new series beyond the cap are dropped
	// and counted. Zero disables the guard.
	MaxSeries int `yaml:"max_series"`
}

// DefaultConfig returns a Config with all optional fields at their
// documented defaults. URL and Database remain empty and must be set.
func DefaultConfig() Config {
	return Config{
		Timeout:       10 * time.Second,
		BatchSize:     1000,
		FlushInterval: 10 * time.Second,
		MaxRetries:    3,
		RetryBackoff:  500 * time.Millisecond,
		Compression:   compress.TypeNone,
	}
}

// LoadConfig reads a YAML config file and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", errs.ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s", errs.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks required fields, normalizes zero values to defaults and
// rejects settings the write endpoint cannot honor.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: url is required", errs.ErrInvalidConfig)
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("%w: url: %s", errs.ErrInvalidConfig, err)
	}
	if c.Database == "" {
		return fmt.Errorf("%w: database is required", errs.ErrInvalidConfig)
	}

	switch c.Consistency {
	case "", "any", "one", "quorum", "all":
	default:
		return fmt.Errorf("%w: consistency %q", errs.ErrInvalidConfig, c.Consistency)
	}

	switch c.Compression {
	case 0:
		c.Compression = compress.TypeNone
	case compress.TypeNone, compress.TypeGzip:
	default:
		return fmt.Errorf("%w: compression %s not accepted by /write (use none or gzip)",
			errs.ErrInvalidConfig, c.Compression)
	}

	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 10 * time.Second
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", errs.ErrInvalidConfig)
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
	if c.MaxSeries < 0 {
		return fmt.Errorf("%w: max_series must not be negative", errs.ErrInvalidConfig)
	}

	return nil
}
