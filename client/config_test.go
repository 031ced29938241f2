package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fluxline/compress"
	"github.com/arloliu/fluxline/errs"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.URL = "http://localhost:8086"
	cfg.Database = "metrics"

	return cfg
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{URL: "http://localhost:8086", Database: "metrics"}
	require.NoError(t, cfg.Validate())

	require.Equal(t, 10*time.Second, cfg.Timeout)
	require.Equal(t, 1000, cfg.BatchSize)
	require.Equal(t, 10*time.Second, cfg.FlushInterval)
	require.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	require.Equal(t, compress.TypeNone, cfg.Compression)
}

func TestValidateRequiredFields(t *testing.T) {
	cfg := validConfig()
	cfg.URL = ""
	require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)

	cfg = validConfig()
	cfg.Database = ""
	require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
}

func TestValidateConsistency(t *testing.T) {
	for _, level := range []string{"", "any", "one", "quorum", "all"} {
		cfg := validConfig()
		cfg.Consistency = level
		require.NoError(t, cfg.Validate())
	}

	cfg := validConfig()
	cfg.Consistency = "most"
	require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
}

func TestValidateCompression(t *testing.T) {
	cfg := validConfig()
	cfg.Compression = compress.TypeGzip
	require.NoError(t, cfg.Validate())

	// The /write endpoint only accepts gzip bodies.
	cfg = validConfig()
	cfg.Compression = compress.TypeLZ4
	require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
}

func TestValidateNegativeValues(t *testing.T) {
	cfg := validConfig()
	cfg.MaxRetries = -1
	require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)

	cfg = validConfig()
	cfg.MaxSeries = -1
	require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: http://influx:8086
database: prod_metrics
namespace: services
compression: gzip
batch_size: 500
max_series: 10000
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "http://influx:8086", cfg.URL)
	require.Equal(t, "prod_metrics", cfg.Database)
	require.Equal(t, "services", cfg.Namespace)
	require.Equal(t, compress.TypeGzip, cfg.Compression)
	require.Equal(t, 500, cfg.BatchSize)
	require.Equal(t, 10000, cfg.MaxSeries)
	// Unset keys keep their defaults.
	require.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestLoadConfigInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("url: [broken\n"), 0o644))

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}
