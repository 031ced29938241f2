// Command fluxline-relay reads newline-delimited JSON metric samples from
// stdin and writes them to an InfluxDB v1 database as line protocol.
//
// Each input line is one sample:
//
//	{"name":"requests","tags":{"host":"web-1"},"counter":{"value":1.5}}
//
// Samples are batched, gzip is optional, and failed batches can be
// spooled to disk and replayed on the next run.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/lmittmann/tint"

	"github.com/arloliu/fluxline/client"
	"github.com/arloliu/fluxline/compress"
	"github.com/arloliu/fluxline/metric"
	"github.com/arloliu/fluxline/spool"
)

type cliOptions struct {
	Config    string `short:"c" long:"config" description:"YAML config file"`
	URL       string `short:"u" long:"url" description:"InfluxDB base URL (overrides config)"`
	Database  string `short:"d" long:"database" description:"target database (overrides config)"`
	Namespace string `short:"n" long:"namespace" description:"metric namespace prefix (overrides config)"`
	SpoolDir  string `long:"spool-dir" description:"directory for spooling failed batches"`
	Gzip      bool   `long:"gzip" description:"gzip write bodies"`
	Verbose   bool   `short:"v" long:"verbose" description:"debug logging"`
}

func main() {
	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))

	if err := run(opts, logger); err != nil {
		logger.Error("relay failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(opts cliOptions, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	c, err := client.New(cfg, logger)
	if err != nil {
		return err
	}

	var spill client.Spiller
	var sp *spool.Spool
	if opts.SpoolDir != "" {
		sp, err = spool.Open(opts.SpoolDir, spool.WithLogger(logger))
		if err != nil {
			return err
		}
		defer sp.Close()
		spill = sp
	}

	batcher, err := client.NewBatcher(c, spill, logger)
	if err != nil {
		return err
	}

	// Replay what a previous run left behind before accepting new samples.
	if sp != nil && sp.Len() > 0 {
		replayed, err := sp.Drain(ctx, func(ctx context.Context, payload []byte) error {
			return c.WriteRaw(ctx, payload)
		})
		if replayed > 0 {
			logger.Info("replayed spooled batches", slog.Int("segments", replayed))
		}
		if err != nil {
			logger.Warn("spool replay interrupted", slog.String("error", err.Error()))
		}
	}

	accepted, malformed := 0, 0
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			break
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		m, err := metric.ParseJSON(line)
		if err != nil {
			malformed++
			logger.Debug("skipping malformed sample", slog.String("error", err.Error()))

			continue
		}

		if err := batcher.Add(ctx, m); err != nil {
			return err
		}
		accepted++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	if err := batcher.Flush(ctx); err != nil {
		return err
	}

	logger.Info("relay finished",
		slog.Int("accepted", accepted),
		slog.Int("malformed", malformed),
		slog.Uint64("dropped_by_series_guard", batcher.Dropped()))

	return nil
}

func loadConfig(opts cliOptions) (client.Config, error) {
	cfg := client.DefaultConfig()
	if opts.Config != "" {
		loaded, err := client.LoadConfig(opts.Config)
		if err != nil {
			return client.Config{}, err
		}
		cfg = loaded
	}

	if opts.URL != "" {
		cfg.URL = opts.URL
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Namespace != "" {
		cfg.Namespace = opts.Namespace
	}
	if opts.Gzip {
		cfg.Compression = compress.TypeGzip
	}

	return cfg, cfg.Validate()
}
