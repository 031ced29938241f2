package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/fluxline"
	"github.com/arloliu/fluxline/errs"
	"github.com/arloliu/fluxline/internal/hash"
	"github.com/arloliu/fluxline/metric"
)

// Spiller receives payloads that could not be written, for later replay.
// *spool.Spool satisfies it.
type Spiller interface {
	Put(payload []byte) error
}

// Batcher encodes metric samples as they arrive and writes them in
// batches.
//
// A batch flushes when it reaches the configured BatchSize, when the
// oldest buffered line exceeds FlushInterval at the next Add, or on an
// explicit Flush. Input order is preserved within and across batches.
//
// When a MaxSeries cap is configured, the batcher tracks distinct series
// (metric name plus tag set, xxHash64-keyed) and drops samples that would
// open a new series past the cap; samples for already-known series are
// always accepted. Dropped samples are counted, not errors.
//
// A Batcher is safe for concurrent use.
type Batcher struct {
	mu        sync.Mutex
	enc       *fluxline.Encoder
	client    *Client
	spill     Spiller
	logger    *slog.Logger
	lines     []string
	oldest    time.Time
	series    map[uint64]struct{}
	maxSeries int
	batchSize int
	interval  time.Duration
	dropped   uint64
}

// NewBatcher creates a batcher in front of c, using c's configuration for
// namespace, batch size, flush interval and the series guard. The spill
// target is optional; pass nil to drop failed payloads after retries.
func NewBatcher(c *Client, spill Spiller, logger *slog.Logger) (*Batcher, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client is required", errs.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := c.Config()

	enc, err := fluxline.NewEncoder(fluxline.WithNamespace(cfg.Namespace))
	if err != nil {
		return nil, err
	}

	b := &Batcher{
		enc:       enc,
		client:    c,
		spill:     spill,
		logger:    logger,
		batchSize: cfg.BatchSize,
		interval:  cfg.FlushInterval,
		maxSeries: cfg.MaxSeries,
	}
	if b.maxSeries > 0 {
		b.series = make(map[uint64]struct{}, b.maxSeries)
	}

	return b, nil
}

// Add encodes one sample into the current batch, flushing first when the
// batch is full or stale. Suppressed samples (empty or invalid payloads)
// and samples dropped by the series guard are consumed without error.
func (b *Batcher) Add(ctx context.Context, m metric.Metric) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.lines) > 0 &&
		(len(b.lines) >= b.batchSize || time.Since(b.oldest) >= b.interval) {
		if err := b.flushLocked(ctx); err != nil {
			return err
		}
	}

	if b.series != nil {
		id := hash.SeriesID(m.Name, m.Tags)
		if _, known := b.series[id]; !known {
			if len(b.series) >= b.maxSeries {
				b.dropped++
				b.logger.Debug("series limit exceeded, dropping sample",
					slog.String("metric", m.Name))

				return nil
			}
			b.series[id] = struct{}{}
		}
	}

	line, ok := b.enc.Encode(m)
	if !ok {
		return nil
	}

	if len(b.lines) == 0 {
		b.oldest = time.Now()
	}
	b.lines = append(b.lines, line)

	if len(b.lines) >= b.batchSize {
		return b.flushLocked(ctx)
	}

	return nil
}

// Flush writes the buffered batch immediately. A failed write hands the
// payload to the spill target when one is attached; the batch is cleared
// either way.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.flushLocked(ctx)
}

// Len returns the number of buffered lines.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.lines)
}

// SeriesCount returns the number of distinct series seen so far. It is
// zero when the series guard is disabled.
func (b *Batcher) SeriesCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.series)
}

// Dropped returns the number of samples dropped by the series guard.
func (b *Batcher) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.dropped
}

func (b *Batcher) flushLocked(ctx context.Context) error {
	if len(b.lines) == 0 {
		return nil
	}

	lines := b.lines
	b.lines = nil

	err := b.client.Write(ctx, lines)
	if err == nil {
		return nil
	}

	if b.spill != nil {
		payload := strings.Join(lines, "\n")
		if spillErr := b.spill.Put([]byte(payload)); spillErr == nil {
			b.logger.Warn("write failed, payload spooled",
				slog.Int("lines", len(lines)),
				slog.String("error", err.Error()))

			return nil
		}
	}

	return err
}
