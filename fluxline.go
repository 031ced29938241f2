// Package fluxline encodes in-memory metric samples into InfluxDB
// line-protocol text.
//
// The encoder is deterministic and write-only: each sample produces at
// most one independent line, tag and field sets are sorted at render
// time, and encoding the same input twice yields byte-identical output.
// Samples whose payload cannot be projected into fields (a distribution
// with mismatched or all-zero weights, or a histogram/summary with
// mismatched parallel slices) are suppressed rather than reported as
// errors.
//
// # Basic Usage
//
//	enc, _ := fluxline.NewEncoder(fluxline.WithNamespace("services"))
//
//	line, ok := enc.Encode(metric.Metric{
//	    Name:  "requests_total",
//	    Tags:  map[string]string{"host": "web-1"},
//	    Kind:  metric.KindIncremental,
//	    Value: metric.Counter{Value: 1.5},
//	})
//	if ok {
//	    fmt.Println(line)
//	    // services.requests_total,host=web-1,metric_type=counter value=1.5 <now_ns>
//	}
//
// Samples without a timestamp are stamped with the encoder's clock;
// inject a fixed clock with WithClock for deterministic output in tests.
//
// # Package Structure
//
// The metric package defines the sample model, lineproto implements the
// wire grammar, and the client and spool packages provide the batching
// HTTP transport and the on-disk overflow buffer built on this encoder.
package fluxline

import (
	"fmt"
	"time"

	"github.com/arloliu/fluxline/internal/options"
	"github.com/arloliu/fluxline/lineproto"
	"github.com/arloliu/fluxline/metric"
)

// Encoder converts metric samples into line-protocol text.
//
// An Encoder is immutable after construction and safe for concurrent use:
// every call allocates fresh local state and the only external touch is
// reading the clock when a sample carries no timestamp.
type Encoder struct {
	namespace string
	now       func() time.Time
}

// Option represents a functional option for configuring an Encoder.
type Option = options.Option[*Encoder]

// WithNamespace sets the namespace prepended to every metric name, joined
// with a dot. The empty namespace (the default) leaves names unchanged.
func WithNamespace(namespace string) Option {
	return options.NoError(func(e *Encoder) {
		e.namespace = namespace
	})
}

// WithClock sets the clock used to stamp samples that carry no timestamp.
// The default is time.Now. Tests inject a fixed clock to keep output
// deterministic.
func WithClock(now func() time.Time) Option {
	return options.New(func(e *Encoder) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		e.now = now

		return nil
	})
}

// NewEncoder creates an encoder with the given options.
//
// Returns an error only for invalid options; the zero-option encoder is
// valid and uses no namespace and the wall clock.
func NewEncoder(opts ...Option) (*Encoder, error) {
	enc := &Encoder{now: time.Now}
	if err := options.Apply(enc, opts...); err != nil {
		return nil, err
	}

	return enc, nil
}

// Encode renders one sample as a line-protocol record.
//
// Reports ok=false when the sample is suppressed: its payload projected
// into an empty field set (see the package comment for the cases). A
// suppressed sample is not an error; the caller simply emits nothing
// for it.
func (e *Encoder) Encode(m metric.Metric) (string, bool) {
	metricType, fields, ok := projectValue(m.Value)
	if !ok {
		return "", false
	}

	line := lineproto.BuildLine(
		EncodeNamespace(e.namespace, m.Name),
		metricType,
		m.Tags,
		fields,
		e.resolveTimestamp(m.Time),
	)
	if line == "" {
		return "", false
	}

	return line, true
}

// EncodeBatch renders a batch of samples in input order, skipping
// suppressed samples in place. The result has at most len(ms) lines.
func (e *Encoder) EncodeBatch(ms []metric.Metric) []string {
	lines := make([]string, 0, len(ms))
	for _, m := range ms {
		if line, ok := e.Encode(m); ok {
			lines = append(lines, line)
		}
	}

	return lines
}

// EncodeNamespace joins a namespace and a metric name with a dot. An
// empty namespace returns the name unchanged.
func EncodeNamespace(namespace, name string) string {
	if namespace == "" {
		return name
	}

	return namespace + "." + name
}

// resolveTimestamp converts t to integer nanoseconds since the Unix
// epoch, substituting the encoder's clock when t is unset.
func (e *Encoder) resolveTimestamp(t time.Time) int64 {
	if t.IsZero() {
		t = e.now()
	}

	return t.UnixNano()
}
