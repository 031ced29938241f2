// Package metric defines the in-memory metric sample model consumed by the
// fluxline encoder.
//
// A Metric carries a name, an optional timestamp, an optional tag set, a
// kind (incremental or absolute), and exactly one Value variant describing
// the payload: Counter, Gauge, Set, AggregatedHistogram, AggregatedSummary,
// or Distribution. Samples are value types; the encoder never mutates them.
package metric

import "time"

// Kind describes how a metric sample relates to previous samples of the
// same series.
type Kind uint8

const (
	// KindIncremental marks a sample that represents a delta to be added
	// to the series (e.g. a counter increment).
	KindIncremental Kind = iota + 1

	// KindAbsolute marks a sample that represents the current value of
	// the series (e.g. a gauge reading).
	KindAbsolute
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindIncremental:
		return "incremental"
	case KindAbsolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// Metric is a single metric sample.
//
// Fields:
//   - Name: bare metric name; the encoder applies the namespace prefix
//   - Time: sample timestamp; the zero value means "not set" and the
//     encoder substitutes its clock's current instant
//   - Tags: optional string dimensions; nil and empty are equivalent
//   - Kind: incremental or absolute (informational, not encoded)
//   - Value: exactly one of the Value variants below
type Metric struct {
	Name  string
	Time  time.Time
	Tags  map[string]string
	Kind  Kind
	Value Value
}

// Value is the tagged union of metric payload variants.
//
// Exactly one concrete type implements the payload of a sample:
// Counter, Gauge, Set, AggregatedHistogram, AggregatedSummary or
// Distribution.
type Value interface {
	metricValue()
}

// Counter is a monotonically accumulated numeric payload.
type Counter struct {
	Value float64
}

// Gauge is a point-in-time numeric payload.
type Gauge struct {
	Value float64
}

// Set is a collection of observed string members. Only the cardinality
// of the distinct members is encoded; duplicate entries count once.
type Set struct {
	Values []string
}

// Distinct returns the number of distinct members in the set.
func (s Set) Distinct() int {
	seen := make(map[string]struct{}, len(s.Values))
	for _, v := range s.Values {
		seen[v] = struct{}{}
	}

	return len(seen)
}

// AggregatedHistogram is a pre-bucketed histogram payload.
//
// Buckets holds the upper bounds and Counts the per-bucket observation
// counts; the two slices are index-aligned and must have equal length.
type AggregatedHistogram struct {
	Buckets []float64
	Counts  []uint64
	Count   uint64
	Sum     float64
}

// AggregatedSummary is a pre-computed quantile summary payload.
//
// Quantiles holds values in [0,1] and Values the corresponding estimates;
// the two slices are index-aligned and must have equal length.
type AggregatedSummary struct {
	Quantiles []float64
	Values    []float64
	Count     uint64
	Sum       float64
}

// Distribution is a compressed sample distribution payload.
//
// SampleRates[i] is the repetition weight of Values[i]: the sample set it
// represents contains Values[i] repeated SampleRates[i] times. The two
// slices are index-aligned and must have equal length.
type Distribution struct {
	Values      []float64
	SampleRates []uint64
}

func (Counter) metricValue()             {}
func (Gauge) metricValue()               {}
func (Set) metricValue()                 {}
func (AggregatedHistogram) metricValue() {}
func (AggregatedSummary) metricValue()   {}
func (Distribution) metricValue()        {}
