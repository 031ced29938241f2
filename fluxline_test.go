package fluxline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fluxline/metric"
)

func fixedTime() time.Time {
	return time.Date(2018, 11, 14, 8, 9, 10, 11, time.UTC)
}

func fixedClock() func() time.Time {
	return func() time.Time { return fixedTime() }
}

func testTags() map[string]string {
	return map[string]string{
		"normal_tag": "value",
		"true_tag":   "true",
		"empty_tag":  "",
	}
}

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()

	enc, err := NewEncoder(WithNamespace("ns"), WithClock(fixedClock()))
	require.NoError(t, err)

	return enc
}

func TestEncodeNamespace(t *testing.T) {
	require.Equal(t, "services.status", EncodeNamespace("services", "status"))
	require.Equal(t, "status", EncodeNamespace("", "status"))
}

func TestResolveTimestamp(t *testing.T) {
	enc := newTestEncoder(t)

	require.Equal(t, int64(1542182950000000011), enc.resolveTimestamp(fixedTime()))
	// Unset timestamps use the injected clock.
	require.Equal(t, int64(1542182950000000011), enc.resolveTimestamp(time.Time{}))
}

func TestWithClockRejectsNil(t *testing.T) {
	_, err := NewEncoder(WithClock(nil))
	require.Error(t, err)
}

func TestEncodeCounter(t *testing.T) {
	enc := newTestEncoder(t)

	lines := enc.EncodeBatch([]metric.Metric{
		{
			Name:  "total",
			Time:  fixedTime(),
			Kind:  metric.KindIncremental,
			Value: metric.Counter{Value: 1.5},
		},
		{
			Name:  "check",
			Time:  fixedTime(),
			Tags:  testTags(),
			Kind:  metric.KindIncremental,
			Value: metric.Counter{Value: 1.0},
		},
	})

	require.Equal(t, []string{
		"ns.total,metric_type=counter value=1.5 1542182950000000011",
		"ns.check,metric_type=counter,normal_tag=value,true_tag=true value=1 1542182950000000011",
	}, lines)
}

func TestEncodeGauge(t *testing.T) {
	enc := newTestEncoder(t)

	line, ok := enc.Encode(metric.Metric{
		Name:  "meter",
		Time:  fixedTime(),
		Tags:  testTags(),
		Kind:  metric.KindIncremental,
		Value: metric.Gauge{Value: -1.5},
	})

	require.True(t, ok)
	require.Equal(t,
		"ns.meter,metric_type=gauge,normal_tag=value,true_tag=true value=-1.5 1542182950000000011",
		line)
}

func TestEncodeSet(t *testing.T) {
	enc := newTestEncoder(t)

	line, ok := enc.Encode(metric.Metric{
		Name:  "users",
		Time:  fixedTime(),
		Tags:  testTags(),
		Kind:  metric.KindIncremental,
		Value: metric.Set{Values: []string{"alice", "bob"}},
	})

	require.True(t, ok)
	require.Equal(t,
		"ns.users,metric_type=set,normal_tag=value,true_tag=true value=2 1542182950000000011",
		line)
}

func TestEncodeSetDuplicatesCountOnce(t *testing.T) {
	enc := newTestEncoder(t)

	line, ok := enc.Encode(metric.Metric{
		Name:  "users",
		Time:  fixedTime(),
		Kind:  metric.KindIncremental,
		Value: metric.Set{Values: []string{"alice", "bob", "alice"}},
	})

	require.True(t, ok)
	require.Equal(t, "ns.users,metric_type=set value=2 1542182950000000011", line)
}

func TestEncodeHistogram(t *testing.T) {
	enc := newTestEncoder(t)

	line, ok := enc.Encode(metric.Metric{
		Name: "requests",
		Time: fixedTime(),
		Tags: testTags(),
		Kind: metric.KindAbsolute,
		Value: metric.AggregatedHistogram{
			Buckets: []float64{1.0, 2.1, 3.0},
			Counts:  []uint64{1, 2, 3},
			Count:   6,
			Sum:     12.5,
		},
	})

	require.True(t, ok)
	require.Equal(t,
		"ns.requests,metric_type=histogram,normal_tag=value,true_tag=true bucket_1=1i,bucket_2.1=2i,bucket_3=3i,count=6i,sum=12.5 1542182950000000011",
		line)
}

func TestEncodeHistogramLengthMismatchSuppressed(t *testing.T) {
	enc := newTestEncoder(t)

	_, ok := enc.Encode(metric.Metric{
		Name: "requests",
		Time: fixedTime(),
		Kind: metric.KindAbsolute,
		Value: metric.AggregatedHistogram{
			Buckets: []float64{1.0, 2.1},
			Counts:  []uint64{1, 2, 3},
			Count:   6,
			Sum:     12.5,
		},
	})

	require.False(t, ok)
}

func TestEncodeSummary(t *testing.T) {
	enc := newTestEncoder(t)

	line, ok := enc.Encode(metric.Metric{
		Name: "requests_sum",
		Time: fixedTime(),
		Tags: testTags(),
		Kind: metric.KindAbsolute,
		Value: metric.AggregatedSummary{
			Quantiles: []float64{0.01, 0.5, 0.99},
			Values:    []float64{1.5, 2.0, 3.0},
			Count:     6,
			Sum:       12.0,
		},
	})

	require.True(t, ok)
	require.Equal(t,
		"ns.requests_sum,metric_type=summary,normal_tag=value,true_tag=true count=6i,quantile_0.01=1.5,quantile_0.5=2,quantile_0.99=3,sum=12 1542182950000000011",
		line)
}

func TestEncodeSummaryLengthMismatchSuppressed(t *testing.T) {
	enc := newTestEncoder(t)

	_, ok := enc.Encode(metric.Metric{
		Name: "requests_sum",
		Time: fixedTime(),
		Kind: metric.KindAbsolute,
		Value: metric.AggregatedSummary{
			Quantiles: []float64{0.01, 0.5},
			Values:    []float64{1.5},
			Count:     6,
			Sum:       12.0,
		},
	})

	require.False(t, ok)
}

func TestEncodeDistribution(t *testing.T) {
	enc := newTestEncoder(t)

	dense := make([]float64, 20)
	denseRates := make([]uint64, 20)
	for i := range dense {
		dense[i] = float64(i)
		denseRates[i] = 1
	}

	lines := enc.EncodeBatch([]metric.Metric{
		{
			Name: "requests",
			Time: fixedTime(),
			Tags: testTags(),
			Kind: metric.KindIncremental,
			Value: metric.Distribution{
				Values:      []float64{1.0, 2.0, 3.0},
				SampleRates: []uint64{3, 3, 2},
			},
		},
		{
			Name: "dense_stats",
			Time: fixedTime(),
			Kind: metric.KindIncremental,
			Value: metric.Distribution{
				Values:      dense,
				SampleRates: denseRates,
			},
		},
		{
			Name: "sparse_stats",
			Time: fixedTime(),
			Kind: metric.KindIncremental,
			Value: metric.Distribution{
				Values:      []float64{1, 2, 3, 4},
				SampleRates: []uint64{1, 2, 3, 4},
			},
		},
	})

	require.Equal(t, []string{
		"ns.requests,metric_type=distribution,normal_tag=value,true_tag=true avg=1.875,count=8,max=3,median=2,min=1,quantile_0.95=3,sum=15 1542182950000000011",
		"ns.dense_stats,metric_type=distribution avg=9.5,count=20,max=19,median=9,min=0,quantile_0.95=18,sum=190 1542182950000000011",
		"ns.sparse_stats,metric_type=distribution avg=3,count=10,max=4,median=3,min=1,quantile_0.95=4,sum=30 1542182950000000011",
	}, lines)
}

func TestEncodeDistributionEmptySuppressed(t *testing.T) {
	enc := newTestEncoder(t)

	lines := enc.EncodeBatch([]metric.Metric{{
		Name:  "requests",
		Time:  fixedTime(),
		Tags:  testTags(),
		Kind:  metric.KindIncremental,
		Value: metric.Distribution{},
	}})

	require.Empty(t, lines)
}

func TestEncodeDistributionZeroWeightsSuppressed(t *testing.T) {
	enc := newTestEncoder(t)

	lines := enc.EncodeBatch([]metric.Metric{{
		Name: "requests",
		Time: fixedTime(),
		Kind: metric.KindIncremental,
		Value: metric.Distribution{
			Values:      []float64{1.0, 2.0},
			SampleRates: []uint64{0, 0},
		},
	}})

	require.Empty(t, lines)
}

func TestEncodeDistributionLengthMismatchSuppressed(t *testing.T) {
	enc := newTestEncoder(t)

	lines := enc.EncodeBatch([]metric.Metric{{
		Name: "requests",
		Time: fixedTime(),
		Kind: metric.KindIncremental,
		Value: metric.Distribution{
			Values:      []float64{1.0},
			SampleRates: []uint64{1, 2, 3},
		},
	}})

	require.Empty(t, lines)
}

func TestEncodeBatchPreservesOrderAndSkipsInPlace(t *testing.T) {
	enc := newTestEncoder(t)

	lines := enc.EncodeBatch([]metric.Metric{
		{Name: "a", Time: fixedTime(), Value: metric.Counter{Value: 1}},
		{Name: "bad", Time: fixedTime(), Value: metric.Distribution{}},
		{Name: "b", Time: fixedTime(), Value: metric.Counter{Value: 2}},
	})

	require.Equal(t, []string{
		"ns.a,metric_type=counter value=1 1542182950000000011",
		"ns.b,metric_type=counter value=2 1542182950000000011",
	}, lines)
}

func TestEncodeDeterminism(t *testing.T) {
	enc := newTestEncoder(t)

	m := metric.Metric{
		Name: "requests",
		Tags: map[string]string{"b": "2", "a": "1", "c": "3"},
		Kind: metric.KindIncremental,
		Value: metric.AggregatedHistogram{
			Buckets: []float64{0.5, 1, 2},
			Counts:  []uint64{1, 2, 3},
			Count:   6,
			Sum:     3.2,
		},
	}

	first, ok := enc.Encode(m)
	require.True(t, ok)

	for range 10 {
		line, ok := enc.Encode(m)
		require.True(t, ok)
		require.Equal(t, first, line)
	}
}

func TestEncodeNoNamespace(t *testing.T) {
	enc, err := NewEncoder(WithClock(fixedClock()))
	require.NoError(t, err)

	line, ok := enc.Encode(metric.Metric{
		Name:  "status",
		Time:  fixedTime(),
		Value: metric.Gauge{Value: 3},
	})

	require.True(t, ok)
	require.Equal(t, "status,metric_type=gauge value=3 1542182950000000011", line)
}
