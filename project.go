package fluxline

import (
	"github.com/arloliu/fluxline/internal/stats"
	"github.com/arloliu/fluxline/lineproto"
	"github.com/arloliu/fluxline/metric"
)

// projectValue maps a payload variant to its metric_type tag value and
// canonical field set. It reports ok=false when no line should be emitted
// for the sample: a distribution the summarizer rejects, or a histogram or
// summary whose parallel slices differ in length.
func projectValue(v metric.Value) (string, map[string]lineproto.Field, bool) {
	switch value := v.(type) {
	case metric.Counter:
		return "counter", valueField(value.Value), true

	case metric.Gauge:
		return "gauge", valueField(value.Value), true

	case metric.Set:
		return "set", valueField(float64(value.Distinct())), true

	case metric.AggregatedHistogram:
		if len(value.Buckets) != len(value.Counts) {
			return "", nil, false
		}

		fields := make(map[string]lineproto.Field, len(value.Buckets)+2)
		for i, bound := range value.Buckets {
			fields["bucket_"+lineproto.FormatFloat(bound)] = lineproto.UintField(value.Counts[i])
		}
		fields["count"] = lineproto.UintField(value.Count)
		fields["sum"] = lineproto.FloatField(value.Sum)

		return "histogram", fields, true

	case metric.AggregatedSummary:
		if len(value.Quantiles) != len(value.Values) {
			return "", nil, false
		}

		fields := make(map[string]lineproto.Field, len(value.Quantiles)+2)
		for i, q := range value.Quantiles {
			fields["quantile_"+lineproto.FormatFloat(q)] = lineproto.FloatField(value.Values[i])
		}
		fields["count"] = lineproto.UintField(value.Count)
		fields["sum"] = lineproto.FloatField(value.Sum)

		return "summary", fields, true

	case metric.Distribution:
		summary, ok := stats.Summarize(value.Values, value.SampleRates)
		if !ok {
			return "", nil, false
		}

		return "distribution", map[string]lineproto.Field{
			"min":           lineproto.FloatField(summary.Min),
			"max":           lineproto.FloatField(summary.Max),
			"median":        lineproto.FloatField(summary.Median),
			"avg":           lineproto.FloatField(summary.Avg),
			"sum":           lineproto.FloatField(summary.Sum),
			"count":         lineproto.FloatField(summary.Count),
			"quantile_0.95": lineproto.FloatField(summary.P95),
		}, true

	default:
		return "", nil, false
	}
}

func valueField(v float64) map[string]lineproto.Field {
	return map[string]lineproto.Field{"value": lineproto.FloatField(v)}
}
