package metric

import (
	"fmt"
	"time"

	"github.com/valyala/fastjson"

	"github.com/arloliu/fluxline/errs"
)

// ParseJSON decodes a single metric sample from its JSON wire form.
//
// The expected shape is one object per sample:
//
//	{"name":"requests","timestamp":1542182950000000011,
//	 "tags":{"host":"web-1"},"kind":"incremental",
//	 "counter":{"value":1.5}}
//
// Exactly one of the payload keys "counter", "gauge", "set", "histogram",
// "summary" or "distribution" must be present. The timestamp is optional
// and given in integer nanoseconds since the Unix epoch; a missing or zero
// timestamp leaves Metric.Time unset. The kind defaults to incremental.
//
// Returns an error wrapping errs.ErrBadSample if the document is not valid
// JSON, the name is missing, or the payload is absent or ambiguous.
func ParseJSON(data []byte) (Metric, error) {
	var p fastjson.Parser

	v, err := p.ParseBytes(data)
	if err != nil {
		return Metric{}, fmt.Errorf("%w: %s", errs.ErrBadSample, err)
	}

	name := string(v.GetStringBytes("name"))
	if name == "" {
		return Metric{}, fmt.Errorf("%w: missing name", errs.ErrBadSample)
	}

	m := Metric{Name: name, Kind: KindIncremental}

	if ns := v.GetInt64("timestamp"); ns != 0 {
		m.Time = time.Unix(0, ns).UTC()
	}

	switch string(v.GetStringBytes("kind")) {
	case "", "incremental":
	case "absolute":
		m.Kind = KindAbsolute
	default:
		return Metric{}, fmt.Errorf("%w: unknown kind %q", errs.ErrBadSample, v.GetStringBytes("kind"))
	}

	if tags := v.GetObject("tags"); tags != nil {
		m.Tags = make(map[string]string)
		tags.Visit(func(key []byte, val *fastjson.Value) {
			m.Tags[string(key)] = string(val.GetStringBytes())
		})
	}

	value, err := parseValue(v)
	if err != nil {
		return Metric{}, err
	}
	m.Value = value

	return m, nil
}

// payloadKeys lists the mutually exclusive payload object keys.
var payloadKeys = []string{"counter", "gauge", "set", "histogram", "summary", "distribution"}

func parseValue(v *fastjson.Value) (Value, error) {
	var (
		found   *fastjson.Value
		variant string
	)

	for _, key := range payloadKeys {
		pv := v.Get(key)
		if pv == nil {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: multiple payloads (%s and %s)", errs.ErrBadSample, variant, key)
		}
		found = pv
		variant = key
	}

	if found == nil {
		return nil, fmt.Errorf("%w: missing payload", errs.ErrBadSample)
	}

	switch variant {
	case "counter":
		return Counter{Value: found.GetFloat64("value")}, nil
	case "gauge":
		return Gauge{Value: found.GetFloat64("value")}, nil
	case "set":
		var values []string
		for _, el := range found.GetArray("values") {
			values = append(values, string(el.GetStringBytes()))
		}

		return Set{Values: values}, nil
	case "histogram":
		return AggregatedHistogram{
			Buckets: floatArray(found, "buckets"),
			Counts:  uintArray(found, "counts"),
			Count:   found.GetUint64("count"),
			Sum:     found.GetFloat64("sum"),
		}, nil
	case "summary":
		return AggregatedSummary{
			Quantiles: floatArray(found, "quantiles"),
			Values:    floatArray(found, "values"),
			Count:     found.GetUint64("count"),
			Sum:       found.GetFloat64("sum"),
		}, nil
	default: // distribution
		return Distribution{
			Values:      floatArray(found, "values"),
			SampleRates: uintArray(found, "sample_rates"),
		}, nil
	}
}

func floatArray(v *fastjson.Value, key string) []float64 {
	els := v.GetArray(key)
	if els == nil {
		return nil
	}

	out := make([]float64, 0, len(els))
	for _, el := range els {
		out = append(out, el.GetFloat64())
	}

	return out
}

func uintArray(v *fastjson.Value, key string) []uint64 {
	els := v.GetArray(key)
	if els == nil {
		return nil
	}

	out := make([]uint64, 0, len(els))
	for _, el := range els {
		out = append(out, el.GetUint64())
	}

	return out
}
