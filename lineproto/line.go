package lineproto

import (
	"sort"
	"strconv"
	"strings"
)

// BuildLine renders one complete line-protocol record.
//
// The metricType is merged into the tag set under the "metric_type" key,
// overwriting any caller-supplied tag of that name, so every rendered line
// carries at least one tag. Tags and fields are sorted lexicographically
// by key; pairs whose escaped key or rendered value is empty are dropped.
//
// Returns the empty string when the encoded field set is empty; the
// caller should suppress the record.
//
// Parameters:
//   - measurement: series name, escaped with EscapeKey
//   - metricType: value for the "metric_type" tag
//   - tags: optional tag set (nil allowed, not modified)
//   - fields: field set keyed by field name
//   - timestamp: integer nanoseconds since the Unix epoch
func BuildLine(measurement, metricType string, tags map[string]string, fields map[string]Field, timestamp int64) string {
	merged := make(map[string]string, len(tags)+1)
	for k, v := range tags {
		merged[k] = v
	}
	merged["metric_type"] = metricType

	encodedFields := EncodeFields(fields)
	if encodedFields == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(EscapeKey(measurement))
	sb.WriteByte(',')
	sb.WriteString(EncodeTags(merged))
	sb.WriteByte(' ')
	sb.WriteString(encodedFields)
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatInt(timestamp, 10))

	return sb.String()
}

// EncodeTags renders a tag set as comma-separated key=value pairs sorted
// lexicographically by key. Keys and values are escaped independently;
// pairs with an empty escaped key or value are dropped.
func EncodeTags(tags map[string]string) string {
	keys := sortedKeys(tags)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		key := EscapeKey(k)
		value := EscapeKey(tags[k])
		if key == "" || value == "" {
			continue
		}
		pairs = append(pairs, key+"="+value)
	}

	return strings.Join(pairs, ",")
}

// EncodeFields renders a field set as comma-separated key=value pairs
// sorted lexicographically by key. Keys are escaped; values render per
// their field kind. Pairs with an empty escaped key or rendered value
// are dropped. An empty result signals line suppression to the caller.
func EncodeFields(fields map[string]Field) string {
	keys := sortedKeys(fields)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		key := EscapeKey(k)
		value := fields[k].encode()
		if key == "" || value == "" {
			continue
		}
		pairs = append(pairs, key+"="+value)
	}

	return strings.Join(pairs, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
