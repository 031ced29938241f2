// Package hash computes stable 64-bit identities for metric series.
package hash

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

// SeriesID computes the xxHash64 identity of a series: the metric name
// qualified by its tag set. Tags are folded in sorted key order with NUL
// separators, so the result is independent of map iteration order and
// unambiguous for adjacent key/value boundaries.
func SeriesID(name string, tags map[string]string) uint64 {
	if len(tags) == 0 {
		return xxhash.Sum64String(name)
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var d xxhash.Digest
	_, _ = d.WriteString(name)
	for _, k := range keys {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(k)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(tags[k])
	}

	return d.Sum64()
}
