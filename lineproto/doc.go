// Package lineproto renders measurements, tags, fields and timestamps into
// InfluxDB line-protocol text.
//
// The package is write-only: it serializes, it never parses. Output is
// deterministic: tag and field sets are sorted lexicographically by key
// at render time, so the same input always produces byte-identical text.
//
// # Grammar
//
// A rendered line has the shape:
//
//	<measurement>,<tag_key>=<tag_value>[,...] <field_key>=<field_value>[,...] <timestamp_ns>
//
// Measurement, tag keys, tag values and field keys share one escaping rule
// (EscapeKey): backslash, comma, space and equals are backslash-escaped,
// backslash first so later substitutions are not double-escaped. String
// field values are double-quoted with backslash and double-quote escaped
// inside. Float field values use the shortest decimal form that round-trips
// (integral floats render without a decimal point); unsigned integer values
// carry InfluxDB's trailing "i" marker.
//
// # Suppression
//
// A line whose encoded field set is empty is meaningless to InfluxDB, so
// BuildLine returns the empty string for it. Callers treat "" as "emit
// nothing for this sample".
package lineproto
