package lineproto

import "strconv"

// FieldKind identifies the line-protocol type of a field value.
type FieldKind uint8

const (
	// FieldString renders as a double-quoted, escaped string.
	FieldString FieldKind = iota + 1
	// FieldFloat renders as a shortest-round-trip decimal number.
	FieldFloat
	// FieldUint renders as decimal digits with a trailing "i" marker.
	FieldUint
)

// String returns the name of the field kind.
func (k FieldKind) String() string {
	switch k {
	case FieldString:
		return "String"
	case FieldFloat:
		return "Float"
	case FieldUint:
		return "UnsignedInt"
	default:
		return "Unknown"
	}
}

// Field is a typed scalar destined for the field set of a line-protocol
// record. Each kind carries its own rendering rule; construct values with
// StringField, FloatField or UintField.
type Field struct {
	kind FieldKind
	str  string
	num  float64
	uint uint64
}

// StringField returns a string-typed field value.
func StringField(s string) Field {
	return Field{kind: FieldString, str: s}
}

// FloatField returns a float-typed field value.
func FloatField(f float64) Field {
	return Field{kind: FieldFloat, num: f}
}

// UintField returns an unsigned-integer-typed field value.
func UintField(u uint64) Field {
	return Field{kind: FieldUint, uint: u}
}

// Kind returns the line-protocol type of the field.
func (f Field) Kind() FieldKind {
	return f.kind
}

// encode renders the field value in its line-protocol form. The zero
// Field has no kind and renders empty, which drops the pair at render
// time.
func (f Field) encode() string {
	switch f.kind {
	case FieldString:
		return `"` + escapeStringValue(f.str) + `"`
	case FieldFloat:
		return FormatFloat(f.num)
	case FieldUint:
		return strconv.FormatUint(f.uint, 10) + "i"
	default:
		return ""
	}
}

// FormatFloat renders f in its shortest decimal form that parses back to
// the same value. Integral floats render without a decimal point or
// exponent (6 not 6.0), matching the natural textual form InfluxDB and
// the bucket/quantile field-name suffixes expect.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
