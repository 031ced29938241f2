package lineproto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testTags() map[string]string {
	return map[string]string{
		"normal_tag": "value",
		"true_tag":   "true",
		"empty_tag":  "",
	}
}

func TestEncodeTagsSortedAndEmptyDropped(t *testing.T) {
	require.Equal(t, "normal_tag=value,true_tag=true", EncodeTags(testTags()))
}

func TestEncodeTagsEscaping(t *testing.T) {
	tags := map[string]string{
		"tag":           "val=ue",
		"name escape":   "true",
		"value_escape":  "value escape",
		"a_first_place": "10",
	}

	require.Equal(t,
		`a_first_place=10,name\ escape=true,tag=val\=ue,value_escape=value\ escape`,
		EncodeTags(tags))
}

func TestEncodeTagsEmpty(t *testing.T) {
	require.Equal(t, "", EncodeTags(nil))
	require.Equal(t, "", EncodeTags(map[string]string{"": "x", "y": ""}))
}

func TestEncodeFieldsSortedAndEscaped(t *testing.T) {
	fields := map[string]Field{
		"field_string":        StringField("string value"),
		"field_string_escape": StringField(`string\val"ue`),
		"field_float":         FloatField(123.45),
		"escape key":          FloatField(10.0),
	}

	require.Equal(t,
		`escape\ key=10,field_float=123.45,field_string="string value",field_string_escape="string\\val\"ue"`,
		EncodeFields(fields))
}

func TestEncodeFieldsEmpty(t *testing.T) {
	require.Equal(t, "", EncodeFields(nil))
	require.Equal(t, "", EncodeFields(map[string]Field{"": FloatField(1)}))
	// Zero Field renders empty and drops its pair.
	require.Equal(t, "", EncodeFields(map[string]Field{"x": {}}))
}

func TestBuildLine(t *testing.T) {
	line := BuildLine("ns.total", "counter", nil,
		map[string]Field{"value": FloatField(1.5)}, 1542182950000000011)

	require.Equal(t, "ns.total,metric_type=counter value=1.5 1542182950000000011", line)
}

func TestBuildLineTagsSortedWithMetricType(t *testing.T) {
	line := BuildLine("ns.check", "counter", testTags(),
		map[string]Field{"value": FloatField(1.0)}, 1542182950000000011)

	require.Equal(t,
		"ns.check,metric_type=counter,normal_tag=value,true_tag=true value=1 1542182950000000011",
		line)
}

func TestBuildLineMetricTypeOverridesTag(t *testing.T) {
	tags := map[string]string{"metric_type": "bogus"}
	line := BuildLine("m", "gauge", tags,
		map[string]Field{"value": FloatField(2)}, 1)

	require.Equal(t, "m,metric_type=gauge value=2 1", line)
	// Caller's map is untouched.
	require.Equal(t, "bogus", tags["metric_type"])
}

func TestBuildLineEmptyFieldsSuppressed(t *testing.T) {
	require.Equal(t, "", BuildLine("m", "counter", testTags(), nil, 1))
	require.Equal(t, "",
		BuildLine("m", "counter", nil, map[string]Field{"": FloatField(1)}, 1))
}

func TestBuildLineEscapedMeasurement(t *testing.T) {
	line := BuildLine("my measurement", "gauge", nil,
		map[string]Field{"value": FloatField(1)}, 7)

	require.Equal(t, `my\ measurement,metric_type=gauge value=1 7`, line)
}
