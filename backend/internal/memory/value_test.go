package memory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSONRoundTrip(t *testing.T) {
	instant := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		value Value
	}{
		{"string", StringValue("hello")},
		{"integer", IntegerValue(-42)},
		{"float", FloatValue(2.5)},
		{"boolean", BooleanValue(true)},
		{"bytes", BytesValue([]byte{0xde, 0xad})},
		{"list", ListValue(StringValue("a"), IntegerValue(1))},
		{"nested list", ListValue(ListValue(BooleanValue(false)))},
		{"date", DateValue(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))},
		{"time", TimeValue(time.Date(0, 1, 1, 9, 30, 0, 0, time.UTC))},
		{"offset time", OffsetTimeValue(time.Date(0, 1, 1, 9, 30, 0, 0, time.UTC), 3600)},
		{"datetime", DateTimeValue(instant)},
		{"local datetime", LocalDateTimeValue(instant)},
		{"duration", DurationValue(90 * time.Second)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.value)
			require.NoError(t, err)

			var decoded Value
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.True(t, tc.value.Equal(decoded), "got %s, want %s", decoded, tc.value)
		})
	}
}

func TestValueJSONIsTagged(t *testing.T) {
	data, err := json.Marshal(IntegerValue(7))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"integer","value":7}`, string(data))

	// A numeric string stays a string; the tag removes shape ambiguity.
	data, err = json.Marshal(StringValue("7"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"string","value":"7"}`, string(data))
}

func TestValueJSONUnknownKind(t *testing.T) {
	var v Value
	err := json.Unmarshal([]byte(`{"kind":"matrix","value":1}`), &v)
	assert.Error(t, err)
}

func TestValueString(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{StringValue("x"), "x"},
		{IntegerValue(12), "12"},
		{FloatValue(1.5), "1.5"},
		{BooleanValue(true), "true"},
		{DateValue(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)), "2024-03-15"},
		{TimeValue(time.Date(0, 1, 1, 9, 30, 5, 0, time.UTC)), "09:30:05"},
		{OffsetTimeValue(time.Date(0, 1, 1, 9, 30, 0, 0, time.UTC), -18000), "09:30:00-05:00"},
		{DateTimeValue(time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)), "2024-03-15T09:30:00Z"},
		{LocalDateTimeValue(time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)), "2024-03-15T09:30:00"},
		{DurationValue(time.Millisecond), "1000000"},
		{DurationValue(-time.Second), "-1000000000"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.value.String())
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, StringValue("a").Equal(StringValue("a")))
	assert.False(t, StringValue("a").Equal(StringValue("b")))
	assert.False(t, StringValue("1").Equal(IntegerValue(1)))
	assert.True(t, BytesValue([]byte{1}).Equal(BytesValue([]byte{1})))
	assert.True(t, ListValue(IntegerValue(1)).Equal(ListValue(IntegerValue(1))))
	assert.False(t, ListValue(IntegerValue(1)).Equal(ListValue(IntegerValue(1), IntegerValue(2))))

	base := time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.True(t, OffsetTimeValue(base, 3600).Equal(OffsetTimeValue(base, 3600)))
	assert.False(t, OffsetTimeValue(base, 3600).Equal(OffsetTimeValue(base, 7200)))
}
