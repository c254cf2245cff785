package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Layouts for the string forms of temporal values. The graph adapter writes
// temporal kinds as strings in these formats; DateTime uses RFC 3339.
const (
	DateLayout          = "2006-01-02"
	TimeLayout          = "15:04:05"
	OffsetTimeLayout    = "15:04:05Z07:00"
	LocalDateTimeLayout = "2006-01-02T15:04:05"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindBytes
	KindList
	KindDate
	KindTime
	KindOffsetTime
	KindDateTime
	KindLocalDateTime
	KindDuration
)

var kindNames = map[Kind]string{
	KindString:        "string",
	KindInteger:       "integer",
	KindFloat:         "float",
	KindBoolean:       "boolean",
	KindBytes:         "bytes",
	KindList:          "list",
	KindDate:          "date",
	KindTime:          "time",
	KindOffsetTime:    "offset_time",
	KindDateTime:      "datetime",
	KindLocalDateTime: "local_datetime",
	KindDuration:      "duration",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a property value. It is a closed tagged union over the supported
// kinds; there is deliberately no map variant, nested key-value structures are
// not representable as property values.
type Value struct {
	kind   Kind
	str    string
	num    int64
	fl     float64
	b      bool
	bytes  []byte
	list   []Value
	t      time.Time
	offset int
	dur    time.Duration
}

// StringValue creates a string Value
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntegerValue creates a 64-bit integer Value
func IntegerValue(i int64) Value { return Value{kind: KindInteger, num: i} }

// FloatValue creates a float Value
func FloatValue(f float64) Value { return Value{kind: KindFloat, fl: f} }

// BooleanValue creates a boolean Value
func BooleanValue(b bool) Value { return Value{kind: KindBoolean, b: b} }

// BytesValue creates a byte-slice Value
func BytesValue(b []byte) Value { return Value{kind: KindBytes, bytes: b} }

// ListValue creates a list Value; elements may be of mixed kinds
func ListValue(items ...Value) Value { return Value{kind: KindList, list: items} }

// DateValue creates a date Value from the date part of t
func DateValue(t time.Time) Value { return Value{kind: KindDate, t: t} }

// TimeValue creates a time-of-day Value from the clock part of t
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

// OffsetTimeValue creates a time-of-day Value with a UTC offset in seconds
func OffsetTimeValue(t time.Time, offsetSeconds int) Value {
	return Value{kind: KindOffsetTime, t: t, offset: offsetSeconds}
}

// DateTimeValue creates a timezone-aware datetime Value
func DateTimeValue(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

// LocalDateTimeValue creates a naive datetime Value
func LocalDateTimeValue(t time.Time) Value { return Value{kind: KindLocalDateTime, t: t} }

// DurationValue creates a signed duration Value with nanosecond resolution
func DurationValue(d time.Duration) Value { return Value{kind: KindDuration, dur: d} }

// Kind returns the variant held by the value
func (v Value) Kind() Kind { return v.kind }

// StringVal returns the string payload; valid for KindString only
func (v Value) StringVal() string { return v.str }

// IntVal returns the integer payload; valid for KindInteger only
func (v Value) IntVal() int64 { return v.num }

// FloatVal returns the float payload; valid for KindFloat only
func (v Value) FloatVal() float64 { return v.fl }

// BoolVal returns the boolean payload; valid for KindBoolean only
func (v Value) BoolVal() bool { return v.b }

// BytesVal returns the byte payload; valid for KindBytes only
func (v Value) BytesVal() []byte { return v.bytes }

// ListVal returns the element slice; valid for KindList only
func (v Value) ListVal() []Value { return v.list }

// TimeVal returns the temporal payload; valid for the temporal kinds
func (v Value) TimeVal() time.Time { return v.t }

// OffsetSeconds returns the UTC offset; valid for KindOffsetTime only
func (v Value) OffsetSeconds() int { return v.offset }

// DurationVal returns the duration payload; valid for KindDuration only
func (v Value) DurationVal() time.Duration { return v.dur }

// Equal reports whether two values hold the same kind and payload
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindInteger:
		return v.num == other.num
	case KindFloat:
		return v.fl == other.fl
	case KindBoolean:
		return v.b == other.b
	case KindBytes:
		return bytes.Equal(v.bytes, other.bytes)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindOffsetTime:
		return v.offset == other.offset && v.t.Equal(other.t)
	case KindDate, KindTime, KindDateTime, KindLocalDateTime:
		return v.t.Equal(other.t)
	case KindDuration:
		return v.dur == other.dur
	}
	return false
}

// String renders the value for display and for temporal string encoding
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.fl, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindBytes:
		return fmt.Sprintf("%v", v.bytes)
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			parts = append(parts, item.String())
		}
		return fmt.Sprintf("%v", parts)
	case KindDate:
		return v.t.Format(DateLayout)
	case KindTime:
		return v.t.Format(TimeLayout)
	case KindOffsetTime:
		return v.offsetTime().Format(OffsetTimeLayout)
	case KindDateTime:
		return v.t.Format(time.RFC3339)
	case KindLocalDateTime:
		return v.t.Format(LocalDateTimeLayout)
	case KindDuration:
		return strconv.FormatInt(v.dur.Nanoseconds(), 10)
	}
	return ""
}

// offsetTime rebuilds the time-of-day in the fixed zone the offset describes,
// so formatting carries the intended offset suffix.
func (v Value) offsetTime() time.Time {
	zone := time.FixedZone("", v.offset)
	return time.Date(0, 1, 1, v.t.Hour(), v.t.Minute(), v.t.Second(), v.t.Nanosecond(), zone)
}

// valueEnvelope is the tagged JSON form. The original wire format relied on
// untagged shape matching; the explicit kind tag removes the ambiguity
// between, for example, a numeric string and a number.
type valueEnvelope struct {
	Kind   string          `json:"kind"`
	Value  json.RawMessage `json:"value,omitempty"`
	Time   string          `json:"time,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// MarshalJSON implements json.Marshaler with an explicitly tagged encoding
func (v Value) MarshalJSON() ([]byte, error) {
	env := valueEnvelope{Kind: v.kind.String()}

	var payload any
	switch v.kind {
	case KindString:
		payload = v.str
	case KindInteger:
		payload = v.num
	case KindFloat:
		payload = v.fl
	case KindBoolean:
		payload = v.b
	case KindBytes:
		payload = v.bytes
	case KindList:
		payload = v.list
	case KindDate, KindTime, KindDateTime, KindLocalDateTime:
		payload = v.String()
	case KindOffsetTime:
		env.Time = v.t.Format(TimeLayout)
		env.Offset = v.offset
		return json.Marshal(env)
	case KindDuration:
		payload = v.dur.Nanoseconds()
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %s", v.kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	env.Value = raw
	return json.Marshal(env)
}

// UnmarshalJSON implements json.Unmarshaler for the tagged encoding
func (v *Value) UnmarshalJSON(data []byte) error {
	var env valueEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	switch env.Kind {
	case "string":
		var s string
		if err := json.Unmarshal(env.Value, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case "integer":
		var i int64
		if err := json.Unmarshal(env.Value, &i); err != nil {
			return err
		}
		*v = IntegerValue(i)
	case "float":
		var f float64
		if err := json.Unmarshal(env.Value, &f); err != nil {
			return err
		}
		*v = FloatValue(f)
	case "boolean":
		var b bool
		if err := json.Unmarshal(env.Value, &b); err != nil {
			return err
		}
		*v = BooleanValue(b)
	case "bytes":
		var b []byte
		if err := json.Unmarshal(env.Value, &b); err != nil {
			return err
		}
		*v = BytesValue(b)
	case "list":
		var items []Value
		if err := json.Unmarshal(env.Value, &items); err != nil {
			return err
		}
		*v = ListValue(items...)
	case "date":
		t, err := unmarshalTemporal(env.Value, DateLayout)
		if err != nil {
			return err
		}
		*v = DateValue(t)
	case "time":
		t, err := unmarshalTemporal(env.Value, TimeLayout)
		if err != nil {
			return err
		}
		*v = TimeValue(t)
	case "offset_time":
		t, err := time.Parse(TimeLayout, env.Time)
		if err != nil {
			return err
		}
		*v = OffsetTimeValue(t, env.Offset)
	case "datetime":
		t, err := unmarshalTemporal(env.Value, time.RFC3339)
		if err != nil {
			return err
		}
		*v = DateTimeValue(t)
	case "local_datetime":
		t, err := unmarshalTemporal(env.Value, LocalDateTimeLayout)
		if err != nil {
			return err
		}
		*v = LocalDateTimeValue(t)
	case "duration":
		var ns int64
		if err := json.Unmarshal(env.Value, &ns); err != nil {
			return err
		}
		*v = DurationValue(time.Duration(ns))
	default:
		return fmt.Errorf("unknown value kind %q", env.Kind)
	}
	return nil
}

func unmarshalTemporal(raw json.RawMessage, layout string) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(layout, s)
}
