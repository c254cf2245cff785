package graph

import (
	"fmt"
	"time"

	"graphmem/backend/internal/memory"
	apperrors "graphmem/backend/pkg/errors"
)

// encodeValue converts a memory.Value into the driver's native Go
// representation. Temporal kinds are written as formatted strings (DateTime as
// RFC 3339); a value stored that way reads back as a plain string, which is
// the documented asymmetry of the store.
func encodeValue(v memory.Value) (any, error) {
	switch v.Kind() {
	case memory.KindString:
		return v.StringVal(), nil
	case memory.KindInteger:
		return v.IntVal(), nil
	case memory.KindFloat:
		return v.FloatVal(), nil
	case memory.KindBoolean:
		return v.BoolVal(), nil
	case memory.KindBytes:
		return v.BytesVal(), nil
	case memory.KindList:
		items := v.ListVal()
		encoded := make([]any, 0, len(items))
		for _, item := range items {
			native, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			encoded = append(encoded, native)
		}
		return encoded, nil
	case memory.KindDate, memory.KindTime, memory.KindOffsetTime,
		memory.KindDateTime, memory.KindLocalDateTime, memory.KindDuration:
		return v.String(), nil
	default:
		return nil, apperrors.NewDecodeError(
			fmt.Sprintf("cannot encode value of kind %s", v.Kind()), v, nil)
	}
}

// encodeProperties encodes a property map for use as query parameters
func encodeProperties(props map[string]memory.Value) (map[string]any, error) {
	encoded := make(map[string]any, len(props))
	for key, value := range props {
		native, err := encodeValue(value)
		if err != nil {
			return nil, err
		}
		encoded[key] = native
	}
	return encoded, nil
}

// decodeValue converts a native driver value back into a memory.Value. Only
// string, integer, float, boolean, bytes and list come back typed; temporal
// values persisted as strings stay strings. Maps have no domain representation
// and fail with a runtime error carrying the offending value.
func decodeValue(native any) (memory.Value, error) {
	switch value := native.(type) {
	case string:
		return memory.StringValue(value), nil
	case int64:
		return memory.IntegerValue(value), nil
	case float64:
		return memory.FloatValue(value), nil
	case bool:
		return memory.BooleanValue(value), nil
	case []byte:
		return memory.BytesValue(value), nil
	case []any:
		items := make([]memory.Value, 0, len(value))
		for _, element := range value {
			decoded, err := decodeValue(element)
			if err != nil {
				return memory.Value{}, err
			}
			items = append(items, decoded)
		}
		return memory.ListValue(items...), nil
	case map[string]any:
		return memory.Value{}, apperrors.NewDecodeError(
			"nested maps are not representable as property values", native, nil)
	case time.Time:
		// Written by other clients; fold back to the string form this
		// store would have persisted.
		return memory.StringValue(value.Format(time.RFC3339)), nil
	default:
		return memory.Value{}, apperrors.NewDecodeError(
			fmt.Sprintf("unsupported native value type %T", native), native, nil)
	}
}

// decodePropertyMap decodes a native map into domain property values
func decodePropertyMap(native map[string]any) (map[string]memory.Value, error) {
	props := make(map[string]memory.Value, len(native))
	for key, value := range native {
		decoded, err := decodeValue(value)
		if err != nil {
			return nil, err
		}
		props[key] = decoded
	}
	return props, nil
}
