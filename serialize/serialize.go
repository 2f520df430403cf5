// Package serialize moves binary values in and out of socket.io event data.
//
// Formats that can not carry bytes, like the default JSON one, send every
// binary value as an attachment and leave a placeholder in its place:
//
//	{"_placeholder":true,"num":0}
//
// Deconstruct builds the placeholders and attachments on the way out and
// Reconstruct puts the attachments back on the way in.
package serialize

import (
	"io"
	"math"
	"reflect"
)

const (
	placeholderKey = "_placeholder"
	numKey         = "num"
)

// HasBinary reports if v holds a []byte or an io.Reader anywhere inside it.
// Slices, arrays, pointers and maps with string keys of any type are looked
// into. Structs are not, their bytes are left to the marshaller.
func HasBinary(v interface{}) bool {
	switch val := v.(type) {
	case []byte, io.Reader:
		return true
	case []interface{}:
		for _, item := range val {
			if HasBinary(item) {
				return true
			}
		}
	case map[string]interface{}:
		for _, item := range val {
			if HasBinary(item) {
				return true
			}
		}
	default:
		return hasBinaryValue(reflect.ValueOf(v))
	}
	return false
}

func hasBinaryValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if HasBinary(rv.Index(i).Interface()) {
				return true
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		iter := rv.MapRange()
		for iter.Next() {
			if HasBinary(iter.Value().Interface()) {
				return true
			}
		}
	case reflect.Ptr:
		if !rv.IsNil() {
			return HasBinary(rv.Elem().Interface())
		}
	}
	return false
}

// Deconstruct replaces the binary values in v with placeholders. The
// attachments are returned in placeholder order. Readers are read to the end.
func Deconstruct(v interface{}) (interface{}, [][]byte, error) {
	var buffers [][]byte
	out, err := deconstruct(v, &buffers)
	return out, buffers, err
}

func deconstruct(v interface{}, buffers *[][]byte) (interface{}, error) {
	switch val := v.(type) {
	case []byte:
		return attach(val, buffers), nil
	case io.Reader:
		b, err := io.ReadAll(val)
		if err != nil {
			return nil, ErrReadBinary.F(err)
		}
		return attach(b, buffers), nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			var err error
			if out[i], err = deconstruct(item, buffers); err != nil {
				return nil, err
			}
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			var err error
			if out[k], err = deconstruct(item, buffers); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	if !HasBinary(v) {
		return v, nil
	}

	// typed containers come back as []interface{} and map[string]interface{}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			var err error
			if out[i], err = deconstruct(rv.Index(i).Interface(), buffers); err != nil {
				return nil, err
			}
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			var err error
			if out[iter.Key().String()], err = deconstruct(iter.Value().Interface(), buffers); err != nil {
				return nil, err
			}
		}
		return out, nil
	case reflect.Ptr:
		return deconstruct(rv.Elem().Interface(), buffers)
	}
	return v, nil
}

func attach(b []byte, buffers *[][]byte) map[string]interface{} {
	*buffers = append(*buffers, b)
	return map[string]interface{}{placeholderKey: true, numKey: len(*buffers) - 1}
}

// Reconstruct swaps the placeholders in v for the matching attachment.
func Reconstruct(v interface{}, buffers [][]byte) (interface{}, error) {
	switch val := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			var err error
			if out[i], err = Reconstruct(item, buffers); err != nil {
				return nil, err
			}
		}
		return out, nil
	case map[string]interface{}:
		if num, ok := placeholder(val); ok {
			if num < 0 || num >= len(buffers) {
				return nil, ErrBadPlaceholder.F(num, len(buffers))
			}
			return buffers[num], nil
		}

		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			var err error
			if out[k], err = Reconstruct(item, buffers); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return v, nil
}

func placeholder(m map[string]interface{}) (int, bool) {
	if is, _ := m[placeholderKey].(bool); !is {
		return 0, false
	}

	switch num := m[numKey].(type) {
	case float64:
		if num != math.Trunc(num) {
			return -1, true
		}
		return int(num), true
	case int:
		return num, true
	case int64:
		return int(num), true
	case uint64:
		return int(num), true
	case int8:
		return int(num), true
	case uint8:
		return int(num), true
	}
	return -1, true
}
