// Package hostdata models the typed containers the host environment
// marshals through the bridge: UTF-16 strings, typed arrays, and structs of
// named array values. Method inputs arrive as a Struct; outputs are Arrays.
package hostdata

import (
	"errors"
	"fmt"
)

// Container errors
var (
	ErrMissingField = errors.New("hostdata: missing struct field")
	ErrWrongType    = errors.New("hostdata: unexpected field type")
	ErrNotScalar    = errors.New("hostdata: expected a scalar value")
)

// Array is a typed host value. The set of implementations is closed.
type Array interface {
	isArray()
}

// String is a host string: a sequence of UTF-16 code units. It may be
// ill-formed; validation happens at the encoding boundary, not here.
type String []uint16

// Uint64Array holds unsigned 64-bit values, used for proxy identifiers.
type Uint64Array struct {
	Values []uint64
}

// Int32Array holds signed 32-bit values, used for field indices and counts.
type Int32Array struct {
	Values []int32
}

// StringArray is a shaped array of host strings.
type StringArray struct {
	Rows   int
	Cols   int
	Values []String
}

func (String) isArray()      {}
func (Uint64Array) isArray() {}
func (Int32Array) isArray()  {}
func (StringArray) isArray() {}

// Uint64Scalar wraps a single uint64 as a one-element array.
func Uint64Scalar(v uint64) Uint64Array {
	return Uint64Array{Values: []uint64{v}}
}

// Int32Scalar wraps a single int32 as a one-element array.
func Int32Scalar(v int32) Int32Array {
	return Int32Array{Values: []int32{v}}
}

// StringRow builds a 1xN string array, preserving element order.
func StringRow(values []String) StringArray {
	return StringArray{Rows: 1, Cols: len(values), Values: values}
}

// Struct is a set of named array values. Invocation inputs arrive as one
// Struct whose fields carry the method's arguments.
type Struct map[string]Array

// Uint64Field returns the named field as a uint64 slice.
func (s Struct) Uint64Field(name string) ([]uint64, error) {
	v, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	arr, ok := v.(Uint64Array)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is %T, want Uint64Array", ErrWrongType, name, v)
	}
	return arr.Values, nil
}

// Int32Field returns the named field as a scalar int32.
func (s Struct) Int32Field(name string) (int32, error) {
	v, ok := s[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	arr, ok := v.(Int32Array)
	if !ok {
		return 0, fmt.Errorf("%w: field %q is %T, want Int32Array", ErrWrongType, name, v)
	}
	if len(arr.Values) != 1 {
		return 0, fmt.Errorf("%w: field %q has %d elements", ErrNotScalar, name, len(arr.Values))
	}
	return arr.Values[0], nil
}

// StringField returns the named field as a scalar host string.
func (s Struct) StringField(name string) (String, error) {
	v, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	str, ok := v.(String)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is %T, want String", ErrWrongType, name, v)
	}
	return str, nil
}
