package network

import (
	"errors"
	"fmt"

	"github.com/arrowmex/arrowmex-bridge/hostdata"
)

// Wire value type tags.
const (
	TypeUint64      = "uint64"
	TypeInt32       = "int32"
	TypeString      = "string"
	TypeStringArray = "string_array"
)

// Codec errors
var (
	ErrUnknownValueType = errors.New("network: unknown wire value type")
	ErrUnsupportedValue = errors.New("network: unsupported hostdata value")
)

// Value is the wire form of one typed host value. Exactly one payload slice
// is populated according to Type. UTF-16 strings are arrays of code units.
type Value struct {
	Type    string     `json:"type"`
	Uint64s []uint64   `json:"uint64s,omitempty"`
	Int32s  []int32    `json:"int32s,omitempty"`
	Strings [][]uint16 `json:"strings,omitempty"`
	Rows    int        `json:"rows,omitempty"`
	Cols    int        `json:"cols,omitempty"`
}

// Request addresses one proxy method call. ProxyID 0 with method "make"
// invokes the schema factory.
type Request struct {
	ID      string           `json:"id,omitempty"`
	ProxyID uint64           `json:"proxy_id"`
	Method  string           `json:"method"`
	Args    map[string]Value `json:"args,omitempty"`
	Token   string           `json:"token,omitempty"`
}

// Response carries either typed outputs (plus a fresh proxy identifier for
// factory calls) or a tagged error record. Never both.
type Response struct {
	ID      string  `json:"id,omitempty"`
	ProxyID uint64  `json:"proxy_id,omitempty"`
	Outputs []Value `json:"outputs,omitempty"`
	ErrorID string  `json:"error_id,omitempty"`
	Message string  `json:"message,omitempty"`
}

// DecodeArgs converts wire arguments into a host struct.
func DecodeArgs(args map[string]Value) (hostdata.Struct, error) {
	s := make(hostdata.Struct, len(args))
	for name, v := range args {
		decoded, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		s[name] = decoded
	}
	return s, nil
}

func decodeValue(v Value) (hostdata.Array, error) {
	switch v.Type {
	case TypeUint64:
		return hostdata.Uint64Array{Values: v.Uint64s}, nil
	case TypeInt32:
		return hostdata.Int32Array{Values: v.Int32s}, nil
	case TypeString:
		if len(v.Strings) != 1 {
			return nil, fmt.Errorf("%w: scalar string carries %d elements", ErrUnsupportedValue, len(v.Strings))
		}
		return hostdata.String(v.Strings[0]), nil
	case TypeStringArray:
		values := make([]hostdata.String, len(v.Strings))
		for i, units := range v.Strings {
			values[i] = hostdata.String(units)
		}
		return hostdata.StringArray{Rows: v.Rows, Cols: v.Cols, Values: values}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownValueType, v.Type)
	}
}

// EncodeOutputs converts host outputs into wire values.
func EncodeOutputs(outputs []hostdata.Array) ([]Value, error) {
	values := make([]Value, 0, len(outputs))
	for i, out := range outputs {
		v, err := encodeValue(out)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func encodeValue(out hostdata.Array) (Value, error) {
	switch a := out.(type) {
	case hostdata.Uint64Array:
		return Value{Type: TypeUint64, Uint64s: a.Values}, nil
	case hostdata.Int32Array:
		return Value{Type: TypeInt32, Int32s: a.Values}, nil
	case hostdata.String:
		return Value{Type: TypeString, Strings: [][]uint16{a}}, nil
	case hostdata.StringArray:
		strings := make([][]uint16, len(a.Values))
		for i, s := range a.Values {
			strings[i] = s
		}
		return Value{Type: TypeStringArray, Strings: strings, Rows: a.Rows, Cols: a.Cols}, nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, out)
	}
}
