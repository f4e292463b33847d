package network

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/arrowmex/arrowmex-bridge/hostdata"
)

func TestDecodeArgs(t *testing.T) {
	args := map[string]Value{
		"FieldProxyIDs": {Type: TypeUint64, Uint64s: []uint64{3, 1, 2}},
		"Index":         {Type: TypeInt32, Int32s: []int32{5}},
		"Name":          {Type: TypeString, Strings: [][]uint16{{'a', 'b'}}},
	}

	s, err := DecodeArgs(args)
	if err != nil {
		t.Fatalf("DecodeArgs: %v", err)
	}

	ids, err := s.Uint64Field("FieldProxyIDs")
	if err != nil || len(ids) != 3 || ids[0] != 3 {
		t.Errorf("FieldProxyIDs = %v, %v", ids, err)
	}

	idx, err := s.Int32Field("Index")
	if err != nil || idx != 5 {
		t.Errorf("Index = %d, %v", idx, err)
	}

	name, err := s.StringField("Name")
	if err != nil || len(name) != 2 || name[0] != 'a' {
		t.Errorf("Name = %v, %v", name, err)
	}
}

func TestDecodeArgsUnknownType(t *testing.T) {
	_, err := DecodeArgs(map[string]Value{"X": {Type: "float16"}})
	if !errors.Is(err, ErrUnknownValueType) {
		t.Fatalf("expected ErrUnknownValueType, got %v", err)
	}
}

func TestDecodeScalarStringCardinality(t *testing.T) {
	_, err := DecodeArgs(map[string]Value{"Name": {Type: TypeString, Strings: [][]uint16{{'a'}, {'b'}}}})
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
}

func TestEncodeOutputs(t *testing.T) {
	outputs := []hostdata.Array{
		hostdata.Uint64Scalar(7),
		hostdata.Int32Scalar(-2),
		hostdata.String{'h', 'i'},
		hostdata.StringRow([]hostdata.String{{'a'}, {'b'}}),
	}

	values, err := EncodeOutputs(outputs)
	if err != nil {
		t.Fatalf("EncodeOutputs: %v", err)
	}
	if len(values) != 4 {
		t.Fatalf("got %d values, want 4", len(values))
	}

	if values[0].Type != TypeUint64 || values[0].Uint64s[0] != 7 {
		t.Errorf("values[0] = %+v", values[0])
	}
	if values[1].Type != TypeInt32 || values[1].Int32s[0] != -2 {
		t.Errorf("values[1] = %+v", values[1])
	}
	if values[2].Type != TypeString || len(values[2].Strings) != 1 {
		t.Errorf("values[2] = %+v", values[2])
	}
	if values[3].Type != TypeStringArray || values[3].Rows != 1 || values[3].Cols != 2 {
		t.Errorf("values[3] = %+v", values[3])
	}
}

// Ill-formed UTF-16 must survive the wire untouched so the encoding
// boundary can reject it with its own error identifier.
func TestIllFormedUTF16CrossesWire(t *testing.T) {
	loneSurrogate := []uint16{0xD800}

	v := Value{Type: TypeString, Strings: [][]uint16{loneSurrogate}}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Value
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	decoded, err := decodeValue(back)
	if err != nil {
		t.Fatalf("decodeValue: %v", err)
	}
	s, ok := decoded.(hostdata.String)
	if !ok || len(s) != 1 || s[0] != 0xD800 {
		t.Fatalf("lone surrogate mangled: %v", decoded)
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	req := Request{
		ID:      "r1",
		ProxyID: 0,
		Method:  MakeMethod,
		Args: map[string]Value{
			"FieldProxyIDs": {Type: TypeUint64, Uint64s: []uint64{1, 2}},
		},
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Request
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Method != MakeMethod || len(back.Args["FieldProxyIDs"].Uint64s) != 2 {
		t.Fatalf("round trip lost data: %+v", back)
	}
}
