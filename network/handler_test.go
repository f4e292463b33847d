package network

import (
	"encoding/json"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowmex/arrowmex-bridge/errorcode"
	"github.com/arrowmex/arrowmex-bridge/field"
	"github.com/arrowmex/arrowmex-bridge/proxy"
	"github.com/arrowmex/arrowmex-bridge/utfconv"
)

// newTestHandler builds a handler whose registry holds one field proxy per
// name, returning the handler and the field identifiers.
func newTestHandler(t *testing.T, names ...string) (*Handler, []uint64) {
	t.Helper()

	reg := proxy.NewRegistry()
	ids := make([]uint64, 0, len(names))
	for _, name := range names {
		ids = append(ids, reg.Manage(field.New(arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64})))
	}
	return NewHandler(reg, nil, nil), ids
}

func makeSchemaProxy(t *testing.T, h *Handler, ids []uint64) uint64 {
	t.Helper()

	resp := h.Handle(Request{
		Method: MakeMethod,
		Args: map[string]Value{
			"FieldProxyIDs": {Type: TypeUint64, Uint64s: ids},
		},
	})
	require.Empty(t, resp.ErrorID, "make failed: %s", resp.Message)
	require.NotZero(t, resp.ProxyID)
	return resp.ProxyID
}

func TestHandlerMakeAndGetNumFields(t *testing.T) {
	h, ids := newTestHandler(t, "a", "b", "c")
	schemaID := makeSchemaProxy(t, h, ids)

	resp := h.Handle(Request{ProxyID: schemaID, Method: "getNumFields"})
	require.Empty(t, resp.ErrorID)
	require.Len(t, resp.Outputs, 1)
	assert.Equal(t, TypeInt32, resp.Outputs[0].Type)
	assert.Equal(t, []int32{3}, resp.Outputs[0].Int32s)
}

func TestHandlerGetFieldByIndex(t *testing.T) {
	h, ids := newTestHandler(t, "a", "b")
	schemaID := makeSchemaProxy(t, h, ids)

	resp := h.Handle(Request{
		ProxyID: schemaID,
		Method:  "getFieldByIndex",
		Args:    map[string]Value{"Index": {Type: TypeInt32, Int32s: []int32{2}}},
	})
	require.Empty(t, resp.ErrorID)
	require.Len(t, resp.Outputs, 1)
	require.Equal(t, TypeUint64, resp.Outputs[0].Type)

	// The returned identifier resolves to a field proxy for "b".
	fieldID := resp.Outputs[0].Uint64s[0]
	nameResp := h.Handle(Request{ProxyID: fieldID, Method: "getName"})
	require.Empty(t, nameResp.ErrorID)
	name, err := utfconv.UTF16ToUTF8(nameResp.Outputs[0].Strings[0])
	require.NoError(t, err)
	assert.Equal(t, "b", name)
}

func TestHandlerSchemaErrorsPassThrough(t *testing.T) {
	h, ids := newTestHandler(t, "a", "b", "c")
	schemaID := makeSchemaProxy(t, h, ids)

	resp := h.Handle(Request{
		ProxyID: schemaID,
		Method:  "getFieldByIndex",
		Args:    map[string]Value{"Index": {Type: TypeInt32, Int32s: []int32{0}}},
	})
	assert.Equal(t, errorcode.InvalidNumericFieldIndex, resp.ErrorID)
	assert.Equal(t, "Invalid field index: 0. Field index must be between 1 and the number of fields (3).", resp.Message)
	assert.Empty(t, resp.Outputs, "no outputs may accompany an error")
}

func TestHandlerInvalidUTF16Name(t *testing.T) {
	h, ids := newTestHandler(t, "a")
	schemaID := makeSchemaProxy(t, h, ids)

	resp := h.Handle(Request{
		ProxyID: schemaID,
		Method:  "getFieldByName",
		Args:    map[string]Value{"Name": {Type: TypeString, Strings: [][]uint16{{0xDC00}}}},
	})
	assert.Equal(t, errorcode.UnicodeConversion, resp.ErrorID)
}

func TestHandlerGetFieldNames(t *testing.T) {
	h, ids := newTestHandler(t, "x", "y")
	schemaID := makeSchemaProxy(t, h, ids)

	resp := h.Handle(Request{ProxyID: schemaID, Method: "getFieldNames"})
	require.Empty(t, resp.ErrorID)
	require.Len(t, resp.Outputs, 1)
	out := resp.Outputs[0]
	assert.Equal(t, TypeStringArray, out.Type)
	assert.Equal(t, 1, out.Rows)
	assert.Equal(t, 2, out.Cols)

	for i, want := range []string{"x", "y"} {
		got, err := utfconv.UTF16ToUTF8(out.Strings[i])
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestHandlerProxyNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := h.Handle(Request{ProxyID: 999, Method: "getNumFields"})
	assert.Equal(t, ErrIDProxyNotFound, resp.ErrorID)
}

func TestHandlerUnknownMethod(t *testing.T) {
	h, ids := newTestHandler(t, "a")
	schemaID := makeSchemaProxy(t, h, ids)

	resp := h.Handle(Request{ProxyID: schemaID, Method: "renameField"})
	assert.Equal(t, ErrIDUnknownMethod, resp.ErrorID)
}

func TestHandlerMakeWithUnknownFieldID(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := h.Handle(Request{
		Method: MakeMethod,
		Args:   map[string]Value{"FieldProxyIDs": {Type: TypeUint64, Uint64s: []uint64{42}}},
	})
	assert.Equal(t, ErrIDMakeFailed, resp.ErrorID)
}

func TestHandlerAuth(t *testing.T) {
	reg := proxy.NewRegistry()
	auth := NewAuthenticator(AuthConfig{Enabled: true, Token: "secret"})
	h := NewHandler(reg, auth, nil)

	resp := h.Handle(Request{Method: MakeMethod, Args: map[string]Value{
		"FieldProxyIDs": {Type: TypeUint64},
	}})
	assert.Equal(t, ErrIDAuthFailed, resp.ErrorID)

	resp = h.Handle(Request{Token: "secret", Method: MakeMethod, Args: map[string]Value{
		"FieldProxyIDs": {Type: TypeUint64},
	}})
	assert.Empty(t, resp.ErrorID)
	assert.NotZero(t, resp.ProxyID)
}

func TestHandleRawMalformedFrame(t *testing.T) {
	h, _ := newTestHandler(t)

	var resp Response
	require.NoError(t, json.Unmarshal(h.HandleRaw([]byte("{not json")), &resp))
	assert.Equal(t, ErrIDBadRequest, resp.ErrorID)
}

func TestHandleRawEchoesRequestID(t *testing.T) {
	h, ids := newTestHandler(t, "a")
	schemaID := makeSchemaProxy(t, h, ids)

	req, err := json.Marshal(Request{ID: "req-7", ProxyID: schemaID, Method: "getNumFields"})
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(h.HandleRaw(req), &resp))
	assert.Equal(t, "req-7", resp.ID)
	require.Len(t, resp.Outputs, 1)
}

func TestHandlerEmptySchemaRoundTrip(t *testing.T) {
	h, _ := newTestHandler(t)
	schemaID := makeSchemaProxy(t, h, nil)

	resp := h.Handle(Request{ProxyID: schemaID, Method: "getNumFields"})
	require.Empty(t, resp.ErrorID)
	assert.Equal(t, []int32{0}, resp.Outputs[0].Int32s)

	resp = h.Handle(Request{
		ProxyID: schemaID,
		Method:  "getFieldByIndex",
		Args:    map[string]Value{"Index": {Type: TypeInt32, Int32s: []int32{1}}},
	})
	assert.Equal(t, errorcode.EmptySchemaNumericIndex, resp.ErrorID)
}
