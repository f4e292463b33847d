package field

import (
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowmex/arrowmex-bridge/hostdata"
	"github.com/arrowmex/arrowmex-bridge/proxy"
	"github.com/arrowmex/arrowmex-bridge/utfconv"
)

func TestGetName(t *testing.T) {
	p := New(arrow.Field{Name: "price", Type: arrow.PrimitiveTypes.Float64, Nullable: true})

	ctx := proxy.NewContext()
	require.NoError(t, p.Call("getName", ctx))
	require.False(t, ctx.Failed())
	require.Len(t, ctx.Outputs, 1)

	out, ok := ctx.Outputs[0].(hostdata.String)
	require.True(t, ok)

	name, err := utfconv.UTF16ToUTF8(out)
	require.NoError(t, err)
	assert.Equal(t, "price", name)
}

func TestGetNameNonASCII(t *testing.T) {
	p := New(arrow.Field{Name: "prix_élevé", Type: arrow.PrimitiveTypes.Int64})

	ctx := proxy.NewContext()
	require.NoError(t, p.Call("getName", ctx))
	require.False(t, ctx.Failed())

	name, err := utfconv.UTF16ToUTF8(ctx.Outputs[0].(hostdata.String))
	require.NoError(t, err)
	assert.Equal(t, "prix_élevé", name)
}

func TestToString(t *testing.T) {
	p := New(arrow.Field{Name: "id", Type: arrow.PrimitiveTypes.Int64})

	ctx := proxy.NewContext()
	require.NoError(t, p.Call("toString", ctx))
	require.False(t, ctx.Failed())

	rendered, err := utfconv.UTF16ToUTF8(ctx.Outputs[0].(hostdata.String))
	require.NoError(t, err)
	assert.True(t, strings.Contains(rendered, "id"), "rendered field %q should mention the field name", rendered)
}

func TestUnwrap(t *testing.T) {
	f := arrow.Field{Name: "n", Type: arrow.BinaryTypes.String}
	p := New(f)

	assert.True(t, p.Unwrap().Equal(f))
}

func TestUnknownMethod(t *testing.T) {
	p := New(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int32})

	err := p.Call("getType", proxy.NewContext())
	assert.ErrorIs(t, err, proxy.ErrUnknownMethod)
}
