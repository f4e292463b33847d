// Package tabular provides the host-side proxy for an immutable Arrow
// schema. The proxy mediates lookup, enumeration, and rendering of schema
// fields, translating between the host's 1-based indexing and UTF-16
// strings and the library's 0-based indexing and UTF-8 strings.
package tabular

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/arrowmex/arrowmex-bridge/errorcode"
	"github.com/arrowmex/arrowmex-bridge/field"
	"github.com/arrowmex/arrowmex-bridge/hostdata"
	"github.com/arrowmex/arrowmex-bridge/proxy"
	"github.com/arrowmex/arrowmex-bridge/utfconv"
)

// Construction errors
var (
	ErrNilSchema     = errors.New("tabular: nil arrow schema")
	ErrNotFieldProxy = errors.New("tabular: identifier does not resolve to a field proxy")
)

const emptySchemaMessage = "Numeric indexing using the field method is not supported for schemas with no fields."

// Schema is the host-side proxy for one immutable Arrow schema. It holds
// exactly one reference to the native schema, captured at construction and
// never rebound. Field proxies produced by lookups are registered
// independently; the schema proxy neither retains nor deduplicates them.
type Schema struct {
	proxy.Dispatcher
	registry *proxy.Registry
	schema   *arrow.Schema
}

// NewSchema wraps an Arrow schema and registers the dispatch methods.
// Produced field proxies are registered into reg.
func NewSchema(reg *proxy.Registry, schema *arrow.Schema) (*Schema, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	s := &Schema{registry: reg, schema: schema}
	s.RegisterMethod("getFieldByIndex", s.getFieldByIndex)
	s.RegisterMethod("getFieldByName", s.getFieldByName)
	s.RegisterMethod("getNumFields", s.getNumFields)
	s.RegisterMethod("getFieldNames", s.getFieldNames)
	s.RegisterMethod("toString", s.toString)
	return s, nil
}

// Make is the factory: it resolves the ordered FieldProxyIDs argument
// through the registry, builds a schema from the unwrapped fields, and
// wraps it. Field order is preserved; an empty sequence yields a valid
// schema with no fields. Duplicate field names flow through to the library
// and surface later as ambiguity on name lookup.
func Make(reg *proxy.Registry, args hostdata.Struct) (*Schema, error) {
	ids, err := args.Uint64Field("FieldProxyIDs")
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, 0, len(ids))
	for _, id := range ids {
		p, err := reg.Get(id)
		if err != nil {
			return nil, err
		}
		fp, ok := p.(*field.Proxy)
		if !ok {
			return nil, fmt.Errorf("%w: %d is a %T", ErrNotFieldProxy, id, p)
		}
		fields = append(fields, fp.Unwrap())
	}

	return NewSchema(reg, arrow.NewSchema(fields, nil))
}

// Unwrap returns the underlying Arrow schema.
func (s *Schema) Unwrap() *arrow.Schema {
	return s.schema
}

func (s *Schema) getFieldByIndex(ctx *proxy.Context) error {
	args, err := ctx.Input(0)
	if err != nil {
		return err
	}
	hostIndex, err := args.Int32Field("Index")
	if err != nil {
		return err
	}

	// The host uses 1-based indexing, so subtract 1.
	// arrow.Schema.Field does not do any bounds checking.
	index := hostIndex - 1
	numFields := s.schema.NumFields()

	if numFields == 0 {
		ctx.SetError(errorcode.EmptySchemaNumericIndex, emptySchemaMessage)
		return nil
	}

	if hostIndex < 1 || int(hostIndex) > numFields {
		ctx.SetError(errorcode.InvalidNumericFieldIndex,
			fmt.Sprintf("Invalid field index: %d. Field index must be between 1 and the number of fields (%d).",
				hostIndex, numFields))
		return nil
	}

	f := s.schema.Field(int(index))
	id := s.registry.Manage(field.New(f))
	ctx.SetOutput(0, hostdata.Uint64Scalar(id))
	return nil
}

func (s *Schema) getFieldByName(ctx *proxy.Context) error {
	args, err := ctx.Input(0)
	if err != nil {
		return err
	}
	hostName, err := args.StringField("Name")
	if err != nil {
		return err
	}

	name, err := utfconv.UTF16ToUTF8(hostName)
	if err != nil {
		ctx.SetError(errorcode.UnicodeConversion, err.Error())
		return nil
	}

	// The library's index lookup doubles as the ambiguity predicate:
	// anything other than exactly one match cannot be referenced by name.
	indices := s.schema.FieldIndices(name)
	switch len(indices) {
	case 1:
	case 0:
		ctx.SetError(errorcode.AmbiguousFieldName,
			fmt.Sprintf("Unable to reference field '%s': the schema has no field with this name.", name))
		return nil
	default:
		ctx.SetError(errorcode.AmbiguousFieldName,
			fmt.Sprintf("Unable to reference field '%s': the name matches %d fields in the schema.", name, len(indices)))
		return nil
	}

	f := s.schema.Field(indices[0])
	id := s.registry.Manage(field.New(f))
	ctx.SetOutput(0, hostdata.Uint64Scalar(id))
	return nil
}

func (s *Schema) getNumFields(ctx *proxy.Context) error {
	ctx.SetOutput(0, hostdata.Int32Scalar(int32(s.schema.NumFields())))
	return nil
}

func (s *Schema) getFieldNames(ctx *proxy.Context) error {
	fields := s.schema.Fields()
	names := make([]hostdata.String, 0, len(fields))

	for _, f := range fields {
		units, err := utfconv.UTF8ToUTF16(f.Name)
		if err != nil {
			ctx.SetError(errorcode.UnicodeConversion, err.Error())
			return nil
		}
		names = append(names, hostdata.String(units))
	}

	ctx.SetOutput(0, hostdata.StringRow(names))
	return nil
}

func (s *Schema) toString(ctx *proxy.Context) error {
	units, err := utfconv.UTF8ToUTF16(s.schema.String())
	if err != nil {
		ctx.SetError(errorcode.UnicodeConversion, err.Error())
		return nil
	}
	ctx.SetOutput(0, hostdata.String(units))
	return nil
}
