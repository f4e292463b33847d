package proxy

import (
	"errors"
	"fmt"

	"github.com/arrowmex/arrowmex-bridge/hostdata"
)

// Dispatch errors. These surface through the dispatcher's own channel, not
// through the call's error record.
var (
	ErrUnknownMethod = errors.New("proxy: unknown method")
	ErrMissingInput  = errors.New("proxy: missing input struct")
)

// Error is the tagged error record a method writes into its call context.
// ID is a stable identifier from the errorcode package; Message is
// human-readable.
type Error struct {
	ID      string
	Message string
}

// Context carries one method invocation: the input structs supplied by the
// host, the output slots, and at most one error record. A method sets
// exactly one of Outputs[0] or Error before returning.
type Context struct {
	Inputs  []hostdata.Struct
	Outputs []hostdata.Array
	Error   *Error
}

// NewContext builds a call context around the given input structs.
func NewContext(inputs ...hostdata.Struct) *Context {
	return &Context{Inputs: inputs}
}

// Input returns the i-th input struct.
func (c *Context) Input(i int) (hostdata.Struct, error) {
	if i < 0 || i >= len(c.Inputs) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrMissingInput, i, len(c.Inputs))
	}
	return c.Inputs[i], nil
}

// SetOutput stores a value in output slot i, growing the slot list as
// needed.
func (c *Context) SetOutput(i int, v hostdata.Array) {
	for len(c.Outputs) <= i {
		c.Outputs = append(c.Outputs, nil)
	}
	c.Outputs[i] = v
}

// SetError records a tagged failure for this call.
func (c *Context) SetError(id, message string) {
	c.Error = &Error{ID: id, Message: message}
}

// Failed reports whether an error record has been set.
func (c *Context) Failed() bool {
	return c.Error != nil
}

// Method is a dispatchable proxy method. A returned error means the
// invocation itself was malformed (bad arguments, framework failure);
// domain failures are reported through ctx.SetError instead.
type Method func(ctx *Context) error

// Proxy is a host-addressable object whose methods are invoked by name.
type Proxy interface {
	Call(method string, ctx *Context) error
}

// Dispatcher provides method registration and by-name invocation. Proxies
// embed it and register their methods at construction; the zero value is
// ready to use.
type Dispatcher struct {
	methods map[string]Method
}

// RegisterMethod binds a method name to its implementation.
func (d *Dispatcher) RegisterMethod(name string, fn Method) {
	if d.methods == nil {
		d.methods = make(map[string]Method)
	}
	d.methods[name] = fn
}

// Call invokes the named method against the given context.
func (d *Dispatcher) Call(method string, ctx *Context) error {
	fn, ok := d.methods[method]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return fn(ctx)
}

// Methods returns the registered method names.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	return names
}
