// Package field provides the host-side proxy for a single Arrow field.
// Field proxies are produced on demand by schema lookups; each production
// registers a fresh identifier and nothing deduplicates them.
package field

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/arrowmex/arrowmex-bridge/errorcode"
	"github.com/arrowmex/arrowmex-bridge/proxy"
)

// Proxy wraps a native arrow.Field for the host.
type Proxy struct {
	proxy.Dispatcher
	field arrow.Field
}

// New wraps an Arrow field and registers its dispatch methods.
func New(f arrow.Field) *Proxy {
	p := &Proxy{field: f}
	p.RegisterMethod("getName", p.getName)
	p.RegisterMethod("toString", p.toString)
	return p
}

// Unwrap returns the underlying Arrow field.
func (p *Proxy) Unwrap() arrow.Field {
	return p.field
}

func (p *Proxy) getName(ctx *proxy.Context) error {
	name, err := utf16Out(p.field.Name)
	if err != nil {
		ctx.SetError(errorcode.UnicodeConversion, err.Error())
		return nil
	}
	ctx.SetOutput(0, name)
	return nil
}

func (p *Proxy) toString(ctx *proxy.Context) error {
	str, err := utf16Out(p.field.String())
	if err != nil {
		ctx.SetError(errorcode.UnicodeConversion, err.Error())
		return nil
	}
	ctx.SetOutput(0, str)
	return nil
}
