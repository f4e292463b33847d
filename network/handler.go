package network

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/arrowmex/arrowmex-bridge/hostdata"
	"github.com/arrowmex/arrowmex-bridge/metrics"
	"github.com/arrowmex/arrowmex-bridge/proxy"
	"github.com/arrowmex/arrowmex-bridge/tabular"
)

// Connector-level error identifiers. These report failures of the
// invocation itself; the schema-level taxonomy lives in errorcode.
const (
	ErrIDBadRequest    = "ARROWMEX_BAD_REQUEST"
	ErrIDUnknownMethod = "ARROWMEX_UNKNOWN_METHOD"
	ErrIDProxyNotFound = "ARROWMEX_PROXY_NOT_FOUND"
	ErrIDAuthFailed    = "ARROWMEX_AUTH_FAILED"
	ErrIDMakeFailed    = "ARROWMEX_MAKE_FAILED"
)

// MakeMethod is the factory method name, addressed with proxy id 0.
const MakeMethod = "make"

// Handler turns decoded wire requests into proxy invocations. It is shared
// by the TCP and ZeroMQ connectors.
type Handler struct {
	registry *proxy.Registry
	auth     *Authenticator
	metrics  *metrics.Metrics
}

// NewHandler creates a Handler around the given registry. auth and m may be
// nil to disable authentication and instrumentation.
func NewHandler(registry *proxy.Registry, auth *Authenticator, m *metrics.Metrics) *Handler {
	return &Handler{registry: registry, auth: auth, metrics: m}
}

// Registry returns the handler's proxy registry.
func (h *Handler) Registry() *proxy.Registry {
	return h.registry
}

// HandleRaw decodes a JSON frame, processes it, and encodes the response.
// It always produces a well-formed response frame.
func (h *Handler) HandleRaw(data []byte) []byte {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		if h.metrics != nil {
			h.metrics.FramesRejected.Inc()
		}
		return mustMarshal(Response{ErrorID: ErrIDBadRequest, Message: "malformed request frame: " + err.Error()})
	}

	resp := h.Handle(req)
	return mustMarshal(resp)
}

// Handle processes one request.
func (h *Handler) Handle(req Request) Response {
	start := time.Now()
	resp := h.handle(req)
	resp.ID = req.ID

	if h.metrics != nil {
		outcome := "ok"
		if resp.ErrorID != "" {
			outcome = "error"
			h.metrics.RecordError(resp.ErrorID)
		}
		h.metrics.RecordCall(req.Method, outcome, time.Since(start))
	}
	return resp
}

func (h *Handler) handle(req Request) Response {
	if h.auth != nil {
		if err := h.auth.Check(req.Token); err != nil {
			return Response{ErrorID: ErrIDAuthFailed, Message: err.Error()}
		}
	}

	args, err := DecodeArgs(req.Args)
	if err != nil {
		return Response{ErrorID: ErrIDBadRequest, Message: err.Error()}
	}

	if req.ProxyID == 0 && req.Method == MakeMethod {
		return h.handleMake(args)
	}

	before := h.registry.Count()

	p, err := h.registry.Get(req.ProxyID)
	if err != nil {
		return Response{ErrorID: ErrIDProxyNotFound, Message: err.Error()}
	}

	ctx := proxy.NewContext(args)
	if err := p.Call(req.Method, ctx); err != nil {
		if errors.Is(err, proxy.ErrUnknownMethod) {
			return Response{ErrorID: ErrIDUnknownMethod, Message: err.Error()}
		}
		return Response{ErrorID: ErrIDBadRequest, Message: err.Error()}
	}

	h.observeRegistry(before)

	if ctx.Failed() {
		return Response{ErrorID: ctx.Error.ID, Message: ctx.Error.Message}
	}

	outputs, err := EncodeOutputs(ctx.Outputs)
	if err != nil {
		return Response{ErrorID: ErrIDBadRequest, Message: err.Error()}
	}
	return Response{Outputs: outputs}
}

func (h *Handler) handleMake(args hostdata.Struct) Response {
	before := h.registry.Count()

	schema, err := tabular.Make(h.registry, args)
	if err != nil {
		return Response{ErrorID: ErrIDMakeFailed, Message: err.Error()}
	}

	id := h.registry.Manage(schema)
	h.observeRegistry(before)
	if h.metrics != nil {
		h.metrics.MakesTotal.Inc()
	}
	return Response{ProxyID: id}
}

func (h *Handler) observeRegistry(before int) {
	if h.metrics == nil {
		return
	}
	after := h.registry.Count()
	h.metrics.UpdateRegistry(after, after-before)
}

func mustMarshal(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Response contains only marshalable types; this cannot happen.
		return []byte(`{"error_id":"` + ErrIDBadRequest + `","message":"failed to encode response"}`)
	}
	return data
}
