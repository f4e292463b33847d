package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
)

// ErrEndpointNotRunning is returned for operations on a stopped endpoint.
var ErrEndpointNotRunning = errors.New("endpoint is not running")

// ZmqEndpoint serves bridge requests over a ZeroMQ ROUTER socket. Each
// request is one JSON frame; the reply goes back to the requesting
// identity.
type ZmqEndpoint struct {
	address string
	handler *Handler

	ctx    context.Context
	cancel context.CancelFunc

	router zmq4.Socket

	running bool
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// NewZmqEndpoint creates an endpoint bound to the given ZeroMQ address,
// e.g. "tcp://127.0.0.1:5555".
func NewZmqEndpoint(address string, handler *Handler) *ZmqEndpoint {
	ctx, cancel := context.WithCancel(context.Background())

	return &ZmqEndpoint{
		address: address,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start binds the ROUTER socket and begins serving requests.
func (e *ZmqEndpoint) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return errors.New("endpoint already running")
	}

	e.router = zmq4.NewRouter(e.ctx)
	if err := e.router.Listen(e.address); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("failed to bind router: %w", err)
	}

	e.running = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.serveLoop()

	return nil
}

// Stop shuts down the endpoint.
func (e *ZmqEndpoint) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.mu.Unlock()

	e.cancel()

	if e.router != nil {
		// Best effort close during shutdown.
		_ = e.router.Close()
	}

	e.wg.Wait()
}

// Running reports whether the endpoint is serving.
func (e *ZmqEndpoint) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// serveLoop receives request frames and replies to the sender identity.
func (e *ZmqEndpoint) serveLoop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		default:
		}

		msg, err := e.router.Recv()
		if err != nil {
			select {
			case <-e.ctx.Done():
				return
			default:
			}
			time.Sleep(acceptRetryDelay)
			continue
		}

		// ROUTER frames: [identity, payload].
		if len(msg.Frames) < 2 {
			continue
		}
		identity := msg.Frames[0]
		payload := msg.Frames[len(msg.Frames)-1]

		response := e.handler.HandleRaw(payload)

		reply := zmq4.NewMsgFrom(identity, response)
		if err := e.router.Send(reply); err != nil {
			select {
			case <-e.ctx.Done():
				return
			default:
			}
		}
	}
}
