// Package socketio provides a node that performs one socket.io round trip.
package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/kinds"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	Logger *slog.Logger
}

const EmitTag = "SocketIOEmit"

const defaultTimeout = 10 * time.Second

// Register registers the node type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode(EmitTag, func(label string) *flow.Node { return NewEmit(label, m.Logger).Node })
}

// Emit connects to a socket.io server, emits an event and, when OnEvent is
// set, waits for that event in reply. Compute blocks for at most Timeout.
// Failures leave Response empty, OK false and the reason in Error.
type Emit struct {
	*flow.Node
	URL                *flow.Slot
	Namespace          *flow.Slot
	EmitEvent          *flow.Slot
	EmitData           *flow.Slot
	OnEvent            *flow.Slot
	Timeout            *flow.Slot
	InsecureSkipVerify *flow.Slot

	Response *flow.Slot
	OK       *flow.Slot
	Error    *flow.Slot

	logger *slog.Logger
}

func NewEmit(label string, logger *slog.Logger) *Emit {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Emit{logger: logger}
	e.Node = flow.NewNode(EmitTag, label, e)
	e.URL = e.AddInput("url", kinds.String)
	e.Namespace = e.AddInput("namespace", kinds.String.WithDefault(cty.StringVal("/")))
	e.EmitEvent = e.AddInput("emit_event", kinds.String)
	e.EmitData = e.AddInput("emit_data", kinds.String)
	e.OnEvent = e.AddInput("on_event", kinds.String)
	e.Timeout = e.AddInput("timeout", kinds.String.WithDefault(cty.StringVal(defaultTimeout.String())))
	e.InsecureSkipVerify = e.AddInput("insecure_skip_verify", kinds.Bool)
	e.Response = e.AddOutput("response", kinds.String)
	e.OK = e.AddOutput("ok", kinds.Bool)
	e.Error = e.AddOutput("error", kinds.String)
	e.Ready()
	return e
}

// request is one round trip, decoupled from the sockets.
type request struct {
	URL                string
	Namespace          string
	EmitEvent          string
	EmitData           any
	OnEvent            string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

type opResult struct {
	value any
	err   error
}

func (e *Emit) Evaluate() {
	req, err := e.request()
	var reply any
	if err == nil {
		ctx := ctxlog.With(ctxlog.WithLogger(context.Background(), e.logger), "node", e.Label())
		reply, err = exchange(ctx, req)
	}
	if err != nil {
		e.logger.Warn("Socket.io exchange failed.", "node", e.Label(), "error", err)
		flow.WriteGo(e.Response, "")
		flow.WriteGo(e.OK, false)
		flow.WriteGo(e.Error, err.Error())
		return
	}

	encoded := ""
	if reply != nil {
		b, err := json.Marshal(reply)
		if err != nil {
			e.logger.Warn("Could not encode socket.io reply.", "node", e.Label(), "error", err)
		}
		encoded = string(b)
	}
	flow.WriteGo(e.Response, encoded)
	flow.WriteGo(e.OK, true)
	flow.WriteGo(e.Error, "")
}

func (e *Emit) request() (request, error) {
	req := request{
		URL:                flow.ReadAs[string](e.URL),
		Namespace:          flow.ReadAs[string](e.Namespace),
		EmitEvent:          flow.ReadAs[string](e.EmitEvent),
		OnEvent:            flow.ReadAs[string](e.OnEvent),
		InsecureSkipVerify: flow.ReadAs[bool](e.InsecureSkipVerify),
	}
	if req.URL == "" {
		return req, errors.New("url is required")
	}

	raw := flow.ReadAs[string](e.Timeout)
	timeout, err := time.ParseDuration(raw)
	if err != nil || timeout <= 0 {
		e.logger.Warn("Failed to parse timeout, using default.", "node", e.Label(), "timeout", raw, "default", defaultTimeout)
		timeout = defaultTimeout
	}
	req.Timeout = timeout

	if data := flow.ReadAs[string](e.EmitData); data != "" {
		if err := json.Unmarshal([]byte(data), &req.EmitData); err != nil {
			return req, fmt.Errorf("emit_data is not valid JSON: %w", err)
		}
	}
	return req, nil
}

func exchange(ctx context.Context, req request) (any, error) {
	logger := ctxlog.FromContext(ctx).With("url", req.URL, "onEvent", req.OnEvent, "emitEvent", req.EmitEvent)
	logger.Debug("Exchange started.")
	defer logger.Debug("Exchange finished.")

	parsedURL, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	finish := func(r opResult) {
		select {
		case done <- r:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if req.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(req.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected.", "namespace", req.Namespace, "sid", io.Id())
		if req.EmitEvent != "" {
			logger.Info("Emitting event.", "event", req.EmitEvent)
			io.Emit(req.EmitEvent, req.EmitData)
		}
		if req.OnEvent == "" {
			finish(opResult{})
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("connection failed: %w", e)
			}
		}
		finish(opResult{err: err})
	})

	if req.OnEvent != "" {
		io.On(types.EventName(req.OnEvent), func(data ...any) {
			var reply any
			if len(data) > 0 {
				reply = data[0]
			}
			finish(opResult{value: reply})
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", req.OnEvent)
		}
		return nil, errors.New("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}
