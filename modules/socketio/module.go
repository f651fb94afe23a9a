package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultTimeout = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the socketio runner.
type Input struct {
	URL                string    `grid:"url"`
	Namespace          string    `grid:"namespace,optional"`
	OnEvent            string    `grid:"on_event"`
	EmitEvent          string    `grid:"emit_event,optional"`
	EmitData           cty.Value `grid:"emit_data,optional"`
	Timeout            string    `grid:"timeout,optional"`
	InsecureSkipVerify bool      `grid:"insecure_skip_verify,optional"`
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	data any
	err  error
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("socketio", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, input any) error {
			_, err := OnRunSocketIO(ctx, input.(*Input))
			return err
		},
	})
}

// OnRunSocketIO connects to a socket.io server, optionally emits an event
// once connected, and waits for OnEvent. It returns the event's first argument.
func OnRunSocketIO(ctx context.Context, input *Input) (any, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "socketio", "url", input.URL, "onEvent", input.OnEvent, "emitEvent", input.EmitEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	timeout := defaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", input.Timeout, err)
		}
		timeout = d
	}

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q must include a scheme and host", input.URL)
	}

	emitData, err := ctyValueToInterface(input.EmitData)
	if err != nil {
		return nil, fmt.Errorf("failed to convert emit_data: %w", err)
	}

	namespace := input.Namespace
	if namespace == "" {
		namespace = "/"
	}

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	finish := func(res opResult) {
		select {
		case done <- res:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", namespace, "sid", io.Id())
		if input.EmitEvent != "" {
			jsonData, _ := json.Marshal(emitData)
			logger.Info("Emitting event", "event", input.EmitEvent, "data", string(jsonData))
			io.Emit(input.EmitEvent, emitData)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("connection error: %w", e)
			}
		}
		finish(opResult{err: err})
	})

	io.On(types.EventName(input.OnEvent), func(data ...any) {
		var responseData any
		if len(data) > 0 {
			responseData = data[0]
		}
		finish(opResult{data: responseData})
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", input.OnEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		jsonData, _ := json.Marshal(res.data)
		logger.Info("Received event", "event", input.OnEvent, "data", string(jsonData))
		return res.data, nil
	}
}

// ctyValueToInterface converts a cty.Value to plain Go values suitable for JSON.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			conv, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = conv
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			conv, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, conv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}
