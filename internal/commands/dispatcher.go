package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"devion/internal/logger"
	"devion/pkg/devtypes"
)

// Dispatcher routes a command to its module and converts every outcome,
// including panics, into a single envelope.
type Dispatcher struct {
	registry *Registry
	trace    bool
	newID    func() string
	logger   *log.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTrace appends stack traces of failures to the envelope errors.
func WithTrace(enabled bool) Option {
	return func(d *Dispatcher) {
		d.trace = enabled
	}
}

// WithRequestIDs overrides the request id generator.
func WithRequestIDs(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		newID:    uuid.NewString,
		logger:   logger.NewStyledLogger("Dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch parses rawArgs as a JSON object and runs command with it.
// Empty input and "null" are treated as {}.
func (d *Dispatcher) Dispatch(ctx context.Context, command string, rawArgs string) devtypes.Envelope {
	args, err := ParseArguments(rawArgs)
	if err != nil {
		d.logger.Debug("Rejected arguments", "command", command, "error", err)
		return devtypes.Failure(devtypes.KindMalformedInput, "invalid JSON arguments", "invalid JSON: "+err.Error())
	}
	return d.DispatchArgs(ctx, command, args)
}

// DispatchArgs runs command with already decoded arguments.
func (d *Dispatcher) DispatchArgs(ctx context.Context, command string, args devtypes.Arguments) devtypes.Envelope {
	requestID := d.newID()
	if args == nil {
		args = devtypes.Arguments{}
	}

	entry, ok := d.registry.Lookup(command)
	if !ok {
		d.logger.Debug("Unknown command", "command", command, "request", requestID)
		return devtypes.Failure(devtypes.KindUnknownCommand, "unknown command",
			fmt.Sprintf("unknown command %q", command),
			"available commands: "+strings.Join(d.registry.Names(), ", "))
	}

	logger.CommandExecution(command, requestID, args)

	result, err := d.run(ctx, entry, args)
	if err != nil {
		return d.failure(command, requestID, err)
	}

	env := devtypes.Fold(result)
	d.logger.Debug("Command finished", "command", command, "request", requestID, "success", env.Success)
	return env
}

// run builds the module and executes it, converting a panic into an error.
func (d *Dispatcher) run(ctx context.Context, entry Entry, args devtypes.Arguments) (result devtypes.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()

	module := entry.New()
	if module == nil {
		return nil, &devtypes.Error{Kind: devtypes.KindInternalFault, Message: fmt.Sprintf("command %s produced no module", entry.Name)}
	}
	return devtypes.Run(ctx, module, args)
}

func (d *Dispatcher) failure(command, requestID string, err error) devtypes.Envelope {
	kind := devtypes.KindOf(err)
	errs := []string{err.Error()}

	var p *panicError
	if errors.As(err, &p) {
		d.logger.Error("Command panicked", "command", command, "request", requestID, "error", p.value)
		if d.trace {
			errs = append(errs, string(p.stack))
		}
	} else {
		d.logger.Info("Command failed", "command", command, "request", requestID, "kind", kind, "error", err)
		if d.trace {
			errs = append(errs, errorChain(err)...)
		}
	}

	return devtypes.Failure(kind, command+" execution failed", errs...)
}

// ParseArguments decodes a JSON object. Blank input and "null" yield an
// empty argument map.
func ParseArguments(raw string) (devtypes.Arguments, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return devtypes.Arguments{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("arguments must be a JSON object, got %s", jsonType(value))
	}
	return devtypes.Arguments(obj), nil
}

func jsonType(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "null"
	}
}

// errorChain lists each wrapped cause below err.
func errorChain(err error) []string {
	var chain []string
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		chain = append(chain, fmt.Sprintf("caused by (%T): %v", cause, cause))
	}
	return chain
}

type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

