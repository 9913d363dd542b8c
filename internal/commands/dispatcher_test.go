package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devion/internal/testutils"
	"devion/pkg/devtypes"
)

func newTestDispatcher(t *testing.T, opts []Option, entries ...Entry) *Dispatcher {
	t.Helper()
	registry, err := NewRegistry(entries...)
	require.NoError(t, err)
	opts = append([]Option{WithRequestIDs(testutils.DeterministicUUID)}, opts...)
	return NewDispatcher(registry, opts...)
}

func assertConsistent(t *testing.T, env devtypes.Envelope) {
	t.Helper()
	require.NotNil(t, env.Errors)
	assert.Equal(t, env.Success, len(env.Errors) == 0, "success must be false iff errors is non-empty")
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d := newTestDispatcher(t, nil, mockEntry("status", &MockModule{}), mockEntry("init", &MockModule{}))

	env := d.Dispatch(context.Background(), "bogus", "{}")

	assertConsistent(t, env)
	assert.False(t, env.Success)
	assert.Equal(t, "unknown command", env.Message)
	assert.Equal(t, devtypes.KindUnknownCommand, env.Kind)
	require.Len(t, env.Errors, 2)
	assert.Equal(t, `unknown command "bogus"`, env.Errors[0])
	assert.Equal(t, "available commands: init, status", env.Errors[1])
}

func TestDispatch_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "truncated", raw: "{bad"},
		{name: "array", raw: "[1, 2]"},
		{name: "string", raw: `"status"`},
		{name: "number", raw: "42"},
		{name: "trailing data", raw: "{} {}"},
		{name: "trailing text", raw: "{} x"},
		{name: "extra closing brace", raw: "{}}"},
		{name: "extra closing bracket", raw: `{"a":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built := 0
			mod := &MockModule{}
			d := newTestDispatcher(t, nil, Entry{Name: "status", New: func() devtypes.Module {
				built++
				return mod
			}})

			env := d.Dispatch(context.Background(), "status", tt.raw)

			assertConsistent(t, env)
			assert.False(t, env.Success)
			assert.Equal(t, "invalid JSON arguments", env.Message)
			assert.Equal(t, devtypes.KindMalformedInput, env.Kind)
			require.Len(t, env.Errors, 1)
			assert.Contains(t, env.Errors[0], "invalid JSON: ")
			assert.Zero(t, built, "no module is constructed")
			assert.Zero(t, mod.executed)
		})
	}
}

func TestDispatch_EmptyArguments(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", "{}"} {
		var got devtypes.Arguments
		mod := &MockModule{executeFunc: func(_ context.Context, args devtypes.Arguments) (devtypes.Result, error) {
			got = args
			return nil, nil
		}}
		d := newTestDispatcher(t, nil, mockEntry("status", mod))

		env := d.Dispatch(context.Background(), "status", raw)
		assert.True(t, env.Success, "raw %q", raw)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestDispatch_FoldsResult(t *testing.T) {
	tests := []struct {
		name   string
		result devtypes.Result
		want   devtypes.Envelope
	}{
		{
			name:   "nil result gets defaults",
			result: nil,
			want:   devtypes.Envelope{Success: true, Errors: []string{}},
		},
		{
			name:   "explicit data and message",
			result: devtypes.Result{"data": map[string]any{"x": 1.0}, "message": "done"},
			want:   devtypes.Envelope{Success: true, Data: map[string]any{"x": 1.0}, Message: "done", Errors: []string{}},
		},
		{
			name:   "loose keys become data",
			result: devtypes.Result{"target": "prod", "message": "ok"},
			want:   devtypes.Envelope{Success: true, Data: map[string]any{"target": "prod"}, Message: "ok", Errors: []string{}},
		},
		{
			name:   "errors force failure",
			result: devtypes.Result{"success": true, "errors": []string{"git missing"}},
			want:   devtypes.Envelope{Success: false, Errors: []string{"git missing"}, Kind: devtypes.KindInternalFault},
		},
		{
			name:   "failure without errors gets one",
			result: devtypes.Result{"success": false, "message": "nope"},
			want:   devtypes.Envelope{Success: false, Message: "nope", Errors: []string{"nope"}, Kind: devtypes.KindInternalFault},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := &MockModule{executeFunc: func(context.Context, devtypes.Arguments) (devtypes.Result, error) {
				return tt.result, nil
			}}
			d := newTestDispatcher(t, nil, mockEntry("x", mod))

			env := d.Dispatch(context.Background(), "x", "{}")
			assertConsistent(t, env)
			assert.Equal(t, tt.want, env)
		})
	}
}

func TestDispatch_ModuleErrors(t *testing.T) {
	tests := []struct {
		name     string
		validate func(devtypes.Arguments) (devtypes.Arguments, error)
		execute  func(context.Context, devtypes.Arguments) (devtypes.Result, error)
		wantKind devtypes.ErrorKind
		wantErr  string
		executed int
	}{
		{
			name: "validation failure skips execute",
			validate: func(devtypes.Arguments) (devtypes.Arguments, error) {
				return nil, devtypes.InvalidArgumentf("target must be a string")
			},
			wantKind: devtypes.KindInvalidArgument,
			wantErr:  "target must be a string",
			executed: 0,
		},
		{
			name: "io failure",
			execute: func(context.Context, devtypes.Arguments) (devtypes.Result, error) {
				return nil, devtypes.WrapIO(errors.New("disk full"), "failed to write config")
			},
			wantKind: devtypes.KindIOFailure,
			wantErr:  "failed to write config: disk full",
			executed: 1,
		},
		{
			name: "plain error is an internal fault",
			execute: func(context.Context, devtypes.Arguments) (devtypes.Result, error) {
				return nil, errors.New("surprise")
			},
			wantKind: devtypes.KindInternalFault,
			wantErr:  "surprise",
			executed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := &MockModule{validate: tt.validate, executeFunc: tt.execute}
			d := newTestDispatcher(t, nil, mockEntry("deploy", mod))

			env := d.Dispatch(context.Background(), "deploy", "{}")

			assertConsistent(t, env)
			assert.False(t, env.Success)
			assert.Equal(t, "deploy execution failed", env.Message)
			assert.Equal(t, tt.wantKind, env.Kind)
			assert.Equal(t, []string{tt.wantErr}, env.Errors)
			assert.Equal(t, tt.executed, mod.executed)
		})
	}
}

func TestDispatch_RecoversPanic(t *testing.T) {
	mod := &MockModule{executeFunc: func(context.Context, devtypes.Arguments) (devtypes.Result, error) {
		panic("config map was nil")
	}}

	t.Run("without trace", func(t *testing.T) {
		d := newTestDispatcher(t, nil, mockEntry("scan", mod))
		env := d.Dispatch(context.Background(), "scan", "{}")

		assertConsistent(t, env)
		assert.Equal(t, devtypes.KindInternalFault, env.Kind)
		assert.Equal(t, "scan execution failed", env.Message)
		require.Len(t, env.Errors, 1)
		assert.Contains(t, env.Errors[0], "panic: config map was nil")
	})

	t.Run("with trace", func(t *testing.T) {
		d := newTestDispatcher(t, []Option{WithTrace(true)}, mockEntry("scan", mod))
		env := d.Dispatch(context.Background(), "scan", "{}")

		require.Len(t, env.Errors, 2)
		assert.Contains(t, env.Errors[1], "goroutine")
		assert.NotContains(t, env.Message, "goroutine", "stack traces stay out of the message")
	})
}

func TestDispatch_TraceErrorChain(t *testing.T) {
	mod := &MockModule{executeFunc: func(context.Context, devtypes.Arguments) (devtypes.Result, error) {
		return nil, devtypes.WrapIO(errors.New("permission denied"), "failed to write")
	}}
	d := newTestDispatcher(t, []Option{WithTrace(true)}, mockEntry("init", mod))

	env := d.Dispatch(context.Background(), "init", "{}")
	require.Len(t, env.Errors, 2)
	assert.Contains(t, env.Errors[1], "caused by")
	assert.Contains(t, env.Errors[1], "permission denied")
}

func TestDispatch_FreshModulePerCall(t *testing.T) {
	built := 0
	d := newTestDispatcher(t, nil, Entry{Name: "use", New: func() devtypes.Module {
		built++
		return &MockModule{}
	}})

	d.Dispatch(context.Background(), "use", "{}")
	d.Dispatch(context.Background(), "use", "{}")
	assert.Equal(t, 2, built)
}

func TestDispatch_NilModule(t *testing.T) {
	d := newTestDispatcher(t, nil, Entry{Name: "use", New: func() devtypes.Module { return nil }})

	env := d.Dispatch(context.Background(), "use", "{}")
	assertConsistent(t, env)
	assert.Equal(t, devtypes.KindInternalFault, env.Kind)
}

func TestDispatch_EnvelopeJSON(t *testing.T) {
	d := newTestDispatcher(t, nil, mockEntry("status", &MockModule{}))

	data, err := json.Marshal(d.Dispatch(context.Background(), "bogus", ""))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.ElementsMatch(t, []string{"success", "data", "message", "errors"}, keys(decoded))
	assert.Nil(t, decoded["data"])
}

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments(`{"verbose": true, "path": "src"}`)
	require.NoError(t, err)
	assert.Equal(t, devtypes.Arguments{"verbose": true, "path": "src"}, args)

	_, err = ParseArguments("[]")
	assert.EqualError(t, err, "arguments must be a JSON object, got array")
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
