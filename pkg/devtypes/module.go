package devtypes

import "context"

// Module is the contract every command handler implements. A module is
// created fresh for each dispatch and discarded afterwards.
type Module interface {
	// Validate inspects raw arguments and returns a cleaned set, or an
	// InvalidArgument error when required keys are missing or malformed.
	Validate(args Arguments) (Arguments, error)
	// Execute performs the command's work.
	Execute(ctx context.Context, args Arguments) (Result, error)
}

// Run executes the module lifecycle. A validation failure short-circuits
// execution.
func Run(ctx context.Context, m Module, args Arguments) (Result, error) {
	if args == nil {
		args = Arguments{}
	}
	cleaned, err := m.Validate(args)
	if err != nil {
		return nil, err
	}
	if cleaned == nil {
		cleaned = Arguments{}
	}
	return m.Execute(ctx, cleaned)
}

// PassThrough can be embedded by modules without validation rules.
type PassThrough struct{}

// Validate returns args unchanged.
func (PassThrough) Validate(args Arguments) (Arguments, error) {
	return args, nil
}

// With returns a copy of args with key set to value.
func (a Arguments) With(key string, value any) Arguments {
	out := make(Arguments, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	out[key] = value
	return out
}

// Has reports whether key is present with a non-nil value.
func (a Arguments) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}
