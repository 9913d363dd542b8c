// Package devtypes defines the core types shared by every Devion command.
// This file contains the response envelope returned by each dispatch and the
// folding rules that turn a free-form module result into an envelope.
package devtypes

import (
	"fmt"
	"sort"
)

// Envelope is the uniform response shape produced by every dispatch.
// Success is false whenever Errors is non-empty.
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`

	// Kind classifies a failed envelope. It never leaves the process.
	Kind ErrorKind `json:"-"`
}

// Arguments holds the decoded JSON argument object of one invocation.
type Arguments map[string]any

// Result is the free-form mapping produced by a module's Execute step.
type Result map[string]any

// Envelope keys recognized when folding a Result.
const (
	KeySuccess = "success"
	KeyData    = "data"
	KeyMessage = "message"
	KeyErrors  = "errors"
)

// NewResult builds a Result carrying data and a human-readable message.
func NewResult(data any, message string) Result {
	return Result{KeyData: data, KeyMessage: message}
}

// WithErrors attaches error strings to the result. A result with errors
// always folds into a failed envelope.
func (r Result) WithErrors(errs ...string) Result {
	if len(errs) == 0 {
		return r
	}
	r[KeyErrors] = append([]string(nil), errs...)
	return r
}

// Success builds a successful envelope.
func Success(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message, Errors: []string{}}
}

// Failure builds a failed envelope of the given kind.
func Failure(kind ErrorKind, message string, errs ...string) Envelope {
	env := Envelope{Success: false, Message: message, Errors: errs, Kind: kind}
	return env.Normalize()
}

// Normalize enforces the envelope invariants: Errors is never nil, a
// failure always carries at least one error and any error forces failure.
func (e Envelope) Normalize() Envelope {
	if e.Errors == nil {
		e.Errors = []string{}
	}
	if len(e.Errors) > 0 {
		e.Success = false
	}
	if !e.Success && len(e.Errors) == 0 {
		reason := e.Message
		if reason == "" {
			reason = "operation failed"
		}
		e.Errors = []string{reason}
	}
	if !e.Success && e.Kind == "" {
		e.Kind = KindInternalFault
	}
	if e.Success {
		e.Kind = ""
	}
	return e
}

// Fold converts a module result into an envelope. Envelope-shaped keys are
// lifted; when no data key is present any remaining keys become the data.
// Missing fields default to success=true, data=null, message="", errors=[].
func Fold(r Result) Envelope {
	env := Envelope{Success: true, Errors: []string{}}
	if r == nil {
		return env
	}

	rest := make(map[string]any)
	for k, v := range r {
		switch k {
		case KeySuccess, KeyData, KeyMessage, KeyErrors:
		default:
			rest[k] = v
		}
	}

	if v, ok := r[KeySuccess]; ok {
		if b, isBool := v.(bool); isBool {
			env.Success = b
		}
	}
	if v, ok := r[KeyMessage]; ok && v != nil {
		env.Message = fmt.Sprint(v)
	}
	env.Errors = toStrings(r[KeyErrors])

	if v, ok := r[KeyData]; ok {
		env.Data = v
	} else if len(rest) > 0 {
		env.Data = rest
	}

	if !env.Success || len(env.Errors) > 0 {
		env.Kind = KindInternalFault
	}
	return env.Normalize()
}

func toStrings(v any) []string {
	switch errs := v.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, errs...)
	case []any:
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			out = append(out, fmt.Sprint(e))
		}
		return out
	case string:
		if errs == "" {
			return []string{}
		}
		return []string{errs}
	case map[string]any:
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, fmt.Sprintf("%s: %v", k, errs[k]))
		}
		return out
	default:
		return []string{fmt.Sprint(errs)}
	}
}
