package builtin

import (
	"errors"
	"strings"

	"github.com/mitchellh/mapstructure"

	"devion/pkg/devtypes"
)

// decodeArgs copies args into out, a pointer to a struct tagged with
// mapstructure names. Types are strict; unknown keys are ignored.
// Fields of out keep their value when the key is absent, so callers set
// defaults before decoding.
func decodeArgs(args devtypes.Arguments, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: false,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(args)); err != nil {
		var merr *mapstructure.Error
		if errors.As(err, &merr) {
			return devtypes.InvalidArgumentf("invalid arguments: %s", strings.Join(merr.Errors, "; "))
		}
		return devtypes.InvalidArgumentf("invalid arguments: %v", err)
	}
	return nil
}
