package builtins

import (
	"context"
	"time"

	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/value"
)

var asyncFunctions = []env.Function{
	{
		Name: "WAIT",
		Params: []env.Param{
			{Name: "value", Types: env.TypeScalar},
			optional(number("millis"), 10),
		},
		Policy:  env.FromFirstArgument(),
		Returns: env.TypeAny,
		Async:   true,
		Impl:    Wait,
	},
}

// Wait returns its first argument once the delay is elapsed, or #N/A when
// ctx is done first.
func Wait(ctx context.Context, args []value.Value) value.Value {
	ms, err := value.CastToFloat(args[1])
	if err != nil || ms < 0 {
		return value.ErrValue
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return args[0]
	case <-ctx.Done():
		return value.ErrNA
	}
}
