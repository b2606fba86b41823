package env

import (
	"context"

	"github.com/midbel/sheetcalc/layout"
)

type positionKey struct{}

// WithPosition records the cell being evaluated so functions like ROW can
// default to it.
func WithPosition(ctx context.Context, pos layout.Position) context.Context {
	return context.WithValue(ctx, positionKey{}, pos)
}

func PositionFrom(ctx context.Context) (layout.Position, bool) {
	pos, ok := ctx.Value(positionKey{}).(layout.Position)
	return pos, ok
}
