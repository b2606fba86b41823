package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/midbel/sheetcalc/formula"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

var (
	ErrUnknownSheet = errors.New("unknown sheet")
	ErrSheetExists  = errors.New("sheet already exists")
	ErrBounds       = errors.New("position out of sheet bounds")
	ErrName         = errors.New("invalid name")
	ErrFound        = errors.New("not found")
	ErrDeleted      = errors.New("source deleted")
)

func NoCell(pos layout.Position) error {
	return fmt.Errorf("%s: cell %w", pos, ErrFound)
}

// State is the evaluation state of a cell.
type State int8

const (
	StateClean State = iota
	StateDirty
	StateComputing
	StatePending
	StateError
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateComputing:
		return "computing"
	case StatePending:
		return "pending"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

type Cell struct {
	layout.Position

	// Raw is the content as entered. Formulas start with "=".
	Raw string
	// Format is the number format set explicitly on the cell.
	Format string
	// Computed is the number format given by the formula of the cell.
	Computed string
	Formula  *formula.Compiled
	Value    value.ScalarValue
	State    State

	epoch uint64
}

func (c *Cell) IsFormula() bool {
	return c.Formula != nil
}

// NumberFormat returns the format used to display the cell: its own format
// first, then the one computed from its formula.
func (c *Cell) NumberFormat() string {
	if c.Format != "" {
		return c.Format
	}
	return c.Computed
}

func (c *Cell) volatile() bool {
	return c.Formula != nil && c.Formula.Procedure.Volatile
}

// parseLiteral gives the value of a content that is not a formula. A leading
// quote forces the content to be read as text.
func parseLiteral(raw string) value.ScalarValue {
	if raw == "" {
		return value.Blank{}
	}
	if str, ok := strings.CutPrefix(raw, "'"); ok {
		return value.Text(str)
	}
	trimmed := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return value.Float(f)
	}
	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return value.Boolean(true)
	case "FALSE":
		return value.Boolean(false)
	}
	if e, ok := value.ErrorFromCode(trimmed); ok {
		return e
	}
	return value.Text(raw)
}

// literalOf is the inverse of parseLiteral.
func literalOf(v value.ScalarValue) string {
	switch v := v.(type) {
	case value.Text:
		if _, ok := parseLiteral(string(v)).(value.Text); ok && !strings.HasPrefix(string(v), "'") {
			return string(v)
		}
		return "'" + string(v)
	case value.Blank:
		return ""
	default:
		if value.IsNone(v) {
			return ""
		}
		return v.String()
	}
}

func toScalar(v value.Value) value.ScalarValue {
	if v == nil {
		return value.Blank{}
	}
	v = value.Single(v)
	if value.IsNone(v) {
		return value.Blank{}
	}
	if s, ok := v.(value.ScalarValue); ok {
		return s
	}
	return value.ErrValue
}
