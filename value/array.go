package value

import (
	"fmt"
	"strings"

	"github.com/midbel/sheetcalc/layout"
)

type Array struct {
	Data [][]ScalarValue
}

func NewArray(data [][]ScalarValue) ArrayValue {
	return Array{
		Data: data,
	}
}

func (a Array) Type() string {
	dim := a.Dimension()
	return fmt.Sprintf("array(%d, %d)", dim.Lines, dim.Columns)
}

func (Array) Kind() ValueKind {
	return KindArray
}

func (a Array) String() string {
	var rows []string
	for i := range a.Data {
		var cols []string
		for j := range a.Data[i] {
			cols = append(cols, a.Data[i][j].String())
		}
		rows = append(rows, strings.Join(cols, ","))
	}
	return "{" + strings.Join(rows, ";") + "}"
}

func (a Array) Dimension() layout.Dimension {
	var (
		d layout.Dimension
		n = len(a.Data)
	)
	if n > 0 {
		d.Lines = int64(n)
		d.Columns = int64(len(a.Data[0]))
	}
	return d
}

func (a Array) At(row, col int) ScalarValue {
	if len(a.Data) == 0 || row >= len(a.Data) {
		return Blank{}
	}
	v := a.Data[row]
	if len(v) == 0 || col >= len(v) {
		return Blank{}
	}
	return a.Data[row][col]
}

// Apply builds a new array of the same shape by mapping do over every cell.
func (a Array) Apply(do func(ScalarValue) ScalarValue) Array {
	data := make([][]ScalarValue, len(a.Data))
	for i := range a.Data {
		data[i] = make([]ScalarValue, len(a.Data[i]))
		for j := range a.Data[i] {
			data[i][j] = do(a.Data[i][j])
		}
	}
	return Array{Data: data}
}

// ApplyArray combines two arrays cell by cell. The smaller one is repeated
// to cover the larger.
func (a Array) ApplyArray(other ArrayValue, do func(ScalarValue, ScalarValue) ScalarValue) Array {
	var (
		dleft  = a.Dimension()
		dright = other.Dimension()
		dim    = dleft.Max(dright)
		data   = make([][]ScalarValue, dim.Lines)
	)
	if dleft.Cells() == 0 || dright.Cells() == 0 {
		return Array{}
	}
	for i := range data {
		data[i] = make([]ScalarValue, dim.Columns)
	}
	for i := range dim.Lines {
		for j := range dim.Columns {
			var (
				left  = a.At(int(i%dleft.Lines), int(j%dleft.Columns))
				right = other.At(int(i%dright.Lines), int(j%dright.Columns))
			)
			data[i][j] = do(left, right)
		}
	}
	return Array{Data: data}
}

// Broadcast wraps a scalar into a one by one array.
func Broadcast(v ScalarValue) Array {
	return Array{
		Data: [][]ScalarValue{{v}},
	}
}

func ToArray(v Value) (Array, bool) {
	switch v := v.(type) {
	case Array:
		return v, true
	case ArrayValue:
		dim := v.Dimension()
		data := make([][]ScalarValue, dim.Lines)
		for i := range data {
			data[i] = make([]ScalarValue, dim.Columns)
			for j := range data[i] {
				data[i][j] = v.At(i, j)
			}
		}
		return Array{Data: data}, true
	case ScalarValue:
		return Broadcast(v), true
	default:
		return Array{}, false
	}
}
