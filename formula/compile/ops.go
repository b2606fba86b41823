package compile

import (
	"math"

	"github.com/midbel/sheetcalc/formula/op"
	"github.com/midbel/sheetcalc/value"
)

func evalUnary(oper op.Op, val value.Value) value.Value {
	val = value.Single(val)
	if arr, ok := val.(value.ArrayValue); ok {
		res, _ := value.ToArray(arr)
		return res.Apply(func(v value.ScalarValue) value.ScalarValue {
			return scalarOf(evalUnary(oper, v))
		})
	}
	if value.IsError(val) {
		return val
	}
	n, err := value.CastToFloat(val)
	if err != nil {
		return value.ErrValue
	}
	switch oper {
	case op.Add:
		return n
	case op.Sub:
		return -n
	case op.Percent:
		return n / 100
	default:
		return value.ErrValue
	}
}

func evalBinary(oper op.Op, left, right value.Value) value.Value {
	left, right = value.Single(left), value.Single(right)
	if value.IsArray(left) || value.IsArray(right) {
		return evalArray(oper, left, right)
	}
	if value.IsError(left) {
		return left
	}
	if value.IsError(right) {
		return right
	}
	switch oper {
	case op.Add:
		return doMath(left, right, func(left, right float64) value.Value {
			return value.Float(left + right)
		})
	case op.Sub:
		return doMath(left, right, func(left, right float64) value.Value {
			return value.Float(left - right)
		})
	case op.Mul:
		return doMath(left, right, func(left, right float64) value.Value {
			return value.Float(left * right)
		})
	case op.Div:
		return doMath(left, right, func(left, right float64) value.Value {
			if right == 0 {
				return value.ErrDiv0
			}
			return value.Float(left / right)
		})
	case op.Pow:
		return doMath(left, right, func(left, right float64) value.Value {
			res := value.Float(math.Pow(left, right))
			if !res.Valid() {
				return value.ErrNum
			}
			return res
		})
	case op.Concat:
		ls, err1 := value.CastToText(left)
		rs, err2 := value.CastToText(right)
		if err1 != nil || err2 != nil {
			return value.ErrValue
		}
		return ls + rs
	case op.Eq:
		return doCmp(left, right, func(cmp int) bool {
			return cmp == 0
		})
	case op.Ne:
		return doCmp(left, right, func(cmp int) bool {
			return cmp != 0
		})
	case op.Lt:
		return doCmp(left, right, func(cmp int) bool {
			return cmp < 0
		})
	case op.Le:
		return doCmp(left, right, func(cmp int) bool {
			return cmp <= 0
		})
	case op.Gt:
		return doCmp(left, right, func(cmp int) bool {
			return cmp > 0
		})
	case op.Ge:
		return doCmp(left, right, func(cmp int) bool {
			return cmp >= 0
		})
	default:
		return value.ErrValue
	}
}

func evalArray(oper op.Op, left, right value.Value) value.Value {
	la, ok1 := value.ToArray(left)
	ra, ok2 := value.ToArray(right)
	if !ok1 || !ok2 {
		return value.ErrValue
	}
	return la.ApplyArray(ra, func(l, r value.ScalarValue) value.ScalarValue {
		return scalarOf(evalBinary(oper, l, r))
	})
}

func doMath(left, right value.Value, do func(left, right float64) value.Value) value.Value {
	ls, err := value.CastToFloat(left)
	if err != nil {
		return value.ErrValue
	}
	rs, err := value.CastToFloat(right)
	if err != nil {
		return value.ErrValue
	}
	return do(float64(ls), float64(rs))
}

func doCmp(left, right value.Value, do func(int) bool) value.Value {
	cmp, err := value.Compare(left, right)
	if err != nil {
		return value.ErrValue
	}
	return value.Boolean(do(cmp))
}
