package value

type toFloat interface {
	ToFloat() (ScalarValue, error)
}

type toText interface {
	ToText() (ScalarValue, error)
}

type toBool interface {
	ToBool() (ScalarValue, error)
}

func CastToArray(val Value) (ArrayValue, error) {
	arr, ok := val.(ArrayValue)
	if !ok {
		return nil, ErrCast
	}
	return arr, nil
}

func True(val Value) bool {
	b, err := CastToBool(val)
	return err == nil && bool(b)
}

func CastToFloat(val Value) (Float, error) {
	switch v := Single(val).(type) {
	case Float:
		return v, nil
	case toFloat:
		x, err := v.ToFloat()
		if err != nil {
			return 0, ErrCast
		}
		f, ok := x.(Float)
		if !ok {
			return 0, ErrCast
		}
		return f, nil
	default:
		return 0, ErrCast
	}
}

func CastToText(val Value) (Text, error) {
	switch v := Single(val).(type) {
	case Text:
		return v, nil
	case toText:
		x, err := v.ToText()
		if err != nil {
			return "", ErrCast
		}
		t, ok := x.(Text)
		if !ok {
			return "", ErrCast
		}
		return t, nil
	default:
		return "", ErrCast
	}
}

func CastToBool(val Value) (Boolean, error) {
	switch v := Single(val).(type) {
	case Boolean:
		return v, nil
	case toBool:
		x, err := v.ToBool()
		if err != nil {
			return false, ErrCast
		}
		b, ok := x.(Boolean)
		if !ok {
			return false, ErrCast
		}
		return b, nil
	default:
		return false, ErrCast
	}
}

// Compare orders two scalars: numbers before text before booleans. A blank
// takes the zero value of the type it is compared with.
func Compare(left, right Value) (int, error) {
	left, right = Single(left), Single(right)
	if IsBlank(left) {
		left = zeroOf(right)
	}
	if IsBlank(right) {
		right = zeroOf(left)
	}
	lr, rr := rank(left), rank(right)
	if lr < 0 || rr < 0 {
		return 0, ErrCompatible
	}
	if lr != rr {
		if lr < rr {
			return -1, nil
		}
		return 1, nil
	}
	cmp, ok := left.(Comparable)
	if !ok {
		return 0, ErrCompatible
	}
	if eq, err := cmp.Equal(right); err != nil || eq {
		return 0, err
	}
	less, err := cmp.Less(right)
	if err != nil {
		return 0, err
	}
	if less {
		return -1, nil
	}
	return 1, nil
}

func zeroOf(v Value) Value {
	switch v.(type) {
	case Text:
		return Text("")
	case Boolean:
		return Boolean(false)
	default:
		return Float(0)
	}
}

func rank(v Value) int {
	switch v.(type) {
	case Float:
		return 0
	case Text:
		return 1
	case Boolean:
		return 2
	default:
		return -1
	}
}
