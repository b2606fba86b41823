package value

var (
	ErrNull    = createError("#NULL!")
	ErrDiv0    = createError("#DIV/0!")
	ErrValue   = createError("#VALUE!")
	ErrRef     = createError("#REF!")
	ErrName    = createError("#NAME?")
	ErrNum     = createError("#NUM!")
	ErrNA      = createError("#N/A")
	ErrBadExpr = createError("#BAD_EXPR")
	ErrCycle   = createError("#CYCLE!")
)

var knownErrors = []Error{
	ErrNull,
	ErrDiv0,
	ErrValue,
	ErrRef,
	ErrName,
	ErrNum,
	ErrNA,
	ErrBadExpr,
	ErrCycle,
}

type Error struct {
	code string
}

func createError(code string) Error {
	return Error{
		code: code,
	}
}

// ErrorFromCode returns the error value written as code.
func ErrorFromCode(code string) (Error, bool) {
	for _, e := range knownErrors {
		if e.code == code {
			return e, true
		}
	}
	return Error{}, false
}

func (Error) Type() string {
	return TypeError
}

func (Error) Kind() ValueKind {
	return KindError
}

func (e Error) Error() string {
	return e.code
}

func (e Error) String() string {
	return e.code
}

func (e Error) Scalar() any {
	return e.code
}
