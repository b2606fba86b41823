package op

// Op is the type of a token. Operators are tokens too.
type Op rune

const (
	Invalid Op = iota
	EOF
	Space
	Number
	String
	Ident
	Function
	Reference
	InvalidRef
	Debug
	Unknown
	Comma
	Semi
	BegGrp
	EndGrp
	BegArr
	EndArr

	Add
	Sub
	Mul
	Div
	Percent
	Pow
	Concat
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Range
)

var mapping = map[Op]string{
	Add:     "+",
	Sub:     "-",
	Mul:     "*",
	Pow:     "^",
	Div:     "/",
	Percent: "%",
	Concat:  "&",
	Eq:      "=",
	Ne:      "<>",
	Lt:      "<",
	Le:      "<=",
	Gt:      ">",
	Ge:      ">=",
	Range:   ":",
}

var names = map[Op]string{
	Invalid:    "invalid",
	EOF:        "eof",
	Space:      "space",
	Number:     "number",
	String:     "string",
	Ident:      "identifier",
	Function:   "function",
	Reference:  "reference",
	InvalidRef: "invalid-reference",
	Debug:      "debug",
	Unknown:    "unknown",
	Comma:      "comma",
	Semi:       "semicolon",
	BegGrp:     "beg-group",
	EndGrp:     "end-group",
	BegArr:     "beg-array",
	EndArr:     "end-array",
	Add:        "add",
	Sub:        "subtract",
	Mul:        "multiply",
	Div:        "divide",
	Percent:    "percent",
	Pow:        "power",
	Concat:     "concat",
	Eq:         "equal",
	Ne:         "notequal",
	Lt:         "lesser",
	Le:         "lesseq",
	Gt:         "greater",
	Ge:         "greateq",
	Range:      "range",
}

func Symbol(oper Op) string {
	return mapping[oper]
}

func (o Op) String() string {
	if str, ok := names[o]; ok {
		return str
	}
	return "invalid"
}

func (o Op) IsOperator() bool {
	return o >= Add && o <= Range
}

// IsComparison reports whether o gives a boolean out of two operands.
func (o Op) IsComparison() bool {
	return o >= Eq && o <= Ge
}

// IsOperand reports whether a token of type o can end an operand. A sign
// following such a token is a binary operator, otherwise it is part of a
// number.
func (o Op) IsOperand() bool {
	switch o {
	case Number, String, Ident, Reference, InvalidRef, EndGrp, EndArr, Percent:
		return true
	default:
		return false
	}
}
