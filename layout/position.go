package layout

import (
	"strconv"
	"strings"
)

// Position identifies a cell. Line and Column are 1-based; a zero value
// means "unset".
type Position struct {
	Sheet  string
	Line   int64
	Column int64
}

func ParsePosition(addr string) Position {
	var (
		pos    Position
		offset int
	)
	pos.Column, offset = ParseIndex(addr)
	pos.Line, _ = strconv.ParseInt(addr[offset:], 10, 64)
	return pos
}

func (p Position) Equal(other Position) bool {
	return p.Line == other.Line && p.Column == other.Column
}

func (p Position) Valid() bool {
	return p.Line >= 1 && p.Column >= 1
}

func (p Position) Local() Position {
	p.Sheet = ""
	return p
}

func (p Position) Offset(lines, columns int64) Position {
	p.Line += lines
	p.Column += columns
	return p
}

func (p Position) Addr() string {
	var parts []string
	if p.Sheet != "" {
		parts = append(parts, QuoteSheet(p.Sheet))
		parts = append(parts, "!")
	}
	parts = append(parts, IndexToString(p.Column))
	parts = append(parts, strconv.FormatInt(p.Line, 10))
	return strings.Join(parts, "")
}

func (p Position) String() string {
	return p.Addr()
}

func IsAddress(addr string) bool {
	size := len(addr)
	if size < 2 {
		return false
	}
	var offset int
	for offset < size {
		c := addr[offset]
		if c >= 'a' && c <= 'z' {
			c = c - 'a' + 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		offset++
	}
	if offset == 0 || offset > maxColumnLetters || offset >= size || addr[offset] == '0' {
		return false
	}
	for offset < size {
		c := addr[offset]
		if c < '0' || c > '9' {
			return false
		}
		offset++
	}
	return offset == size
}

const maxColumnLetters = 3

func ParseIndex(str string) (int64, int) {
	if len(str) == 0 {
		return 0, 0
	}
	var (
		offset int
		index  int
	)
	for offset < len(str) && isLetter(rune(str[offset])) {
		delta := byte('A')
		if isLower(rune(str[offset])) {
			delta = 'a'
		}
		index = index*26 + int(str[offset]-delta+1)
		offset++
	}
	return int64(index), offset
}

func IndexToString(ix int64) string {
	var result string
	for ix > 0 {
		ix--
		result = string(rune('A')+rune(ix%26)) + result
		ix /= 26
	}
	return result
}

// QuoteSheet returns the sheet name as it must be written in a formula:
// names made of letters, digits and underscores (not starting with a digit)
// are written bare, anything else is single-quoted with embedded quotes
// doubled.
func QuoteSheet(name string) string {
	if name == "" || !needQuote(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func needQuote(name string) bool {
	for i, c := range name {
		if isLetter(c) || c == '_' {
			continue
		}
		if i > 0 && c >= '0' && c <= '9' {
			continue
		}
		return true
	}
	return false
}

func isLower(c rune) bool {
	return c >= 'a' && c <= 'z'
}

func isUpper(c rune) bool {
	return c >= 'A' && c <= 'Z'
}

func isLetter(c rune) bool {
	return isLower(c) || isUpper(c)
}
