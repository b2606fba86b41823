package parse

import (
	"fmt"
	"strings"

	"github.com/midbel/sheetcalc/formula/op"
)

// Token is one lexical item of a formula. Literal is the exact text found in
// the input so that a token stream can be written back without loss.
type Token struct {
	Literal string
	Type    op.Op
	Pos     int

	// set when the token is a placeholder of a normalized formula
	Placeholder bool
	Index       int
}

func (t Token) String() string {
	switch t.Type {
	case op.EOF:
		return "<eof>"
	case op.Space:
		return "<space>"
	case op.Comma, op.Semi, op.BegGrp, op.EndGrp, op.BegArr, op.EndArr, op.Debug:
		return fmt.Sprintf("<%s>", t.Type)
	}
	if t.Type.IsOperator() {
		return fmt.Sprintf("<%s>", t.Type)
	}
	return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
}

// Text returns the decoded content of a string or quoted symbol token.
func (t Token) Text() string {
	switch t.Type {
	case op.String:
		return unquoteString(t.Literal)
	case op.Ident:
		if strings.HasPrefix(t.Literal, "'") {
			return unquoteSymbol(t.Literal)
		}
	}
	return t.Literal
}

func (t Token) IsBoolean() bool {
	if t.Type != op.Ident {
		return false
	}
	return strings.EqualFold(t.Literal, "true") || strings.EqualFold(t.Literal, "false")
}

func unquoteString(str string) string {
	str = strings.TrimPrefix(str, "\"")
	var (
		buf    strings.Builder
		escape bool
	)
	for _, c := range str {
		if escape {
			buf.WriteRune(c)
			escape = false
			continue
		}
		if c == backslash {
			escape = true
			continue
		}
		if c == dquote {
			break
		}
		buf.WriteRune(c)
	}
	return buf.String()
}

func unquoteSymbol(str string) string {
	str = strings.TrimPrefix(str, "'")
	str = strings.TrimSuffix(str, "'")
	return strings.ReplaceAll(str, "''", "'")
}

func quoteString(str string) string {
	var buf strings.Builder
	buf.WriteByte(dquote)
	for _, c := range str {
		if c == dquote || c == backslash {
			buf.WriteRune(backslash)
		}
		buf.WriteRune(c)
	}
	buf.WriteByte(dquote)
	return buf.String()
}
