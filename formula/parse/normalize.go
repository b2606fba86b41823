package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/midbel/sheetcalc/formula/op"
	"github.com/midbel/sheetcalc/layout"
)

type DepKind int8

const (
	DepReference DepKind = iota
	DepNumber
	DepString
)

func (k DepKind) String() string {
	switch k {
	case DepNumber:
		return "number"
	case DepString:
		return "string"
	default:
		return "reference"
	}
}

// Dependency is a value taken out of a formula by Normalize. Text is the
// literal of a number or a reference and the decoded content of a string.
type Dependency struct {
	Kind   DepKind
	Number float64
	Text   string
}

func NumberDep(f float64) Dependency {
	return Dependency{
		Kind:   DepNumber,
		Number: f,
		Text:   strconv.FormatFloat(f, 'f', -1, 64),
	}
}

func StringDep(str string) Dependency {
	return Dependency{
		Kind: DepString,
		Text: str,
	}
}

func ReferenceDep(ref layout.Reference) Dependency {
	return Dependency{
		Kind: DepReference,
		Text: ref.String(),
	}
}

func (d Dependency) Reference() (layout.Reference, error) {
	if d.Kind != DepReference {
		return layout.Reference{}, fmt.Errorf("%s: not a reference", d.Text)
	}
	return layout.ParseReference(d.Text)
}

// Formula returns the dependency as it is written in a formula.
func (d Dependency) Formula() string {
	if d.Kind == DepString {
		return quoteString(d.Text)
	}
	return d.Text
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s(%s)", d.Kind, d.Formula())
}

// Normalized is a formula where every number, string and reference has been
// replaced by a placeholder. Formulas with the same shape share the same
// text.
type Normalized struct {
	Text string
	Deps []Dependency
}

func (n Normalized) Formula() (string, error) {
	return Substitute(n.Text, n.Deps)
}

func NormalizeString(str string) (Normalized, error) {
	tokens, err := Tokenize(str, ModeFormula)
	if err != nil {
		return Normalized{}, err
	}
	return Normalize(tokens)
}

// Normalize writes the placeholder form of a token stream. Spaces are
// dropped so that the text only depends on the shape of the formula.
func Normalize(tokens []Token) (Normalized, error) {
	var (
		norm    Normalized
		buf     strings.Builder
		numbers int
		strs    int
		refs    int
	)
	for _, tok := range tokens {
		if tok.Placeholder {
			return norm, fmt.Errorf("%d: formula is already normalized", tok.Pos)
		}
		switch tok.Type {
		case op.Space:
		case op.Number:
			f, err := strconv.ParseFloat(tok.Literal, 64)
			if err != nil {
				return norm, fmt.Errorf("%d: invalid number %s", tok.Pos, tok.Literal)
			}
			norm.Deps = append(norm.Deps, Dependency{
				Kind:   DepNumber,
				Number: f,
				Text:   tok.Literal,
			})
			fmt.Fprintf(&buf, "|N %d|", numbers)
			numbers++
		case op.String:
			norm.Deps = append(norm.Deps, StringDep(tok.Text()))
			fmt.Fprintf(&buf, "|S %d|", strs)
			strs++
		case op.Reference:
			norm.Deps = append(norm.Deps, Dependency{
				Kind: DepReference,
				Text: tok.Literal,
			})
			fmt.Fprintf(&buf, "|%d|", refs)
			refs++
		default:
			buf.WriteString(tok.Literal)
		}
	}
	norm.Text = buf.String()
	return norm, nil
}

// Substitute writes back the values of deps in place of the placeholders
// of a normalized formula. Text inside quoted symbols is left untouched.
func Substitute(text string, deps []Dependency) (string, error) {
	tokens, err := Tokenize(text, ModeNormalized)
	if err != nil {
		return "", err
	}
	var (
		index = indexDependencies(deps)
		buf   strings.Builder
	)
	for _, tok := range tokens {
		if !tok.Placeholder {
			buf.WriteString(tok.Literal)
			continue
		}
		kind := kindOf(tok.Type)
		list := index[kind]
		if tok.Index >= len(list) {
			return "", fmt.Errorf("%d: no value for placeholder %s", tok.Pos, tok.Literal)
		}
		buf.WriteString(deps[list[tok.Index]].Formula())
	}
	return buf.String(), nil
}

func indexDependencies(deps []Dependency) map[DepKind][]int {
	index := make(map[DepKind][]int)
	for i, d := range deps {
		index[d.Kind] = append(index[d.Kind], i)
	}
	return index
}

func kindOf(kind op.Op) DepKind {
	switch kind {
	case op.Number:
		return DepNumber
	case op.String:
		return DepString
	default:
		return DepReference
	}
}
