package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/midbel/sheetcalc/formula/op"
	"github.com/midbel/sheetcalc/layout"
)

var ErrSyntax = errors.New("syntax error")

// Error describes what the parser expected and what it found instead.
type Error struct {
	Pos      int
	Expected string
	Found    string
}

func (e *Error) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("%d: unexpected %s", e.Pos, e.Found)
	}
	return fmt.Sprintf("%d: expected %s but got %s", e.Pos, e.Expected, e.Found)
}

func (e *Error) Unwrap() error {
	return ErrSyntax
}

type Option func(*Parser)

// WithAsync gives the parser a way to flag the calls of asynchronous
// functions.
func WithAsync(async func(string) bool) Option {
	return func(p *Parser) {
		p.async = async
	}
}

type Parser struct {
	grammar *Grammar
	async   func(string) bool

	tokens []Token
	index  int
	curr   Token
	peek   Token

	level int
	slots int
}

func NewParser(g *Grammar, options ...Option) *Parser {
	p := Parser{
		grammar: g,
	}
	for _, o := range options {
		o(&p)
	}
	return &p
}

// ParseString parses a plain formula.
func ParseString(str string, options ...Option) (Node, error) {
	tokens, err := Tokenize(str, ModeFormula)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, options...)
}

// ParseNormalized parses the text of a normalized formula. Number, string
// and reference nodes of the result only carry the index of their
// dependency.
func ParseNormalized(str string, options ...Option) (Node, error) {
	tokens, err := Tokenize(str, ModeNormalized)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, options...)
}

func Parse(tokens []Token, options ...Option) (Node, error) {
	p := NewParser(FormulaGrammar(), options...)
	return p.Parse(tokens)
}

func (p *Parser) Parse(tokens []Token) (Node, error) {
	p.init(tokens)
	if p.done() {
		return nil, p.makeError("expression")
	}
	expr, err := p.parse(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.makeError("end of formula")
	}
	return expr, nil
}

func (p *Parser) init(tokens []Token) {
	p.tokens = p.tokens[:0]
	for _, t := range tokens {
		if t.Type == op.Space {
			continue
		}
		p.tokens = append(p.tokens, t)
	}
	p.index = 0
	p.slots = 0
	p.level = powLowest
	p.next()
	p.next()
}

func (p *Parser) parse(pow int) (Node, error) {
	fn, err := p.prefix()
	if err != nil {
		return nil, err
	}
	level := p.level
	p.level = pow
	left, err := fn(p)
	p.level = level
	if err != nil {
		return nil, err
	}
	for {
		fn, err := p.postfix()
		if err != nil {
			break
		}
		left, err = fn(p, left)
		if err != nil {
			return nil, err
		}
	}
	for !p.done() && pow < p.pow(p.curr.Type) {
		fn, err := p.infix()
		if err != nil {
			return nil, err
		}
		left, err = fn(p, left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) next() {
	p.curr = p.peek
	if p.index < len(p.tokens) {
		p.peek = p.tokens[p.index]
		p.index++
		return
	}
	var pos int
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		pos = last.Pos + len(last.Literal)
	}
	p.peek = Token{
		Type: op.EOF,
		Pos:  pos,
	}
}

func (p *Parser) done() bool {
	return p.is(op.EOF)
}

func (p *Parser) is(kind op.Op) bool {
	return p.curr.Type == kind
}

func (p *Parser) pow(kind op.Op) int {
	return p.grammar.Pow(kind)
}

func (p *Parser) prefix() (PrefixFunc, error) {
	fn, err := p.grammar.Prefix(p.curr)
	if err != nil {
		return nil, p.makeError("expression")
	}
	return fn, nil
}

func (p *Parser) postfix() (InfixFunc, error) {
	return p.grammar.Postfix(p.curr)
}

func (p *Parser) infix() (InfixFunc, error) {
	return p.grammar.Infix(p.curr)
}

func (p *Parser) slot() int {
	s := p.slots
	p.slots++
	return s
}

func (p *Parser) makeError(expected string) error {
	found := p.curr.String()
	if p.done() {
		found = "end of formula"
	}
	return &Error{
		Pos:      p.curr.Pos,
		Expected: expected,
		Found:    found,
	}
}

func parseCall(p *Parser) (Node, error) {
	call := Call{
		Name: strings.ToUpper(p.curr.Literal),
	}
	if p.async != nil {
		call.Async = p.async(call.Name)
	}
	p.next()
	if !p.is(op.BegGrp) {
		return nil, p.makeError("'('")
	}
	p.next()
	if p.is(op.EndGrp) {
		p.next()
		return call, nil
	}
	for {
		if p.is(op.Comma) || p.is(op.EndGrp) {
			call.Args = append(call.Args, Empty{})
		} else {
			arg, err := p.parse(powLowest)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		switch p.curr.Type {
		case op.Comma:
			p.next()
		case op.EndGrp:
			p.next()
			return call, nil
		default:
			return nil, p.makeError("',' or ')'")
		}
	}
}

func parseBinary(p *Parser, left Node) (Node, error) {
	oper := p.curr.Type
	p.next()
	pow := p.pow(oper)
	if oper == op.Pow {
		pow--
	}
	right, err := p.parse(pow)
	if err != nil {
		return nil, err
	}
	b := Binary{
		Op:    oper,
		Left:  left,
		Right: right,
	}
	return b, nil
}

func parseUnary(p *Parser) (Node, error) {
	oper := p.curr.Type
	p.next()
	right, err := p.parse(powUnary)
	if err != nil {
		return nil, err
	}
	u := Unary{
		Op:   oper,
		Expr: right,
	}
	return u, nil
}

func parsePercent(p *Parser, expr Node) (Node, error) {
	u := Unary{
		Op:      p.curr.Type,
		Expr:    expr,
		Postfix: true,
	}
	p.next()
	return u, nil
}

func parseDebug(p *Parser) (Node, error) {
	p.next()
	expr, err := p.parse(p.level)
	if err != nil {
		return nil, err
	}
	return withBreak(expr), nil
}

func parseGroup(p *Parser) (Node, error) {
	p.next()
	expr, err := p.parse(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.is(op.EndGrp) {
		return nil, p.makeError("')'")
	}
	p.next()
	return expr, nil
}

func parseArray(p *Parser) (Node, error) {
	p.next()
	var (
		arr Array
		row []Node
	)
	for {
		if p.is(op.EndArr) || p.is(op.Comma) || p.is(op.Semi) {
			return nil, p.makeError("array element")
		}
		elem, err := p.parse(powLowest)
		if err != nil {
			return nil, err
		}
		row = append(row, elem)
		switch p.curr.Type {
		case op.Comma:
			p.next()
			continue
		case op.Semi, op.EndArr:
		default:
			return nil, p.makeError("',', ';' or '}'")
		}
		if len(arr.Rows) > 0 && len(arr.Rows[0]) != len(row) {
			return nil, p.makeError(fmt.Sprintf("%d columns", len(arr.Rows[0])))
		}
		arr.Rows = append(arr.Rows, row)
		row = nil
		if p.is(op.EndArr) {
			p.next()
			return arr, nil
		}
		p.next()
	}
}

func parseNumber(p *Parser) (Node, error) {
	defer p.next()
	if p.curr.Placeholder {
		n := Number{
			Slot: p.slot(),
		}
		return n, nil
	}
	x, err := strconv.ParseFloat(p.curr.Literal, 64)
	if err != nil {
		return nil, p.makeError("number")
	}
	n := Number{
		Slot:  -1,
		Value: x,
		Raw:   p.curr.Literal,
	}
	return n, nil
}

func parseString(p *Parser) (Node, error) {
	defer p.next()
	if p.curr.Placeholder {
		s := String{
			Slot: p.slot(),
		}
		return s, nil
	}
	s := String{
		Slot:  -1,
		Value: p.curr.Text(),
	}
	return s, nil
}

func parseReference(p *Parser) (Node, error) {
	defer p.next()
	if p.curr.Placeholder {
		r := Reference{
			Slot: p.slot(),
		}
		return r, nil
	}
	ref, err := layout.ParseReference(p.curr.Literal)
	if err != nil {
		return nil, p.makeError("reference")
	}
	r := Reference{
		Slot: -1,
		Ref:  ref,
	}
	return r, nil
}

func parseInvalidRef(p *Parser) (Node, error) {
	p.next()
	return InvalidRef{}, nil
}

func parseIdentifier(p *Parser) (Node, error) {
	defer p.next()
	if p.curr.IsBoolean() {
		b := Boolean{
			Value: strings.EqualFold(p.curr.Literal, "true"),
		}
		return b, nil
	}
	u := Unknown{
		Name:   p.curr.Text(),
		Quoted: strings.HasPrefix(p.curr.Literal, "'"),
	}
	return u, nil
}
