package parse

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/midbel/sheetcalc/formula/op"
)

type ScanMode int8

const (
	ModeFormula ScanMode = 1 << iota
	// ModeNormalized recognizes the placeholders written by Normalize
	ModeNormalized
)

// LexError is returned when the input can not be decoded.
type LexError struct {
	Pos int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d: invalid utf-8 sequence", e.Pos)
}

// Tokenize splits a formula into tokens. The optional leading = is not part
// of the stream. Characters that can not start a token become Unknown tokens:
// a lexical failure only surfaces if the parser has to use them.
func Tokenize(str string, mode ScanMode) ([]Token, error) {
	scan := Scan([]byte(str), mode)
	var list []Token
	for {
		tok := scan.Scan()
		if scan.err != nil {
			return nil, scan.err
		}
		if tok.Type == op.EOF {
			break
		}
		list = append(list, tok)
	}
	return list, nil
}

type ScannerState struct {
	pos  int
	next int
	char rune
}

type Scanner struct {
	input []byte
	pos   int
	next  int
	char  rune

	prev op.Op
	mode ScanMode
	err  error
}

func Scan(input []byte, mode ScanMode) *Scanner {
	scan := Scanner{
		input: input,
		mode:  mode,
		prev:  op.Invalid,
	}
	scan.read()
	if scan.char == equal {
		scan.read()
	}
	return &scan
}

func (s *Scanner) Save() ScannerState {
	return ScannerState{
		pos:  s.pos,
		next: s.next,
		char: s.char,
	}
}

func (s *Scanner) Restore(state ScannerState) {
	s.pos = state.pos
	s.next = state.next
	s.char = state.char
}

func (s *Scanner) Scan() Token {
	var tok Token
	tok.Pos = s.pos
	if s.done() {
		tok.Type = op.EOF
		return tok
	}
	switch {
	case isBlank(s.char):
		s.scanBlank(&tok)
	case s.char == pipe && s.mode == ModeNormalized:
		s.scanPlaceholder(&tok)
	case isDigit(s.char) || s.char == dot && isDigit(s.peek()):
		s.scanNumber(&tok)
	case isSign(s.char) && s.signed():
		s.scanNumber(&tok)
	case s.char == dquote:
		s.scanString(&tok)
	case s.char == squote:
		s.scanQuoted(&tok)
	case s.char == pound:
		s.scanInvalidRef(&tok)
	case s.char == question:
		tok.Type = op.Debug
		s.read()
	case isDelimiter(s.char):
		s.scanDelimiter(&tok)
	case isOperator(s.char):
		s.scanOperator(&tok)
	case isLetter(s.char) || s.char == dollar:
		s.scanIdent(&tok)
	default:
		tok.Type = op.Unknown
		s.read()
	}
	tok.Literal = string(s.input[tok.Pos:s.pos])
	if tok.Type != op.Space {
		s.prev = tok.Type
	}
	return tok
}

func (s *Scanner) signed() bool {
	if s.prev.IsOperand() {
		return false
	}
	peek := s.peek()
	return isDigit(peek) || peek == dot
}

func (s *Scanner) scanBlank(tok *Token) {
	for isBlank(s.char) {
		s.read()
	}
	tok.Type = op.Space
}

func (s *Scanner) scanPlaceholder(tok *Token) {
	tok.Type = op.Unknown
	state := s.Save()
	s.read()
	kind := op.Reference
	switch s.char {
	case 'N':
		kind = op.Number
	case 'S':
		kind = op.String
	}
	if kind != op.Reference {
		s.read()
		if s.char != space {
			s.Restore(state)
			s.read()
			return
		}
		s.read()
	}
	beg := s.pos
	for isDigit(s.char) {
		s.read()
	}
	if beg == s.pos || s.char != pipe {
		s.Restore(state)
		s.read()
		return
	}
	index, _ := strconv.Atoi(string(s.input[beg:s.pos]))
	s.read()

	tok.Type = kind
	tok.Placeholder = true
	tok.Index = index
}

func (s *Scanner) scanNumber(tok *Token) {
	tok.Type = op.Number
	if isSign(s.char) {
		s.read()
	}
	for isDigit(s.char) {
		s.read()
	}
	if s.char == dot {
		s.read()
		for isDigit(s.char) {
			s.read()
		}
	}
	if s.char != 'e' && s.char != 'E' {
		return
	}
	state := s.Save()
	s.read()
	if isSign(s.char) {
		s.read()
	}
	if !isDigit(s.char) {
		s.Restore(state)
		return
	}
	for isDigit(s.char) {
		s.read()
	}
}

func (s *Scanner) scanString(tok *Token) {
	tok.Type = op.String
	s.read()
	for !s.done() {
		switch s.char {
		case backslash:
			s.read()
			if !s.done() {
				s.read()
			}
		case dquote:
			s.read()
			return
		default:
			s.read()
		}
	}
}

func (s *Scanner) scanQuoted(tok *Token) {
	tok.Type = op.Ident
	s.read()
	var closed bool
	for !s.done() && !closed {
		if s.char == squote {
			s.read()
			if s.char != squote {
				closed = true
			}
		}
		if !closed {
			s.read()
		}
	}
	if closed && s.char == bang {
		state := s.Save()
		s.read()
		if s.scanCellRef() {
			tok.Type = op.Reference
			return
		}
		s.Restore(state)
	}
}

func (s *Scanner) scanInvalidRef(tok *Token) {
	tok.Type = op.Unknown
	state := s.Save()
	s.read()
	for _, c := range "REF!" {
		if c != s.char && c != s.char-'a'+'A' {
			s.Restore(state)
			s.read()
			return
		}
		s.read()
	}
	tok.Type = op.InvalidRef
}

func (s *Scanner) scanIdent(tok *Token) {
	var (
		start = s.pos
		abs   bool
	)
	for isAlpha(s.char) {
		abs = abs || s.char == dollar
		s.read()
	}
	word := s.input[start:s.pos]
	if !abs && s.char == bang {
		state := s.Save()
		s.read()
		if s.scanCellRef() {
			tok.Type = op.Reference
			return
		}
		s.Restore(state)
	}
	if !abs && s.char == lparen {
		tok.Type = op.Function
		return
	}
	if isCell(word) {
		tok.Type = op.Reference
		s.scanRangeEnd()
		return
	}
	tok.Type = op.Ident
	if abs {
		tok.Type = op.Unknown
	}
}

// scanCellRef reads a cell (or a range made of two cells) following a sheet
// name. It leaves the scanner untouched when no cell is found.
func (s *Scanner) scanCellRef() bool {
	start := s.pos
	for isAlpha(s.char) {
		s.read()
	}
	if !isCell(s.input[start:s.pos]) {
		return false
	}
	s.scanRangeEnd()
	return true
}

func (s *Scanner) scanRangeEnd() {
	if s.char != colon {
		return
	}
	state := s.Save()
	s.read()
	start := s.pos
	for isAlpha(s.char) {
		s.read()
	}
	if !isCell(s.input[start:s.pos]) {
		s.Restore(state)
	}
}

func (s *Scanner) scanDelimiter(tok *Token) {
	tok.Type = op.Invalid
	switch s.char {
	case comma:
		tok.Type = op.Comma
	case semi:
		tok.Type = op.Semi
	case lparen:
		tok.Type = op.BegGrp
	case rparen:
		tok.Type = op.EndGrp
	case lcurly:
		tok.Type = op.BegArr
	case rcurly:
		tok.Type = op.EndArr
	default:
	}
	s.read()
}

func (s *Scanner) scanOperator(tok *Token) {
	tok.Type = op.Invalid
	switch s.char {
	case amper:
		tok.Type = op.Concat
	case percent:
		tok.Type = op.Percent
	case plus:
		tok.Type = op.Add
	case minus:
		tok.Type = op.Sub
	case star:
		tok.Type = op.Mul
	case slash:
		tok.Type = op.Div
	case caret:
		tok.Type = op.Pow
	case langle:
		tok.Type = op.Lt
		if k := s.peek(); k == equal {
			s.read()
			tok.Type = op.Le
		} else if k == rangle {
			s.read()
			tok.Type = op.Ne
		}
	case rangle:
		tok.Type = op.Gt
		if s.peek() == equal {
			s.read()
			tok.Type = op.Ge
		}
	case equal:
		tok.Type = op.Eq
	case colon:
		tok.Type = op.Range
	default:
	}
	s.read()
}

func (s *Scanner) read() {
	if s.next >= len(s.input) {
		s.char = 0
		s.pos = len(s.input)
		return
	}
	r, n := utf8.DecodeRune(s.input[s.next:])
	if r == utf8.RuneError && n <= 1 {
		s.err = &LexError{Pos: s.next}
		s.char = 0
		s.pos = len(s.input)
		s.next = len(s.input)
		return
	}
	s.char, s.pos, s.next = r, s.next, s.next+n
}

func (s *Scanner) peek() rune {
	if s.next >= len(s.input) {
		return 0
	}
	r, _ := utf8.DecodeRune(s.input[s.next:])
	return r
}

func (s *Scanner) done() bool {
	return s.pos >= len(s.input)
}

type recoMode int

const (
	cellCol recoMode = iota
	cellRow
	cellAbsCol
	cellAbsRow
	cellDead
)

type cellRecognizer struct {
	state   recoMode
	letters int
}

func recognizeCell() *cellRecognizer {
	return &cellRecognizer{
		state: cellAbsCol,
	}
}

func isCell(word []byte) bool {
	reco := recognizeCell()
	for _, c := range string(word) {
		reco.Update(c)
	}
	return reco.IsCell()
}

func (c *cellRecognizer) Update(ch rune) {
	if c.state == cellDead {
		return
	}
	switch c.state {
	case cellAbsCol:
		if ch == dollar {
			c.state = cellCol
			break
		}
		if isLower(ch) || isUpper(ch) {
			c.letters++
			c.toCol()
			break
		}
		c.toDead()
	case cellAbsRow:
		if isDigit(ch) && ch != '0' {
			c.toRow()
			break
		}
		c.toDead()
	case cellCol:
		if isLower(ch) || isUpper(ch) {
			c.letters++
			if c.letters > maxColumnLetters {
				c.toDead()
			}
			break
		}
		if c.letters == 0 {
			c.toDead()
			break
		}
		if ch == dollar {
			c.toAbsRow()
			break
		}
		if isDigit(ch) && ch != '0' {
			c.toRow()
			break
		}
		c.toDead()
	case cellRow:
		if isDigit(ch) {
			break
		}
		c.toDead()
	}
}

func (c *cellRecognizer) IsCell() bool {
	return c.state == cellRow
}

func (c *cellRecognizer) toDead() {
	c.state = cellDead
}

func (c *cellRecognizer) toCol() {
	c.state = cellCol
}

func (c *cellRecognizer) toRow() {
	c.state = cellRow
}

func (c *cellRecognizer) toAbsRow() {
	c.state = cellAbsRow
}

const maxColumnLetters = 3

const (
	underscore = '_'
	bang       = '!'
	semi       = ';'
	comma      = ','
	rparen     = ')'
	lparen     = '('
	lcurly     = '{'
	rcurly     = '}'
	squote     = '\''
	dquote     = '"'
	backslash  = '\\'
	space      = ' '
	tab        = '\t'
	nl         = '\n'
	cr         = '\r'
	plus       = '+'
	minus      = '-'
	star       = '*'
	slash      = '/'
	caret      = '^'
	equal      = '='
	langle     = '<'
	rangle     = '>'
	colon      = ':'
	dot        = '.'
	amper      = '&'
	pipe       = '|'
	percent    = '%'
	dollar     = '$'
	pound      = '#'
	question   = '?'
)

func isLower(c rune) bool {
	return c >= 'a' && c <= 'z'
}

func isUpper(c rune) bool {
	return c >= 'A' && c <= 'Z'
}

func isLetter(c rune) bool {
	return isLower(c) || isUpper(c) || c == underscore
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c rune) bool {
	return isLetter(c) || isDigit(c) || c == dollar || c == dot
}

func isSign(c rune) bool {
	return c == plus || c == minus
}

func isBlank(c rune) bool {
	return c == space || c == tab || c == nl || c == cr
}

func isDelimiter(c rune) bool {
	return c == semi || c == lparen || c == rparen ||
		c == comma || c == lcurly || c == rcurly
}

func isOperator(c rune) bool {
	return c == plus || c == minus || c == slash || c == star ||
		c == langle || c == rangle || c == colon ||
		c == equal || c == caret || c == amper || c == percent
}
