package csv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

const (
	quote = '"'
	nl    = '\n'
	cr    = '\r'
	space = ' '
)

var (
	errUnterminated = errors.New("unterminated quoted field")
	ErrFields       = errors.New("invalid number of fields")
)

type Reader struct {
	inner         *bufio.Reader
	Comma         byte
	FieldsPerLine int

	line  int
	atEOF bool
}

func NewReader(r io.Reader) *Reader {
	rs := Reader{
		inner: bufio.NewReader(r),
		Comma: ',',
	}
	return &rs
}

func (r *Reader) Done() bool {
	return r.atEOF
}

func (r *Reader) ReadAll() ([][]string, error) {
	var all [][]string
	for {
		rs, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		all = append(all, rs)
	}
	return all, nil
}

// Read returns the fields of the next line. A quoted field can span several
// lines; doubled quotes inside it give a single quote.
func (r *Reader) Read() ([]string, error) {
	if r.Done() {
		return nil, io.EOF
	}
	line, err := r.next()
	if len(line) == 0 && errors.Is(err, io.EOF) {
		r.atEOF = true
		return nil, err
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	var res []string
	for i := 0; ; {
		var (
			field []byte
			size  int
		)
		if i < len(line) && line[i] == quote {
			for {
				field, size, err = readQuotedField(line[i:])
				if err == nil {
					break
				}
				more, err1 := r.next()
				if len(more) == 0 {
					return nil, fmt.Errorf("line %d: %w", r.line, err)
				}
				if err1 != nil && !errors.Is(err1, io.EOF) {
					return nil, err1
				}
				line = append(line, more...)
			}
		} else {
			field, size, err = r.readDefaultField(line[i:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.line, err)
			}
		}
		res = append(res, string(field))
		i += size
		if i >= len(line) || line[i] == nl || line[i] == cr {
			break
		}
		if line[i] != r.Comma {
			return nil, fmt.Errorf("line %d: unexpected character after field", r.line)
		}
		i++
	}
	if r.FieldsPerLine > 0 && len(res) != r.FieldsPerLine {
		return nil, fmt.Errorf("line %d: %w", r.line, ErrFields)
	}
	return res, nil
}

func (r *Reader) next() ([]byte, error) {
	r.line++
	return r.inner.ReadBytes(nl)
}

func readQuotedField(line []byte) ([]byte, int, error) {
	var field []byte
	for offset := 1; offset < len(line); offset++ {
		if line[offset] != quote {
			field = append(field, line[offset])
			continue
		}
		if offset+1 < len(line) && line[offset+1] == quote {
			field = append(field, quote)
			offset++
			continue
		}
		return field, offset + 1, nil
	}
	return nil, 0, errUnterminated
}

func (r *Reader) readDefaultField(line []byte) ([]byte, int, error) {
	var offset int
	for offset < len(line) {
		switch line[offset] {
		case quote:
			return nil, 0, fmt.Errorf("unexpected quote")
		case r.Comma, cr, nl:
			return line[:offset], offset, nil
		default:
			offset++
		}
	}
	return line[:offset], offset, nil
}
