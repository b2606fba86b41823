package csv

import (
	"bufio"
	"io"
	"strings"
)

// Writer writes records, quoting the fields that can not be written as is.
type Writer struct {
	inner *bufio.Writer
	err   error

	Comma      byte
	ForceQuote bool
	UseCRLF    bool
}

func NewWriter(w io.Writer) *Writer {
	ws := Writer{
		inner: bufio.NewWriter(w),
		Comma: ',',
	}
	return &ws
}

func (w *Writer) WriteAll(data [][]string) error {
	for _, line := range data {
		if err := w.Write(line); err != nil {
			return err
		}
	}
	w.Flush()
	return w.err
}

func (w *Writer) Write(line []string) error {
	if w.err != nil {
		return w.err
	}
	for i, str := range line {
		if i > 0 {
			w.inner.WriteByte(w.Comma)
		}
		if w.needQuotes(str) {
			w.writeQuoted(str)
		} else {
			w.inner.WriteString(str)
		}
	}
	w.endLine()
	return w.err
}

func (w *Writer) Flush() {
	if err := w.inner.Flush(); err != nil && w.err == nil {
		w.err = err
	}
}

// Error reports the first error that occurred while writing or flushing.
func (w *Writer) Error() error {
	return w.err
}

func (w *Writer) endLine() {
	if w.UseCRLF {
		w.inner.WriteByte(cr)
	}
	if err := w.inner.WriteByte(nl); err != nil && w.err == nil {
		w.err = err
	}
}

func (w *Writer) writeQuoted(str string) {
	w.inner.WriteByte(quote)
	for len(str) > 0 {
		ix := strings.IndexAny(str, "\"\r\n")
		if ix < 0 {
			w.inner.WriteString(str)
			break
		}
		w.inner.WriteString(str[:ix])
		switch str[ix] {
		case quote:
			w.inner.WriteString(`""`)
		case cr:
			w.inner.WriteByte(cr)
		case nl:
			if w.UseCRLF {
				w.inner.WriteByte(cr)
			}
			w.inner.WriteByte(nl)
		}
		str = str[ix+1:]
	}
	if err := w.inner.WriteByte(quote); err != nil && w.err == nil {
		w.err = err
	}
}

func (w *Writer) needQuotes(str string) bool {
	switch {
	case w.ForceQuote:
		return true
	case str == "":
		return false
	case str[0] == space || str[len(str)-1] == space:
		return true
	default:
		return strings.IndexByte(str, w.Comma) >= 0 || strings.ContainsAny(str, "\"\r\n")
	}
}
