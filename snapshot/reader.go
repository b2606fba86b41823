package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	sax "github.com/midbel/codecs/xml"
	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/grid"
	"github.com/midbel/sheetcalc/layout"
)

var ErrFormat = errors.New("invalid snapshot")

// ReadFile loads a document from a file written by WriteFile. Formulas are
// compiled again; the document must be recomputed before its values are
// read.
func ReadFile(file string, fns *env.Registry, options ...grid.Option) (*grid.Document, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Read(r, fns, options...)
}

func Read(r io.Reader, fns *env.Registry, options ...grid.Option) (*grid.Document, error) {
	z, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer z.Close()
	return Decode(z, fns, options...)
}

func Decode(r io.Reader, fns *env.Registry, options ...grid.Option) (*grid.Document, error) {
	rs := workbookReader{
		reader: sax.NewReader(r),
		doc:    grid.New(fns, options...),
		names:  make(map[string]string),
	}
	return rs.Load()
}

type workbookReader struct {
	reader *sax.Reader
	doc    *grid.Document
	sheet  *grid.Sheet
	names  map[string]string
}

func (r *workbookReader) Load() (*grid.Document, error) {
	r.reader.Element(sax.LocalName("workbook"), r.onWorkbook)
	r.reader.Element(sax.LocalName("sheet"), r.onSheet)
	r.reader.Element(sax.LocalName("c"), r.onCell)
	r.reader.Element(sax.LocalName("name"), r.onName)
	if err := r.reader.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	for name, target := range r.names {
		if err := r.doc.DefineName(name, target); err != nil {
			return nil, err
		}
	}
	return r.doc, nil
}

func (r *workbookReader) onWorkbook(_ *sax.Reader, el sax.E) error {
	id := el.GetAttributeValue("id")
	if id == "" {
		return nil
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	r.doc.ID = uid
	return nil
}

func (r *workbookReader) onSheet(_ *sax.Reader, el sax.E) error {
	var (
		name = el.GetAttributeValue("name")
		size = layout.Dimension{Lines: 1, Columns: 1}
	)
	if _, end, ok := strings.Cut(el.GetAttributeValue("ref"), ":"); ok {
		pos := layout.ParsePosition(end)
		size.Lines, size.Columns = pos.Line, pos.Column
	}
	sh, err := r.doc.AddSheet(name, size)
	if err != nil {
		return err
	}
	if sh.Name() != name {
		return fmt.Errorf("%s: %w", name, grid.ErrSheetExists)
	}
	r.sheet = sh
	return nil
}

func (r *workbookReader) onName(_ *sax.Reader, el sax.E) error {
	var (
		name   = el.GetAttributeValue("id")
		target = el.GetAttributeValue("ref")
	)
	if name == "" || target == "" {
		return fmt.Errorf("name without id or reference")
	}
	r.names[name] = target
	return nil
}

func (r *workbookReader) onCell(rs *sax.Reader, el sax.E) error {
	if r.sheet == nil {
		return fmt.Errorf("cell outside of sheet")
	}
	pos := layout.ParsePosition(el.GetAttributeValue("r"))
	if !pos.Valid() {
		return fmt.Errorf("%s: invalid cell address", el.GetAttributeValue("r"))
	}
	pos.Sheet = r.sheet.Name()
	if format := el.GetAttributeValue("s"); format != "" {
		if err := r.doc.SetFormat(pos, format); err != nil {
			return err
		}
	}
	rs.Element(sax.LocalName("v"), func(rs *sax.Reader, _ sax.E) error {
		rs.OnText(func(_ *sax.Reader, str string) error {
			return r.doc.SetContent(pos, str)
		})
		return nil
	})
	rs.Element(sax.LocalName("f"), func(rs *sax.Reader, _ sax.E) error {
		rs.OnText(func(_ *sax.Reader, str string) error {
			return r.doc.SetContent(pos, "="+str)
		})
		return nil
	})
	return nil
}
