package csv

import (
	"io"

	"github.com/midbel/sheetcalc/grid"
	"github.com/midbel/sheetcalc/layout"
)

// Import adds a sheet to doc with the content of each field of r. Fields
// starting with "=" are formulas.
func Import(r io.Reader, doc *grid.Document, name string, comma byte) (*grid.Sheet, error) {
	rs := NewReader(r)
	if comma != 0 {
		rs.Comma = comma
	}
	rows, err := rs.ReadAll()
	if err != nil {
		return nil, err
	}
	var size layout.Dimension
	for _, row := range rows {
		size.Lines++
		size.Columns = max(size.Columns, int64(len(row)))
	}
	sh, err := doc.AddSheet(name, size.Max(layout.Dimension{Lines: 1, Columns: 1}))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		for j, str := range row {
			if str == "" {
				continue
			}
			pos := layout.Position{
				Sheet:  sh.Name(),
				Line:   int64(i) + 1,
				Column: int64(j) + 1,
			}
			if err := doc.SetContent(pos, str); err != nil {
				return nil, err
			}
		}
	}
	return sh, nil
}

// Export writes the displayed values of a sheet, or the content of its
// cells when raw is set.
func Export(w io.Writer, doc *grid.Document, name string, raw bool) error {
	var (
		rows [][]string
		err  error
	)
	if raw {
		rows, err = contents(doc, name)
	} else {
		rows, err = doc.Records(name)
	}
	if err != nil {
		return err
	}
	ws := NewWriter(w)
	if err := ws.WriteAll(rows); err != nil {
		return err
	}
	return ws.Error()
}

func contents(doc *grid.Document, name string) ([][]string, error) {
	sh, err := doc.Sheet(name)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for c := range sh.Cells() {
		for int64(len(rows)) < c.Line {
			rows = append(rows, make([]string, sh.Size.Columns))
		}
		rows[c.Line-1][c.Column-1] = c.Raw
	}
	return rows, nil
}
